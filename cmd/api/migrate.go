package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fuelapi/internal/database"
	"fuelapi/internal/database/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the fuel_records schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, cfg.Database.Host); err != nil {
			return err
		}
		zap.L().Info("schema up to date", zap.String("database", cfg.Database.Name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
