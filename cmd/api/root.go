package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fuelapi/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fuelapi",
	Short: "Fuel receipt ingestion API",
	Long:  "Stores fuel receipt images, extracts purchase details with a vision model and keeps per-user fuel records.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// @title						Fuel Receipt API
// @version					1.0
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
