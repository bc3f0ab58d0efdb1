package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fuelapi/internal/auth"
)

var (
	tokenUser  string
	tokenEmail string
)

// tokenCmd issues bearer tokens for local development and smoke tests.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a user id",
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		raw, exp, err := tokens.Issue(auth.Principal{UserID: tokenUser, Email: tokenEmail})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), raw)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id to embed in the token")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "optional email claim")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}
