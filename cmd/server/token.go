package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fitness/internal/auth"
	"fitness/internal/db"
)

var tokenEmail string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed access token for an existing user",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email of the user to sign for")
	_ = tokenCmd.MarkFlagRequired("email")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	user, err := database.Queries().Users.FindByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(tokenEmail)))
	if err != nil {
		return fmt.Errorf("looking up %s: %w", tokenEmail, err)
	}

	token, expiresAt, err := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL).GenerateAccessToken(user)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format("2006-01-02T15:04:05Z"))
	return nil
}
