package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fitness/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := connect()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := connect()
		if err != nil {
			return err
		}
		defer database.Close()

		return database.MigrationStatus(cmd.Context())
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func connect() (*db.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return db.Connect(cfg.Database.Path)
}
