package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fitness/internal/db"
	"fitness/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load exercises, users and plans from a YAML fixture file",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "fixtures.yaml", "fixture file to load")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fixtures, err := seed.Load(seedFile)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	summary, err := seed.Apply(cmd.Context(), database.Queries(), fixtures)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exercises upserted: %d\nusers created: %d (skipped %d)\nplans created: %d\n",
		summary.Exercises, summary.UsersCreated, summary.UsersSkipped, summary.Plans)
	return nil
}
