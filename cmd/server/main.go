package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fitness/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "fitnessd",
	Short: "Fitness tracking backend",
	Long: `Backend for the fitness tracking app: accounts and email verification,
workout and day history, and the admin console API.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}

// loadConfig reads the config file and installs the JSON logger at the
// configured level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	})))
	return cfg, nil
}
