package main

import (
	"fmt"

	"github.com/semmidev/litedump/internal/app"
	"github.com/semmidev/litedump/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "litedump",
		Short:        "Dump SQLite databases with the sqlite3 shell and ship the result to backup targets.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")

	rootCmd.AddCommand(
		newDumpCmd(&configPath),
		newCleanupCmd(&configPath),
		newCommandCmd(),
		newTablesCmd(),
		newAuthCmd(),
	)

	return rootCmd
}

func loadApp(cmd *cobra.Command, configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	application, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize app: %w", err)
	}

	return application, nil
}
