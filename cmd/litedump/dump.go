package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDumpCmd(configPath *string) *cobra.Command {
	var databaseName string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Back up the enabled databases once",
		Long: "Back up every enabled database of the config file, or only the one given with --database, " +
			"store the dumps locally, upload them to the enabled targets and apply retention when backup.cleanup is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			backups, err := application.Dump(cmd.Context(), databaseName)
			for _, backup := range backups {
				fmt.Fprintln(cmd.OutOrStdout(), backup.FilePath)
			}

			return err
		},
	}

	cmd.Flags().StringVarP(&databaseName, "database", "d", "", "name of a single configured database to dump")

	return cmd
}

func newCleanupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete dumps older than backup.retention_days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(cmd, *configPath)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			return application.Cleanup(cmd.Context())
		},
	}
}
