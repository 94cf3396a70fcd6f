package main

import (
	"fmt"

	"github.com/semmidev/litedump/internal/adapter/compressor"
	"github.com/semmidev/litedump/internal/adapter/database"
	"github.com/spf13/cobra"
)

func newCommandCmd() *cobra.Command {
	var (
		dbPath, binaryPath, compressorName, output string
		include, exclude                           []string
	)

	cmd := &cobra.Command{
		Use:   "command",
		Short: "Print the shell command that dumps a database",
		Example: "  litedump command --db app.sqlite --exclude sessions --compressor gzip --output app.sql.gz\n" +
			"  litedump command --db app.sqlite --output app.sql | sh",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := compressor.New(compressorName)
			if err != nil {
				return err
			}

			command, err := database.NewSqlite().
				SetDatabasePath(dbPath).
				SetDumpBinaryPath(binaryPath).
				IncludeTables(include...).
				ExcludeTables(exclude...).
				UseCompressor(comp).
				DumpCommand(cmd.Context(), output)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), command)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path of the SQLite database file")
	cmd.Flags().StringVar(&binaryPath, "binary-path", "", "directory holding the sqlite3 executable")
	cmd.Flags().StringSliceVar(&include, "include", nil, "tables to dump, all others are skipped")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "tables to skip")
	cmd.Flags().StringVar(&compressorName, "compressor", "none", "gzip, bzip2 or none")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file the dump is written to")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func newTablesCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables of a database in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := database.ListTables(cmd.Context(), dbPath)
			if err != nil {
				return err
			}

			for _, table := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), table)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path of the SQLite database file")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
