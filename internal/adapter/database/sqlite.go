package database

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/semmidev/litedump/internal/domain"
)

const (
	sqliteBinary = "sqlite3"

	// Takes a reserved lock so the dump sees one consistent snapshot.
	dumpPrologue = "BEGIN IMMEDIATE;"
)

// Sqlite builds the shell command that dumps a SQLite database file with the
// sqlite3 shell. Setters return the receiver so calls can be chained:
//
//	cmd, err := NewSqlite().
//		SetDatabasePath("app.sqlite").
//		UseCompressor(compressor.NewGzip()).
//		DumpCommand(ctx, "dump.sql.gz")
type Sqlite struct {
	dbPath         string
	dumpBinaryPath string
	includeTables  []string
	excludeTables  []string
	compressor     domain.Compressor

	listTables func(ctx context.Context, path string) ([]string, error)
}

func NewSqlite() *Sqlite {
	return &Sqlite{listTables: ListTables}
}

func (s *Sqlite) SetDatabasePath(path string) *Sqlite {
	s.dbPath = path
	return s
}

// SetDumpBinaryPath sets the directory holding the sqlite3 executable.
// An empty path leaves sqlite3 to be resolved from $PATH.
func (s *Sqlite) SetDumpBinaryPath(dir string) *Sqlite {
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	s.dumpBinaryPath = dir
	return s
}

func (s *Sqlite) IncludeTables(tables ...string) *Sqlite {
	s.includeTables = slices.Clone(tables)
	return s
}

func (s *Sqlite) ExcludeTables(tables ...string) *Sqlite {
	s.excludeTables = slices.Clone(tables)
	return s
}

func (s *Sqlite) UseCompressor(c domain.Compressor) *Sqlite {
	s.compressor = c
	return s
}

func (s *Sqlite) DatabasePath() string {
	return s.dbPath
}

// Binary returns the sqlite3 executable the command invokes.
func (s *Sqlite) Binary() string {
	return s.dumpBinaryPath + sqliteBinary
}

func (s *Sqlite) Compressor() domain.Compressor {
	return s.compressor
}

// Tables lists the user tables of the configured database in catalog order.
func (s *Sqlite) Tables(ctx context.Context) ([]string, error) {
	return s.listTables(ctx, s.dbPath)
}

// DumpScript returns the instructions fed to the sqlite3 shell on stdin.
func (s *Sqlite) DumpScript(ctx context.Context) (string, error) {
	if err := s.validate(); err != nil {
		return "", err
	}

	tables, err := s.dumpTables(ctx)
	if err != nil {
		return "", err
	}

	directive := ".dump"
	if len(tables) > 0 {
		// Names are joined unquoted; tables whose names need shell or SQL
		// quoting are not supported.
		directive += " " + strings.Join(tables, " ")
	}

	return dumpPrologue + "\n" + directive, nil
}

// DumpCommand renders the full shell command that writes the dump to
// outputPath. With a compressor configured the command exits with the status
// of sqlite3 rather than that of the compressor.
func (s *Sqlite) DumpCommand(ctx context.Context, outputPath string) (string, error) {
	script, err := s.DumpScript(ctx)
	if err != nil {
		return "", err
	}

	command := fmt.Sprintf("echo '%s' | '%s' --bail '%s'", script, s.Binary(), s.dbPath)

	if !compressionEnabled(s.compressor) {
		return fmt.Sprintf(`%s > "%s"`, command, outputPath), nil
	}

	return preserveExitStatus(command, s.compressor.UseCommand(), outputPath), nil
}

// preserveExitStatus pipes command through compress into outputPath. The exit
// status of command travels over file descriptor 3 and becomes the status of
// the whole pipeline.
func preserveExitStatus(command, compress, outputPath string) string {
	return fmt.Sprintf(`((((%s; echo $? >&3) | %s > "%s") 3>&1) | (read x; exit $x))`, command, compress, outputPath)
}

func (s *Sqlite) validate() error {
	if strings.TrimSpace(s.dbPath) == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfiguration)
	}

	if len(s.includeTables) > 0 && len(s.excludeTables) > 0 {
		return fmt.Errorf("%w: include and exclude tables cannot be used together", ErrInvalidConfiguration)
	}

	return nil
}

func (s *Sqlite) dumpTables(ctx context.Context) ([]string, error) {
	if len(s.includeTables) > 0 {
		return s.includeTables, nil
	}

	if len(s.excludeTables) == 0 {
		return nil, nil
	}

	all, err := s.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables to exclude from: %w", err)
	}

	tables := make([]string, 0, len(all))
	for _, table := range all {
		if !slices.Contains(s.excludeTables, table) {
			tables = append(tables, table)
		}
	}

	// An empty list would turn into a full dump.
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: excluding %s leaves no tables to dump",
			ErrInvalidConfiguration, strings.Join(s.excludeTables, ", "))
	}

	return tables, nil
}

func compressionEnabled(c domain.Compressor) bool {
	return c != nil && c.UseCommand() != ""
}
