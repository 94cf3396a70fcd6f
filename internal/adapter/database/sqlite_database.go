package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/semmidev/litedump/internal/config"
	"github.com/semmidev/litedump/internal/domain"
	"github.com/semmidev/litedump/internal/infrastructure/executor"
)

type PipelineRunner interface {
	Run(ctx context.Context, out io.Writer, stages ...executor.Stage) error
}

// SqliteDatabase backs up one configured SQLite file.
type SqliteDatabase struct {
	config   *config.DatabaseConfig
	builder  *Sqlite
	runner   domain.CommandRunner
	pipeline PipelineRunner
}

func NewSqliteDatabase(
	cfg *config.DatabaseConfig,
	comp domain.Compressor,
	runner domain.CommandRunner,
	pipeline PipelineRunner,
) *SqliteDatabase {
	builder := NewSqlite().
		SetDatabasePath(cfg.Path).
		SetDumpBinaryPath(cfg.BinaryPath).
		IncludeTables(cfg.IncludeTables...).
		ExcludeTables(cfg.ExcludeTables...).
		UseCompressor(comp)

	return &SqliteDatabase{
		config:   cfg,
		builder:  builder,
		runner:   runner,
		pipeline: pipeline,
	}
}

func (s *SqliteDatabase) Backup(ctx context.Context, outputPath string) error {
	if s.config.Mode == config.ModeNative {
		return s.backupNative(ctx, outputPath)
	}

	command, err := s.builder.DumpCommand(ctx, outputPath)
	if err != nil {
		return fmt.Errorf("failed to build dump command: %w", err)
	}

	if err := s.runner.Run(ctx, command); err != nil {
		return fmt.Errorf("sqlite3 dump failed: %w", err)
	}

	return nil
}

func (s *SqliteDatabase) backupNative(ctx context.Context, outputPath string) (err error) {
	script, err := s.builder.DumpScript(ctx)
	if err != nil {
		return fmt.Errorf("failed to build dump script: %w", err)
	}

	stages := []executor.Stage{{
		Name:  sqliteBinary,
		Path:  s.builder.Binary(),
		Args:  []string{"--bail", s.builder.DatabasePath()},
		Stdin: strings.NewReader(script),
	}}

	if comp := s.builder.Compressor(); compressionEnabled(comp) {
		fields := strings.Fields(comp.UseCommand())
		stages = append(stages, executor.Stage{Name: fields[0], Path: fields[0], Args: fields[1:]})
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create dump file: %w", err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close dump file: %w", closeErr)
		}
	}()

	if err := s.pipeline.Run(ctx, file, stages...); err != nil {
		return fmt.Errorf("sqlite3 dump failed: %w", err)
	}

	return nil
}

// Tables lists the tables of the configured database file.
func (s *SqliteDatabase) Tables(ctx context.Context) ([]string, error) {
	return s.builder.Tables(ctx)
}

func (s *SqliteDatabase) GetName() string {
	return s.config.Name
}

func (s *SqliteDatabase) GetType() string {
	return "sqlite"
}

func (s *SqliteDatabase) Extension() string {
	ext := ".sql"
	if comp := s.builder.Compressor(); comp != nil {
		ext += comp.Extension()
	}
	return ext
}

func (s *SqliteDatabase) Ping(ctx context.Context) error {
	if _, err := s.builder.Tables(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}

	return nil
}
