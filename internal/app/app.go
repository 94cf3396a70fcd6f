package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/semmidev/litedump/internal/adapter/compressor"
	"github.com/semmidev/litedump/internal/adapter/database"
	"github.com/semmidev/litedump/internal/adapter/storage"
	"github.com/semmidev/litedump/internal/config"
	"github.com/semmidev/litedump/internal/domain"
	"github.com/semmidev/litedump/internal/infrastructure/executor"
	"github.com/semmidev/litedump/internal/infrastructure/logger"
	"github.com/semmidev/litedump/internal/usecase"
)

var ErrNoDatabases = errors.New("no enabled databases found")

type App struct {
	config        *config.Config
	logger        *logger.Logger
	localStorage  *storage.LocalStorage
	uploadTargets []domain.Storage
	backupJobs    []domain.BackupJob
	cleanupUC     *usecase.Cleanup
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return newApp(ctx, cfg, log)
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	log.Infof("Starting %s", cfg.App.Name)
	log.Infof("Found %d database(s) enabled", len(cfg.GetEnabledDatabases()))

	localStorage, err := storage.NewLocal(cfg.Backup.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}

	uploadTargets := initializeUploadTargets(ctx, cfg, log)

	backupJobs, err := initializeBackupJobs(cfg, localStorage, uploadTargets, log)
	if err != nil {
		return nil, err
	}

	cleanupUC := usecase.NewCleanup(
		localStorage,
		uploadTargets,
		log,
		cfg.Backup.RetentionDays,
	)

	return &App{
		config:        cfg,
		logger:        log,
		localStorage:  localStorage,
		uploadTargets: uploadTargets,
		backupJobs:    backupJobs,
		cleanupUC:     cleanupUC,
	}, nil
}

func initializeUploadTargets(ctx context.Context, cfg *config.Config, log *logger.Logger) []domain.Storage {
	var targets []domain.Storage

	for _, targetCfg := range cfg.GetEnabledUploadTargets() {
		var stor domain.Storage
		var err error

		switch targetCfg.Type {
		case "gdrive":
			stor, err = storage.NewGDrive(ctx, &targetCfg)
		case "s3":
			stor, err = storage.NewS3(ctx, &targetCfg)
		case "telegram":
			stor, err = storage.NewTelegram(&targetCfg)
		default:
			log.Warnf("Unknown upload target type: %s", targetCfg.Type)
			continue
		}

		if err != nil {
			log.Errorf("Failed to initialize %s target: %v", targetCfg.Type, err)
			continue
		}

		log.Infof("Upload to %s enabled", stor.Name())
		targets = append(targets, stor)
	}

	return targets
}

func initializeBackupJobs(
	cfg *config.Config,
	localStorage *storage.LocalStorage,
	uploadTargets []domain.Storage,
	log *logger.Logger,
) ([]domain.BackupJob, error) {
	shell := executor.NewShell()
	pipeline := executor.NewPipeline()

	var jobs []domain.BackupJob

	for _, dbCfg := range cfg.GetEnabledDatabases() {
		comp, err := compressor.New(dbCfg.Compressor)
		if err != nil {
			return nil, fmt.Errorf("database %s: %w", dbCfg.Name, err)
		}

		db := database.NewSqliteDatabase(&dbCfg, comp, shell, pipeline)

		backupUC := usecase.NewBackup(
			db,
			localStorage,
			uploadTargets,
			log.ForDatabase(dbCfg.Name),
		)

		jobs = append(jobs, domain.BackupJob{
			DatabaseName: dbCfg.Name,
			Database:     db,
			BackupUC:     backupUC,
		})

		log.Infof("Prepared backup for %s (%s mode, compressor %q)", dbCfg.Name, dbCfg.Mode, dbCfg.Compressor)
	}

	if len(jobs) == 0 {
		return nil, ErrNoDatabases
	}

	return jobs, nil
}

// Dump backs up the enabled databases one after another, or only the one
// called name when it is set. Every database is attempted; the failures are
// joined into the returned error.
func (a *App) Dump(ctx context.Context, name string) ([]*domain.Backup, error) {
	jobs, err := a.selectJobs(name)
	if err != nil {
		return nil, err
	}

	var backups []*domain.Backup
	var errs error

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return backups, errors.Join(errs, err)
		}

		a.logger.Infof("=== Backup for %s ===", job.DatabaseName)

		backup, err := job.BackupUC.Execute(ctx)
		if err != nil {
			a.logger.Errorf("Backup for %s failed: %v", job.DatabaseName, err)
			errs = errors.Join(errs, fmt.Errorf("%s: %w", job.DatabaseName, err))
			continue
		}

		backups = append(backups, backup)
	}

	if a.config.Backup.Cleanup && errs == nil {
		if err := a.Cleanup(ctx); err != nil {
			errs = errors.Join(errs, err)
		}
	}

	a.logger.Infof("Backup destinations: local + %d remote target(s)", len(a.uploadTargets))
	return backups, errs
}

func (a *App) selectJobs(name string) ([]domain.BackupJob, error) {
	if name == "" {
		return a.backupJobs, nil
	}

	for _, job := range a.backupJobs {
		if job.DatabaseName == name {
			return []domain.BackupJob{job}, nil
		}
	}

	return nil, fmt.Errorf("database %q is not configured or not enabled", name)
}

func (a *App) Cleanup(ctx context.Context) error {
	return a.cleanupUC.Execute(ctx)
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down application...")
	a.logger.Close()
}
