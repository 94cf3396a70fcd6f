package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/semmidev/litedump/internal/domain"
)

const timestampLayout = "20060102_150405"

type Backup struct {
	db            domain.Database
	localStorage  LocalStorage
	uploadTargets []domain.Storage
	logger        Logger
	tempDir       string
	now           func() time.Time
}

// LocalStorage is the storage every dump is kept in before it is offered to
// the remote targets.
type LocalStorage interface {
	domain.Storage
	GetPath(filename string) string
}

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

func NewBackup(
	db domain.Database,
	localStorage LocalStorage,
	uploadTargets []domain.Storage,
	logger Logger,
) *Backup {
	return &Backup{
		db:            db,
		localStorage:  localStorage,
		uploadTargets: uploadTargets,
		logger:        logger,
		tempDir:       os.TempDir(),
		now:           time.Now,
	}
}

// Execute dumps the database to a temporary file, stores it locally and then
// offers it to every remote target. Remote failures are logged only.
func (uc *Backup) Execute(ctx context.Context) (*domain.Backup, error) {
	start := uc.now()
	dbName := uc.db.GetName()
	uc.logger.Infof("[%s] Starting backup...", dbName)

	if err := uc.db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}

	filename := uc.generateFilename(start)
	tempPath := filepath.Join(uc.tempDir, filename)

	uc.logger.Infof("[%s] Dumping to: %s", dbName, tempPath)
	defer os.Remove(tempPath)

	if err := uc.db.Backup(ctx, tempPath); err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}

	fileInfo, err := os.Stat(tempPath)
	if err != nil {
		return nil, fmt.Errorf("stat backup file: %w", err)
	}

	uc.logger.Infof("[%s] Dump created, size: %.2f MB", dbName, float64(fileInfo.Size())/(1024*1024))

	if err := uc.localStorage.Upload(ctx, tempPath, filename); err != nil {
		return nil, fmt.Errorf("local upload: %w", err)
	}
	uc.logger.Infof("[%s] Stored in %s storage", dbName, uc.localStorage.Name())

	uc.uploadToTargets(ctx, tempPath, filename)

	uc.logger.Infof("[%s] Backup completed in %s: %s", dbName, uc.now().Sub(start).Round(time.Millisecond), filename)

	return &domain.Backup{
		Filename:     filename,
		FilePath:     uc.localStorage.GetPath(filename),
		Size:         fileInfo.Size(),
		Compressed:   filepath.Ext(filename) != ".sql",
		CreatedAt:    start,
		DatabaseName: dbName,
	}, nil
}

func (uc *Backup) generateFilename(at time.Time) string {
	return fmt.Sprintf("%s_%s_%s%s", uc.db.GetName(), uc.db.GetType(), at.Format(timestampLayout), uc.db.Extension())
}

func (uc *Backup) uploadToTargets(ctx context.Context, filePath, filename string) {
	dbName := uc.db.GetName()

	for _, target := range uc.uploadTargets {
		uc.logger.Infof("[%s] Uploading to %s...", dbName, target.Name())
		if err := target.Upload(ctx, filePath, filename); err != nil {
			uc.logger.Errorf("[%s] Failed to upload to %s: %v", dbName, target.Name(), err)
			continue
		}
		uc.logger.Infof("[%s] Successfully uploaded to %s", dbName, target.Name())
	}
}
