package usecase

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/semmidev/litedump/internal/domain"
)

var timestampPattern = regexp.MustCompile(`(\d{8})_(\d{6})`)

// Cleanup removes dumps that are older than the retention period.
type Cleanup struct {
	storages      []domain.Storage
	logger        Logger
	retentionDays int
	now           func() time.Time
}

func NewCleanup(
	localStorage domain.Storage,
	uploadTargets []domain.Storage,
	logger Logger,
	retentionDays int,
) *Cleanup {
	storages := append([]domain.Storage{localStorage}, uploadTargets...)

	return &Cleanup{
		storages:      storages,
		logger:        logger,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

func (uc *Cleanup) Execute(ctx context.Context) error {
	if uc.retentionDays == 0 {
		uc.logger.Infof("Retention disabled, skipping cleanup")
		return nil
	}

	uc.logger.Infof("Starting cleanup, retention: %d days", uc.retentionDays)

	cutoff := uc.now().AddDate(0, 0, -uc.retentionDays)

	var failed int
	for _, storage := range uc.storages {
		if err := uc.cleanupStorage(ctx, storage, cutoff); err != nil {
			uc.logger.Errorf("Cleanup failed for %s: %v", storage.Name(), err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("cleanup failed for %d of %d storage(s)", failed, len(uc.storages))
	}

	uc.logger.Infof("Cleanup completed")
	return nil
}

func (uc *Cleanup) cleanupStorage(ctx context.Context, storage domain.Storage, cutoff time.Time) error {
	files, err := storage.GetOldFiles(ctx, cutoff)
	if err != nil {
		uc.logger.Warnf("Could not query old files from %s, falling back to file names: %v", storage.Name(), err)

		files, err = uc.fallbackListFiles(ctx, storage, cutoff)
		if err != nil {
			return err
		}
	}

	deleted := 0
	for _, filename := range files {
		uc.logger.Infof("Deleting old backup from %s: %s", storage.Name(), filename)

		if err := storage.Delete(ctx, filename); err != nil {
			uc.logger.Errorf("Failed to delete %s from %s: %v", filename, storage.Name(), err)
			continue
		}
		deleted++
	}

	uc.logger.Infof("Deleted %d old backup(s) from %s", deleted, storage.Name())
	return nil
}

func (uc *Cleanup) fallbackListFiles(ctx context.Context, storage domain.Storage, cutoff time.Time) ([]string, error) {
	files, err := storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	oldFiles := make([]string, 0)
	for _, filename := range files {
		timestamp, err := extractTimestamp(filename)
		if err != nil {
			uc.logger.Warnf("Could not parse timestamp from %s: %v", filename, err)
			continue
		}

		if timestamp.Before(cutoff) {
			oldFiles = append(oldFiles, filename)
		}
	}

	return oldFiles, nil
}

// extractTimestamp reads the creation time embedded in a dump file name,
// e.g. app_sqlite_20240102_150405.sql.gz.
func extractTimestamp(filename string) (time.Time, error) {
	matches := timestampPattern.FindStringSubmatch(filename)
	if len(matches) < 3 {
		return time.Time{}, fmt.Errorf("invalid filename format: no timestamp found")
	}

	return time.ParseInLocation(timestampLayout, matches[1]+"_"+matches[2], time.Local)
}
