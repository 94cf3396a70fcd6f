package domain

import (
	"context"
	"time"
)

type Backup struct {
	Filename     string
	FilePath     string
	Size         int64
	Compressed   bool
	CreatedAt    time.Time
	DatabaseName string
}

type BackupJob struct {
	DatabaseName string
	Database     Database
	BackupUC     BackupExecutor
}

type BackupExecutor interface {
	Execute(ctx context.Context) (*Backup, error)
}
