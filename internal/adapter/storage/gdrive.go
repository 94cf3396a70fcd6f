package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/semmidev/litedump/internal/config"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

type GDriveStorage struct {
	service  *drive.Service
	folderID string
}

func NewGDrive(ctx context.Context, cfg *config.UploadTarget) (*GDriveStorage, error) {
	service, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GDriveStorage{
		service:  service,
		folderID: cfg.FolderID,
	}, nil
}

func (g *GDriveStorage) Name() string {
	return "gdrive"
}

func (g *GDriveStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	metadata := &drive.File{
		Name:    remoteName,
		Parents: []string{g.folderID},
	}

	if _, err := g.service.Files.Create(metadata).Media(file).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to upload to gdrive: %w", err)
	}

	return nil
}

func (g *GDriveStorage) List(ctx context.Context) ([]string, error) {
	files, err := g.find(ctx, folderQuery(g.folderID))
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return fileNames(files), nil
}

func (g *GDriveStorage) Delete(ctx context.Context, remoteName string) error {
	query := fmt.Sprintf("%s and name='%s'", folderQuery(g.folderID), escapeQuery(remoteName))

	files, err := g.find(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to find file: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("file not found: %s", remoteName)
	}

	// Uploads never overwrite, so a name can appear more than once.
	for _, file := range files {
		if err := g.service.Files.Delete(file.Id).Context(ctx).Do(); err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}
	}

	return nil
}

func (g *GDriveStorage) GetOldFiles(ctx context.Context, cutoffTime time.Time) ([]string, error) {
	query := fmt.Sprintf("%s and createdTime < '%s'", folderQuery(g.folderID), cutoffTime.UTC().Format(time.RFC3339))

	files, err := g.find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list old files: %w", err)
	}

	return fileNames(files), nil
}

func (g *GDriveStorage) find(ctx context.Context, query string) ([]*drive.File, error) {
	var files []*drive.File

	err := g.service.Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name)").
		Pages(ctx, func(page *drive.FileList) error {
			files = append(files, page.Files...)
			return nil
		})

	return files, err
}

func folderQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))
}

// escapeQuery escapes a value for a single-quoted Drive query string.
func escapeQuery(value string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
}

func fileNames(files []*drive.File) []string {
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	return names
}
