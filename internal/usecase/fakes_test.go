package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"time"
)

type fakeDatabase struct {
	name      string
	ext       string
	content   string
	pingErr   error
	backupErr error
	outputs   []string
}

func (f *fakeDatabase) Backup(ctx context.Context, outputPath string) error {
	f.outputs = append(f.outputs, outputPath)
	if f.backupErr != nil {
		return f.backupErr
	}
	return os.WriteFile(outputPath, []byte(f.content), 0644)
}

func (f *fakeDatabase) GetName() string   { return f.name }
func (f *fakeDatabase) GetType() string   { return "sqlite" }
func (f *fakeDatabase) Extension() string { return f.ext }

func (f *fakeDatabase) Ping(ctx context.Context) error {
	return f.pingErr
}

type fakeStorage struct {
	name      string
	dir       string
	files     map[string]string
	modTimes  map[string]time.Time
	uploadErr error
	oldErr    error
	deleteErr error
	deleted   []string
}

func newFakeStorage(name string) *fakeStorage {
	return &fakeStorage{
		name:     name,
		dir:      "/backups/" + name,
		files:    map[string]string{},
		modTimes: map[string]time.Time{},
	}
}

func (f *fakeStorage) Name() string { return f.name }

func (f *fakeStorage) Upload(ctx context.Context, localPath string, remoteName string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	content, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.files[remoteName] = string(content)
	return nil
}

func (f *fakeStorage) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (f *fakeStorage) Delete(ctx context.Context, remoteName string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.files[remoteName]; !ok {
		return errors.New("not found")
	}
	delete(f.files, remoteName)
	f.deleted = append(f.deleted, remoteName)
	return nil
}

func (f *fakeStorage) GetOldFiles(ctx context.Context, cutoffTime time.Time) ([]string, error) {
	if f.oldErr != nil {
		return nil, f.oldErr
	}
	var old []string
	for name, modified := range f.modTimes {
		if modified.Before(cutoffTime) {
			old = append(old, name)
		}
	}
	slices.Sort(old)
	return old, nil
}

func (f *fakeStorage) GetPath(filename string) string {
	return filepath.Join(f.dir, filename)
}
