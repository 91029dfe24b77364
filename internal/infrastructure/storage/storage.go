package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/seminarhub/core/internal/infrastructure/config"
)

const filePerm = 0o644

// DataFile is a handle on the JSON document backing the seminar store
type DataFile struct {
	path string
}

// New creates a handle for the configured data file. The file itself is
// not touched.
func New(cfg config.StorageConfig) *DataFile {
	return &DataFile{path: cfg.File}
}

// Open creates a handle and checks that the file exists and is readable
func Open(cfg config.StorageConfig) (*DataFile, error) {
	f := New(cfg)
	if err := f.HealthCheck(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the data file path
func (f *DataFile) Path() string {
	return f.path
}

// Exists reports whether the data file is present
func (f *DataFile) Exists() (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Read returns the full contents of the data file
func (f *DataFile) Read() ([]byte, error) {
	return os.ReadFile(f.path)
}

// WriteAtomic replaces the data file with data. The bytes are written to
// a temporary file in the same directory, synced, then renamed over the
// target so readers never observe a partial document.
func (f *DataFile) WriteAtomic(data []byte) error {
	dir := filepath.Dir(f.path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(f.path), uuid.NewString()))

	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace data file: %w", err)
	}

	return nil
}

// Ping checks that the data file can be stat'ed
func (f *DataFile) Ping() error {
	_, err := os.Stat(f.path)
	return err
}

// HealthCheck checks that the data file is a readable regular file
func (f *DataFile) HealthCheck() error {
	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("data file health check failed: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("data file health check failed: %s is not a regular file", f.path)
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("data file health check failed: %w", err)
	}
	return fh.Close()
}

// GetFileInfo returns data file statistics for the detailed health check
func (f *DataFile) GetFileInfo() map[string]interface{} {
	info, err := os.Stat(f.path)
	if err != nil {
		return map[string]interface{}{
			"path":  f.path,
			"error": err.Error(),
		}
	}

	return map[string]interface{}{
		"path":       f.path,
		"size_bytes": info.Size(),
		"mode":       info.Mode().String(),
		"modified":   info.ModTime().UTC(),
	}
}
