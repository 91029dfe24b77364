package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seminarhub/core/internal/infrastructure/config"
)

func TestOpenRequiresExistingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(config.StorageConfig{File: filepath.Join(dir, "missing.json")})
	assert.Error(t, err)

	_, err = Open(config.StorageConfig{File: dir})
	assert.Error(t, err, "directories are not data files")

	path := filepath.Join(dir, "seminars.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"seminars": []}`), 0o644))

	f, err := Open(config.StorageConfig{File: path})
	require.NoError(t, err)
	assert.Equal(t, path, f.Path())
}

func TestExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seminars.json")
	f := New(config.StorageConfig{File: path})

	ok, err := f.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.WriteAtomic([]byte("{}")))

	ok, err = f.Exists()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWriteAtomicReplacesContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seminars.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	f := New(config.StorageConfig{File: path})
	require.NoError(t, f.WriteAtomic([]byte("new")))

	data, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteAtomicMissingDirectory(t *testing.T) {
	f := New(config.StorageConfig{File: filepath.Join(t.TempDir(), "nope", "seminars.json")})
	assert.Error(t, f.WriteAtomic([]byte("{}")))
}

func TestGetFileInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seminars.json")
	f := New(config.StorageConfig{File: path})

	info := f.GetFileInfo()
	assert.Contains(t, info, "error")

	require.NoError(t, f.WriteAtomic([]byte("12345")))
	info = f.GetFileInfo()
	assert.Equal(t, int64(5), info["size_bytes"])
	assert.NoError(t, f.Ping())
}
