package stores

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hay-kot/whatsnew/internal/core/kv"
	"github.com/hay-kot/whatsnew/internal/data/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverFromCorruption_Success(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, db.FileName)

	require.NoError(t, os.WriteFile(dbPath, []byte("corrupted data"), 0o644))
	walPath := dbPath + "-wal"
	shmPath := dbPath + "-shm"
	require.NoError(t, os.WriteFile(walPath, []byte("wal data"), 0o644))
	require.NoError(t, os.WriteFile(shmPath, []byte("shm data"), 0o644))

	require.NoError(t, RecoverFromCorruption(tempDir))

	allFiles, err := filepath.Glob(filepath.Join(tempDir, db.FileName+".corrupt.*"))
	require.NoError(t, err)

	var dbBackups, walBackups, shmBackups []string
	for _, f := range allFiles {
		switch {
		case strings.HasSuffix(f, "-wal"):
			walBackups = append(walBackups, f)
		case strings.HasSuffix(f, "-shm"):
			shmBackups = append(shmBackups, f)
		default:
			dbBackups = append(dbBackups, f)
		}
	}

	assert.Len(t, dbBackups, 1, "db backups: %v", dbBackups)
	assert.Len(t, walBackups, 1, "wal backups: %v", walBackups)
	assert.Len(t, shmBackups, 1, "shm backups: %v", shmBackups)

	for _, p := range []string{dbPath, walPath, shmPath} {
		_, err = os.Stat(p)
		assert.True(t, os.IsNotExist(err), "%s should be moved aside", filepath.Base(p))
	}
}

func TestRecoverFromCorruption_MissingFile(t *testing.T) {
	tempDir := t.TempDir()

	assert.NoError(t, RecoverFromCorruption(tempDir))

	files, _ := filepath.Glob(filepath.Join(tempDir, "*.corrupt.*"))
	assert.Empty(t, files)
}

func TestRecoverFromCorruption_BackupNaming(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("corrupted"), 0o644))

	require.NoError(t, RecoverFromCorruption(tempDir))

	files, _ := filepath.Glob(filepath.Join(tempDir, db.FileName+".corrupt.*"))
	require.Len(t, files, 1)

	filename := filepath.Base(files[0])
	assert.True(t, strings.HasPrefix(filename, db.FileName+".corrupt."))
	assert.Len(t, filename, len(db.FileName+".corrupt.20060102-150405"))
}

func TestRecoverFromCorruption_ThenOpen(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, db.FileName)
	require.NoError(t, os.WriteFile(dbPath, []byte("this is not a sqlite file at all, just junk bytes"), 0o644))

	require.NoError(t, RecoverFromCorruption(tempDir))

	database, err := db.Open(tempDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	n, err := NewKVStore(database).Len(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"no rows", sql.ErrNoRows, true},
		{"wrapped no rows", fmt.Errorf("get: %w", sql.ErrNoRows), true},
		{"kv not found", fmt.Errorf("kv get: %w", kv.ErrNotFound), true},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFoundError(tt.err))
		})
	}
}

func TestIsCorruptionError(t *testing.T) {
	assert.False(t, IsCorruptionError(nil))
	assert.False(t, IsCorruptionError(errors.New("boom")))
	assert.True(t, IsCorruptionError(errors.New("file is not a database (26)")))
	assert.True(t, IsCorruptionError(errors.New("database disk image is malformed")))
}
