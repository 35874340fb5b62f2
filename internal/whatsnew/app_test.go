package whatsnew

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/whatsnew/internal/core/config"
	"github.com/hay-kot/whatsnew/internal/data/db"
	"github.com/hay-kot/whatsnew/internal/data/stores"
	"github.com/hay-kot/whatsnew/pkg/executil"
)

func testConfig(t *testing.T, dataDir string) *config.Config {
	t.Helper()
	cfg, err := config.Load("", dataDir)
	require.NoError(t, err)
	return cfg
}

func TestOpen_PersistentStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	app, err := Open(ctx, testConfig(t, dir), Options{UserAgent: "whatsnew/test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.False(t, app.Ephemeral)
	require.NotNil(t, app.DB)
	assert.IsType(t, &stores.KVStore{}, app.KV)
	assert.IsType(t, &executil.RealExecutor{}, app.Opener.Exec)
	assert.FileExists(t, filepath.Join(dir, db.FileName))

	app.Dismissals.MarkDismissed(ctx, "demo", "u1")
	assert.True(t, app.Dismissals.IsDismissed(ctx, "demo", "u1"))
}

func TestOpen_RecoversCorruptDatabase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, db.FileName), []byte("definitely not sqlite, just junk bytes for the header"), 0o644))

	app, err := Open(context.Background(), testConfig(t, dir), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.False(t, app.Ephemeral)

	matches, err := filepath.Glob(filepath.Join(dir, db.FileName+".corrupt.*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestOpen_FallsBackToMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// A data dir nested under a regular file cannot be created.
	app, err := Open(context.Background(), testConfig(t, filepath.Join(blocker, "data")), Options{})
	require.NoError(t, err)

	assert.True(t, app.Ephemeral)
	assert.Nil(t, app.DB)
	assert.IsType(t, &stores.MemoryKVStore{}, app.KV)
	assert.NoError(t, app.Close())
}

func TestOpen_InvalidBaseURL(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.API.BaseURL = "ftp://example.com"

	_, err := Open(context.Background(), cfg, Options{})
	assert.Error(t, err)
}
