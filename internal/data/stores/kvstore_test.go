package stores

import (
	"context"
	"testing"
	"time"

	"github.com/hay-kot/whatsnew/internal/core/kv"
	"github.com/hay-kot/whatsnew/internal/data/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawKV is a kv.KV that can also store unvalidated bytes.
type rawKV interface {
	kv.KV
	SetRaw(ctx context.Context, key string, data []byte) error
}

func newTestKVStore(t *testing.T) *KVStore {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return NewKVStore(database)
}

// eachStore runs fn against both KV implementations.
func eachStore(t *testing.T, fn func(t *testing.T, store rawKV)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestKVStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryKVStore()) })
}

func TestKVStore_SetAndGet(t *testing.T) {
	eachStore(t, func(t *testing.T, store rawKV) {
		ctx := context.Background()

		type payload struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}

		require.NoError(t, store.Set(ctx, "test-key", payload{Name: "hello", Value: 42}))

		var got payload
		require.NoError(t, store.Get(ctx, "test-key", &got))
		assert.Equal(t, "hello", got.Name)
		assert.Equal(t, 42, got.Value)
	})
}

func TestKVStore_GetNotFound(t *testing.T) {
	eachStore(t, func(t *testing.T, store rawKV) {
		var v string
		err := store.Get(context.Background(), "nonexistent", &v)
		require.ErrorIs(t, err, kv.ErrNotFound)
		assert.True(t, IsNotFoundError(err))
	})
}

func TestKVStore_SetOverwrite(t *testing.T) {
	eachStore(t, func(t *testing.T, store rawKV) {
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "key", "first"))
		require.NoError(t, store.Set(ctx, "key", "second"))

		var got string
		require.NoError(t, store.Get(ctx, "key", &got))
		assert.Equal(t, "second", got)

		n, err := store.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestKVStore_Delete(t *testing.T) {
	eachStore(t, func(t *testing.T, store rawKV) {
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "key", "value"))
		require.NoError(t, store.Delete(ctx, "key"))

		has, err := store.Has(ctx, "key")
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, store.Delete(ctx, "key"), "deleting a missing key is not an error")
	})
}

func TestKVStore_Has(t *testing.T) {
	eachStore(t, func(t *testing.T, store rawKV) {
		ctx := context.Background()

		has, err := store.Has(ctx, "key")
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, store.Set(ctx, "key", true))

		has, err = store.Has(ctx, "key")
		require.NoError(t, err)
		assert.True(t, has)
	})
}

func TestKVStore_ListKeys(t *testing.T) {
	eachStore(t, func(t *testing.T, store rawKV) {
		ctx := context.Background()

		keys, err := store.ListKeys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)

		require.NoError(t, store.Set(ctx, "charlie", 3))
		require.NoError(t, store.Set(ctx, "alpha", 1))
		require.NoError(t, store.Set(ctx, "bravo", 2))

		keys, err = store.ListKeys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "bravo", "charlie"}, keys)

		n, err := store.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}

func TestKVStore_GetRaw(t *testing.T) {
	eachStore(t, func(t *testing.T, store rawKV) {
		ctx := context.Background()
		before := time.Now().Add(-time.Second)

		require.NoError(t, store.Set(ctx, "key", map[string]int{"a": 1}))

		entry, err := store.GetRaw(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, "key", entry.Key)
		assert.JSONEq(t, `{"a":1}`, string(entry.Value))
		assert.True(t, entry.CreatedAt.After(before))
		assert.False(t, entry.UpdatedAt.Before(entry.CreatedAt))

		_, err = store.GetRaw(ctx, "missing")
		assert.ErrorIs(t, err, kv.ErrNotFound)
	})
}

func TestKVStore_SetRawKeepsInvalidJSON(t *testing.T) {
	eachStore(t, func(t *testing.T, store rawKV) {
		ctx := context.Background()

		require.NoError(t, store.SetRaw(ctx, "broken", []byte("invalid-json")))

		entry, err := store.GetRaw(ctx, "broken")
		require.NoError(t, err)
		assert.Equal(t, "invalid-json", string(entry.Value))

		var v map[string]any
		err = store.Get(ctx, "broken", &v)
		require.Error(t, err)
		assert.NotErrorIs(t, err, kv.ErrNotFound)
	})
}

func TestKVStore_OverwriteKeepsCreatedAt(t *testing.T) {
	eachStore(t, func(t *testing.T, store rawKV) {
		ctx := context.Background()

		require.NoError(t, store.Set(ctx, "key", 1))
		first, err := store.GetRaw(ctx, "key")
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, "key", 2))
		second, err := store.GetRaw(ctx, "key")
		require.NoError(t, err)

		assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
		assert.JSONEq(t, "2", string(second.Value))
	})
}

func TestKVStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	require.NoError(t, NewKVStore(first).Set(ctx, "key", "kept"))
	require.NoError(t, first.Close())

	second, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	var got string
	require.NoError(t, NewKVStore(second).Get(ctx, "key", &got))
	assert.Equal(t, "kept", got)
}
