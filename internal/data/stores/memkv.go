package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/hay-kot/whatsnew/internal/core/kv"
	mapkv "github.com/hay-kot/whatsnew/pkg/kv"
)

// MemoryKVStore implements kv.KV in process memory. Values live only as long
// as the process, which makes it the session-only fallback when the database
// cannot be opened.
type MemoryKVStore struct {
	data *mapkv.Store[string, kv.Entry]
	now  func() time.Time
}

var _ kv.KV = (*MemoryKVStore)(nil)

// NewMemoryKVStore creates an empty in-memory KV store.
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{
		data: mapkv.New[string, kv.Entry](),
		now:  time.Now,
	}
}

func (s *MemoryKVStore) Get(_ context.Context, key string, dest any) error {
	entry, ok := s.data.Get(key)
	if !ok {
		return fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

func (s *MemoryKVStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}
	return s.SetRaw(ctx, key, data)
}

// SetRaw stores bytes as-is without validating them as JSON.
func (s *MemoryKVStore) SetRaw(_ context.Context, key string, data []byte) error {
	now := s.now()
	value := slices.Clone(data)
	s.data.Update(key, func(prev kv.Entry, ok bool) kv.Entry {
		created := now
		if ok {
			created = prev.CreatedAt
		}
		return kv.Entry{Key: key, Value: value, CreatedAt: created, UpdatedAt: now}
	})
	return nil
}

func (s *MemoryKVStore) Delete(_ context.Context, key string) error {
	s.data.Delete(key)
	return nil
}

func (s *MemoryKVStore) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.data.Get(key)
	return ok, nil
}

// ListKeys returns all keys in sorted order.
func (s *MemoryKVStore) ListKeys(_ context.Context) ([]string, error) {
	keys := s.data.Keys()
	slices.Sort(keys)
	return keys, nil
}

func (s *MemoryKVStore) Len(_ context.Context) (int, error) {
	return s.data.Len(), nil
}

func (s *MemoryKVStore) GetRaw(_ context.Context, key string) (kv.Entry, error) {
	entry, ok := s.data.Get(key)
	if !ok {
		return kv.Entry{}, fmt.Errorf("kv get raw %q: %w", key, kv.ErrNotFound)
	}
	return entry, nil
}
