package kv

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSet(t *testing.T) {
	s := New[string, int]()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("a", 1)
	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestStore_Update(t *testing.T) {
	s := New[string, int]()

	got := s.Update("n", func(cur int, ok bool) int {
		assert.False(t, ok)
		return cur + 1
	})
	assert.Equal(t, 1, got)

	got = s.Update("n", func(cur int, ok bool) int {
		assert.True(t, ok)
		return cur + 10
	})
	assert.Equal(t, 11, got)
}

func TestStore_Delete(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	assert.Equal(t, 0, s.Len())
}

func TestStore_Keys(t *testing.T) {
	s := New[string, int]()
	s.Set("b", 2)
	s.Set("a", 1)

	keys := s.Keys()
	slices.Sort(keys)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestStore_ConcurrentUpdate(t *testing.T) {
	s := New[string, int]()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("count", func(cur int, _ bool) int { return cur + 1 })
		}()
	}
	wg.Wait()

	v, _ := s.Get("count")
	assert.Equal(t, 50, v)
}
