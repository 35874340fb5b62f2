// Package dismissal records which updates a user has already acknowledged.
//
// Records live in a kv.KV under deterministic keys so that a repository's
// records can be found by prefix. Every operation fails open: a record that
// cannot be read counts as "not dismissed", and a write that cannot be
// persisted is logged and dropped.
package dismissal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/whatsnew/internal/core/kv"
	"github.com/hay-kot/whatsnew/internal/core/logging"
)

const (
	// KeyPrefix starts every dismissal key.
	KeyPrefix = "whats-new-dismissed"
	// RetentionWindow is how long a dismissal is kept before it may be evicted.
	RetentionWindow = 30 * 24 * time.Hour
)

// Record is the stored value for one dismissed update.
type Record struct {
	Dismissed bool   `json:"dismissed"`
	Timestamp int64  `json:"timestamp"`
	UpdateID  string `json:"updateId"`
}

// DismissedAt converts the millisecond timestamp to a time.Time.
func (r Record) DismissedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Entry is a stored record as seen when listing a repository's dismissals.
type Entry struct {
	Key      string
	UpdateID string
	Record   Record
	// Valid is false when the stored value could not be parsed.
	Valid bool
}

// StorageKey returns the key a dismissal for the pair is stored under.
func StorageKey(repositoryID, updateID string) string {
	return KeyPrefix + "-" + repositoryID + "-" + updateID
}

func repositoryPrefix(repositoryID string) string {
	return KeyPrefix + "-" + repositoryID + "-"
}

// Store reads and writes dismissal records.
type Store struct {
	kv  kv.KV
	now func() time.Time
	log zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a Store over the given key-value store.
func New(store kv.KV, opts ...Option) *Store {
	s := &Store{
		kv:  store,
		now: time.Now,
		log: logging.Component("dismissal"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsDismissed reports whether a valid dismissal exists for the pair. Missing,
// unreadable and mismatched records all count as not dismissed.
func (s *Store) IsDismissed(ctx context.Context, repositoryID, updateID string) bool {
	ctx = logging.WithUpdateID(logging.WithRepository(ctx, repositoryID), updateID)

	var rec Record
	err := s.kv.Get(ctx, StorageKey(repositoryID, updateID), &rec)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return false
	case err != nil:
		s.log.Warn().Ctx(ctx).Err(err).Msg("failed to read dismissal state")
		return false
	}

	return rec.Dismissed && rec.UpdateID == updateID
}

// MarkDismissed stores a dismissal for the pair stamped with the current time,
// replacing any earlier record. Persistence failures are logged, not returned.
func (s *Store) MarkDismissed(ctx context.Context, repositoryID, updateID string) {
	ctx = logging.WithUpdateID(logging.WithRepository(ctx, repositoryID), updateID)

	if err := s.Mark(ctx, repositoryID, updateID); err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("failed to save dismissal state")
		return
	}

	s.log.Debug().Ctx(ctx).Msg("update dismissed")
}

// Mark is MarkDismissed with the persistence error returned to the caller.
func (s *Store) Mark(ctx context.Context, repositoryID, updateID string) error {
	rec := Record{
		Dismissed: true,
		Timestamp: s.now().UnixMilli(),
		UpdateID:  updateID,
	}

	if err := s.kv.Set(ctx, StorageKey(repositoryID, updateID), rec); err != nil {
		return fmt.Errorf("save dismissal: %w", err)
	}
	return nil
}

// CleanupOldDismissals evicts the repository's records that are older than
// RetentionWindow or that cannot be parsed. Failures are logged.
func (s *Store) CleanupOldDismissals(ctx context.Context, repositoryID string) {
	ctx = logging.WithRepository(ctx, repositoryID)

	removed, err := s.Prune(ctx, repositoryID)
	if err != nil {
		s.log.Warn().Ctx(ctx).Err(err).Msg("failed to cleanup old dismissals")
	}
	if removed > 0 {
		s.log.Debug().Ctx(ctx).Int("removed", removed).Msg("evicted old dismissals")
	}
}

// Prune is CleanupOldDismissals with the outcome reported to the caller. It
// keeps going past individual failures and returns the first one seen.
func (s *Store) Prune(ctx context.Context, repositoryID string) (int, error) {
	keys, err := s.keysFor(ctx, repositoryID)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().UnixMilli() - RetentionWindow.Milliseconds()

	var (
		removed  int
		firstErr error
	)
	for _, key := range keys {
		entry, err := s.kv.GetRaw(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			firstErr = keepFirst(firstErr, err)
			continue
		}

		var rec Record
		if err := json.Unmarshal(entry.Value, &rec); err == nil && rec.Timestamp >= cutoff {
			continue
		}

		if err := s.kv.Delete(ctx, key); err != nil {
			firstErr = keepFirst(firstErr, err)
			continue
		}
		removed++
	}

	return removed, firstErr
}

// List returns the repository's stored records ordered by key. Records that
// cannot be parsed are included with Valid set to false.
func (s *Store) List(ctx context.Context, repositoryID string) ([]Entry, error) {
	keys, err := s.keysFor(ctx, repositoryID)
	if err != nil {
		return nil, err
	}

	prefix := repositoryPrefix(repositoryID)
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		raw, err := s.kv.GetRaw(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		e := Entry{Key: key, UpdateID: strings.TrimPrefix(key, prefix)}
		if err := json.Unmarshal(raw.Value, &e.Record); err == nil {
			e.Valid = true
			if e.Record.UpdateID != "" {
				e.UpdateID = e.Record.UpdateID
			}
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Forget deletes the dismissal for a single pair so the update shows again.
func (s *Store) Forget(ctx context.Context, repositoryID, updateID string) error {
	if err := s.kv.Delete(ctx, StorageKey(repositoryID, updateID)); err != nil {
		return fmt.Errorf("forget dismissal: %w", err)
	}
	return nil
}

// Age returns how long ago the record was written.
func (s *Store) Age(rec Record) time.Duration {
	return s.now().Sub(rec.DismissedAt())
}

func (s *Store) keysFor(ctx context.Context, repositoryID string) ([]string, error) {
	all, err := s.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	prefix := repositoryPrefix(repositoryID)
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func keepFirst(first, err error) error {
	if first != nil {
		return first
	}
	return err
}
