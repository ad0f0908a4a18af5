// Package cache stores verdicts per (URL, profile) with a fixed TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomaslau/focusonly/internal/model"
	"github.com/tomaslau/focusonly/internal/storage"
)

// Store is the verdict cache. Expiry is checked on read; there is no sweep.
type Store struct {
	kv  storage.Store
	ttl time.Duration
	now func() time.Time
	log zerolog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithTTL overrides the default 7-day TTL
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithClock overrides the time source (tests)
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger attaches a logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates a verdict cache on top of kv
func NewStore(kv storage.Store, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		ttl: model.CacheTTL,
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the cached verdict, or nil when absent or expired.
// Expired and unreadable entries are purged.
func (s *Store) Get(ctx context.Context, url string, profile model.Profile) (*model.Verdict, error) {
	key := Key(url, profile)

	data, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	if !found {
		return nil, nil
	}

	var entry model.CachedVerdict
	if err := json.Unmarshal(data, &entry); err != nil || !entry.Verdict.Verdict.Valid() {
		s.log.Warn().Err(err).Str("key", key).Msg("dropping corrupt cache entry")
		_ = s.kv.Delete(ctx, key)
		return nil, nil
	}

	age := time.Duration(s.now().UnixMilli()-entry.Timestamp) * time.Millisecond
	if age >= s.ttl {
		s.log.Debug().Str("url", url).Dur("age", age).Msg("cache entry expired")
		if err := s.kv.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("purge expired entry: %w", err)
		}
		return nil, nil
	}

	return &entry.Verdict, nil
}

// Put stores verdict with the current timestamp, overwriting any entry
func (s *Store) Put(ctx context.Context, url string, profile model.Profile, verdict model.Verdict) error {
	entry := model.CachedVerdict{
		Verdict:   verdict,
		Timestamp: s.now().UnixMilli(),
		URL:       url,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := s.kv.Set(ctx, Key(url, profile), data); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// ClearAll removes every verdict entry and leaves other keys alone.
// It returns the number of entries removed.
func (s *Store) ClearAll(ctx context.Context) (int, error) {
	keys, err := s.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("list cache keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return len(keys), nil
}
