package storage

import (
	"context"
	"sort"
	"strings"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local store. Entries never expire on their own;
// TTL policy belongs to the callers.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a value from the store
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, found := s.cache.Get(key); found {
		return cloneBytes(val.([]byte)), true, nil
	}
	return nil, false, nil
}

// Set stores a copy of value
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	s.cache.Set(key, cloneBytes(value), gocache.NoExpiration)
	return nil
}

// Delete removes keys from the store
func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		s.cache.Delete(key)
	}
	return nil
}

// Keys lists keys with the given prefix in sorted order
func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear removes every entry
func (s *MemoryStore) Clear() {
	s.cache.Flush()
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
