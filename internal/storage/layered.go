package storage

import "context"

// LayeredStore fronts a persistent store with a memory store.
// Writes go to both layers; reads promote persistent hits into memory.
type LayeredStore struct {
	memory     *MemoryStore
	persistent Store
}

// NewLayeredStore creates a new layered store
func NewLayeredStore(memory *MemoryStore, persistent Store) *LayeredStore {
	return &LayeredStore{
		memory:     memory,
		persistent: persistent,
	}
}

// Get checks memory first, then the persistent layer
func (s *LayeredStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, found, _ := s.memory.Get(ctx, key); found {
		return val, true, nil
	}

	val, found, err := s.persistent.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	// Promote to memory
	_ = s.memory.Set(ctx, key, val)
	return val, true, nil
}

// Set stores the value in both layers, persistent first
func (s *LayeredStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.persistent.Set(ctx, key, value); err != nil {
		return err
	}
	return s.memory.Set(ctx, key, value)
}

// Delete removes keys from both layers
func (s *LayeredStore) Delete(ctx context.Context, keys ...string) error {
	_ = s.memory.Delete(ctx, keys...)
	return s.persistent.Delete(ctx, keys...)
}

// Keys lists keys from the persistent layer, which holds every entry
func (s *LayeredStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.persistent.Keys(ctx, prefix)
}

// Close closes the persistent layer
func (s *LayeredStore) Close() error {
	s.memory.Clear()
	return s.persistent.Close()
}
