// Package storage provides the persisted key-value stores behind the verdict
// cache, user settings and usage stats.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// Store is an opaque key-value store. Individual key writes are atomic;
// there is no cross-key transaction.
type Store interface {
	// Get returns the value for key, or found=false when absent
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key, overwriting any existing value
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the given keys; missing keys are not an error
	Delete(ctx context.Context, keys ...string) error

	// Keys lists every key starting with prefix
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases underlying resources
	Close() error
}

// ErrUnknownBackend is returned by Open for an unsupported backend name
var ErrUnknownBackend = errors.New("unknown storage backend")

// Open creates a store for the given backend.
// path is a database file for sqlite and a directory for disk.
func Open(ctx context.Context, backend, path string) (Store, error) {
	switch backend {
	case "sqlite", "":
		return OpenSQLite(ctx, path)
	case "disk":
		return NewLayeredStore(NewMemoryStore(), NewDiskStore(path)), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: sqlite, disk, memory)", ErrUnknownBackend, backend)
	}
}

// DefaultPath returns the default location for a backend inside dir
func DefaultPath(backend, dir string) string {
	if backend == "disk" {
		return filepath.Join(dir, "store")
	}
	return filepath.Join(dir, "focusonly.db")
}
