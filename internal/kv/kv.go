// Package kv stores opaque values under string keys.
//
// Three backends are available:
//   - file: one file per key inside a data directory, replaced atomically
//   - sqlite: a single kv table in <data_dir>/tasks.db
//   - memory: process-local map, used by tests and the memory backend
package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultDBFile is the SQLite database file name inside the data directory.
const DefaultDBFile = "tasks.db"

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("kv: store closed")
	// ErrEmptyKey is returned when a key is empty.
	ErrEmptyKey = errors.New("kv: empty key")
)

// Store is a key-value store holding whole values per key.
// Set replaces the previous value in full.
type Store interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendMemory}
}

// IsBackend reports whether name is a supported backend.
func IsBackend(name string) bool {
	for _, b := range Backends() {
		if b == name {
			return true
		}
	}
	return false
}

// Open opens the named backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir)
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, DefaultDBFile))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
