// Package store persists the library as string values under fixed keys.
// Backends are a directory of files, watched for external edits, and a
// Badger database.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrClosed is returned by a closed store.
	ErrClosed = errors.New("store is closed")
	// ErrInvalidKey is returned for keys that cannot name a file.
	ErrInvalidKey = errors.New("invalid store key")
)

// Store is a string key-value store. A missing key is not an error: Load
// reports it with ok == false.
type Store interface {
	Load(key string) (value string, ok bool, err error)
	Save(key, value string) error
	Close() error
}

// Watcher is implemented by stores that can report changes made by other
// processes. fn runs on the watching goroutine until ctx is done.
type Watcher interface {
	Watch(ctx context.Context, fn func(key string)) error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Open creates the store for backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(dir)
	case BackendBadger:
		return NewBadgerStore(BadgerOptions{Dir: dir})
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// MemoryStore keeps values in memory. It is used in tests and for
// throwaway sessions.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	closed bool
}

// NewMemoryStore returns an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Load implements Store.
func (m *MemoryStore) Load(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Save implements Store.
func (m *MemoryStore) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.values[key] = value
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
