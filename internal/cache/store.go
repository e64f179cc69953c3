// Package cache implements the persistent cache (C4): the namespace file
// (header + hot map), the index store (a string-keyed persistent map), the
// single-writer lock, and atomic publication of all three.
package cache

import (
	"sync"

	"github.com/cockroachdb/pebble"
)

// KeyedStore is the "string-keyed persistent map" abstraction from the
// design notes, with a file-backed implementation (the master's index
// store) and an in-memory one (MemStore).
type KeyedStore interface {
	// Set stores value under key, overwriting any prior value.
	Set(key string, value []byte) error
	// Iterate calls fn for every key/value pair in unspecified order. fn
	// returns false to stop iteration early.
	Iterate(fn func(key string, value []byte) bool) error
	// Close releases any resources held by the store.
	Close() error
}

// pebbleStore is the master's on-disk KeyedStore, backed by a Pebble LSM
// database directory (the N.shlv equivalent).
type pebbleStore struct {
	db *pebble.DB
}

// OpenPebbleStore opens (creating if absent) a Pebble-backed KeyedStore at
// dir.
func OpenPebbleStore(dir string) (KeyedStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &pebbleStore{db: db}, nil
}

func (s *pebbleStore) Set(key string, value []byte) error {
	return s.db.Set([]byte(key), value, pebble.Sync)
}

func (s *pebbleStore) Iterate(fn func(key string, value []byte) bool) error {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer iter.Close()

	for valid := iter.First(); valid; valid = iter.Next() {
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		if !fn(string(key), value) {
			break
		}
	}
	return iter.Error()
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}

// EstimatedSize reports Pebble's disk-usage estimate, used for the header's
// IndexStoreBytes field.
func (s *pebbleStore) EstimatedSize() int64 {
	return int64(s.db.Metrics().DiskSpaceUsage())
}

// MemStore is an in-memory KeyedStore. Workers do not use it: they
// accumulate their results in a model.Index and serialize that once, at
// exit, into their IPC file.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemStore builds an empty in-memory KeyedStore.
func NewMemStore() *MemStore {
	return &MemStore{data: map[string][]byte{}}
}

func (m *MemStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemStore) Iterate(fn func(key string, value []byte) bool) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.data {
		if !fn(k, v) {
			break
		}
	}
	return nil
}

func (m *MemStore) Close() error { return nil }
