// Package memstore is an in-memory storage.Storage, used by tests and
// ephemeral runs.
package memstore

import (
	"context"
	"sync"

	"taskpad/internal/storage"
)

// Store keeps values in a map.
type Store struct {
	mu   sync.RWMutex
	data map[string]string

	// Error injection for testing
	GetErr    error
	SetErr    error
	RemoveErr error
}

// New creates an empty Store.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// Get implements storage.Storage.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if s.GetErr != nil {
		return "", s.GetErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return v, nil
}

// Set implements storage.Storage.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Remove implements storage.Storage.
func (s *Store) Remove(ctx context.Context, key string) error {
	if s.RemoveErr != nil {
		return s.RemoveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Close implements storage.Storage.
func (s *Store) Close() error { return nil }

// Keys returns the stored keys, for assertions in tests.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
