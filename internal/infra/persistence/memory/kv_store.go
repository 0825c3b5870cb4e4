// Package memory provides an in-process KVStore. Nothing survives a restart.
package memory

import (
	"context"
	"maps"
	"sync"

	"campus/internal/domain/repository"
)

// KVStore keeps values in a map guarded by a RWMutex.
type KVStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewKVStore returns an empty in-memory store.
func NewKVStore() *KVStore {
	return &KVStore{values: make(map[string]string)}
}

func (s *KVStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}

	return value, nil
}

func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return nil
}

func (s *KVStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)

	return nil
}

func (s *KVStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.values)

	return nil
}

func (s *KVStore) Close() error {
	return nil
}

// Dump returns a copy of everything stored. Used by tests to inspect durable state.
func (s *KVStore) Dump() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.values)
}

var _ repository.KVStore = (*KVStore)(nil)
