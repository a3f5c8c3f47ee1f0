package repository

import (
	"context"
	"sync"
)

// MemoryKeyValueStore keeps documents in process memory
type MemoryKeyValueStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryKeyValueStore creates an empty MemoryKeyValueStore
func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{values: make(map[string][]byte)}
}

// Ensure MemoryKeyValueStore implements KeyValueStoreInterface
var _ KeyValueStoreInterface = (*MemoryKeyValueStore)(nil)

func (s *MemoryKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *MemoryKeyValueStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}
