package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store used in tests and as a fallback when
// no durable backend is configured. Values are kept as marshaled JSON so
// load/save semantics match the durable backends exactly.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Load retrieves and unmarshals the value stored under key
func (s *MemoryStore) Load(ctx context.Context, key string, dest any) error {
	s.mu.RLock()
	data, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// Save marshals and stores value under key
func (s *MemoryStore) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	s.mu.Lock()
	s.data[key] = data
	s.mu.Unlock()
	return nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
