// Package kv provides the key-value persistence adapter backing the
// Life OS stores. Each store keeps its whole collection under a single
// namespaced key, mirroring the browser-local storage model the
// dashboard was designed around.
package kv

import (
	"context"
	"errors"
)

// Keys used by the application. Each holds one JSON document.
const (
	KeyGoals         = "lifeos:vision-board:goals"
	KeyHabits        = "lifeos:habits"
	KeyTodos         = "lifeos:todos"
	KeyWeeklyGoals   = "lifeos:weekly-goals"
	KeyEvents        = "lifeos:calendar-events"
	KeyNotifications = "lifeos:notifications"
)

// ErrNotFound is returned by Load when no value exists for a key
var ErrNotFound = errors.New("key not found")

// Store is a generic key-value persistence adapter
type Store interface {
	// Load unmarshals the value stored under key into dest.
	// Returns ErrNotFound when the key does not exist.
	Load(ctx context.Context, key string, dest any) error

	// Save marshals value and stores it under key, replacing any
	// previous value.
	Save(ctx context.Context, key string, value any) error

	// Ping verifies the backing store is reachable
	Ping(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}

// LoadOrDefault loads key into dest, treating a missing key as success
// and leaving dest untouched. Any other error is returned as-is.
func LoadOrDefault(ctx context.Context, s Store, key string, dest any) error {
	err := s.Load(ctx, key, dest)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
