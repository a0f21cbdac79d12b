// Package clientstate holds the durable key/value state of one client device and the bus
// that tells the other views of that device when a key changed.
package clientstate

import (
	"context"
	"sync"
)

// Fixed storage keys. Values are JSON encoded.
const (
	KeyFavorites     = "julefagdag-favorites"
	KeyFeedback      = "julefagdag-feedback"
	KeyEventFeedback = "julefagdag-event-feedback"
	KeyAdminToken    = "julefagdag-admin-token"
)

// Storage is durable client-local key/value storage.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryStorage keeps values in process memory. Used for single-process views and tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
