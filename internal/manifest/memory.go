package manifest

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps the manifest for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	paths []string
}

func NewMemoryStore(paths ...string) *MemoryStore {
	return &MemoryStore{paths: normalize(paths)}
}

func (m *MemoryStore) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.paths), nil
}

func (m *MemoryStore) Replace(_ context.Context, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = normalize(paths)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = nil
	return nil
}
