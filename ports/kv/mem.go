package kv

import (
	"context"
	"sync"
)

type MemStore struct {
	mu   sync.RWMutex
	data map[string]Entry
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string]Entry{}}
}

func (m *MemStore) Put(_ context.Context, key string, data []byte) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rev := m.data[key].Revision + 1
	m.data[key] = Entry{Data: append([]byte(nil), data...), Revision: rev}
	return rev, nil
}

func (m *MemStore) Get(_ context.Context, key string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.data[key]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

var _ Store = (*MemStore)(nil)
