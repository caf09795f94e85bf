package kv

import (
	"context"
	"sync"
)

// MemoryStore keeps state in process memory only.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
	hub  hub
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	old, existed := m.data[key]
	m.data[key] = value
	m.mu.Unlock()

	if !existed || old != value {
		m.hub.publish(Change{Key: key, Value: value, Present: true})
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	_, existed := m.data[key]
	delete(m.data, key)
	m.mu.Unlock()

	if existed {
		m.hub.publish(Change{Key: key})
	}
	return nil
}

func (m *MemoryStore) apply(_ context.Context, b Batch) error {
	var changes []Change

	m.mu.Lock()
	for _, k := range sortedKeys(b.Set) {
		v := b.Set[k]
		if old, ok := m.data[k]; !ok || old != v {
			changes = append(changes, Change{Key: k, Value: v, Present: true})
		}
		m.data[k] = v
	}
	for _, k := range b.Delete {
		if _, ok := m.data[k]; ok {
			changes = append(changes, Change{Key: k})
		}
		delete(m.data, k)
	}
	m.mu.Unlock()

	for _, c := range changes {
		m.hub.publish(c)
	}
	return nil
}

func (m *MemoryStore) Subscribe(keys ...string) (<-chan Change, func()) {
	id, sub := m.hub.add(keys)
	var once sync.Once
	return sub.ch, func() { once.Do(func() { m.hub.remove(id) }) }
}
