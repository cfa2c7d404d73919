package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-memory KV implementation, used in tests and for
// ephemeral runs where persistence across restarts is not needed.
type Memory struct {
	mu      sync.RWMutex
	regions map[string]map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{regions: make(map[string]map[string][]byte)}
}

// Get retrieves a value.
func (m *Memory) Get(ctx context.Context, region, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.regions[region]
	if !ok {
		return nil, false, nil
	}
	v, ok := r[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Put stores a value.
func (m *Memory) Put(ctx context.Context, region, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.regions[region]
	if !ok {
		r = make(map[string][]byte)
		m.regions[region] = r
	}
	v := make([]byte, len(value))
	copy(v, value)
	r[key] = v
	return nil
}

// Delete removes a key.
func (m *Memory) Delete(ctx context.Context, region, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r, ok := m.regions[region]; ok {
		delete(r, key)
	}
	return nil
}

// Scan visits all keys in ascending order.
func (m *Memory) Scan(ctx context.Context, region string, fn func(key string, value []byte) error) error {
	m.mu.RLock()
	r := m.regions[region]
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	values := make(map[string][]byte, len(r))
	for k, v := range r {
		c := make([]byte, len(v))
		copy(c, v)
		values[k] = c
	}
	m.mu.RUnlock()

	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

// DeleteRegion drops a whole region.
func (m *Memory) DeleteRegion(ctx context.Context, region string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.regions, region)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}
