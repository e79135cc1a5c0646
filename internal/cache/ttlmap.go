package cache

import (
	"sync"
	"time"
)

// TTLMap is an in-process map whose entries expire a fixed duration after
// insertion. Values are kept as-is, without serialization.
type TTLMap[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]ttlEntry[V]
	now     func() time.Time
}

type ttlEntry[V any] struct {
	value     V
	timestamp time.Time
}

// NewTTLMap creates a map with the given entry lifetime.
func NewTTLMap[V any](ttl time.Duration) *TTLMap[V] {
	return &TTLMap[V]{
		ttl:     ttl,
		entries: make(map[string]ttlEntry[V]),
		now:     time.Now,
	}
}

// SetClock replaces the time source. Tests use it to move time forward.
func (m *TTLMap[V]) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// Get returns the value if it is younger than the TTL.
func (m *TTLMap[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if m.now().Sub(e.timestamp) >= m.ttl {
		delete(m.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, stamped with the current time.
func (m *TTLMap[V]) Set(key string, value V) {
	m.mu.Lock()
	m.entries[key] = ttlEntry[V]{value: value, timestamp: m.now()}
	m.mu.Unlock()
}

// Delete removes key.
func (m *TTLMap[V]) Delete(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Clear removes every entry.
func (m *TTLMap[V]) Clear() {
	m.mu.Lock()
	m.entries = make(map[string]ttlEntry[V])
	m.mu.Unlock()
}

// Len counts the stored entries, including expired ones not yet read.
func (m *TTLMap[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
