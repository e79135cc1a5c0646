package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Memory is a thread-safe in-memory Store with TTL support.
type Memory struct {
	data   sync.Map
	ttl    time.Duration
	closed atomic.Bool
	now    func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates an in-memory store. A zero ttl means entries never expire
// unless a per-call ttl is given.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	val, ok := m.data.Load(key)
	if !ok {
		return nil, ErrMiss
	}
	entry := val.(*memoryEntry)
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.data.Delete(key)
		return nil, ErrMiss
	}
	return entry.value, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = m.ttl
	}
	entry := &memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.data.Store(key, entry)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.data.Delete(key)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.data.Range(func(key, _ any) bool {
		m.data.Delete(key)
		return true
	})
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	n := 0
	m.data.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}
