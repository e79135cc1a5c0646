package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLMap(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTTLMap[int](5 * time.Minute)
	m.SetClock(func() time.Time { return now })

	m.Set("home-{}", 42)

	now = now.Add(4 * time.Minute)
	v, ok := m.Get("home-{}")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	now = now.Add(time.Minute)
	_, ok = m.Get("home-{}")
	assert.False(t, ok, "entry should expire exactly at the ttl")
	assert.Equal(t, 0, m.Len())
}

func TestTTLMap_Clear(t *testing.T) {
	m := NewTTLMap[string](time.Minute)
	m.Set("a", "1")
	m.Set("b", "2")
	m.Delete("a")
	assert.Equal(t, 1, m.Len())

	m.Clear()
	_, ok := m.Get("b")
	assert.False(t, ok)
}
