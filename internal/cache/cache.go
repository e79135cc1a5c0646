// Package cache provides the byte caches that back the CMS client and the
// resilience fallback store, plus a typed in-process TTL map.
package cache

import (
	"context"
	"fmt"
	"time"

	"mycogenesis/internal/config"
)

// Store is implemented by every byte cache backend. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns ErrMiss when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A zero ttl uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry owned by this store.
	Clear(ctx context.Context) error
	Close() error
}

// Error is the type of the cache sentinel errors.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrMiss indicates the key was not found or has expired.
	ErrMiss Error = "cache miss"

	// ErrClosed indicates the store has been closed.
	ErrClosed Error = "cache closed"
)

// New builds the Store selected by cfg.Type.
func New(cfg config.CacheConfig) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemory(cfg.TTL), nil
	case "sqlite":
		return NewSQLite(cfg.FilePath, cfg.TTL)
	case "redis":
		opts := DefaultRedisOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.TTL > 0 {
			opts.DefaultTTL = cfg.TTL
		}
		return NewRedis(opts)
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
