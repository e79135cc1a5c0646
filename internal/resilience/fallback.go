package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mycogenesis/internal/cache"
)

// FallbackNamespace prefixes every last-known-good entry.
const FallbackNamespace = "myco-fallback-data"

// FallbackStore keeps the last successful value of each operation so a later
// failure can serve stale data instead of nothing.
type FallbackStore struct {
	store cache.Store
	ttl   time.Duration
}

// NewFallbackStore persists values in store for ttl.
func NewFallbackStore(store cache.Store, ttl time.Duration) *FallbackStore {
	return &FallbackStore{store: store, ttl: ttl}
}

func fallbackKey(operation string) string {
	return FallbackNamespace + ":" + operation
}

// Save records raw as the last good value for operation.
func (f *FallbackStore) Save(ctx context.Context, operation string, raw []byte) error {
	if err := f.store.Set(ctx, fallbackKey(operation), raw, f.ttl); err != nil {
		return fmt.Errorf("save fallback %s: %w", operation, err)
	}
	return nil
}

// Load returns the last good value for operation and whether one exists.
func (f *FallbackStore) Load(ctx context.Context, operation string) ([]byte, bool, error) {
	raw, err := f.store.Get(ctx, fallbackKey(operation))
	if errors.Is(err, cache.ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load fallback %s: %w", operation, err)
	}
	return raw, true, nil
}
