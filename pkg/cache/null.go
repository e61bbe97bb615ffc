package cache

import (
	"context"
	"time"
)

// NullCache is a no-op cache that never stores anything.
// Useful for testing or when caching should be disabled.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() *NullCache { return &NullCache{} }

// Get always returns a cache miss.
func (NullCache) Get(ctx context.Context, namespace, key string, v any) (bool, error) {
	return false, nil
}

// Set does nothing.
func (NullCache) Set(ctx context.Context, namespace, key string, v any, ttl time.Duration) error {
	return nil
}

// Clear does nothing.
func (NullCache) Clear(context.Context, string) (int, error) { return 0, nil }

// Close does nothing.
func (NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
