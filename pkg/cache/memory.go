package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pkgscout/pkgscout/pkg/observability"
)

// DefaultMemoryEntries bounds the in-memory backend.
const DefaultMemoryEntries = 4096

// MemoryCache is a bounded in-memory backend. It is used by tests and by the
// serve mode, where a long-lived process would otherwise hammer the
// filesystem for every request.
type MemoryCache struct {
	lru *lru.Cache[string, entry]
}

// NewMemoryCache creates an in-memory cache holding at most maxEntries
// entries. A maxEntries <= 0 selects [DefaultMemoryEntries].
func NewMemoryCache(maxEntries int) (*MemoryCache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	l, err := lru.New[string, entry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: l}, nil
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, namespace, key string, v any) (bool, error) {
	e, ok := c.lru.Get(compound(namespace, key))
	if !ok {
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, nil
	}
	if e.expired(time.Now()) {
		c.lru.Remove(compound(namespace, key))
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, nil
	}
	if err := json.Unmarshal(e.Value, v); err != nil {
		return false, err
	}
	observability.Cache().OnCacheHit(ctx, namespace)
	return true, nil
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(ctx context.Context, namespace, key string, v any, ttl time.Duration) error {
	e, err := newEntry(v, ttl)
	if err != nil {
		return err
	}
	c.lru.Add(compound(namespace, key), e)
	observability.Cache().OnCacheSet(ctx, namespace, len(e.Value))
	return nil
}

// Clear removes all entries in namespace, or everything when namespace is empty.
func (c *MemoryCache) Clear(_ context.Context, namespace string) (int, error) {
	if namespace == "" {
		n := c.lru.Len()
		c.lru.Purge()
		return n, nil
	}
	prefix := namespace + ":"
	count := 0
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
			count++
		}
	}
	return count, nil
}

// Close does nothing for the memory cache.
func (c *MemoryCache) Close() error { return nil }

func compound(namespace, key string) string {
	return namespace + ":" + key
}

var _ Cache = (*MemoryCache)(nil)
