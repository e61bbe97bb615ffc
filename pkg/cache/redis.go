package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkgscout/pkgscout/pkg/observability"
)

// RedisCache is a Redis-backed cache for shared deployments, where several
// hosts (or the serve mode behind a load balancer) should reuse each other's
// registry and repoquery results. Expiry is delegated to the server via key
// TTLs; last writer wins on concurrent Sets for the same key.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache connects to the Redis instance at addr (host:port).
// The connection is verified with a ping before the cache is returned.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisCache{rdb: rdb}, nil
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, namespace, key string, v any) (bool, error) {
	data, err := c.rdb.Get(ctx, compound(namespace, hashKey(key))).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, nil
	}
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	observability.Cache().OnCacheHit(ctx, namespace)
	return true, nil
}

// Set stores a value in the cache with a server-side TTL.
func (c *RedisCache) Set(ctx context.Context, namespace, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, compound(namespace, hashKey(key)), data, ttl).Err(); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, namespace, len(data))
	return nil
}

// Clear removes all entries in namespace, or everything when namespace is empty.
func (c *RedisCache) Clear(ctx context.Context, namespace string) (int, error) {
	match := "*"
	if namespace != "" {
		match = namespace + ":*"
	}

	count := 0
	iter := c.rdb.Scan(ctx, 0, match, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err == nil {
			count++
		}
	}
	return count, iter.Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error { return c.rdb.Close() }

var _ Cache = (*RedisCache)(nil)
