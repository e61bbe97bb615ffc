// Package cache provides a namespaced, TTL-based key-value store shared by
// the registry clients and the distribution availability checker.
//
// Each component writes under its own namespace ("crates", "pypi", "distro"),
// so independent staleness rules can apply per data source. Entries carry
// their own TTL; an entry older than its TTL behaves as absent regardless of
// physical persistence state.
//
// Backends:
//   - file: JSON files under a cache directory, survives process restarts
//   - memory: bounded LRU for tests and the serve mode
//   - redis: shared store for multi-host deployments
//   - null: always-miss, for disabling caching
//
// Storage I/O failures surface as misses with a non-nil error; callers log
// and proceed, so a broken cache never fails a run.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is the narrow contract every backend implements.
type Cache interface {
	// Get retrieves the value stored under (namespace, key) into v.
	// Returns (true, nil) on a fresh hit, (false, nil) on a miss or an
	// expired entry, and (false, err) when the backend failed; a failure
	// is still a miss from the caller's point of view.
	Get(ctx context.Context, namespace, key string, v any) (bool, error)

	// Set stores v under (namespace, key). A ttl of 0 means the entry
	// never expires. Existing entries are overwritten wholesale.
	Set(ctx context.Context, namespace, key string, v any, ttl time.Duration) error

	// Clear removes all entries in namespace, or every entry when
	// namespace is empty. Returns the number of entries removed.
	Clear(ctx context.Context, namespace string) (int, error)

	// Close releases backend resources.
	Close() error
}

// entry is the stored envelope around a cached value.
type entry struct {
	StoredAt time.Time       `json:"stored_at"`
	TTL      time.Duration   `json:"ttl"`
	Value    json.RawMessage `json:"value"`
}

func newEntry(v any, ttl time.Duration) (entry, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return entry{}, err
	}
	return entry{StoredAt: time.Now(), TTL: ttl, Value: data}, nil
}

func (e *entry) expired(now time.Time) bool {
	return e.TTL > 0 && now.Sub(e.StoredAt) > e.TTL
}

// hashKey converts an arbitrary cache key into a stable filename-safe token.
func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
