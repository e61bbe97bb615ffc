package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkgscout/pkgscout/pkg/observability"
)

// FileCache stores entries as JSON files under dir/<namespace>/<hash>.json.
// It is the default backend for CLI usage: entries survive process restarts,
// and multiple processes can share the same directory since files are written
// whole.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir.
// If dir is empty, ~/.cache/pkgscout is used. The directory is created if it
// doesn't exist.
func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "pkgscout")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the absolute path to the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Get retrieves a value from the cache.
// Corrupt and expired entries are removed and reported as misses.
func (c *FileCache) Get(ctx context.Context, namespace, key string, v any) (bool, error) {
	path := c.path(namespace, key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, nil
	}
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, err
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		// Invalid cache entry - treat as miss
		_ = os.Remove(path)
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, nil
	}
	if e.expired(time.Now()) {
		_ = os.Remove(path)
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, nil
	}

	if err := json.Unmarshal(e.Value, v); err != nil {
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, err
	}
	observability.Cache().OnCacheHit(ctx, namespace)
	return true, nil
}

// Set stores a value in the cache.
func (c *FileCache) Set(ctx context.Context, namespace, key string, v any, ttl time.Duration) error {
	e, err := newEntry(v, ttl)
	if err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.path(namespace, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, namespace, len(data))
	return nil
}

// Clear removes all entries in namespace, or everything when namespace is
// empty. Empty namespace directories are cleaned up afterwards.
func (c *FileCache) Clear(ctx context.Context, namespace string) (int, error) {
	root := c.dir
	if namespace != "" {
		root = filepath.Join(c.dir, namespace)
	}
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return 0, nil
	}

	count := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries, keep walking
		}
		if info.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		if err := os.Remove(path); err == nil {
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}

	if namespace != "" {
		_ = os.Remove(root)
	}
	return count, nil
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(namespace, key string) string {
	return filepath.Join(c.dir, namespace, hashKey(key)+".json")
}

var _ Cache = (*FileCache)(nil)
