package deps

import (
	"time"

	"github.com/pkgscout/pkgscout/pkg/cache"
)

// DefaultRegistryTTL is how long registry answers stay fresh. Registry
// metadata for released versions is effectively immutable, so a week is
// conservative.
const DefaultRegistryTTL = 7 * 24 * time.Hour

// Language describes one supported ecosystem and how to construct its
// provider.
type Language struct {
	// Name is the canonical identifier, e.g. "rust".
	Name string
	// DisplayName is the human form, e.g. "Rust".
	DisplayName string
	// Registry names the upstream index, e.g. "crates.io".
	Registry string
	// Aliases are accepted spellings besides Name, e.g. "rs", "crates.io".
	Aliases []string
	// NewProvider constructs the provider backed by the given cache store.
	// A non-positive ttl means DefaultRegistryTTL.
	NewProvider func(store cache.Cache, ttl time.Duration) Provider
}
