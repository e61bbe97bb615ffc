// Package config loads the optional TOML configuration file. Every key has
// a working default; command-line flags override file values.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pkgscout/pkgscout/pkg/cache"
	"github.com/pkgscout/pkgscout/pkg/deps"
	"github.com/pkgscout/pkgscout/pkg/distro"
)

// Duration accepts Go duration strings ("24h", "30m") in TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Distro DistroConfig `toml:"distro"`
	Check  CheckConfig  `toml:"check"`
}

type CacheConfig struct {
	// Dir is the file backend's directory; empty means the user cache dir.
	Dir string `toml:"dir"`
	// Backend selects file, memory, redis, or null.
	Backend string `toml:"backend"`
	// RegistryTTL bounds registry answer staleness.
	RegistryTTL Duration `toml:"registry_ttl"`
	// DistroTTL bounds distribution answer staleness.
	DistroTTL Duration `toml:"distro_ttl"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type DistroConfig struct {
	// DNF overrides the dnf executable path.
	DNF string `toml:"dnf"`
	// Release pins --releasever.
	Release string `toml:"release"`
	// Repos limits queries to the named repositories.
	Repos []string `toml:"repos"`
}

type CheckConfig struct {
	MaxDepth int    `toml:"max_depth"`
	Report   string `toml:"report"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: CacheConfig{
			Backend:     "file",
			RegistryTTL: Duration(deps.DefaultRegistryTTL),
			DistroTTL:   Duration(distro.DefaultTTL),
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Check: CheckConfig{
			MaxDepth: deps.DefaultMaxDepth,
			Report:   "stdout",
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pkgscout", "config.toml"), nil
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields the defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, nil
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// OpenStore constructs the cache backend the configuration selects.
func (c Config) OpenStore(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case "", "file":
		return cache.NewFileCache(c.Cache.Dir)
	case "memory":
		return cache.NewMemoryCache(cache.DefaultMemoryEntries)
	case "redis":
		return cache.NewRedisCache(ctx, c.Redis.Addr, c.Redis.Password, c.Redis.DB)
	case "null":
		return cache.NullCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
}
