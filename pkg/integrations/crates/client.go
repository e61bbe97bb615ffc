package crates

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/pkgscout/pkgscout/pkg/cache"
	"github.com/pkgscout/pkgscout/pkg/integrations"
)

// Namespace is the cache namespace used by this client.
const Namespace = "crates"

// CrateInfo holds metadata for a Rust crate from crates.io.
//
// Version is the newest published version. Some crates have a null
// crate-level license but carry one on the latest version; the client falls
// back to it.
type CrateInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	License     string `json:"license,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
	Repository  string `json:"repository,omitempty"`
}

// Dependency is one edge reported by the crates.io dependency endpoint.
// Kind is "normal", "dev", or "build".
type Dependency struct {
	Name        string `json:"name"`
	Requirement string `json:"requirement"`
	Optional    bool   `json:"optional"`
	Kind        string `json:"kind"`
}

// Feature is a crate feature flag with the dependencies it activates.
type Feature struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
}

// Client provides access to the crates.io package registry API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client caching responses in store.
func NewClient(store cache.Cache, ttl time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(store, Namespace, ttl, nil),
		baseURL: "https://crates.io/api/v1/crates",
	}
}

// infoEntry is the cached envelope for crate lookups. NotFound records a 404
// so unpublished crates don't trigger repeated API calls.
type infoEntry struct {
	NotFound bool      `json:"not_found,omitempty"`
	Info     CrateInfo `json:"info"`
}

// FetchCrate retrieves metadata for a crate. The name is case-sensitive and
// must match the published crate name exactly.
//
// Returns [integrations.ErrNotFound] if the crate doesn't exist and
// [integrations.ErrNetwork] for HTTP failures.
func (c *Client) FetchCrate(ctx context.Context, name string, refresh bool) (*CrateInfo, error) {
	var e infoEntry
	err := c.Cached(ctx, "info:"+name, refresh, &e, func() error {
		err := c.fetchInfo(ctx, name, &e)
		if errors.Is(err, integrations.ErrNotFound) {
			e = infoEntry{NotFound: true}
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if e.NotFound {
		return nil, fmt.Errorf("%w: crate %s", integrations.ErrNotFound, name)
	}
	return &e.Info, nil
}

func (c *Client) fetchInfo(ctx context.Context, name string, e *infoEntry) error {
	var data crateResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s", c.baseURL, name), &data); err != nil {
		return err
	}

	license := data.Crate.License
	if license == "" && len(data.Versions) > 0 {
		license = data.Versions[0].License
	}

	*e = infoEntry{Info: CrateInfo{
		Name:        data.Crate.Name,
		Version:     data.Crate.NewestVersion,
		Description: data.Crate.Description,
		License:     license,
		Homepage:    data.Crate.Homepage,
		Repository:  data.Crate.Repository,
	}}
	return nil
}

// FetchDependencies retrieves the immediate dependency edges of one crate
// version, in the order crates.io reports them. All kinds are returned;
// callers filter dev/build edges.
//
// Returns [integrations.ErrNotFound] when the version does not exist.
func (c *Client) FetchDependencies(ctx context.Context, name, version string, refresh bool) ([]Dependency, error) {
	var deps []Dependency
	err := c.Cached(ctx, fmt.Sprintf("deps:%s:%s", name, version), refresh, &deps, func() error {
		var data depsResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/%s/%s/dependencies", c.baseURL, name, version), &data); err != nil {
			return err
		}
		deps = deps[:0]
		for _, d := range data.Dependencies {
			deps = append(deps, Dependency{
				Name:        d.CrateID,
				Requirement: d.Req,
				Optional:    d.Optional,
				Kind:        d.Kind,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// FetchFeatures retrieves the feature map of one crate version, sorted by
// feature name. Also serves as the version-existence check: a missing
// version yields [integrations.ErrNotFound].
func (c *Client) FetchFeatures(ctx context.Context, name, version string, refresh bool) ([]Feature, error) {
	var features []Feature
	err := c.Cached(ctx, fmt.Sprintf("features:%s:%s", name, version), refresh, &features, func() error {
		var data versionResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/%s/%s", c.baseURL, name, version), &data); err != nil {
			return err
		}
		features = features[:0]
		for fname, deps := range data.Version.Features {
			features = append(features, Feature{Name: fname, Dependencies: deps})
		}
		sort.Slice(features, func(i, j int) bool { return features[i].Name < features[j].Name })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return features, nil
}

type crateResponse struct {
	Crate struct {
		Name          string `json:"name"`
		NewestVersion string `json:"newest_version"`
		Description   string `json:"description"`
		License       string `json:"license"`
		Homepage      string `json:"homepage"`
		Repository    string `json:"repository"`
	} `json:"crate"`
	Versions []struct {
		License string `json:"license"`
	} `json:"versions"`
}

type depsResponse struct {
	Dependencies []struct {
		CrateID  string `json:"crate_id"`
		Req      string `json:"req"`
		Optional bool   `json:"optional"`
		Kind     string `json:"kind"`
	} `json:"dependencies"`
}

type versionResponse struct {
	Version struct {
		Num      string              `json:"num"`
		Features map[string][]string `json:"features"`
	} `json:"version"`
}
