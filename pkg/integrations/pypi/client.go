package pypi

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
const Namespace = "pypi"

// PackageInfo holds metadata for a Python package from PyPI.
type PackageInfo struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Summary  string `json:"summary,omitempty"`
	License  string `json:"license,omitempty"`
	Homepage string `json:"homepage,omitempty"`
}

// Feature is a package extra with the dependencies it activates.
type Feature struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
}

// Client provides access to the PyPI package registry API.
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a PyPI client caching responses in store.
func NewClient(store cache.Cache, ttl time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(store, Namespace, ttl, nil),
		baseURL: "https://pypi.org/pypi",
	}
}

type infoEntry struct {
	NotFound bool        `json:"not_found,omitempty"`
	Info     PackageInfo `json:"info"`
}

// FetchPackage retrieves metadata for a Python package. The name is
// normalized per PEP 503 before lookup.
//
// Returns [integrations.ErrNotFound] if the package doesn't exist and
// [integrations.ErrNetwork] for HTTP failures. Not-found results are cached.
func (c *Client) FetchPackage(ctx context.Context, name string, refresh bool) (*PackageInfo, error) {
	name = integrations.NormalizePkgName(name)

	var e infoEntry
	err := c.Cached(ctx, "info:"+name, refresh, &e, func() error {
		err := c.fetchInfo(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, name), &e)
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
		return nil, fmt.Errorf("%w: pypi package %s", integrations.ErrNotFound, name)
	}
	return &e.Info, nil
}

func (c *Client) fetchInfo(ctx context.Context, url string, e *infoEntry) error {
	var data apiResponse
	if err := c.Get(ctx, url, &data); err != nil {
		return err
	}
	*e = infoEntry{Info: PackageInfo{
		Name:     data.Info.Name,
		Version:  data.Info.Version,
		Summary:  data.Info.Summary,
		License:  extractLicense(data.Info),
		Homepage: data.Info.HomePage,
	}}
	return nil
}

// FetchRequirements retrieves the parsed requires_dist entries of one
// release, in declaration order. Environment-marker-only requirements (e.g.
// platform guards) are kept; unparseable entries are dropped.
//
// Returns [integrations.ErrNotFound] when the version does not exist.
func (c *Client) FetchRequirements(ctx context.Context, name, version string, refresh bool) ([]Requirement, error) {
	name = integrations.NormalizePkgName(name)

	var reqs []Requirement
	err := c.Cached(ctx, fmt.Sprintf("deps:%s:%s", name, version), refresh, &reqs, func() error {
		var data apiResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/%s/%s/json", c.baseURL, name, version), &data); err != nil {
			return err
		}
		reqs = reqs[:0]
		for _, raw := range data.Info.RequiresDist {
			if r, ok := ParseRequirement(raw); ok {
				reqs = append(reqs, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// FetchExtras retrieves the extras of one release with the dependencies each
// one activates, sorted by extra name.
func (c *Client) FetchExtras(ctx context.Context, name, version string, refresh bool) ([]Feature, error) {
	name = integrations.NormalizePkgName(name)

	var features []Feature
	err := c.Cached(ctx, fmt.Sprintf("features:%s:%s", name, version), refresh, &features, func() error {
		var data apiResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/%s/%s/json", c.baseURL, name, version), &data); err != nil {
			return err
		}

		byExtra := make(map[string][]string)
		for _, extra := range data.Info.ProvidesExtra {
			byExtra[extra] = []string{}
		}
		for _, raw := range data.Info.RequiresDist {
			r, ok := ParseRequirement(raw)
			if !ok || r.Extra == "" {
				continue
			}
			if _, declared := byExtra[r.Extra]; declared {
				byExtra[r.Extra] = append(byExtra[r.Extra], r.Name)
			}
		}

		features = features[:0]
		for name, deps := range byExtra {
			sort.Strings(deps)
			features = append(features, Feature{Name: name, Dependencies: deps})
		}
		sort.Slice(features, func(i, j int) bool { return features[i].Name < features[j].Name })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return features, nil
}

type apiResponse struct {
	Info packageMeta `json:"info"`
}

type packageMeta struct {
	Name              string   `json:"name"`
	Version           string   `json:"version"`
	Summary           string   `json:"summary"`
	HomePage          string   `json:"home_page"`
	License           string   `json:"license"`
	LicenseExpression string   `json:"license_expression"`
	Classifiers       []string `json:"classifiers"`
	RequiresDist      []string `json:"requires_dist"`
	ProvidesExtra     []string `json:"provides_extra"`
}
