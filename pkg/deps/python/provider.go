// Package python adapts the PyPI registry to the resolution engine.
package python

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkgscout/pkgscout/pkg/cache"
	"github.com/pkgscout/pkgscout/pkg/deps"
	"github.com/pkgscout/pkgscout/pkg/integrations"
	"github.com/pkgscout/pkgscout/pkg/integrations/pypi"
)

// Language registers the Python ecosystem.
var Language = deps.Language{
	Name:        "python",
	DisplayName: "Python",
	Registry:    "PyPI",
	Aliases:     []string{"py", "pypi", "pip"},
	NewProvider: func(store cache.Cache, ttl time.Duration) deps.Provider {
		return New(store, ttl)
	},
}

// Provider resolves Python packages against PyPI.
type Provider struct {
	client *pypi.Client
}

// New creates a Python provider caching registry answers in store.
func New(store cache.Cache, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = deps.DefaultRegistryTTL
	}
	return &Provider{client: pypi.NewClient(store, ttl)}
}

func (p *Provider) Name() string     { return "python" }
func (p *Provider) Registry() string { return "PyPI" }

// NormalizeName applies PEP 503 normalization.
func (p *Provider) NormalizeName(name string) string {
	return pypi.NormalizeName(name)
}

// AlternativeNames returns the underscore spelling when it differs. Many
// distribution provides use the sdist name, which keeps underscores.
func (p *Provider) AlternativeNames(name string) []string {
	alt := strings.ReplaceAll(name, "-", "_")
	if alt == name {
		return nil
	}
	return []string{alt}
}

// Provides maps a package name to the distribution's virtual provides
// pattern.
func (p *Provider) Provides(name string) string {
	return fmt.Sprintf("python3dist(%s)", name)
}

func (p *Provider) Resolve(ctx context.Context, name, version string, refresh bool) (*deps.PackageInfo, error) {
	info, err := p.client.FetchPackage(ctx, name, refresh)
	if err != nil {
		return nil, translate(err, name, "")
	}

	resolved := info.Version
	if version != "" && version != info.Version {
		// Verify the pinned release exists before reporting it.
		if _, err := p.client.FetchRequirements(ctx, name, version, refresh); err != nil {
			return nil, translate(err, name, version)
		}
		resolved = version
	}

	return &deps.PackageInfo{
		Name:        info.Name,
		Version:     resolved,
		Description: info.Summary,
		License:     info.License,
		Homepage:    info.Homepage,
	}, nil
}

func (p *Provider) Dependencies(ctx context.Context, name, version string, refresh bool) ([]deps.Dependency, error) {
	reqs, err := p.client.FetchRequirements(ctx, name, version, refresh)
	if err != nil {
		return nil, translate(err, name, version)
	}

	out := make([]deps.Dependency, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, deps.Dependency{
			Name:        r.Name,
			Requirement: r.Constraint,
			Optional:    r.Optional,
			Kind:        deps.KindNormal,
		})
	}
	return out, nil
}

// Features returns the package's extras.
func (p *Provider) Features(ctx context.Context, name, version string, refresh bool) ([]deps.Feature, error) {
	extras, err := p.client.FetchExtras(ctx, name, version, refresh)
	if err != nil {
		return nil, translate(err, name, version)
	}

	out := make([]deps.Feature, 0, len(extras))
	for _, e := range extras {
		out = append(out, deps.Feature{Name: e.Name, Dependencies: e.Dependencies})
	}
	return out, nil
}

func translate(err error, name, version string) error {
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return &deps.NotFoundError{Name: name, Version: version}
	case errors.Is(err, integrations.ErrNetwork):
		return fmt.Errorf("%w: %v", deps.ErrTransient, err)
	default:
		return err
	}
}
