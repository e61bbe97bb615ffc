// Package rust adapts the crates.io registry to the resolution engine.
package rust

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkgscout/pkgscout/pkg/cache"
	"github.com/pkgscout/pkgscout/pkg/deps"
	"github.com/pkgscout/pkgscout/pkg/integrations"
	"github.com/pkgscout/pkgscout/pkg/integrations/crates"
)

// Language registers the Rust ecosystem.
var Language = deps.Language{
	Name:        "rust",
	DisplayName: "Rust",
	Registry:    "crates.io",
	Aliases:     []string{"rs", "cargo", "crates", "crates.io"},
	NewProvider: func(store cache.Cache, ttl time.Duration) deps.Provider {
		return New(store, ttl)
	},
}

// Provider resolves Rust crates against crates.io.
type Provider struct {
	client *crates.Client
}

// New creates a Rust provider caching registry answers in store.
func New(store cache.Cache, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = deps.DefaultRegistryTTL
	}
	return &Provider{client: crates.NewClient(store, ttl)}
}

func (p *Provider) Name() string     { return "rust" }
func (p *Provider) Registry() string { return "crates.io" }

// NormalizeName lowercases and maps underscores to hyphens; crates.io treats
// the two spellings as the same crate.
func (p *Provider) NormalizeName(name string) string {
	return integrations.NormalizePkgName(name)
}

// AlternativeNames returns the underscore spelling when it differs.
func (p *Provider) AlternativeNames(name string) []string {
	alt := strings.ReplaceAll(name, "-", "_")
	if alt == name {
		return nil
	}
	return []string{alt}
}

// Provides maps a crate name to the distribution's virtual provides pattern.
func (p *Provider) Provides(name string) string {
	return fmt.Sprintf("crate(%s)", name)
}

func (p *Provider) Resolve(ctx context.Context, name, version string, refresh bool) (*deps.PackageInfo, error) {
	info, err := p.client.FetchCrate(ctx, name, refresh)
	if err != nil {
		return nil, translate(err, name, "")
	}

	resolved := info.Version
	if version != "" && version != info.Version {
		// The crate exists; verify the pinned version does too.
		if _, err := p.client.FetchFeatures(ctx, name, version, refresh); err != nil {
			return nil, translate(err, name, version)
		}
		resolved = version
	}

	return &deps.PackageInfo{
		Name:        info.Name,
		Version:     resolved,
		Description: info.Description,
		License:     info.License,
		Homepage:    info.Homepage,
		Repository:  info.Repository,
	}, nil
}

func (p *Provider) Dependencies(ctx context.Context, name, version string, refresh bool) ([]deps.Dependency, error) {
	edges, err := p.client.FetchDependencies(ctx, name, version, refresh)
	if err != nil {
		return nil, translate(err, name, version)
	}

	out := make([]deps.Dependency, 0, len(edges))
	for _, e := range edges {
		out = append(out, deps.Dependency{
			Name:        e.Name,
			Requirement: e.Requirement,
			Optional:    e.Optional,
			Kind:        mapKind(e.Kind),
		})
	}
	return out, nil
}

// Features returns the crate's feature flags.
func (p *Provider) Features(ctx context.Context, name, version string, refresh bool) ([]deps.Feature, error) {
	features, err := p.client.FetchFeatures(ctx, name, version, refresh)
	if err != nil {
		return nil, translate(err, name, version)
	}

	out := make([]deps.Feature, 0, len(features))
	for _, f := range features {
		out = append(out, deps.Feature{Name: f.Name, Dependencies: f.Dependencies})
	}
	return out, nil
}

func mapKind(kind string) deps.DepKind {
	switch kind {
	case "dev":
		return deps.KindDev
	case "build":
		return deps.KindBuild
	default:
		return deps.KindNormal
	}
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
