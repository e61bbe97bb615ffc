package deps

import "context"

// Provider adapts one language ecosystem's registry to the engine. A
// provider resolves package metadata and dependency edges; it never talks to
// the distribution index.
//
// Implementations must be safe for concurrent use and should translate
// registry failures to [ErrNotFound] or [ErrTransient] wrapped errors so the
// engine can apply its failure policy.
type Provider interface {
	// Name returns the canonical language identifier, e.g. "rust".
	Name() string
	// Registry returns a human-readable registry name, e.g. "crates.io".
	Registry() string

	// Resolve fetches metadata for a package. An empty version selects the
	// registry's latest release. When refresh is true, cached registry
	// responses are bypassed.
	Resolve(ctx context.Context, name, version string, refresh bool) (*PackageInfo, error)
	// Dependencies fetches the dependency edges of a resolved package
	// version, in registry order.
	Dependencies(ctx context.Context, name, version string, refresh bool) ([]Dependency, error)

	// NormalizeName maps a package name to its canonical registry form.
	// Must be idempotent.
	NormalizeName(name string) string
	// AlternativeNames returns spelling variants worth probing against the
	// distribution when the canonical name has no match. May be empty.
	AlternativeNames(name string) []string
	// Provides maps a package name to the distribution's virtual provides
	// pattern, e.g. "crate(serde)" or "python3dist(requests)".
	Provides(name string) string
}

// FeatureProvider is implemented by providers whose ecosystem has feature
// flags (crate features, Python extras).
type FeatureProvider interface {
	Provider
	Features(ctx context.Context, name, version string, refresh bool) ([]Feature, error)
}

// AvailabilityChecker answers whether a distribution package provides the
// given pattern. The primary pattern is tried first, then each alternative
// until one matches.
type AvailabilityChecker interface {
	Check(ctx context.Context, primary string, alternatives []string) (Verdict, error)
}
