package deps

import (
	"context"
	"errors"
	"path"
	"time"

	"github.com/pkgscout/pkgscout/pkg/observability"
)

// DefaultMaxDepth bounds traversal depth when the caller doesn't set one.
const DefaultMaxDepth = 50

// Observer receives traversal progress callbacks. Implementations must be
// cheap; they run inline with the traversal.
type Observer interface {
	// OnVisit fires when a node begins expansion.
	OnVisit(name string, depth int)
	// OnDiscovered fires after a node's dependency edges are fetched and
	// filtered, with the number of children that will be expanded.
	OnDiscovered(count int)
	// OnVerdict fires once a node's availability verdict is known.
	OnVerdict(name string, status Status)
}

type noopObserver struct{}

func (noopObserver) OnVisit(string, int)      {}
func (noopObserver) OnDiscovered(int)         {}
func (noopObserver) OnVerdict(string, Status) {}

// Config controls a single build.
type Config struct {
	// MaxDepth is the maximum distance from the root; non-positive means
	// DefaultMaxDepth.
	MaxDepth int
	// IncludeOptional expands optional dependency edges instead of
	// dropping them.
	IncludeOptional bool
	// Exclude holds glob patterns matched against normalized dependency
	// names; matching edges are skipped entirely. The root is never
	// excluded.
	Exclude []string
	// Refresh bypasses cached registry and distribution answers.
	Refresh bool
	// Observer receives progress callbacks; nil means none.
	Observer Observer
	// Logf receives debug lines; nil means discard.
	Logf func(format string, args ...any)
}

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.Observer == nil {
		c.Observer = noopObserver{}
	}
	if c.Logf == nil {
		c.Logf = func(string, ...any) {}
	}
	return c
}

type builder struct {
	provider Provider
	checker  AvailabilityChecker
	cfg      Config

	// visited maps "name@version" identities to their expanded node.
	// Entries are inserted before expansion so cycles resolve to the
	// in-flight node.
	visited map[string]*Node
}

// Build resolves the dependency tree rooted at name and checks every node
// against the distribution. An empty version means the registry's latest
// release.
//
// Errors on the root are fatal and returned as a [BuildError]. Errors on
// deeper nodes degrade that node's verdict and never fail the build, except
// context cancellation, which always aborts.
func Build(ctx context.Context, provider Provider, checker AvailabilityChecker, name, version string, cfg Config) (*Node, error) {
	cfg = cfg.withDefaults()
	b := &builder{
		provider: provider,
		checker:  checker,
		cfg:      cfg,
		visited:  make(map[string]*Node),
	}

	start := time.Now()
	observability.Resolve().OnResolveStart(ctx, provider.Name(), name)
	root, err := b.expand(ctx, name, version, 0, false)
	observability.Resolve().OnResolveComplete(ctx, provider.Name(), name, len(b.visited), time.Since(start), err)
	if err != nil {
		return nil, &BuildError{Root: name, Cause: err}
	}
	return root, nil
}

// identity is the visit-set key for one package. Version-less requests share
// a single identity so a package resolved "latest" is expanded once.
func identity(name, version string) string {
	if version == "" {
		version = "unspecified"
	}
	return name + "@" + version
}

func (b *builder) expand(ctx context.Context, name, version string, depth int, optional bool) (*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	norm := b.provider.NormalizeName(name)
	id := identity(norm, version)

	if prev, ok := b.visited[id]; ok {
		return &Node{
			Name:     prev.Name,
			Version:  prev.Version,
			Verdict:  prev.Verdict,
			Optional: optional,
			CycleRef: true,
		}, nil
	}

	node := &Node{Name: norm, Version: version, Optional: optional}
	b.visited[id] = node
	b.cfg.Observer.OnVisit(norm, depth)

	info, err := b.provider.Resolve(ctx, norm, version, b.cfg.Refresh)
	if err != nil {
		return b.degrade(node, depth, err)
	}
	node.Version = info.Version
	node.License = info.License
	observability.Resolve().OnNodeExpanded(ctx, norm, depth)

	verdict, err := b.checker.Check(ctx, b.provider.Provides(norm), b.providesAlternatives(norm))
	if err != nil {
		return b.degrade(node, depth, err)
	}
	node.Verdict = verdict
	b.cfg.Observer.OnVerdict(norm, verdict.Status)

	edges, err := b.provider.Dependencies(ctx, norm, info.Version, b.cfg.Refresh)
	if err != nil {
		return b.degrade(node, depth, err)
	}
	edges = b.filter(edges)
	b.cfg.Observer.OnDiscovered(len(edges))

	if depth >= b.cfg.MaxDepth {
		if len(edges) > 0 {
			node.Truncated = true
			b.cfg.Logf("depth limit %d reached at %s, %d edges cut", b.cfg.MaxDepth, norm, len(edges))
		}
		return node, nil
	}

	for _, edge := range edges {
		child, err := b.expand(ctx, edge.Name, "", depth+1, edge.Optional)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

// degrade applies the failure policy: fatal at the root, a downgraded
// verdict anywhere deeper. Cancellation is always fatal.
func (b *builder) degrade(node *Node, depth int, err error) (*Node, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if depth == 0 {
		return nil, err
	}
	if errors.Is(err, ErrNotFound) {
		node.NotFound = true
		node.Verdict = Verdict{Status: StatusMissing}
		b.cfg.Logf("%s not found on %s", node.Name, b.provider.Registry())
	} else {
		node.Verdict = Verdict{Status: StatusUnknown}
		b.cfg.Logf("degrading %s to unknown: %v", node.Name, err)
	}
	b.cfg.Observer.OnVerdict(node.Name, node.Verdict.Status)
	return node, nil
}

func (b *builder) providesAlternatives(norm string) []string {
	alts := b.provider.AlternativeNames(norm)
	patterns := make([]string, 0, len(alts))
	for _, alt := range alts {
		patterns = append(patterns, b.provider.Provides(alt))
	}
	return patterns
}

// filter drops non-runtime, optional (unless included), and excluded edges.
func (b *builder) filter(edges []Dependency) []Dependency {
	kept := edges[:0:0]
	for _, e := range edges {
		if e.Kind != "" && e.Kind != KindNormal {
			continue
		}
		if e.Optional && !b.cfg.IncludeOptional {
			continue
		}
		if b.excluded(b.provider.NormalizeName(e.Name)) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func (b *builder) excluded(name string) bool {
	for _, pattern := range b.cfg.Exclude {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
