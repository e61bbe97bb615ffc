package deps

// DepKind classifies a dependency edge as reported by the registry.
type DepKind string

const (
	KindNormal DepKind = "normal"
	KindDev    DepKind = "dev"
	KindBuild  DepKind = "build"
)

// Status is the availability classification of one package.
type Status string

const (
	// StatusPackaged means the distribution index provides the package.
	StatusPackaged Status = "packaged"
	// StatusMissing means no distribution package provides it.
	StatusMissing Status = "missing"
	// StatusUnknown means the verdict could not be determined (transient
	// registry failure or unavailable checker on a non-root node).
	StatusUnknown Status = "unknown"
)

// Verdict is the outcome of checking one package against the distribution.
type Verdict struct {
	Status Status `json:"status"`
	// Versions holds the distribution versions found, ascending.
	// Non-empty exactly when Status is packaged.
	Versions []string `json:"versions,omitempty"`
	// Packages holds the distribution package names providing the match,
	// which may differ from the ecosystem name.
	Packages []string `json:"packages,omitempty"`
}

// PackageInfo is the result of resolving a package against its registry.
// Immutable after creation.
type PackageInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	License     string `json:"license,omitempty"`
	Homepage    string `json:"homepage,omitempty"`
	Repository  string `json:"repository,omitempty"`
}

// Dependency is one edge from a parent package to a child, as reported by
// the registry. Requirement is the raw version specifier and is never
// evaluated by the engine.
type Dependency struct {
	Name        string  `json:"name"`
	Requirement string  `json:"requirement"`
	Optional    bool    `json:"optional"`
	Kind        DepKind `json:"kind"`
}

// Feature is a feature flag (crate feature, Python extra) with the
// dependencies it activates.
type Feature struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
}

// Node is one vertex in the resolved dependency tree. A node is owned by its
// parent and never mutated after its subtree is fully expanded.
type Node struct {
	Name    string  `json:"name"`
	Version string  `json:"version,omitempty"`
	Verdict Verdict `json:"verdict"`
	License string  `json:"license,omitempty"`

	// Optional marks an edge the registry reports as optional.
	Optional bool `json:"optional,omitempty"`
	// NotFound marks a dependency the registry itself doesn't know.
	NotFound bool `json:"not_found,omitempty"`
	// CycleRef marks a back-reference to an already-expanded identity;
	// such nodes have no children and represent no new work.
	CycleRef bool `json:"cycle_ref,omitempty"`
	// Truncated marks a node whose real dependencies were cut by the
	// depth limit, distinguishing it from a genuine leaf.
	Truncated bool `json:"truncated,omitempty"`

	Children []*Node `json:"dependencies,omitempty"`
}

// Walk visits n and every descendant in depth-first pre-order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
