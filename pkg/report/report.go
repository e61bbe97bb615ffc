// Package report renders resolved dependency trees in multiple formats.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pkgscout/pkgscout/pkg/deps"
)

// DepStatus is the availability of one auxiliary (dev or build) dependency
// of the root package. These are reported flat, not resolved transitively.
type DepStatus struct {
	Name   string       `json:"name"`
	Kind   deps.DepKind `json:"kind"`
	Status deps.Status  `json:"status"`
}

// Data is everything a reporter needs to render one check. Reporters are
// read-only over it; nothing here reaches back into providers.
type Data struct {
	Language    string        `json:"language"`
	Registry    string        `json:"registry"`
	Root        *deps.Node    `json:"root"`
	Summary     deps.Summary  `json:"summary"`
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`

	MaxDepth        int      `json:"max_depth"`
	IncludeOptional bool     `json:"include_optional"`
	MissingOnly     bool     `json:"missing_only,omitempty"`
	Release         string   `json:"release,omitempty"`
	Repos           []string `json:"repos,omitempty"`

	// Features lists the root package's feature flags or extras.
	Features []deps.Feature `json:"features,omitempty"`
	// AuxDeps lists the root's dev and build dependencies with their own
	// availability verdicts.
	AuxDeps []DepStatus `json:"aux_dependencies,omitempty"`
}

// Reporter renders one output format.
type Reporter interface {
	// Format is the identifier users select, e.g. "json".
	Format() string
	// Render writes the report to w.
	Render(w io.Writer, d Data) error
}

var registry = map[string]Reporter{}

func register(r Reporter) {
	registry[r.Format()] = r
}

func init() {
	register(&StdoutReporter{})
	register(&JSONReporter{})
	register(&MarkdownReporter{})
	register(&DotReporter{})
	register(&SVGReporter{})
	register(&TemplateReporter{})
}

var aliases = map[string]string{
	"md":       "markdown",
	"term":     "stdout",
	"text":     "stdout",
	"tree":     "stdout",
	"graphviz": "dot",
	"tpl":      "template",
}

// Get returns the reporter for format, accepting a few common aliases.
func Get(format string) (Reporter, error) {
	if canonical, ok := aliases[format]; ok {
		format = canonical
	}
	r, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q (supported: %v)", format, Formats())
	}
	return r, nil
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
