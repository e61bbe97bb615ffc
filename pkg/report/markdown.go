package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkgscout/pkgscout/pkg/deps"
)

// MarkdownReporter renders a report suitable for issue trackers and package
// review requests.
type MarkdownReporter struct{}

func (r *MarkdownReporter) Format() string { return "markdown" }

func (r *MarkdownReporter) Render(w io.Writer, d Data) error {
	fmt.Fprintf(w, "# Packaging status: %s\n\n", d.Root.Name)
	fmt.Fprintf(w, "Checked against the distribution index on %s. Registry: %s.\n\n",
		d.GeneratedAt.Format("2006-01-02"), d.Registry)

	fmt.Fprintln(w, "| | Count |")
	fmt.Fprintln(w, "|---|---|")
	fmt.Fprintf(w, "| Checked | %d |\n", d.Summary.TotalChecked)
	fmt.Fprintf(w, "| Packaged | %d |\n", d.Summary.Packaged)
	fmt.Fprintf(w, "| Missing | %d |\n", d.Summary.Missing)
	fmt.Fprintf(w, "| Unknown | %d |\n", d.Summary.Unknown)
	fmt.Fprintln(w)

	if len(d.Summary.MissingNames) > 0 {
		fmt.Fprintln(w, "## Missing packages")
		fmt.Fprintln(w)
		for _, name := range d.Summary.MissingNames {
			fmt.Fprintf(w, "- `%s`\n", name)
		}
		fmt.Fprintln(w)
	}

	if len(d.AuxDeps) > 0 {
		fmt.Fprintln(w, "## Dev and build dependencies")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Dependency | Kind | Status |")
		fmt.Fprintln(w, "|---|---|---|")
		for _, a := range d.AuxDeps {
			fmt.Fprintf(w, "| `%s` | %s | %s |\n", a.Name, a.Kind, a.Status)
		}
		fmt.Fprintln(w)
	}

	if !d.MissingOnly {
		fmt.Fprintln(w, "## Dependency tree")
		fmt.Fprintln(w)
		writeMarkdownNode(w, d.Root, 0)
	}
	return nil
}

func writeMarkdownNode(w io.Writer, n *deps.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s- `%s`%s %s%s\n", indent, n.Name, versionSuffix(n), statusWord(n), noteSuffix(n))
	for _, c := range n.Children {
		writeMarkdownNode(w, c, depth+1)
	}
}

func versionSuffix(n *deps.Node) string {
	if n.Version == "" {
		return ""
	}
	return " v" + n.Version
}

func statusWord(n *deps.Node) string {
	switch n.Verdict.Status {
	case deps.StatusPackaged:
		return "✅ packaged"
	case deps.StatusMissing:
		return "❌ missing"
	default:
		return "❓ unknown"
	}
}

func noteSuffix(n *deps.Node) string {
	var notes []string
	if n.CycleRef {
		notes = append(notes, "seen above")
	}
	if n.Truncated {
		notes = append(notes, "depth limit")
	}
	if n.NotFound {
		notes = append(notes, "not on registry")
	}
	if n.Optional {
		notes = append(notes, "optional")
	}
	if len(notes) == 0 {
		return ""
	}
	return " (" + strings.Join(notes, ", ") + ")"
}
