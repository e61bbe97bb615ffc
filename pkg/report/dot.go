package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkgscout/pkgscout/pkg/deps"
)

// DotReporter renders the tree as a Graphviz digraph. Back-references are
// drawn as dashed edges to the already-emitted node, so the output is the
// dependency graph rather than the unrolled tree.
type DotReporter struct{}

func (r *DotReporter) Format() string { return "dot" }

func (r *DotReporter) Render(w io.Writer, d Data) error {
	_, err := w.Write(buildDot(d))
	return err
}

func buildDot(d Data) []byte {
	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\"];\n")

	ids := make(map[string]string)
	emitDotNodes(&b, d.Root, ids)
	emitDotEdges(&b, d.Root, ids)

	b.WriteString("}\n")
	return []byte(b.String())
}

func dotKey(n *deps.Node) string { return n.Name + "@" + n.Version }

func emitDotNodes(b *strings.Builder, n *deps.Node, ids map[string]string) {
	if n.CycleRef {
		return
	}
	key := dotKey(n)
	if _, ok := ids[key]; !ok {
		id := fmt.Sprintf("n%d", len(ids))
		ids[key] = id

		label := n.Name
		if n.Version != "" {
			label += "\\n" + n.Version
		}
		fmt.Fprintf(b, "  %s [label=\"%s\", fillcolor=\"%s\"];\n", id, escapeDot(label), dotColor(n))
	}
	for _, c := range n.Children {
		emitDotNodes(b, c, ids)
	}
}

func emitDotEdges(b *strings.Builder, n *deps.Node, ids map[string]string) {
	if n.CycleRef {
		return
	}
	from := ids[dotKey(n)]
	for _, c := range n.Children {
		to, ok := ids[dotKey(c)]
		if !ok {
			continue
		}
		attrs := ""
		if c.CycleRef {
			attrs = " [style=dashed]"
		} else if c.Optional {
			attrs = " [style=dotted]"
		}
		fmt.Fprintf(b, "  %s -> %s%s;\n", from, to, attrs)
		emitDotEdges(b, c, ids)
	}
}

func dotColor(n *deps.Node) string {
	switch n.Verdict.Status {
	case deps.StatusPackaged:
		return "palegreen"
	case deps.StatusMissing:
		return "lightcoral"
	default:
		return "khaki"
	}
}

func escapeDot(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
