package report

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
)

// SVGReporter renders the dependency graph as an SVG image by laying out the
// DOT form with Graphviz.
type SVGReporter struct{}

func (r *SVGReporter) Format() string { return "svg" }

func (r *SVGReporter) Render(w io.Writer, d Data) error {
	ctx := context.Background()

	g, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("initializing graphviz: %w", err)
	}
	defer g.Close()

	graph, err := graphviz.ParseBytes(buildDot(d))
	if err != nil {
		return fmt.Errorf("parsing graph: %w", err)
	}
	defer graph.Close()

	if err := g.Render(ctx, graph, graphviz.SVG, w); err != nil {
		return fmt.Errorf("rendering svg: %w", err)
	}
	return nil
}
