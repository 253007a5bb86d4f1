// Package export writes the structure of a network as Graphviz DOT and
// renders it to SVG.
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/chazu/nodal/pkg/graph"
)

// Options configures DOT output.
type Options struct {
	// Detailed adds each node's function and port values to its label.
	Detailed bool
}

// ToDOT converts the children and connections of network to DOT. The
// rendered child is highlighted; edges are labeled with the input port
// they feed.
func ToDOT(network *graph.Node, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", network.Name())
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range network.Children() {
		attrs := []string{fmt.Sprintf("label=%q", label(n, opts.Detailed))}
		if n.Name() == network.RenderedChildName() {
			attrs = append(attrs, "fillcolor=\"#fff3b0\"", "penwidth=2")
		}
		if n.HasChildren() {
			attrs = append(attrs, "shape=box3d")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range network.Connections() {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", c.OutputNode, c.InputNode, c.InputPort)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func label(n *graph.Node, detailed bool) string {
	if !detailed {
		return n.Name()
	}
	parts := []string{n.Name()}
	if !n.HasChildren() && n.Function() != "" {
		parts = append(parts, n.Function())
	}
	for _, p := range n.Inputs() {
		if v := p.ValueString(); v != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", p.Name(), v))
		}
	}
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("export: parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("export: render: %w", err)
	}
	return buf.Bytes(), nil
}
