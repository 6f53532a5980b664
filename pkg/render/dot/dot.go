// Package dot renders flow graphs as Graphviz node-link diagrams.
//
// This is the quick-look alternative to the draw.io export: the DOT output
// delegates positioning to Graphviz instead of the flowsheet layout, which
// is useful for sanity-checking graph structure. Shapes and colors follow
// the same conventions as the draw.io renderer (profile diamond, node box,
// unit hexagon, carrier-colored strokes).
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/fluxlab/flowsheet/pkg/carrier"
	"github.com/fluxlab/flowsheet/pkg/flow"
	"github.com/fluxlab/flowsheet/pkg/model"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes kind and degree in node labels.
	Detailed bool

	// Palette resolves carrier colors. The zero value uses the built-ins.
	Palette carrier.Palette
}

// ToDOT converts a flow graph to Graphviz DOT format. The snapshot supplies
// carrier information for coloring; components absent from it render in the
// fallback color.
func ToDOT(g *flow.Graph, s model.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph flowsheet {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, v := range g.Vertices() {
		comp, _ := s.ComponentByName(v.ID)
		attrs := nodeAttrs(g, v, comp, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", v.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		color := edgeColor(g, s, e, opts.Palette)
		fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.From, e.To, color)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(g *flow.Graph, v flow.Vertex, comp model.Component, opts Options) []string {
	label := v.ID
	if opts.Detailed {
		label = fmt.Sprintf("%s\nkind: %s\ndegree: %d", v.ID, v.Kind, g.Degree(v.ID))
	}

	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch v.Kind {
	case flow.KindProfile:
		attrs = append(attrs, "shape=diamond")
	case flow.KindUnit:
		attrs = append(attrs, "shape=hexagon")
	default:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"")
	}

	color := carrierColor(v.Kind, comp, opts.Palette)
	attrs = append(attrs, fmt.Sprintf("color=%q", color))
	return attrs
}

// carrierColor picks the stroke for a vertex: units are neutral gray, every
// other kind takes its carrier color.
func carrierColor(kind flow.Kind, comp model.Component, palette carrier.Palette) string {
	if kind == flow.KindUnit {
		return "#505050"
	}
	return palette.Color(comp.Carrier)
}

// edgeColor takes the carrier color of the edge's non-Unit endpoint,
// preferring the target, mirroring the draw.io renderer.
func edgeColor(g *flow.Graph, s model.Snapshot, e flow.Edge, palette carrier.Palette) string {
	from, _ := g.Vertex(e.From)
	to, _ := g.Vertex(e.To)

	pick := e.To
	if to.Kind == flow.KindUnit && from.Kind != flow.KindUnit {
		pick = e.From
	}
	comp, _ := s.ComponentByName(pick)
	return palette.Color(comp.Carrier)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
