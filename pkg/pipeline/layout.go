package pipeline

import (
	"github.com/fluxlab/flowsheet/pkg/flow"
)

// ComputeLayout runs the layered layout with the spacing from opts.
func ComputeLayout(g *flow.Graph, opts Options) map[string]flow.Point {
	opts.SetLayoutDefaults()
	return g.Layout(flow.WithSpacing(opts.XSpacing, opts.YSpacing))
}
