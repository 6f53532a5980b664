package flow

import "sort"

// Default grid spacing between layers (x) and between vertices within a
// layer (y), in diagram units.
const (
	DefaultXSpacing = 160.0
	DefaultYSpacing = 120.0
)

// centerline is the reference height vertices are vertically centered on.
// A vertex of height h is shifted by (centerline-h)/2 so that shapes of
// different heights align around a common axis.
const centerline = 80.0

type layoutConfig struct {
	xSpacing float64
	ySpacing float64
}

// LayoutOption customizes the layout grid.
type LayoutOption func(*layoutConfig)

// WithSpacing overrides the horizontal (between layers) and vertical
// (within a layer) grid spacing. Non-positive values keep the defaults.
func WithSpacing(x, y float64) LayoutOption {
	return func(c *layoutConfig) {
		if x > 0 {
			c.xSpacing = x
		}
		if y > 0 {
			c.ySpacing = y
		}
	}
}

// Layout computes a position for every vertex reachable from a root and
// returns the result keyed by vertex ID. It runs three phases:
//
//  1. Width adjustment: Node vertices widen with their degree so that edge
//     fan-out does not overlap the shape.
//  2. Layering: a multi-source BFS from all zero-indegree roots assigns each
//     reachable vertex the depth of the shortest directed root path.
//  3. Placement: layers become columns at fixed horizontal spacing, vertices
//     stack vertically within a column; a final pass over Unit vertices
//     pushes outbound neighbors to their right and inbound neighbors to
//     their left.
//
// Vertices unreachable from any root (pure cycles with no entry point) are
// never laid out and are absent from the result; callers must treat missing
// entries as an incompleteness warning, not an error. Each call performs a
// full, independent computation over the current graph state.
func (g *Graph) Layout(opts ...LayoutOption) map[string]Point {
	cfg := layoutConfig{xSpacing: DefaultXSpacing, ySpacing: DefaultYSpacing}
	for _, opt := range opts {
		opt(&cfg)
	}

	g.adjustNodeWidths()

	layers, visited, maxDepth := g.assignLayers()

	pos := make([]Point, len(g.arena))
	for depth := 0; depth <= maxDepth; depth++ {
		y := 0.0
		for _, h := range layers[depth] {
			pos[h] = Point{
				X: float64(depth) * cfg.xSpacing,
				Y: y + (centerline-g.arena[h].height)/2,
			}
			y += cfg.ySpacing
		}
	}

	g.correctUnits(pos, visited, cfg.xSpacing)

	result := make(map[string]Point, len(g.arena))
	for h := range g.arena {
		if visited[h] {
			result[g.arena[h].id] = pos[h]
		}
	}
	return result
}

// adjustNodeWidths recomputes the width of every Node vertex from its
// current degree, with parallel-edge multiplicity. The adjustment is a pure
// function of degree, so repeated calls are idempotent. Other kinds keep
// their default width.
func (g *Graph) adjustNodeWidths() {
	for h := range g.arena {
		v := &g.arena[h]
		if v.kind != KindNode {
			continue
		}
		degree := len(v.in) + len(v.out)
		v.width = max(40, float64(20+10*degree))
	}
}

// assignLayers runs the multi-source BFS layering. Roots are seeded in
// registration order, so ties among multiple reachable roots resolve
// deterministically by whichever path enters the queue first.
func (g *Graph) assignLayers() (layers map[int][]int, visited []bool, maxDepth int) {
	type item struct {
		handle int
		depth  int
	}

	visited = make([]bool, len(g.arena))
	queue := make([]item, 0, len(g.arena))
	for h := range g.arena {
		if len(g.arena[h].in) == 0 {
			queue = append(queue, item{handle: h})
			visited[h] = true
		}
	}

	layers = make(map[int][]int)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		layers[curr.depth] = append(layers[curr.depth], curr.handle)
		if curr.depth > maxDepth {
			maxDepth = curr.depth
		}

		for _, next := range g.arena[curr.handle].out {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, item{handle: next, depth: curr.depth + 1})
			}
		}
	}
	return layers, visited, maxDepth
}

// correctUnits enforces the Unit rendering convention: inbound flows arrive
// from the left, outbound flows depart to the right. Outbound neighbors at
// or left of the Unit are pushed right of it, inbound neighbors at or right
// of it are pushed left. Units are processed in ascending ID order and the
// pass is not iterated to a fixed point: a neighbor shared by two Units with
// conflicting requirements keeps the last correction applied.
func (g *Graph) correctUnits(pos []Point, visited []bool, xSpacing float64) {
	var units []int
	for h := range g.arena {
		if g.arena[h].kind == KindUnit && visited[h] {
			units = append(units, h)
		}
	}
	sort.Slice(units, func(i, j int) bool {
		return g.arena[units[i]].id < g.arena[units[j]].id
	})

	for _, u := range units {
		uv := &g.arena[u]
		for _, n := range uv.out {
			if visited[n] && pos[n].X <= pos[u].X {
				pos[n].X = pos[u].X + uv.width + xSpacing
			}
		}
		for _, n := range uv.in {
			if visited[n] && pos[n].X >= pos[u].X {
				pos[n].X = pos[u].X - xSpacing - g.arena[n].width
			}
		}
	}
}
