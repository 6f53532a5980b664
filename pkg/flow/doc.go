// Package flow provides the layout graph for energy-system flow diagrams.
//
// # Overview
//
// Flowsheet renders solved energy-system models as flow diagrams: profiles
// feed carrier nodes, conversion units sit between nodes, and directed edges
// trace the carrier flows. This package provides the graph the layout engine
// operates on: typed vertices with per-kind geometry, directed edges with
// parallel-edge multiplicity, and the layered layout itself.
//
// # Basic Usage
//
// Create a graph with [New], register components with [Graph.AddVertex] and
// flows with [Graph.AddEdge], then compute positions once the graph is fully
// built:
//
//	g := flow.New()
//	g.AddVertex("grid", flow.KindProfile)
//	g.AddVertex("elec", flow.KindNode)
//	g.AddEdge("grid", "elec")
//	positions := g.Layout()
//
// The result maps each component ID to a canvas coordinate ready for a
// renderer. The graph is write-once/read-once: there is no removal API and
// no incremental layout.
//
// # Layout
//
// [Graph.Layout] produces a layered left-to-right layout: vertices are
// assigned to columns by BFS distance from the zero-indegree roots, stacked
// vertically within each column, and Unit vertices get a directional
// correction so inbound flows arrive from the left and outbound flows depart
// to the right. The layout is a best-effort initial placement - it does not
// minimize edge crossings and does not lay out vertices that are unreachable
// from every root (a cycle with no entry point). Callers should treat IDs
// missing from the result as an incompleteness warning.
//
// # Concurrency
//
// Graph is not safe for concurrent use. The intended lifecycle is a single
// caller building, laying out, and discarding the graph in one pass.
package flow
