package flow

import "errors"

var (
	// ErrInvalidVertexID is returned by [Graph.AddVertex] when the vertex ID
	// is empty. All vertices must have non-empty identifiers.
	ErrInvalidVertexID = errors.New("vertex ID must not be empty")

	// ErrDuplicateVertex is returned by [Graph.AddVertex] when a vertex with
	// the same ID was already registered. Re-registering a component is a
	// caller bug, not something to silently overwrite.
	ErrDuplicateVertex = errors.New("duplicate vertex ID")

	// ErrUnknownVertex is returned by [Graph.AddEdge] when an endpoint
	// references an ID that has not been registered yet.
	ErrUnknownVertex = errors.New("unknown vertex ID")
)

// Kind categorizes a vertex by the component type it represents.
// The kind drives default geometry and layout special-casing: Units are flow
// hubs drawn with inbound edges on the left and outbound edges on the right,
// Nodes widen with their degree, Profiles keep a fixed square shape.
type Kind int

const (
	// KindOther covers component types without dedicated rendering rules.
	KindOther Kind = iota
	// KindProfile represents an exogenous supply or demand profile.
	KindProfile
	// KindNode represents a carrier balance node.
	KindNode
	// KindUnit represents a conversion unit (flow hub).
	KindUnit
)

// ParseKind maps a component tag to its Kind.
// Unrecognized tags map to KindOther.
func ParseKind(tag string) Kind {
	switch tag {
	case "Unit":
		return KindUnit
	case "Node":
		return KindNode
	case "Profile":
		return KindProfile
	default:
		return KindOther
	}
}

// String returns the component tag for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindNode:
		return "Node"
	case KindProfile:
		return "Profile"
	default:
		return "Other"
	}
}

// DefaultSize returns the default rendered geometry for a kind.
// Node widths are provisional: the layout recomputes them from the vertex
// degree before positioning (see [Graph.Layout]).
func DefaultSize(k Kind) (width, height float64) {
	switch k {
	case KindUnit:
		return 120, 60
	case KindProfile:
		return 80, 80
	default:
		// Nodes and unrecognized kinds share the compact default.
		return 80, 40
	}
}

// Point is a 2-D canvas coordinate in diagram units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vertex is a read-only view of a registered vertex.
// Width reflects the degree-based adjustment once [Graph.Layout] has run.
type Vertex struct {
	ID     string
	Kind   Kind
	Width  float64
	Height float64
}

// Edge is a directed flow relation between two registered vertices.
type Edge struct {
	From string
	To   string
}

// vertex is the arena record. Adjacency holds arena handles in insertion
// order; parallel edges appear once per occurrence so that multiplicity
// feeds into degree-based widths.
type vertex struct {
	id            string
	kind          Kind
	width, height float64
	in, out       []int
}

// Graph is a mutable directed graph of typed diagram components.
// Vertices live in an arena indexed by a stable integer handle; the string
// ID is kept only in a lookup index, so external callers never hold
// references into the graph. The graph is built once, laid out once with
// [Graph.Layout], and then discarded.
//
// Graph is not safe for concurrent use.
type Graph struct {
	arena []vertex
	index map[string]int
	edges [][2]int
}

// New creates an empty flow graph.
func New() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddVertex registers a component under the given ID with default geometry
// for its kind. Returns ErrInvalidVertexID for an empty ID and
// ErrDuplicateVertex if the ID was already registered.
func (g *Graph) AddVertex(id string, kind Kind) error {
	if id == "" {
		return ErrInvalidVertexID
	}
	if _, exists := g.index[id]; exists {
		return ErrDuplicateVertex
	}
	w, h := DefaultSize(kind)
	g.index[id] = len(g.arena)
	g.arena = append(g.arena, vertex{id: id, kind: kind, width: w, height: h})
	return nil
}

// AddEdge adds a directed flow edge between two registered vertices.
// Returns ErrUnknownVertex if either endpoint is missing. Parallel edges
// between the same pair are allowed and kept distinct.
func (g *Graph) AddEdge(from, to string) error {
	src, ok := g.index[from]
	if !ok {
		return ErrUnknownVertex
	}
	dst, ok := g.index[to]
	if !ok {
		return ErrUnknownVertex
	}
	g.edges = append(g.edges, [2]int{src, dst})
	g.arena[src].out = append(g.arena[src].out, dst)
	g.arena[dst].in = append(g.arena[dst].in, src)
	return nil
}

// VertexCount returns the number of registered vertices.
func (g *Graph) VertexCount() int { return len(g.arena) }

// EdgeCount returns the number of edges, counting parallel edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Vertex returns the view of the vertex with the given ID.
func (g *Graph) Vertex(id string) (Vertex, bool) {
	h, ok := g.index[id]
	if !ok {
		return Vertex{}, false
	}
	return g.view(h), true
}

// Vertices returns views of all vertices in registration order.
func (g *Graph) Vertices() []Vertex {
	out := make([]Vertex, len(g.arena))
	for h := range g.arena {
		out[h] = g.view(h)
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = Edge{From: g.arena[e[0]].id, To: g.arena[e[1]].id}
	}
	return out
}

// InDegree returns the number of inbound edges, with parallel multiplicity.
// Returns 0 for unknown IDs.
func (g *Graph) InDegree(id string) int {
	if h, ok := g.index[id]; ok {
		return len(g.arena[h].in)
	}
	return 0
}

// OutDegree returns the number of outbound edges, with parallel multiplicity.
// Returns 0 for unknown IDs.
func (g *Graph) OutDegree(id string) int {
	if h, ok := g.index[id]; ok {
		return len(g.arena[h].out)
	}
	return 0
}

// Degree returns the total number of incident edges on the vertex.
func (g *Graph) Degree(id string) int {
	return g.InDegree(id) + g.OutDegree(id)
}

// Roots returns the IDs of all vertices without inbound edges, in
// registration order. These seed the BFS layering.
func (g *Graph) Roots() []string {
	var roots []string
	for h := range g.arena {
		if len(g.arena[h].in) == 0 {
			roots = append(roots, g.arena[h].id)
		}
	}
	return roots
}

func (g *Graph) view(h int) Vertex {
	v := &g.arena[h]
	return Vertex{ID: v.id, Kind: v.kind, Width: v.width, Height: v.height}
}
