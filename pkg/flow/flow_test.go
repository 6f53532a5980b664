package flow

import (
	"errors"
	"testing"
)

func TestAddVertex(t *testing.T) {
	tests := []struct {
		name    string
		build   func(g *Graph) error
		wantErr error
	}{
		{
			name:  "Valid",
			build: func(g *Graph) error { return g.AddVertex("unit1", KindUnit) },
		},
		{
			name:    "EmptyID",
			build:   func(g *Graph) error { return g.AddVertex("", KindNode) },
			wantErr: ErrInvalidVertexID,
		},
		{
			name: "Duplicate",
			build: func(g *Graph) error {
				if err := g.AddVertex("n", KindNode); err != nil {
					return err
				}
				return g.AddVertex("n", KindProfile)
			},
			wantErr: ErrDuplicateVertex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			err := tt.build(g)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddVertexKeepsFirstRegistration(t *testing.T) {
	g := New()
	if err := g.AddVertex("x", KindUnit); err != nil {
		t.Fatalf("AddVertex: %v", err)
	}
	if err := g.AddVertex("x", KindNode); !errors.Is(err, ErrDuplicateVertex) {
		t.Fatalf("duplicate err = %v, want ErrDuplicateVertex", err)
	}

	v, ok := g.Vertex("x")
	if !ok {
		t.Fatal("vertex x missing")
	}
	if v.Kind != KindUnit {
		t.Errorf("kind = %v, want KindUnit", v.Kind)
	}
}

func TestAddEdge(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		wantErr  error
	}{
		{name: "Valid", from: "a", to: "b"},
		{name: "UnknownSource", from: "missing", to: "b", wantErr: ErrUnknownVertex},
		{name: "UnknownTarget", from: "a", to: "missing", wantErr: ErrUnknownVertex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			if err := g.AddVertex("a", KindNode); err != nil {
				t.Fatalf("AddVertex: %v", err)
			}
			if err := g.AddVertex("b", KindNode); err != nil {
				t.Fatalf("AddVertex: %v", err)
			}

			err := g.AddEdge(tt.from, tt.to)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParallelEdgesKeepMultiplicity(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b"} {
		if err := g.AddVertex(id, KindNode); err != nil {
			t.Fatalf("AddVertex(%s): %v", id, err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := g.AddEdge("a", "b"); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}

	if got := g.EdgeCount(); got != 3 {
		t.Errorf("EdgeCount = %d, want 3", got)
	}
	if got := g.OutDegree("a"); got != 3 {
		t.Errorf("OutDegree(a) = %d, want 3", got)
	}
	if got := g.InDegree("b"); got != 3 {
		t.Errorf("InDegree(b) = %d, want 3", got)
	}
	if got := g.Degree("b"); got != 3 {
		t.Errorf("Degree(b) = %d, want 3", got)
	}
}

func TestRoots(t *testing.T) {
	g := New()
	for _, id := range []string{"p1", "p2", "n1"} {
		if err := g.AddVertex(id, KindNode); err != nil {
			t.Fatalf("AddVertex(%s): %v", id, err)
		}
	}
	if err := g.AddEdge("p1", "n1"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge("p2", "n1"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	roots := g.Roots()
	want := []string{"p1", "p2"}
	if len(roots) != len(want) {
		t.Fatalf("roots = %v, want %v", roots, want)
	}
	for i, id := range want {
		if roots[i] != id {
			t.Errorf("roots[%d] = %s, want %s", i, roots[i], id)
		}
	}
}

func TestDefaultSize(t *testing.T) {
	tests := []struct {
		kind          Kind
		width, height float64
	}{
		{KindUnit, 120, 60},
		{KindProfile, 80, 80},
		{KindNode, 80, 40},
		{KindOther, 80, 40},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			w, h := DefaultSize(tt.kind)
			if w != tt.width || h != tt.height {
				t.Errorf("DefaultSize(%v) = %v×%v, want %v×%v", tt.kind, w, h, tt.width, tt.height)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		tag  string
		want Kind
	}{
		{"Unit", KindUnit},
		{"Node", KindNode},
		{"Profile", KindProfile},
		{"Connection", KindOther},
		{"Decision", KindOther},
		{"", KindOther},
	}

	for _, tt := range tests {
		if got := ParseKind(tt.tag); got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
}

func TestVerticesInsertionOrder(t *testing.T) {
	g := New()
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		if err := g.AddVertex(id, KindProfile); err != nil {
			t.Fatalf("AddVertex(%s): %v", id, err)
		}
	}

	views := g.Vertices()
	if len(views) != len(ids) {
		t.Fatalf("len(Vertices) = %d, want %d", len(views), len(ids))
	}
	for i, id := range ids {
		if views[i].ID != id {
			t.Errorf("Vertices()[%d].ID = %s, want %s", i, views[i].ID, id)
		}
	}
}
