package model

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fluxlab/flowsheet/pkg/flow"
)

const sampleSnapshot = `{
  "name": "district_heat",
  "components": [
    {"name": "grid", "tags": ["Profile"], "carrier": "electricity"},
    {"name": "elec", "tags": ["Node"], "carrier": "electricity"},
    {"name": "heat", "tags": ["Node"], "carrier": "heat", "has_state": true},
    {"name": "hp", "tags": ["Unit"]},
    {"name": "link", "tags": ["Connection"], "carrier": "heat"}
  ],
  "flows": [
    {"component": "grid", "node": "elec", "direction": "out"},
    {"component": "hp", "node": "elec", "direction": "in"},
    {"component": "hp", "node": "heat", "direction": "out"},
    {"component": "link", "node": "heat", "direction": "in"},
    {"component": "link", "node": "elec", "direction": "out"}
  ]
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sampleSnapshot))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Name != "district_heat" {
		t.Errorf("name = %q, want district_heat", s.Name)
	}
	if len(s.Components) != 5 {
		t.Errorf("components = %d, want 5", len(s.Components))
	}
	if len(s.Flows) != 5 {
		t.Errorf("flows = %d, want 5", len(s.Flows))
	}

	heat, ok := s.ComponentByName("heat")
	if !ok {
		t.Fatal("component heat missing")
	}
	if !heat.HasState {
		t.Error("heat.HasState = false, want true")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "BadJSON",
			input: `{"components": [`,
			want:  "decode snapshot",
		},
		{
			name:  "EmptyComponentName",
			input: `{"components": [{"name": "", "tags": ["Node"]}]}`,
			want:  "name cannot be empty",
		},
		{
			name:  "BadDirection",
			input: `{"components": [], "flows": [{"component": "a", "node": "b", "direction": "sideways"}]}`,
			want:  "direction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestComponentTag(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"Single", []string{"Node"}, "Node"},
		{"None", nil, ""},
		{"MultipleFirstSupported", []string{"Virtual", "Unit"}, "Unit"},
		{"MultipleAllSupported", []string{"Node", "Profile"}, "Node"},
		{"Unknown", []string{"Virtual"}, "Virtual"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Component{Name: "c", Tags: tt.tags}
			if got := c.Tag(); got != tt.want {
				t.Errorf("Tag() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildGraph(t *testing.T) {
	s, err := Parse([]byte(sampleSnapshot))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	g, err := BuildGraph(s, nil)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	// link is a Connection: it becomes an edge, not a vertex.
	if got := g.VertexCount(); got != 4 {
		t.Errorf("vertices = %d, want 4", got)
	}
	if _, ok := g.Vertex("link"); ok {
		t.Error("connection component link should not be a vertex")
	}

	// grid→elec, elec→hp (direction in), hp→heat, heat→elec (connection).
	if got := g.EdgeCount(); got != 4 {
		t.Errorf("edges = %d, want 4", got)
	}

	wantEdges := map[flow.Edge]bool{
		{From: "grid", To: "elec"}: true,
		{From: "elec", To: "hp"}:   true,
		{From: "hp", To: "heat"}:   true,
		{From: "heat", To: "elec"}: true,
	}
	for _, e := range g.Edges() {
		if !wantEdges[e] {
			t.Errorf("unexpected edge %s→%s", e.From, e.To)
		}
	}

	hp, _ := g.Vertex("hp")
	if hp.Kind != flow.KindUnit {
		t.Errorf("hp kind = %v, want KindUnit", hp.Kind)
	}
}

func TestBuildGraphSkipsUnknownTags(t *testing.T) {
	s := Snapshot{
		Components: []Component{
			{Name: "n", Tags: []string{"Node"}},
			{Name: "ghost", Tags: []string{"Virtual"}},
		},
	}

	g, err := BuildGraph(s, nil)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if got := g.VertexCount(); got != 1 {
		t.Errorf("vertices = %d, want 1", got)
	}
}

func TestBuildGraphDuplicateComponent(t *testing.T) {
	s := Snapshot{
		Components: []Component{
			{Name: "n", Tags: []string{"Node"}},
			{Name: "n", Tags: []string{"Profile"}},
		},
	}

	_, err := BuildGraph(s, nil)
	if !errors.Is(err, flow.ErrDuplicateVertex) {
		t.Fatalf("err = %v, want ErrDuplicateVertex", err)
	}
}

func TestBuildGraphUnknownFlowEndpoint(t *testing.T) {
	s := Snapshot{
		Components: []Component{{Name: "n", Tags: []string{"Node"}}},
		Flows:      []Flow{{Component: "missing", Node: "n", Direction: DirectionOut}},
	}

	_, err := BuildGraph(s, nil)
	if !errors.Is(err, flow.ErrUnknownVertex) {
		t.Fatalf("err = %v, want ErrUnknownVertex", err)
	}
}

func TestBuildGraphConnectionMissingRow(t *testing.T) {
	s := Snapshot{
		Components: []Component{
			{Name: "a", Tags: []string{"Node"}},
			{Name: "link", Tags: []string{"Connection"}},
		},
		Flows: []Flow{{Component: "link", Node: "a", Direction: DirectionIn}},
	}

	_, err := BuildGraph(s, nil)
	if err == nil || !strings.Contains(err.Error(), "connection link") {
		t.Fatalf("err = %v, want connection endpoint error", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, err := Parse([]byte(sampleSnapshot))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := WriteFile(s, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if back.Name != s.Name || len(back.Components) != len(s.Components) || len(back.Flows) != len(s.Flows) {
		t.Errorf("round trip mismatch: %+v vs %+v", back, s)
	}
}
