// Package drawio serializes flowsheet diagrams to the draw.io (mxGraph) XML
// format.
//
// The renderer follows the conventions of the original hand-tuned diagrams:
// profiles are rhombi, nodes are pill-shaped rectangles (filled when the
// node carries state), conversion units are hexagons, and every shape and
// edge is stroked in its carrier's color. Unit edges anchor on the hexagon's
// left/right midpoints so inbound flows visibly arrive from the left and
// outbound flows depart to the right, matching the layout's directional
// correction.
//
// Build a [Document] from a snapshot, graph, and layout result, then write
// it with [Document.WriteFile] or serialize with [Document.Marshal].
package drawio

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/fluxlab/flowsheet/pkg/carrier"
	"github.com/fluxlab/flowsheet/pkg/flow"
	"github.com/fluxlab/flowsheet/pkg/model"
)

// =============================================================================
// Style Strings
// =============================================================================

// Shape styles per component kind. These mirror the original diagram
// conventions; stroke and fill attributes are appended per component.
const (
	styleProfile = "rhombus;whiteSpace=wrap;html=1;"
	styleNode    = "rounded=1;whiteSpace=wrap;html=1;arcSize=50;"
	styleUnit    = "shape=hexagon;perimeter=hexagonPerimeter2;whiteSpace=wrap;html=1;fixedSize=1;"
	styleOther   = "whiteSpace=wrap;html=1;"
)

// unitStroke is the neutral stroke for conversion units, which belong to no
// single carrier.
const unitStroke = "#505050"

// stateFillOpacity is the fill opacity (percent) for nodes with state.
const stateFillOpacity = 15

// =============================================================================
// Options
// =============================================================================

// Options configures diagram serialization.
type Options struct {
	// PageName names the diagram page. Defaults to "sheet_1".
	PageName string

	// Animate renders flow edges with draw.io's flow animation instead of
	// the default dashed pattern.
	Animate bool

	// Palette resolves carrier colors. The zero value uses the built-ins.
	Palette carrier.Palette

	// Logger receives warnings about components without layout positions.
	// Defaults to a discard logger.
	Logger *log.Logger
}

func (o *Options) setDefaults() {
	if o.PageName == "" {
		o.PageName = "sheet_1"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// =============================================================================
// Document Construction
// =============================================================================

// Document is a buildable draw.io file.
type Document struct {
	file mxFile
}

// Build assembles a draw.io document from a snapshot, its layout graph, and
// the computed positions.
//
// Components missing from the layout result (unreachable cycle members) are
// placed at the origin and logged as a warning rather than dropped: an
// incomplete diagram the user can fix by hand beats a silently missing
// component.
func Build(s model.Snapshot, g *flow.Graph, positions map[string]flow.Point, opts Options) (*Document, error) {
	opts.setDefaults()

	page := mxGraphModel{
		Dx:        800,
		Dy:        600,
		Grid:      1,
		GridSize:  10,
		Tooltips:  1,
		Connect:   1,
		Arrows:    1,
		Fold:      1,
		Page:      1,
		PageScale: 1,
	}
	page.Root.Cells = []mxCell{
		{ID: "0"},
		{ID: "1", Parent: "0"},
	}

	cellIDs := make(map[string]string, g.VertexCount())
	for _, v := range g.Vertices() {
		comp, _ := s.ComponentByName(v.ID)
		pos, laidOut := positions[v.ID]
		if !laidOut {
			opts.Logger.Warn("component has no layout position, placing at origin",
				"component", v.ID)
		}

		id := cellID()
		cellIDs[v.ID] = id
		page.Root.Cells = append(page.Root.Cells, mxCell{
			ID:     id,
			Parent: "1",
			Value:  v.ID,
			Style:  shapeStyle(v.Kind, comp, opts.Palette),
			Vertex: "1",
			Geometry: &mxGeometry{
				X:      pos.X,
				Y:      pos.Y,
				Width:  v.Width,
				Height: v.Height,
				As:     "geometry",
			},
		})
	}

	links, err := model.Links(s)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		src, okSrc := cellIDs[l.From]
		dst, okDst := cellIDs[l.To]
		if !okSrc || !okDst {
			return nil, fmt.Errorf("link %s→%s references unknown component", l.From, l.To)
		}

		from, _ := g.Vertex(l.From)
		to, _ := g.Vertex(l.To)
		page.Root.Cells = append(page.Root.Cells, mxCell{
			ID:     cellID(),
			Parent: "1",
			Value:  l.Label,
			Style:  edgeStyle(l, from, to, s, opts),
			Edge:   "1",
			Source: src,
			Target: dst,
			Geometry: &mxGeometry{
				Relative: "1",
				As:       "geometry",
			},
		})
	}

	doc := &Document{
		file: mxFile{
			Host: "flowsheet",
			Diagrams: []mxDiagram{{
				ID:    cellID(),
				Name:  opts.PageName,
				Model: page,
			}},
		},
	}
	return doc, nil
}

// Marshal serializes the document as indented XML with a header.
func (d *Document) Marshal() ([]byte, error) {
	data, err := xml.MarshalIndent(d.file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal drawio: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}

// WriteFile writes the document to path, creating parent directories.
func (d *Document) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0644)
}

// cellID returns a fresh draw.io cell identifier.
func cellID() string {
	return "fs-" + uuid.NewString()
}

// =============================================================================
// Styling
// =============================================================================

// shapeStyle builds the mxGraph style string for a component shape.
func shapeStyle(kind flow.Kind, comp model.Component, palette carrier.Palette) string {
	color := palette.Color(comp.Carrier)
	switch kind {
	case flow.KindProfile:
		return styleProfile + stroke(color)
	case flow.KindNode:
		style := styleNode + stroke(color)
		if comp.HasState {
			style += fmt.Sprintf("fillColor=%s;fillOpacity=%d;", color, stateFillOpacity)
		}
		return style
	case flow.KindUnit:
		return styleUnit + stroke(unitStroke)
	default:
		return styleOther + stroke(color)
	}
}

// edgeStyle builds the mxGraph style string for an edge.
//
// Flow edges take the carrier color of their non-Unit endpoint (Units are
// neutral gray), anchor on Unit left/right midpoints, and start with an oval
// marker when leaving a Unit. Connection edges are drawn solid and thick
// with the source node's carrier color.
func edgeStyle(l model.Link, from, to flow.Vertex, s model.Snapshot, opts Options) string {
	fromComp, _ := s.ComponentByName(l.From)
	toComp, _ := s.ComponentByName(l.To)

	style := "rounded=1;jumpStyle=gap;jettySize=40;html=1;"

	if l.Connection {
		return style + stroke(opts.Palette.Color(fromComp.Carrier)) + "strokeWidth=3;"
	}

	switch {
	case from.Kind == flow.KindUnit:
		style += "exitX=1;exitY=0.5;startArrow=oval;" + stroke(opts.Palette.Color(toComp.Carrier))
	case to.Kind == flow.KindUnit:
		style += "entryX=0;entryY=0.5;" + stroke(opts.Palette.Color(fromComp.Carrier))
	default:
		style += stroke(opts.Palette.Color(toComp.Carrier))
	}

	if opts.Animate {
		style += "flowAnimation=1;"
	} else {
		style += "dashed=1;dashPattern=8 8;"
	}
	return style
}

func stroke(color string) string {
	return "strokeColor=" + color + ";"
}
