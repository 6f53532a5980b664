package drawio

import "encoding/xml"

// mxGraph XML document model, matching the subset of the draw.io file format
// the renderer emits.

type mxFile struct {
	XMLName  xml.Name    `xml:"mxfile"`
	Host     string      `xml:"host,attr"`
	Diagrams []mxDiagram `xml:"diagram"`
}

type mxDiagram struct {
	ID    string       `xml:"id,attr"`
	Name  string       `xml:"name,attr"`
	Model mxGraphModel `xml:"mxGraphModel"`
}

type mxGraphModel struct {
	Dx        int     `xml:"dx,attr"`
	Dy        int     `xml:"dy,attr"`
	Grid      int     `xml:"grid,attr"`
	GridSize  int     `xml:"gridSize,attr"`
	Tooltips  int     `xml:"tooltips,attr"`
	Connect   int     `xml:"connect,attr"`
	Arrows    int     `xml:"arrows,attr"`
	Fold      int     `xml:"fold,attr"`
	Page      int     `xml:"page,attr"`
	PageScale float64 `xml:"pageScale,attr"`
	Root      mxRoot  `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Value    string      `xml:"value,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Edge     string      `xml:"edge,attr,omitempty"`
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry,omitempty"`
}

type mxGeometry struct {
	X        float64 `xml:"x,attr,omitempty"`
	Y        float64 `xml:"y,attr,omitempty"`
	Width    float64 `xml:"width,attr,omitempty"`
	Height   float64 `xml:"height,attr,omitempty"`
	Relative string  `xml:"relative,attr,omitempty"`
	As       string  `xml:"as,attr"`
}
