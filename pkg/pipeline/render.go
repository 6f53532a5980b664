package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fluxlab/flowsheet/pkg/drawio"
	"github.com/fluxlab/flowsheet/pkg/flow"
	"github.com/fluxlab/flowsheet/pkg/model"
	"github.com/fluxlab/flowsheet/pkg/render/dot"
)

// RenderFromLayout generates output artifacts in the requested formats.
//
// The DOT source is shared between the dot, svg, and png formats so Graphviz
// input is only built once per run.
func RenderFromLayout(ctx context.Context, s model.Snapshot, g *flow.Graph, positions map[string]flow.Point, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	dotSrc := ""

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDrawio:
			data, err = renderDrawio(s, g, positions, opts)
		case FormatDOT:
			data = []byte(dotSource(&dotSrc, g, s, opts))
		case FormatSVG:
			data, err = dot.RenderSVG(ctx, dotSource(&dotSrc, g, s, opts))
		case FormatPNG:
			data, err = dot.RenderPNG(ctx, dotSource(&dotSrc, g, s, opts))
		case FormatJSON:
			data, err = json.MarshalIndent(positions, "", "  ")
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderDrawio(s model.Snapshot, g *flow.Graph, positions map[string]flow.Point, opts Options) ([]byte, error) {
	doc, err := drawio.Build(s, g, positions, drawio.Options{
		PageName: opts.PageName,
		Animate:  opts.Animate,
		Palette:  opts.Palette(),
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return doc.Marshal()
}

// dotSource builds the DOT graph once and memoizes it in src.
func dotSource(src *string, g *flow.Graph, s model.Snapshot, opts Options) string {
	if *src == "" {
		*src = dot.ToDOT(g, s, dot.Options{Palette: opts.Palette()})
	}
	return *src
}
