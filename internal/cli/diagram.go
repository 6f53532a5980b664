package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fluxlab/flowsheet/pkg/errors"
	"github.com/fluxlab/flowsheet/pkg/pipeline"
)

// diagramOpts holds the command-line flags for the diagram command.
type diagramOpts struct {
	output   string   // output file path (single format) or base path (multiple)
	formats  []string // output formats: drawio, dot, svg, png, json
	xSpacing float64  // horizontal spacing between layers
	ySpacing float64  // vertical spacing between row slots
	pageName string   // draw.io page name
	animate  bool     // animate flow edges in draw.io output
	noCache  bool     // disable result caching
	refresh  bool     // recompute even when cached results exist
}

// diagramCommand creates the diagram command for rendering snapshots.
// It supports multiple output formats written side by side (drawio, dot,
// svg, png, json).
//
// Default settings:
//   - format: drawio
//   - spacing: 160x120 diagram units (configurable via flowsheet.toml)
//   - caching: enabled, keyed on snapshot content and layout options
func (c *CLI) diagramCommand() *cobra.Command {
	var formatsStr string
	opts := diagramOpts{}

	cmd := &cobra.Command{
		Use:   "diagram [snapshot]",
		Short: "Render a model snapshot as a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runDiagram(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): drawio (default), dot, svg, png, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.xSpacing, "x-spacing", 0, "horizontal spacing between layers")
	cmd.Flags().Float64Var(&opts.ySpacing, "y-spacing", 0, "vertical spacing between row slots")
	cmd.Flags().StringVar(&opts.pageName, "page", "", "draw.io page name")
	cmd.Flags().BoolVar(&opts.animate, "animate", false, "animate flow edges in draw.io output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable result caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached results exist")

	return cmd
}

// runDiagram executes the pipeline for the snapshot and writes every
// requested format next to the base path.
func (c *CLI) runDiagram(ctx context.Context, input string, opts *diagramOpts) error {
	logger := loggerFromContext(ctx)
	p := newProgress(logger)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	pOpts := c.pipelineOptions()
	pOpts.SnapshotPath = input
	pOpts.Formats = opts.formats
	pOpts.Refresh = opts.refresh
	applyDiagramFlags(&pOpts, opts)

	spinner := newSpinnerWithContext(ctx, "Rendering "+filepath.Base(input))
	spinner.Start()

	result, err := runner.Execute(ctx, pOpts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Failed to render %s", input))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	name := result.Snapshot.Name
	if name == "" {
		name = filepath.Base(input)
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %s", name))

	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := writeArtifact(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}

	printStats(result.Stats.VertexCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	if containsFormat(opts.formats, pipeline.FormatDrawio) {
		printNextStep("Open the diagram", "https://app.diagrams.net")
	}

	p.done(fmt.Sprintf("Rendered %d format(s)", len(opts.formats)))
	return nil
}

// applyDiagramFlags overrides config-derived options with explicit flags.
func applyDiagramFlags(pOpts *pipeline.Options, opts *diagramOpts) {
	if opts.xSpacing != 0 {
		pOpts.XSpacing = opts.xSpacing
	}
	if opts.ySpacing != 0 {
		pOpts.YSpacing = opts.ySpacing
	}
	if opts.pageName != "" {
		pOpts.PageName = opts.pageName
	}
	if opts.animate {
		pOpts.Animate = true
	}
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a known format extension, it strips that extension.
// This is used when generating multiple files (e.g., model.drawio, model.svg).
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifact validates the target path and writes the artifact with 0644
// permissions, creating parent directories as needed.
func writeArtifact(path string, data []byte) error {
	if err := errors.ValidateOutputPath(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// containsFormat reports whether format is among the requested formats.
func containsFormat(formats []string, format string) bool {
	for _, f := range formats {
		if f == format {
			return true
		}
	}
	return false
}
