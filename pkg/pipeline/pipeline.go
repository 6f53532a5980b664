// Package pipeline provides the core diagram pipeline for flowsheet.
//
// This package implements the complete parse → layout → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Read and validate a model snapshot, build the flow graph
//  2. Layout: Compute positions for every reachable component
//  3. Render: Generate output in various formats (draw.io, DOT, SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    SnapshotPath: "model.json",
//	    Formats:      []string{"drawio"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	diagram := result.Artifacts["drawio"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fluxlab/flowsheet/pkg/cache"
	"github.com/fluxlab/flowsheet/pkg/carrier"
	"github.com/fluxlab/flowsheet/pkg/flow"
	"github.com/fluxlab/flowsheet/pkg/model"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Format constants for output formats.
const (
	FormatDrawio = "drawio"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
	FormatPNG    = "png"
	FormatJSON   = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDrawio: true,
	FormatDOT:    true,
	FormatSVG:    true,
	FormatPNG:    true,
	FormatJSON:   true,
}

// DefaultPageName is the draw.io page name when none is configured.
const DefaultPageName = "sheet_1"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options. Exactly one of SnapshotPath or Snapshot must be set;
	// Snapshot wins when both are.
	SnapshotPath string `json:"snapshot_path,omitempty"`
	Snapshot     []byte `json:"snapshot,omitempty"`

	// Layout options
	XSpacing float64 `json:"x_spacing,omitempty"`
	YSpacing float64 `json:"y_spacing,omitempty"`

	// Render options
	Formats  []string          `json:"formats,omitempty"`
	PageName string            `json:"page_name,omitempty"`
	Animate  bool              `json:"animate,omitempty"`
	Carriers map[string]string `json:"carriers,omitempty"`

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the parsed model snapshot.
	Snapshot model.Snapshot

	// SnapshotHash is the content hash of the canonical snapshot encoding.
	SnapshotHash string

	// Graph is the flow graph built from the snapshot.
	Graph *flow.Graph

	// Positions holds the computed layout, keyed by component name.
	Positions map[string]flow.Point

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ComponentCount int
	VertexCount    int
	EdgeCount      int
	ParseTime      time.Duration
	LayoutTime     time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: drawio, dot, svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.SnapshotPath == "" && len(o.Snapshot) == 0 {
		return fmt.Errorf("snapshot path or snapshot data is required")
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.XSpacing == 0 {
		o.XSpacing = flow.DefaultXSpacing
	}
	if o.YSpacing == 0 {
		o.YSpacing = flow.DefaultYSpacing
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDrawio}
	}
	if o.PageName == "" {
		o.PageName = DefaultPageName
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Palette resolves the carrier palette including configured overrides.
func (o *Options) Palette() carrier.Palette {
	return carrier.NewPalette(o.Carriers)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		XSpacing: o.XSpacing,
		YSpacing: o.YSpacing,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		PageName: o.PageName,
		Animate:  o.Animate,
		Carriers: o.Carriers,
	}
}
