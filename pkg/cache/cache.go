// Package cache provides pluggable result caching for the diagram pipeline.
//
// Three backends are available: [FileCache] for CLI usage, [RedisCache] for
// the HTTP service, and [NullCache] to disable caching. Keys are built by a
// [Keyer] so that every input that affects an output is part of its key:
// a layout is keyed by the snapshot hash plus spacing options, an artifact
// by the layout key hash plus render options.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry class. Layouts are cheap to recompute but small;
// artifacts are larger, so they expire sooner.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts captures every layout input that affects positions.
type LayoutKeyOpts struct {
	XSpacing float64 `json:"x_spacing"`
	YSpacing float64 `json:"y_spacing"`
}

// ArtifactKeyOpts captures every render input that affects output bytes.
type ArtifactKeyOpts struct {
	Format   string            `json:"format"`
	PageName string            `json:"page_name"`
	Animate  bool              `json:"animate"`
	Carriers map[string]string `json:"carriers,omitempty"`
}

// Keyer builds cache keys for the pipeline stages.
type Keyer interface {
	// LayoutKey keys a layout result by the snapshot content hash and
	// layout options.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the layout hash and render
	// options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
