// Package model defines the snapshot format for solved energy-system models.
//
// A snapshot is the hand-off point between the solver tooling (which extracts
// components, tags, and carrier flows from a result database) and flowsheet:
// a plain JSON document listing every component with its tags and carrier,
// plus the directed flow rows between components and nodes. Snapshots are
// designed for round-trip fidelity and cross-tool compatibility.
//
// Use [BuildGraph] to turn a snapshot into a layout graph.
package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fluxlab/flowsheet/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

// Component tags recognized by the diagram builder.
const (
	TagProfile    = "Profile"
	TagNode       = "Node"
	TagUnit       = "Unit"
	TagConnection = "Connection"
	TagDecision   = "Decision"
)

// Flow directions. A flow row relates a component to a node: "out" means the
// component feeds the node, "in" means the node feeds the component.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// supportedTags are the tags kept when a component carries several.
var supportedTags = map[string]bool{
	TagProfile:    true,
	TagNode:       true,
	TagUnit:       true,
	TagConnection: true,
	TagDecision:   true,
}

// =============================================================================
// Snapshot - Serialized Model Extract
// =============================================================================

// Snapshot is the serialized extract of a solved model run.
type Snapshot struct {
	// Name identifies the model run (optional, used in diagram titles).
	Name string `json:"name,omitempty" bson:"name,omitempty"`

	// Components lists every model component with its tags.
	Components []Component `json:"components" bson:"components"`

	// Flows lists the directed carrier-flow rows between components and nodes.
	Flows []Flow `json:"flows,omitempty" bson:"flows,omitempty"`
}

// Component is one model component (profile, node, unit, connection, ...).
type Component struct {
	Name     string   `json:"name" bson:"name"`
	Tags     []string `json:"tags" bson:"tags"`
	Carrier  string   `json:"carrier,omitempty" bson:"carrier,omitempty"`
	HasState bool     `json:"has_state,omitempty" bson:"has_state,omitempty"`
}

// Tag returns the component's effective tag: the first supported tag when
// several are present, or the first tag as-is when none are recognized.
// Returns "" for untagged components.
func (c Component) Tag() string {
	if len(c.Tags) == 0 {
		return ""
	}
	if len(c.Tags) > 1 {
		for _, t := range c.Tags {
			if supportedTags[t] {
				return t
			}
		}
	}
	return c.Tags[0]
}

// Flow is one directed carrier-flow row relating a component to a node.
type Flow struct {
	Component string `json:"component" bson:"component"`
	Node      string `json:"node" bson:"node"`
	Direction string `json:"direction" bson:"direction"`
}

// =============================================================================
// Serialization API
// =============================================================================

// Parse decodes snapshot JSON bytes.
func Parse(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	return s, validate(s)
}

// Read decodes a snapshot from an io.Reader.
func Read(r io.Reader) (Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	return s, validate(s)
}

// ReadFile reads and decodes a snapshot JSON file.
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Marshal encodes a snapshot as pretty-printed JSON.
func Marshal(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// WriteFile writes a snapshot to a JSON file with 0644 permissions.
func WriteFile(s Snapshot, path string) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// validate checks structural requirements shared by all decode paths.
func validate(s Snapshot) error {
	for i, c := range s.Components {
		if err := errors.ValidateComponentName(c.Name); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	for i, f := range s.Flows {
		if f.Component == "" || f.Node == "" {
			return errors.New(errors.ErrCodeInvalidSnapshot, "flow %d: component and node must not be empty", i)
		}
		if f.Direction != DirectionIn && f.Direction != DirectionOut {
			return errors.New(errors.ErrCodeInvalidSnapshot, "flow %d: direction %q must be %q or %q", i, f.Direction, DirectionIn, DirectionOut)
		}
	}
	return nil
}
