package model

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/fluxlab/flowsheet/pkg/flow"
)

// =============================================================================
// Snapshot → Graph Construction
// =============================================================================

// BuildGraph constructs the layout graph for a snapshot.
//
// Profile, Node, and Unit components become vertices. Connection components
// become a single directed edge from their "in" node to their "out" node.
// Remaining flow rows become one directed edge each: "out" rows point from
// the component to the node, "in" rows from the node to the component.
//
// Components with unrecognized tags are skipped with a warning, as are
// components carrying several tags (the first supported tag wins). These are
// data oddities worth surfacing, not errors.
//
// Construction errors (duplicate component names, flows referencing unknown
// components) are caller bugs and abort the build; they wrap the flow
// package's sentinel errors.
func BuildGraph(s Snapshot, logger *log.Logger) (*flow.Graph, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	g := flow.New()

	for _, c := range s.Components {
		if len(c.Tags) > 1 {
			logger.Warn("component has multiple tags, using first supported",
				"component", c.Name, "tags", c.Tags)
		}

		switch tag := c.Tag(); tag {
		case TagProfile, TagNode, TagUnit:
			if err := g.AddVertex(c.Name, flow.ParseKind(tag)); err != nil {
				return nil, fmt.Errorf("add component %s: %w", c.Name, err)
			}
		case TagConnection:
			// Connections become edges via Links, not vertices.
		default:
			logger.Warn("skipping component with unknown tag",
				"component", c.Name, "tag", tag)
		}
	}

	links, err := Links(s)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		if err := g.AddEdge(l.From, l.To); err != nil {
			if l.Connection {
				return nil, fmt.Errorf("add connection %s: %w", l.Label, err)
			}
			return nil, fmt.Errorf("add flow %s→%s: %w", l.From, l.To, err)
		}
	}

	return g, nil
}

// Link is one directed edge derived from a snapshot, ready to be added to a
// graph or rendered. Connection links carry the connection component's name
// as their label.
type Link struct {
	From, To   string
	Label      string
	Connection bool
}

// Links derives the directed edges of a snapshot.
//
// Flow rows of ordinary components yield one edge each ("out" points from
// component to node, "in" from node to component). Connection components
// collapse their in/out rows into a single labeled edge from the "in" node
// to the "out" node; a connection missing either row is an error.
func Links(s Snapshot) ([]Link, error) {
	connections := make(map[string]bool)
	for _, c := range s.Components {
		if c.Tag() == TagConnection {
			connections[c.Name] = true
		}
	}

	var links []Link
	for _, f := range s.Flows {
		if connections[f.Component] {
			continue // collapsed into one edge per connection below
		}
		switch f.Direction {
		case DirectionOut:
			links = append(links, Link{From: f.Component, To: f.Node})
		case DirectionIn:
			links = append(links, Link{From: f.Node, To: f.Component})
		}
	}

	// Iterate components (not the set) so edge order is deterministic.
	for _, c := range s.Components {
		if !connections[c.Name] {
			continue
		}
		src, dst, err := connectionEndpoints(s, c.Name)
		if err != nil {
			return nil, err
		}
		links = append(links, Link{From: src, To: dst, Label: c.Name, Connection: true})
	}
	return links, nil
}

// connectionEndpoints resolves the in/out nodes of a Connection component.
// A connection transports a carrier between two nodes; its "in" row names
// the source node and its "out" row the target node.
func connectionEndpoints(s Snapshot, name string) (src, dst string, err error) {
	for _, f := range s.Flows {
		if f.Component != name {
			continue
		}
		switch f.Direction {
		case DirectionIn:
			src = f.Node
		case DirectionOut:
			dst = f.Node
		}
	}
	if src == "" || dst == "" {
		return "", "", fmt.Errorf("connection %s: missing %q or %q flow row", name, DirectionIn, DirectionOut)
	}
	return src, dst, nil
}

// ComponentByName returns the component with the given name.
func (s Snapshot) ComponentByName(name string) (Component, bool) {
	for _, c := range s.Components {
		if c.Name == name {
			return c, true
		}
	}
	return Component{}, false
}
