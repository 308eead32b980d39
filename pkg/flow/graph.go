package flow

import (
	"errors"
	"fmt"
	"slices"
)

// Connection is a directed edge from one node's output to another node's
// input. The endpoints are referenced by id only; a connection may outlive
// either endpoint and is then simply not drawn.
type Connection struct {
	ID           string `json:"id" yaml:"id"`
	SourceID     string `json:"sourceId" yaml:"source"`
	TargetID     string `json:"targetId" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"source_handle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"target_handle,omitempty"`
}

// Touches reports whether the connection references the node id at either end.
func (c Connection) Touches(nodeID string) bool {
	return c.SourceID == nodeID || c.TargetID == nodeID
}

// Graph is the nodes and connections of one template.
type Graph struct {
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes:       make([]Node, len(g.Nodes)),
		Connections: slices.Clone(g.Connections),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = n.Clone()
	}
	if out.Connections == nil {
		out.Connections = []Connection{}
	}
	return out
}

// Node returns the node with the given id.
func (g Graph) Node(id string) (Node, bool) {
	i := slices.IndexFunc(g.Nodes, func(n Node) bool { return n.ID == id })
	if i < 0 {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Dangling returns the connections whose source or target does not resolve.
func (g Graph) Dangling() []Connection {
	var out []Connection
	for _, c := range g.Connections {
		_, okSrc := g.Node(c.SourceID)
		_, okDst := g.Node(c.TargetID)
		if !okSrc || !okDst {
			out = append(out, c)
		}
	}
	return out
}

// Check verifies structural rules a decoded graph must satisfy before it
// is loaded into the editor: known node types and actions, and unique
// node ids. Dangling connections are allowed.
func (g Graph) Check() error {
	var errs []error
	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			errs = append(errs, errors.New("node with empty id"))
			continue
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("duplicate node id %s", n.ID))
		}
		seen[n.ID] = true
		if !n.Type.Valid() {
			errs = append(errs, fmt.Errorf("node %s: unknown type %q", n.ID, n.Type))
		}
		for _, b := range n.Data.Buttons {
			if _, err := ParseAction(string(b.Action)); err != nil {
				errs = append(errs, fmt.Errorf("node %s button %s: %w", n.ID, b.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}
