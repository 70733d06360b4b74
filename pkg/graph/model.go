// Package graph derives a renderable graph model from a slice. The model is
// a pure projection: it has no independent lifetime, is recomputed from the
// domain model on every change, and is only ever replaced, never mutated.
package graph

import "fmt"

// Element classes. Renderers key styling off these; the selection controller
// keys command eligibility off them.
const (
	ClassSliceContainer = "slice-container"
	ClassVM             = "vm"
	ClassSwitch         = "switch"
	ClassNetworkL2      = "network-l2"
	ClassNetworkL3      = "network-l3"
	ClassFacilityPort   = "facility-port"
	ClassEdgeL2         = "edge-l2"
	ClassEdgeL3         = "edge-l3"
)

// Element type values carried in the Data map under "element_type".
const (
	TypeSlice     = "slice"
	TypeNode      = "node"
	TypeNetwork   = "network"
	TypeInterface = "interface"
)

// Node is one graph node: the slice container, a compute node, or a network.
// Data carries flattened key→string attributes used for both rendering and
// click-target identification ("element_type" and "name" are always present).
type Node struct {
	ID     string
	Parent string // container node ID, empty for the container itself
	Label  string
	Class  string
	Data   map[string]string
}

// Edge is one attached interface, joining its node's graph node to its
// network's graph node.
type Edge struct {
	ID     string
	Source string
	Target string
	Label  string
	Class  string
	Data   map[string]string
}

// Model is the derived graph. Element order is stable: container first, then
// nodes in slice order, then networks in slice order; edges in network order
// then attachment order.
type Model struct {
	Nodes []Node
	Edges []Edge
}

// Node returns the graph node with the given ID, or nil.
func (m *Model) Node(id string) *Node {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			return &m.Nodes[i]
		}
	}
	return nil
}

// Edge returns the edge with the given ID, or nil.
func (m *Model) Edge(id string) *Edge {
	for i := range m.Edges {
		if m.Edges[i].ID == id {
			return &m.Edges[i]
		}
	}
	return nil
}

// Contains reports whether any element (node or edge) has the given ID.
func (m *Model) Contains(id string) bool {
	return m.Node(id) != nil || m.Edge(id) != nil
}

// ClassOf returns the class of the element with the given ID, or "".
func (m *Model) ClassOf(id string) string {
	if n := m.Node(id); n != nil {
		return n.Class
	}
	if e := m.Edge(id); e != nil {
		return e.Class
	}
	return ""
}

// DataOf returns the data map of the element with the given ID, or nil.
func (m *Model) DataOf(id string) map[string]string {
	if n := m.Node(id); n != nil {
		return n.Data
	}
	if e := m.Edge(id); e != nil {
		return e.Data
	}
	return nil
}

// Check verifies internal consistency: every edge endpoint and every parent
// reference must name a node present in the model. A violation is a projector
// bug, never a user error.
func (m *Model) Check() error {
	ids := make(map[string]bool, len(m.Nodes))
	for _, n := range m.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("graph: duplicate node id %q", n.ID)
		}
		ids[n.ID] = true
	}
	for _, n := range m.Nodes {
		if n.Parent != "" && !ids[n.Parent] {
			return fmt.Errorf("graph: node %q references missing parent %q", n.ID, n.Parent)
		}
	}
	for _, e := range m.Edges {
		if !ids[e.Source] {
			return fmt.Errorf("graph: edge %q references missing source %q", e.ID, e.Source)
		}
		if !ids[e.Target] {
			return fmt.Errorf("graph: edge %q references missing target %q", e.ID, e.Target)
		}
	}
	return nil
}
