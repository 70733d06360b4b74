// Package slice holds the domain model for a slice under edit: the compute
// nodes, attached components, and the L2/L3 networks joining them.
//
// A Slice is a live projection of remote state plus unsaved local edits. It
// is replaced wholesale whenever a read, submit, or refresh response arrives;
// there is no incremental merge. Mutation helpers exist so that every editor
// of the model maintains the same invariants, in particular the mirrored
// interface/network membership.
package slice

import (
	"fmt"
	"time"

	"github.com/fabvis/fabvis/pkg/util"
)

// Slice is the root aggregate: a named topology of nodes and networks plus
// slice-level lifecycle metadata.
type Slice struct {
	Name     string     `json:"name"`
	ID       string     `json:"id,omitempty"` // remote-assigned, empty until first submit
	State    State      `json:"state"`
	Dirty    bool       `json:"dirty"` // local edits not yet accepted by a submit
	LeaseEnd time.Time  `json:"lease_end,omitempty"`
	Nodes    []*Node    `json:"nodes"`
	Networks []*Network `json:"networks"`
}

// New creates an empty draft slice.
func New(name string) *Slice {
	return &Slice{
		Name:  name,
		State: StateDraft,
	}
}

// ============================================================================
// Lookups
// ============================================================================

// GetNode returns the named node, or nil.
func (s *Slice) GetNode(name string) *Node {
	for _, n := range s.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// GetNetwork returns the named network, or nil.
func (s *Slice) GetNetwork(name string) *Network {
	for _, n := range s.Networks {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// GetInterface returns the named interface from any node, or nil.
func (s *Slice) GetInterface(name string) *Interface {
	for _, n := range s.Nodes {
		if iface := n.GetInterface(name); iface != nil {
			return iface
		}
	}
	return nil
}

// Interfaces returns every interface in the slice, in node order then
// component order.
func (s *Slice) Interfaces() []*Interface {
	var out []*Interface
	for _, n := range s.Nodes {
		out = append(out, n.Interfaces()...)
	}
	return out
}

// ============================================================================
// Local edits
// All mutators set the dirty flag; they are used by controllers that apply
// optimistic local edits before a submit.
// ============================================================================

// AddNode appends a node. The name must be unused.
func (s *Slice) AddNode(n *Node) error {
	if s.GetNode(n.Name) != nil {
		return fmt.Errorf("node '%s': %w", n.Name, util.ErrAlreadyExists)
	}
	s.Nodes = append(s.Nodes, n)
	s.Dirty = true
	return nil
}

// RemoveNode removes a node, detaching all of its interfaces from their
// networks first so no network is left referencing a vanished interface.
func (s *Slice) RemoveNode(name string) error {
	idx := -1
	for i, n := range s.Nodes {
		if n.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("node '%s': %w", name, util.ErrNotFound)
	}
	for _, iface := range s.Nodes[idx].Interfaces() {
		if iface.NetworkName != "" {
			s.detach(iface)
		}
	}
	s.Nodes = append(s.Nodes[:idx], s.Nodes[idx+1:]...)
	s.Dirty = true
	return nil
}

// AddComponent attaches a component to the named node. Interface NodeName
// fields are stamped here so callers build components without back-references.
func (s *Slice) AddComponent(nodeName string, comp *Component) error {
	n := s.GetNode(nodeName)
	if n == nil {
		return fmt.Errorf("node '%s': %w", nodeName, util.ErrNotFound)
	}
	if n.GetComponent(comp.Name) != nil {
		return fmt.Errorf("component '%s' on node '%s': %w", comp.Name, nodeName, util.ErrAlreadyExists)
	}
	for _, iface := range comp.Interfaces {
		iface.NodeName = nodeName
	}
	n.Components = append(n.Components, comp)
	s.Dirty = true
	return nil
}

// RemoveComponent removes a component from the named node, detaching its
// interfaces from any networks.
func (s *Slice) RemoveComponent(nodeName, compName string) error {
	n := s.GetNode(nodeName)
	if n == nil {
		return fmt.Errorf("node '%s': %w", nodeName, util.ErrNotFound)
	}
	idx := -1
	for i, comp := range n.Components {
		if comp.Name == compName {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("component '%s' on node '%s': %w", compName, nodeName, util.ErrNotFound)
	}
	for _, iface := range n.Components[idx].Interfaces {
		if iface.NetworkName != "" {
			s.detach(iface)
		}
	}
	n.Components = append(n.Components[:idx], n.Components[idx+1:]...)
	s.Dirty = true
	return nil
}

// AddNetwork appends a network and attaches the named interfaces to it.
// Interfaces already attached elsewhere are rejected; membership is mirrored
// on both sides atomically.
func (s *Slice) AddNetwork(name, netType string, ifaceNames []string) (*Network, error) {
	if s.GetNetwork(name) != nil {
		return nil, fmt.Errorf("network '%s': %w", name, util.ErrAlreadyExists)
	}
	net := &Network{Name: name, Type: netType}
	s.Networks = append(s.Networks, net)
	for _, ifname := range ifaceNames {
		if err := s.Attach(ifname, name); err != nil {
			// Roll the half-built network back out.
			s.Networks = s.Networks[:len(s.Networks)-1]
			return nil, err
		}
	}
	s.Dirty = true
	return net, nil
}

// RemoveNetwork removes a network, clearing the network reference on every
// attached interface.
func (s *Slice) RemoveNetwork(name string) error {
	idx := -1
	for i, n := range s.Networks {
		if n.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("network '%s': %w", name, util.ErrNotFound)
	}
	for _, ifname := range s.Networks[idx].Interfaces {
		if iface := s.GetInterface(ifname); iface != nil {
			iface.NetworkName = ""
		}
	}
	s.Networks = append(s.Networks[:idx], s.Networks[idx+1:]...)
	s.Dirty = true
	return nil
}

// Attach joins an interface to a network. The interface must exist and be
// dangling; the network must exist.
func (s *Slice) Attach(ifaceName, networkName string) error {
	iface := s.GetInterface(ifaceName)
	if iface == nil {
		return fmt.Errorf("interface '%s': %w", ifaceName, util.ErrNotFound)
	}
	net := s.GetNetwork(networkName)
	if net == nil {
		return fmt.Errorf("network '%s': %w", networkName, util.ErrNotFound)
	}
	if iface.NetworkName != "" {
		return util.NewInUseError(fmt.Sprintf("interface '%s'", ifaceName), iface.NetworkName)
	}
	iface.NetworkName = networkName
	net.Interfaces = append(net.Interfaces, ifaceName)
	s.Dirty = true
	return nil
}

// Detach removes an interface from whatever network it is attached to.
func (s *Slice) Detach(ifaceName string) error {
	iface := s.GetInterface(ifaceName)
	if iface == nil {
		return fmt.Errorf("interface '%s': %w", ifaceName, util.ErrNotFound)
	}
	if iface.NetworkName == "" {
		return fmt.Errorf("interface '%s' is not attached: %w", ifaceName, util.ErrNotFound)
	}
	s.detach(iface)
	s.Dirty = true
	return nil
}

// detach clears both sides of the membership mirror without touching the
// dirty flag (callers decide whether this is a local edit).
func (s *Slice) detach(iface *Interface) {
	if net := s.GetNetwork(iface.NetworkName); net != nil {
		for i, ifname := range net.Interfaces {
			if ifname == iface.Name {
				net.Interfaces = append(net.Interfaces[:i], net.Interfaces[i+1:]...)
				break
			}
		}
	}
	iface.NetworkName = ""
}

// ============================================================================
// Snapshots
// ============================================================================

// Clone returns a deep copy. Controllers hand out clones so callers can never
// mutate a settled snapshot in place.
func (s *Slice) Clone() *Slice {
	out := *s
	out.Nodes = make([]*Node, len(s.Nodes))
	for i, n := range s.Nodes {
		out.Nodes[i] = n.Clone()
	}
	out.Networks = make([]*Network, len(s.Networks))
	for i, n := range s.Networks {
		out.Networks[i] = n.Clone()
	}
	return &out
}

// Summary is the list-view form of a slice.
type Summary struct {
	Name         string `json:"name"`
	ID           string `json:"id"`
	State        State  `json:"state"`
	Dirty        bool   `json:"dirty"`
	NodeCount    int    `json:"node_count"`
	NetworkCount int    `json:"network_count"`
}

// Summarize returns the list-view form.
func (s *Slice) Summarize() Summary {
	return Summary{
		Name:         s.Name,
		ID:           s.ID,
		State:        s.State,
		Dirty:        s.Dirty,
		NodeCount:    len(s.Nodes),
		NetworkCount: len(s.Networks),
	}
}
