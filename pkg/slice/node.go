package slice

// Node is one compute endpoint in a slice. It owns components; its interface
// set is always derived from those components and never stored independently.
type Node struct {
	Name         string       `json:"name"`
	Site         string       `json:"site"`
	Host         string       `json:"host,omitempty"`
	Cores        int          `json:"cores"`
	RAM          int          `json:"ram"`
	Disk         int          `json:"disk"`
	Image        string       `json:"image"`
	ImageType    string       `json:"image_type,omitempty"`
	ManagementIP string       `json:"management_ip,omitempty"`
	State        string       `json:"reservation_state,omitempty"`
	Username     string       `json:"username,omitempty"`
	Components   []*Component `json:"components"`
}

// Component is attached hardware (NIC, GPU, FPGA, storage) on exactly one node.
type Component struct {
	Name       string       `json:"name"`
	Model      string       `json:"model"`
	Type       string       `json:"type,omitempty"`
	Interfaces []*Interface `json:"interfaces"`
}

// Interface is one attachment point of a component. NetworkName is non-empty
// iff the interface appears in exactly one network's interface list; Slice
// attach/detach operations keep the two sides mirrored.
type Interface struct {
	Name        string `json:"name"`
	NodeName    string `json:"node_name"`
	NetworkName string `json:"network_name,omitempty"`
	VLAN        string `json:"vlan,omitempty"`
	MAC         string `json:"mac,omitempty"`
	IPAddr      string `json:"ip_addr,omitempty"`
	Bandwidth   int    `json:"bandwidth,omitempty"`
}

// Interfaces returns the union of all component interfaces, in component
// order then interface order.
func (n *Node) Interfaces() []*Interface {
	var ifaces []*Interface
	for _, comp := range n.Components {
		ifaces = append(ifaces, comp.Interfaces...)
	}
	return ifaces
}

// GetComponent returns the named component, or nil.
func (n *Node) GetComponent(name string) *Component {
	for _, comp := range n.Components {
		if comp.Name == name {
			return comp
		}
	}
	return nil
}

// GetInterface returns the named interface from any component, or nil.
func (n *Node) GetInterface(name string) *Interface {
	for _, iface := range n.Interfaces() {
		if iface.Name == name {
			return iface
		}
	}
	return nil
}

// Provisioned reports whether the node has been stood up by the control
// framework (it has a reachable management address).
func (n *Node) Provisioned() bool {
	return n.ManagementIP != ""
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	out := *n
	out.Components = make([]*Component, len(n.Components))
	for i, comp := range n.Components {
		out.Components[i] = comp.Clone()
	}
	return &out
}

// Clone returns a deep copy of the component.
func (c *Component) Clone() *Component {
	out := *c
	out.Interfaces = make([]*Interface, len(c.Interfaces))
	for i, iface := range c.Interfaces {
		cp := *iface
		out.Interfaces[i] = &cp
	}
	return &out
}
