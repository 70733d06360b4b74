package slice

import "strings"

// Network service types as named by the control framework.
const (
	NetL2Bridge = "L2Bridge"
	NetL2STS    = "L2STS"
	NetL2PTP    = "L2PTP"
	NetIPv4     = "IPv4"
	NetIPv6     = "IPv6"
	NetIPv4Ext  = "IPv4Ext"
	NetIPv6Ext  = "IPv6Ext"
)

// Network is an L2 or L3 broadcast/routing domain joining node interfaces.
// Interfaces holds the names of attached interfaces, in attachment order;
// the interfaces themselves live on node components.
type Network struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Subnet     string   `json:"subnet,omitempty"`
	Gateway    string   `json:"gateway,omitempty"`
	Interfaces []string `json:"interfaces"`
}

// Layer returns "L3" for IP network service types and "L2" otherwise,
// derived from the concrete type the same way the control framework does.
func (n *Network) Layer() string {
	if strings.Contains(n.Type, "IPv") {
		return "L3"
	}
	return "L2"
}

// PointToPoint reports whether the network type requires exactly two
// attached interfaces.
func (n *Network) PointToPoint() bool {
	return strings.Contains(n.Type, "PTP")
}

// HasInterface reports whether the named interface is attached.
func (n *Network) HasInterface(name string) bool {
	for _, ifname := range n.Interfaces {
		if ifname == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the network.
func (n *Network) Clone() *Network {
	out := *n
	out.Interfaces = append([]string(nil), n.Interfaces...)
	return &out
}
