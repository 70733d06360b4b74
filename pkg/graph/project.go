package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fabvis/fabvis/pkg/slice"
)

// Strict enables the development-build consistency assertion: Project panics
// if it ever produces a model that fails Check. A failure here is a projector
// bug, not recoverable user input, so tests run with Strict on.
var Strict = false

// Project derives the renderable graph model from a slice. It is pure and
// deterministic: the same domain model always yields a structurally identical
// graph, and edits elsewhere in the slice never reorder unaffected elements,
// so it is safe to re-run on every change.
func Project(s *slice.Slice) *Model {
	m := &Model{}
	key := sliceKey(s)
	containerID := "slice:" + key

	m.Nodes = append(m.Nodes, Node{
		ID:    containerID,
		Label: s.Name,
		Class: ClassSliceContainer,
		Data: map[string]string{
			"element_type": TypeSlice,
			"name":         s.Name,
			"state":        string(s.State),
		},
	})

	for _, n := range s.Nodes {
		m.Nodes = append(m.Nodes, projectNode(key, containerID, n))
	}

	for _, net := range s.Networks {
		m.Nodes = append(m.Nodes, projectNetwork(key, containerID, net))
		for _, ifname := range net.Interfaces {
			iface := s.GetInterface(ifname)
			if iface == nil || iface.NodeName == "" {
				// Membership mirror broken upstream; the validator reports
				// it, the projector just skips the edge.
				continue
			}
			m.Edges = append(m.Edges, projectEdge(key, net, iface))
		}
	}

	if Strict {
		if err := m.Check(); err != nil {
			panic(fmt.Sprintf("graph: inconsistent projection: %v", err))
		}
	}
	return m
}

// sliceKey namespaces element IDs. The slice name is used rather than the
// remote ID so that IDs are stable across the first submit (which assigns
// the remote ID and would otherwise rename every element).
func sliceKey(s *slice.Slice) string {
	return s.Name
}

func projectNode(key, containerID string, n *slice.Node) Node {
	light, dark := ColorsForState(n.State)
	summary := componentSummary(n.Components)

	lines := []string{
		n.Name,
		"@ " + displaySite(n.Site),
		fmt.Sprintf("%dc / %dG / %dG", n.Cores, n.RAM, n.Disk),
	}
	if summary != "" {
		lines = append(lines, summary)
	}

	class := ClassVM
	if strings.EqualFold(n.ImageType, "switch") {
		class = ClassSwitch
	}

	return Node{
		ID:     "node:" + key + ":" + n.Name,
		Parent: containerID,
		Label:  strings.Join(lines, "\n"),
		Class:  class,
		Data: map[string]string{
			"element_type":     TypeNode,
			"name":             n.Name,
			"site":             n.Site,
			"host":             n.Host,
			"cores":            strconv.Itoa(n.Cores),
			"ram":              strconv.Itoa(n.RAM),
			"disk":             strconv.Itoa(n.Disk),
			"image":            n.Image,
			"management_ip":    n.ManagementIP,
			"username":         n.Username,
			"state":            n.State,
			"state_bg":         light.Background,
			"state_color":      light.Border,
			"state_bg_dark":    dark.Background,
			"state_color_dark": dark.Border,
		},
	}
}

func projectNetwork(key, containerID string, net *slice.Network) Node {
	layer := net.Layer()
	class := ClassNetworkL2
	if layer == "L3" {
		class = ClassNetworkL3
	}
	if net.Type == "FacilityPort" {
		class = ClassFacilityPort
	}
	colors := networkColors[layer]

	return Node{
		ID:     "net:" + key + ":" + net.Name,
		Parent: containerID,
		Label:  net.Name + "\n(" + net.Type + ")",
		Class:  class,
		Data: map[string]string{
			"element_type": TypeNetwork,
			"name":         net.Name,
			"type":         net.Type,
			"layer":        layer,
			"subnet":       net.Subnet,
			"gateway":      net.Gateway,
			"bg":           colors.Background,
			"border":       colors.Border,
		},
	}
}

func projectEdge(key string, net *slice.Network, iface *slice.Interface) Edge {
	class := ClassEdgeL2
	if net.Layer() == "L3" {
		class = ClassEdgeL3
	}

	label := iface.Name
	if iface.VLAN != "" {
		label = "VLAN " + iface.VLAN
	}

	return Edge{
		ID:     "edge:" + key + ":" + iface.Name,
		Source: "node:" + key + ":" + iface.NodeName,
		Target: "net:" + key + ":" + net.Name,
		Label:  label,
		Class:  class,
		Data: map[string]string{
			"element_type": TypeInterface,
			"name":         iface.Name,
			"node_name":    iface.NodeName,
			"network_name": net.Name,
			"vlan":         iface.VLAN,
			"mac":          iface.MAC,
			"ip_addr":      iface.IPAddr,
			"bandwidth":    strconv.Itoa(iface.Bandwidth),
		},
	}
}

// displaySite renders an unset site as "?" in node labels.
func displaySite(site string) string {
	if site == "" {
		return "?"
	}
	return site
}
