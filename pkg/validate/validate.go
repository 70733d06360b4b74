// Package validate derives the structured issue list that gates slice
// submission. Findings are data, never Go errors: the engine is total over
// any slice shape and is re-run after every domain model change.
package validate

import (
	"fmt"
	"strings"

	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/util"
)

// Severity of a single finding. Errors block submission; warnings never do.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding with a human remedy.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Remedy   string   `json:"remedy"`
}

// Result is the outcome of validating one slice.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// ErrorCount returns the number of error-severity issues.
func (r *Result) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity issues.
func (r *Result) WarningCount() int {
	return len(r.Issues) - r.ErrorCount()
}

// Validate checks a slice against the submission rules. Issues are returned
// in a stable order: slice-level first, then per-node in node order, then
// per-network in network order, so repeated runs on unchanged input are
// byte-identical.
func Validate(s *slice.Slice) *Result {
	var issues []Issue

	issues = append(issues, sliceIssues(s)...)
	seen := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		issues = append(issues, nodeIssues(n, seen)...)
	}
	for _, net := range s.Networks {
		issues = append(issues, networkIssues(net)...)
	}

	result := &Result{Issues: issues}
	result.Valid = result.ErrorCount() == 0
	return result
}

func sliceIssues(s *slice.Slice) []Issue {
	if len(s.Nodes) > 0 {
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Message:  "Slice has no nodes.",
		Remedy:   "Add at least one node before submitting.",
	}}
}

func nodeIssues(n *slice.Node, seen map[string]bool) []Issue {
	var issues []Issue

	if n.Name == "" || seen[n.Name] {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Duplicate or missing node name '%s'.", n.Name),
			Remedy:   "Rename the node to a unique, non-empty name.",
		})
	}
	seen[n.Name] = true

	if n.Site == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Node '%s' has no site assigned.", n.Name),
			Remedy:   fmt.Sprintf("Set a site for node '%s'.", n.Name),
		})
	}

	if n.Cores < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Node '%s' has %d cores.", n.Name, n.Cores),
			Remedy:   fmt.Sprintf("Set at least 1 core for node '%s'.", n.Name),
		})
	}
	if n.RAM < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Node '%s' has %d GB RAM.", n.Name, n.RAM),
			Remedy:   fmt.Sprintf("Set at least 1 GB RAM for node '%s'.", n.Name),
		})
	}
	if n.Disk < 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Node '%s' has %d GB disk.", n.Name, n.Disk),
			Remedy:   fmt.Sprintf("Set at least 1 GB disk for node '%s'.", n.Name),
		})
	}

	for _, iface := range n.Interfaces() {
		if iface.NetworkName == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Interface '%s' on node '%s' is not attached to any network.", iface.Name, n.Name),
				Remedy:   "Attach the interface to a network, or remove the component if unused.",
			})
		}
	}

	return issues
}

func networkIssues(net *slice.Network) []Issue {
	var issues []Issue
	count := len(net.Interfaces)

	switch {
	case count == 0:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Network '%s' has no connected interfaces.", net.Name),
			Remedy:   fmt.Sprintf("Attach an interface to '%s' before submitting.", net.Name),
		})
	case net.PointToPoint() && count != 2:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Network '%s' (%s) has %d interface(s), needs exactly 2.", net.Name, net.Type, count),
			Remedy:   fmt.Sprintf("Connect exactly 2 interfaces to '%s'.", net.Name),
		})
	case !net.PointToPoint() && count == 1:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Network '%s' (%s) has 1 interface, needs at least 2.", net.Name, net.Type),
			Remedy:   fmt.Sprintf("Connect at least 2 interfaces to '%s'.", net.Name),
		})
	}

	return append(issues, addressingIssues(net)...)
}

// addressingIssues checks the optional subnet and gateway carried by a
// network. Both fields are free text on the wire, so they are validated
// here rather than at parse time.
func addressingIssues(net *slice.Network) []Issue {
	if net.Subnet == "" {
		if net.Gateway != "" {
			return []Issue{{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Network '%s' has a gateway but no subnet.", net.Name),
				Remedy:   fmt.Sprintf("Set a subnet on '%s', or clear the gateway.", net.Name),
			}}
		}
		return nil
	}

	if _, _, err := util.ParseSubnet(net.Subnet); err != nil {
		return []Issue{{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Network '%s' has an invalid subnet '%s'.", net.Name, net.Subnet),
			Remedy:   fmt.Sprintf("Use CIDR notation for the subnet of '%s', e.g. 192.168.10.0/24.", net.Name),
		}}
	}

	var issues []Issue
	if net.Layer() == "L3" {
		wantV6 := strings.Contains(net.Type, "IPv6")
		if util.IsIPv6Subnet(net.Subnet) != wantV6 {
			family := "IPv4"
			if wantV6 {
				family = "IPv6"
			}
			issues = append(issues, Issue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Network '%s' (%s) has a subnet '%s' of the wrong address family.", net.Name, net.Type, net.Subnet),
				Remedy:   fmt.Sprintf("Use an %s subnet on '%s', or change the network type.", family, net.Name),
			})
		}
	}

	if !util.GatewayInSubnet(net.Gateway, net.Subnet) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Message:  fmt.Sprintf("Gateway '%s' on network '%s' is outside subnet '%s'.", net.Gateway, net.Name, net.Subnet),
			Remedy:   fmt.Sprintf("Choose a gateway inside '%s', or clear it to let the control framework assign one.", net.Subnet),
		})
	}
	return issues
}
