// Package fabric defines the asynchronous command interface to the
// infrastructure control framework, plus the supporting services around it
// (site catalog, resource cache, metrics, remote sessions).
//
// The editing engine consumes only the Controller interface and is therefore
// transport-agnostic: the simulated controller in this package backs tests
// and offline use, while a real implementation talks to the control
// framework's API.
package fabric

import (
	"context"
	"io"

	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/validate"
)

// NodeSpec describes a node to add. Zero values are filled with catalog
// defaults (site "auto", 2 cores, 8G ram, 10G disk, default image).
type NodeSpec struct {
	Name  string
	Site  string
	Cores int
	RAM   int
	Disk  int
	Image string
}

// withDefaults fills unset fields from the catalog defaults.
func (s NodeSpec) withDefaults() NodeSpec {
	if s.Site == "" {
		s.Site = "auto"
	}
	if s.Cores == 0 {
		s.Cores = 2
	}
	if s.RAM == 0 {
		s.RAM = 8
	}
	if s.Disk == 0 {
		s.Disk = 10
	}
	if s.Image == "" {
		s.Image = DefaultImage
	}
	return s
}

// NodeUpdate carries optional changes to a node; nil fields are untouched.
type NodeUpdate struct {
	Site  *string
	Cores *int
	RAM   *int
	Disk  *int
	Image *string
}

// ComponentSpec describes a component to attach, by catalog model.
type ComponentSpec struct {
	Name  string
	Model string
}

// NetworkSpec describes a network to create and the interfaces to attach.
type NetworkSpec struct {
	Name       string
	Type       string
	Subnet     string
	Gateway    string
	Interfaces []string
}

// Controller is the command interface to the control framework. Every
// operation is asynchronous from the host UI's point of view and returns
// either an updated slice snapshot or a structured failure; snapshots always
// replace local state wholesale.
type Controller interface {
	// Slice lifecycle
	CreateSlice(ctx context.Context, name string) (*slice.Slice, error)
	GetSlice(ctx context.Context, name string) (*slice.Slice, error)
	ListSlices(ctx context.Context) ([]slice.Summary, error)
	SubmitSlice(ctx context.Context, name string) (*slice.Slice, error)
	RefreshSlice(ctx context.Context, name string) (*slice.Slice, error)
	DeleteSlice(ctx context.Context, name string) error

	// Topology edits (apply to the named slice's draft)
	AddNode(ctx context.Context, sliceName string, spec NodeSpec) (*slice.Slice, error)
	RemoveNode(ctx context.Context, sliceName, nodeName string) (*slice.Slice, error)
	UpdateNode(ctx context.Context, sliceName, nodeName string, update NodeUpdate) (*slice.Slice, error)
	AddComponent(ctx context.Context, sliceName, nodeName string, spec ComponentSpec) (*slice.Slice, error)
	RemoveComponent(ctx context.Context, sliceName, nodeName, compName string) (*slice.Slice, error)
	AddNetwork(ctx context.Context, sliceName string, spec NetworkSpec) (*slice.Slice, error)
	RemoveNetwork(ctx context.Context, sliceName, netName string) (*slice.Slice, error)
	AttachInterface(ctx context.Context, sliceName, ifaceName, netName string) (*slice.Slice, error)
	DetachInterface(ctx context.Context, sliceName, ifaceName string) (*slice.Slice, error)

	// Reads
	ValidateSlice(ctx context.Context, name string) (*validate.Result, error)
	ListSites(ctx context.Context) ([]Site, error)

	// OpenSession opens a bidirectional byte stream to a provisioned node.
	OpenSession(ctx context.Context, sliceName, nodeName string) (io.ReadWriteCloser, error)
}
