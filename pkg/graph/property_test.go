package graph

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/fabvis/fabvis/pkg/slice"
)

// genSlice builds a slice with nNodes single-NIC nodes and one bridge network
// attaching the first nAttached interfaces.
func genSlice(nNodes, nAttached int) *slice.Slice {
	s := slice.New("prop")
	var ifaces []string
	for i := 0; i < nNodes; i++ {
		name := fmt.Sprintf("n%d", i)
		s.AddNode(&slice.Node{Name: name, Site: "STAR", Cores: 2, RAM: 8, Disk: 10})
		s.AddComponent(name, &slice.Component{
			Name:       name + "-nic1",
			Model:      "NIC_Basic",
			Interfaces: []*slice.Interface{{Name: name + "-nic1-p1"}},
		})
		ifaces = append(ifaces, name+"-nic1-p1")
	}
	if nAttached > len(ifaces) {
		nAttached = len(ifaces)
	}
	if nAttached > 0 {
		s.AddNetwork("net0", slice.NetL2Bridge, ifaces[:nAttached])
	}
	return s
}

// TestProjectionProperties verifies the projector invariants over randomly
// shaped slices rather than hand-picked fixtures.
func TestProjectionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("projection is deterministic", prop.ForAll(
		func(nNodes, nAttached int) bool {
			s := genSlice(nNodes, nAttached)
			return reflect.DeepEqual(Project(s), Project(s))
		},
		gen.IntRange(0, 12),
		gen.IntRange(0, 12),
	))

	properties.Property("one edge per attached interface", prop.ForAll(
		func(nNodes, nAttached int) bool {
			s := genSlice(nNodes, nAttached)
			m := Project(s)
			attached := 0
			for _, iface := range s.Interfaces() {
				if iface.NetworkName != "" {
					attached++
				}
			}
			return len(m.Edges) == attached
		},
		gen.IntRange(0, 12),
		gen.IntRange(0, 12),
	))

	properties.Property("projection is always internally consistent", prop.ForAll(
		func(nNodes, nAttached int) bool {
			return Project(genSlice(nNodes, nAttached)).Check() == nil
		},
		gen.IntRange(0, 12),
		gen.IntRange(0, 12),
	))

	properties.TestingRun(t)
}
