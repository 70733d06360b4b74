package slice

import (
	"errors"
	"testing"

	"github.com/fabvis/fabvis/pkg/util"
)

// testSlice builds a two-node draft with one NIC each.
func testSlice() *Slice {
	s := New("s1")
	for _, name := range []string{"n1", "n2"} {
		s.AddNode(&Node{Name: name, Site: "STAR", Cores: 2, RAM: 8, Disk: 10})
		s.AddComponent(name, &Component{
			Name:  name + "-nic1",
			Model: "NIC_Basic",
			Type:  "SmartNIC",
			Interfaces: []*Interface{
				{Name: name + "-nic1-p1"},
			},
		})
	}
	return s
}

func TestNodeInterfacesAreDerived(t *testing.T) {
	s := testSlice()
	n := s.GetNode("n1")

	ifaces := n.Interfaces()
	if len(ifaces) != 1 {
		t.Fatalf("n1 has %d interfaces, want 1", len(ifaces))
	}
	if ifaces[0].NodeName != "n1" {
		t.Errorf("interface NodeName = %q, want n1", ifaces[0].NodeName)
	}

	// Adding a second component grows the derived set.
	s.AddComponent("n1", &Component{
		Name:  "n1-nic2",
		Model: "NIC_ConnectX_5",
		Interfaces: []*Interface{
			{Name: "n1-nic2-p1"},
			{Name: "n1-nic2-p2"},
		},
	})
	if got := len(n.Interfaces()); got != 3 {
		t.Errorf("n1 has %d interfaces after adding NIC, want 3", got)
	}
}

func TestAttachMirrorsMembership(t *testing.T) {
	s := testSlice()
	if _, err := s.AddNetwork("net1", NetL2Bridge, []string{"n1-nic1-p1", "n2-nic1-p1"}); err != nil {
		t.Fatalf("AddNetwork: %v", err)
	}

	net := s.GetNetwork("net1")
	if len(net.Interfaces) != 2 {
		t.Fatalf("net1 has %d interfaces, want 2", len(net.Interfaces))
	}
	for _, ifname := range net.Interfaces {
		iface := s.GetInterface(ifname)
		if iface.NetworkName != "net1" {
			t.Errorf("interface %s NetworkName = %q, want net1", ifname, iface.NetworkName)
		}
	}
}

func TestAttachRejectsAttachedInterface(t *testing.T) {
	s := testSlice()
	s.AddNetwork("net1", NetL2Bridge, []string{"n1-nic1-p1"})

	_, err := s.AddNetwork("net2", NetL2Bridge, []string{"n1-nic1-p1"})
	if !errors.Is(err, util.ErrInUse) {
		t.Fatalf("AddNetwork with attached interface: err = %v, want ErrInUse", err)
	}
	// Failed add must not leave a half-built network behind.
	if s.GetNetwork("net2") != nil {
		t.Error("net2 still present after failed AddNetwork")
	}
}

func TestDetachClearsBothSides(t *testing.T) {
	s := testSlice()
	s.AddNetwork("net1", NetL2Bridge, []string{"n1-nic1-p1", "n2-nic1-p1"})

	if err := s.Detach("n1-nic1-p1"); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if s.GetInterface("n1-nic1-p1").NetworkName != "" {
		t.Error("interface still references net1 after detach")
	}
	if s.GetNetwork("net1").HasInterface("n1-nic1-p1") {
		t.Error("net1 still lists detached interface")
	}
}

func TestRemoveNodeDetachesInterfaces(t *testing.T) {
	s := testSlice()
	s.AddNetwork("net1", NetL2Bridge, []string{"n1-nic1-p1", "n2-nic1-p1"})

	if err := s.RemoveNode("n1"); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	net := s.GetNetwork("net1")
	if len(net.Interfaces) != 1 || net.Interfaces[0] != "n2-nic1-p1" {
		t.Errorf("net1 interfaces = %v, want [n2-nic1-p1]", net.Interfaces)
	}
}

func TestRemoveNetworkClearsReferences(t *testing.T) {
	s := testSlice()
	s.AddNetwork("net1", NetL2Bridge, []string{"n1-nic1-p1"})

	if err := s.RemoveNetwork("net1"); err != nil {
		t.Fatalf("RemoveNetwork: %v", err)
	}
	if got := s.GetInterface("n1-nic1-p1").NetworkName; got != "" {
		t.Errorf("interface NetworkName = %q after network removal, want empty", got)
	}
}

func TestMutationsSetDirty(t *testing.T) {
	s := New("s1")
	if s.Dirty {
		t.Fatal("fresh slice is dirty")
	}
	s.AddNode(&Node{Name: "n1", Cores: 1, RAM: 1, Disk: 1})
	if !s.Dirty {
		t.Error("AddNode did not set dirty")
	}
}

func TestNetworkLayer(t *testing.T) {
	tests := []struct {
		netType string
		layer   string
		ptp     bool
	}{
		{NetL2Bridge, "L2", false},
		{NetL2STS, "L2", false},
		{NetL2PTP, "L2", true},
		{NetIPv4, "L3", false},
		{NetIPv6Ext, "L3", false},
	}

	for _, tt := range tests {
		n := &Network{Name: "x", Type: tt.netType}
		if got := n.Layer(); got != tt.layer {
			t.Errorf("Layer(%s) = %q, want %q", tt.netType, got, tt.layer)
		}
		if got := n.PointToPoint(); got != tt.ptp {
			t.Errorf("PointToPoint(%s) = %v, want %v", tt.netType, got, tt.ptp)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := testSlice()
	s.AddNetwork("net1", NetL2Bridge, []string{"n1-nic1-p1"})

	clone := s.Clone()
	clone.GetNode("n1").Site = "TACC"
	clone.Detach("n1-nic1-p1")

	if s.GetNode("n1").Site != "STAR" {
		t.Error("mutating clone changed original node")
	}
	if s.GetInterface("n1-nic1-p1").NetworkName != "net1" {
		t.Error("mutating clone changed original attachment")
	}
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		ok       bool
	}{
		{StateDraft, StateSubmitting, true},
		{StateDraft, StateActive, false},
		{StateSubmitting, StateActive, true},
		{StateSubmitting, StateSubmitError, true},
		{StateActive, StateModifying, true},
		{StateModifying, StateModifyError, true},
		{StateModifying, StateActive, true},
		{StateActive, StateRefreshing, true},
		{StateDraft, StateDeleted, true},
		{StateDeleted, StateSubmitting, false},
		{StateDead, StateRefreshing, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.ok {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestSubmittable(t *testing.T) {
	for _, st := range []State{StateDraft, StateActive, StateSubmitError, StateModifyError} {
		if !st.Submittable() {
			t.Errorf("state %s should be submittable", st)
		}
	}
	for _, st := range []State{StateSubmitting, StateModifying, StateRefreshing, StateDeleted, StateDead} {
		if st.Submittable() {
			t.Errorf("state %s should not be submittable", st)
		}
	}
}
