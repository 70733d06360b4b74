package fabric

import (
	"context"
	"errors"
	"testing"

	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/util"
)

func newTestSlice(t *testing.T, ctrl *SimController, name string) *slice.Slice {
	t.Helper()
	ctx := context.Background()
	if _, err := ctrl.CreateSlice(ctx, name); err != nil {
		t.Fatalf("CreateSlice: %v", err)
	}
	sl, err := ctrl.AddNode(ctx, name, NodeSpec{Name: "n1", Site: "STAR"})
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	return sl
}

func TestCreateSliceDuplicate(t *testing.T) {
	ctrl := NewSimController()
	ctx := context.Background()

	if _, err := ctrl.CreateSlice(ctx, "s1"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := ctrl.CreateSlice(ctx, "s1")
	if !errors.Is(err, util.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAddNodeDefaults(t *testing.T) {
	ctrl := NewSimController()
	sl := newTestSlice(t, ctrl, "s1")

	n := sl.GetNode("n1")
	if n == nil {
		t.Fatal("node not found")
	}
	if n.Cores != 2 || n.RAM != 8 || n.Disk != 10 {
		t.Errorf("defaults not applied: cores=%d ram=%d disk=%d", n.Cores, n.RAM, n.Disk)
	}
	if n.Image != DefaultImage {
		t.Errorf("expected default image, got %s", n.Image)
	}
}

func TestAddComponentPortCount(t *testing.T) {
	ctrl := NewSimController()
	newTestSlice(t, ctrl, "s1")
	ctx := context.Background()

	sl, err := ctrl.AddComponent(ctx, "s1", "n1", ComponentSpec{Name: "nic1", Model: "NIC_ConnectX_5"})
	if err != nil {
		t.Fatalf("AddComponent: %v", err)
	}
	ifaces := sl.GetNode("n1").Interfaces()
	if len(ifaces) != 2 {
		t.Fatalf("expected 2 interfaces for ConnectX_5, got %d", len(ifaces))
	}
	if ifaces[0].Name != "n1-nic1-p1" {
		t.Errorf("unexpected interface name %s", ifaces[0].Name)
	}
	if ifaces[0].NodeName != "n1" {
		t.Errorf("interface not stamped with node name: %q", ifaces[0].NodeName)
	}
}

func TestAddComponentUnknownModel(t *testing.T) {
	ctrl := NewSimController()
	newTestSlice(t, ctrl, "s1")

	_, err := ctrl.AddComponent(context.Background(), "s1", "n1", ComponentSpec{Name: "x", Model: "NIC_Bogus"})
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown model, got %v", err)
	}
}

func TestFailedEditLeavesDraftUnchanged(t *testing.T) {
	ctrl := NewSimController()
	newTestSlice(t, ctrl, "s1")
	ctx := context.Background()

	before, _ := ctrl.GetSlice(ctx, "s1")
	if _, err := ctrl.RemoveNode(ctx, "s1", "missing"); err == nil {
		t.Fatal("expected error removing missing node")
	}
	after, _ := ctrl.GetSlice(ctx, "s1")
	if len(after.Nodes) != len(before.Nodes) {
		t.Error("failed edit mutated the draft")
	}
}

func TestSubmitInvalidKeepsDraft(t *testing.T) {
	ctrl := NewSimController()
	ctx := context.Background()
	if _, err := ctrl.CreateSlice(ctx, "empty"); err != nil {
		t.Fatal(err)
	}

	_, err := ctrl.SubmitSlice(ctx, "empty")
	if !errors.Is(err, util.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}

	// The draft survives for the user to fix.
	sl, err := ctrl.GetSlice(ctx, "empty")
	if err != nil {
		t.Fatalf("draft gone after rejected submit: %v", err)
	}
	if sl.State != slice.StateDraft {
		t.Errorf("expected draft state, got %s", sl.State)
	}
}

func TestSubmitProvisions(t *testing.T) {
	ctrl := NewSimController()
	newTestSlice(t, ctrl, "s1")
	ctx := context.Background()

	sl, err := ctrl.SubmitSlice(ctx, "s1")
	if err != nil {
		t.Fatalf("SubmitSlice: %v", err)
	}
	if sl.ID == "" {
		t.Error("submit did not assign a slice ID")
	}
	if sl.State != slice.StateActive {
		t.Errorf("expected %s, got %s", slice.StateActive, sl.State)
	}
	if sl.Dirty {
		t.Error("slice still dirty after submit")
	}
	n := sl.GetNode("n1")
	if n.ManagementIP == "" {
		t.Error("node has no management IP after submit")
	}
	if n.State != slice.ResActive {
		t.Errorf("expected reservation %s, got %s", slice.ResActive, n.State)
	}
	if n.Username == "" {
		t.Error("node has no username after submit")
	}
}

func TestSubmitPreservesID(t *testing.T) {
	ctrl := NewSimController()
	newTestSlice(t, ctrl, "s1")
	ctx := context.Background()

	first, err := ctrl.SubmitSlice(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.AddNode(ctx, "s1", NodeSpec{Name: "n2", Site: "TACC"}); err != nil {
		t.Fatal(err)
	}
	second, err := ctrl.SubmitSlice(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("resubmit changed slice ID: %s != %s", second.ID, first.ID)
	}
}

func TestRefreshDropsLocalEdits(t *testing.T) {
	ctrl := NewSimController()
	newTestSlice(t, ctrl, "s1")
	ctx := context.Background()

	if _, err := ctrl.SubmitSlice(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.AddNode(ctx, "s1", NodeSpec{Name: "scratch", Site: "UTAH"}); err != nil {
		t.Fatal(err)
	}

	sl, err := ctrl.RefreshSlice(ctx, "s1")
	if err != nil {
		t.Fatalf("RefreshSlice: %v", err)
	}
	if sl.GetNode("scratch") != nil {
		t.Error("refresh kept an unsubmitted local node")
	}
	if sl.Dirty {
		t.Error("refreshed slice marked dirty")
	}
}

func TestRefreshNeverSubmitted(t *testing.T) {
	ctrl := NewSimController()
	newTestSlice(t, ctrl, "s1")

	_, err := ctrl.RefreshSlice(context.Background(), "s1")
	if !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSlice(t *testing.T) {
	ctrl := NewSimController()
	newTestSlice(t, ctrl, "s1")
	ctx := context.Background()

	if err := ctrl.DeleteSlice(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSlice: %v", err)
	}
	if _, err := ctrl.GetSlice(ctx, "s1"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := ctrl.DeleteSlice(ctx, "s1"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestListSlicesSorted(t *testing.T) {
	ctrl := NewSimController()
	ctx := context.Background()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := ctrl.CreateSlice(ctx, name); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ctrl.ListSlices(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(got))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if got[i].Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].Name)
		}
	}
}

func TestGetSliceReturnsClone(t *testing.T) {
	ctrl := NewSimController()
	newTestSlice(t, ctrl, "s1")
	ctx := context.Background()

	sl, _ := ctrl.GetSlice(ctx, "s1")
	sl.GetNode("n1").Site = "CLEMSON"

	again, _ := ctrl.GetSlice(ctx, "s1")
	if again.GetNode("n1").Site == "CLEMSON" {
		t.Error("caller mutation leaked into the controller's draft")
	}
}

func TestOpenSessionRequiresProvisioning(t *testing.T) {
	ctrl := NewSimController()
	newTestSlice(t, ctrl, "s1")
	ctx := context.Background()

	_, err := ctrl.OpenSession(ctx, "s1", "n1")
	if !errors.Is(err, util.ErrNotProvisioned) {
		t.Fatalf("expected ErrNotProvisioned, got %v", err)
	}

	if _, err := ctrl.SubmitSlice(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	stream, err := ctrl.OpenSession(ctx, "s1", "n1")
	if err != nil {
		t.Fatalf("OpenSession after submit: %v", err)
	}
	defer stream.Close()

	msg := []byte("uptime\n")
	if _, err := stream.Write(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, len(msg))
	if _, err := stream.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf) != string(msg) {
		t.Errorf("echo mismatch: %q", buf)
	}
}

func TestListSitesStable(t *testing.T) {
	ctrl := NewSimController()
	ctx := context.Background()

	first, err := ctrl.ListSites(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(SiteLocations) {
		t.Fatalf("expected %d sites, got %d", len(SiteLocations), len(first))
	}
	second, _ := ctrl.ListSites(ctx)
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("site list not stable at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestValidateSlice(t *testing.T) {
	ctrl := NewSimController()
	ctx := context.Background()
	if _, err := ctrl.CreateSlice(ctx, "empty"); err != nil {
		t.Fatal(err)
	}

	result, err := ctrl.ValidateSlice(ctx, "empty")
	if err != nil {
		t.Fatal(err)
	}
	if result.Valid {
		t.Error("empty slice reported valid")
	}
}
