package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabvis/fabvis/pkg/fabric"
	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/util"
)

// newDraftSession creates a session over a fresh submittable draft: nodes n1
// and n2, each with a basic NIC, joined by L2 bridge net1.
func newDraftSession(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()
	s := NewSession(fabric.NewSimController(), "s1")
	require.NoError(t, s.Create(ctx))
	require.NoError(t, s.AddNode(ctx, fabric.NodeSpec{Name: "n1", Site: "STAR"}))
	require.NoError(t, s.AddNode(ctx, fabric.NodeSpec{Name: "n2", Site: "TACC"}))
	require.NoError(t, s.AddComponent(ctx, "n1", fabric.ComponentSpec{Name: "nic1", Model: "NIC_Basic"}))
	require.NoError(t, s.AddComponent(ctx, "n2", fabric.ComponentSpec{Name: "nic1", Model: "NIC_Basic"}))
	require.NoError(t, s.AddNetwork(ctx, fabric.NetworkSpec{
		Name:       "net1",
		Type:       slice.NetL2Bridge,
		Interfaces: []string{"n1-nic1-p1", "n2-nic1-p1"},
	}))
	return s
}

func TestLoadComputesDerivedViews(t *testing.T) {
	s := newDraftSession(t)

	require.NotNil(t, s.Slice())
	require.NotNil(t, s.Model())
	require.NotNil(t, s.Validation())
	assert.True(t, s.Model().Contains("node:s1:n1"))
	assert.True(t, s.Model().Contains("net:s1:net1"))
	assert.True(t, s.Validation().Valid)
}

// ============================================================================
// Selection
// ============================================================================

func TestSelectOnlyUnknownIDClears(t *testing.T) {
	s := newDraftSession(t)

	s.SelectOnly("node:s1:n1")
	require.True(t, s.IsSelected("node:s1:n1"))

	s.SelectOnly("node:s1:phantom")
	assert.Empty(t, s.Selection())
}

func TestToggleInSelection(t *testing.T) {
	s := newDraftSession(t)

	s.SelectOnly("node:s1:n1")
	s.ToggleInSelection("net:s1:net1")
	assert.Len(t, s.Selection(), 2)

	s.ToggleInSelection("net:s1:net1")
	assert.Equal(t, []string{"node:s1:n1"}, s.Selection())
}

func TestSelectionOrderFollowsModel(t *testing.T) {
	s := newDraftSession(t)

	// Click in reverse model order; the reported order is still model order.
	s.SelectOnly("net:s1:net1")
	s.ToggleInSelection("node:s1:n2")
	s.ToggleInSelection("node:s1:n1")

	assert.Equal(t, []string{"node:s1:n1", "node:s1:n2", "net:s1:net1"}, s.Selection())
}

func TestSelectionPrunedAfterRecompute(t *testing.T) {
	ctx := context.Background()
	s := newDraftSession(t)

	s.SelectOnly("node:s1:n2")
	s.ToggleInSelection("node:s1:n1")

	cmd := &Command{Kind: CommandDelete, Targets: []Target{{Type: TargetNode, Name: "n2"}}}
	require.NoError(t, s.ExecuteDelete(ctx, cmd))

	// The deleted node's id was silently dropped; the survivor remains.
	assert.Equal(t, []string{"node:s1:n1"}, s.Selection())
}

func TestBackgroundGestureClearsSelectionAndMenu(t *testing.T) {
	s := newDraftSession(t)

	s.SelectOnly("node:s1:n1")
	_, err := s.Dispatch(Gesture{Kind: GestureContext, ElementID: "node:s1:n1"})
	require.NoError(t, err)
	require.NotNil(t, s.PendingMenu())

	_, err = s.Dispatch(Gesture{Kind: GestureBackground})
	require.NoError(t, err)
	assert.Empty(t, s.Selection())
	assert.Nil(t, s.PendingMenu())
}

// ============================================================================
// Context menu
// ============================================================================

func TestContextMenuRejectsEdgesAndContainer(t *testing.T) {
	s := newDraftSession(t)

	for _, id := range []string{"slice:s1", "edge:s1:n1-nic1-p1"} {
		_, err := s.OpenContextMenu(id, Pointer{X: 5, Y: 5})
		assert.Error(t, err, id)
	}
}

func TestContextMenuOnUnselectedElement(t *testing.T) {
	s := newDraftSession(t)
	s.SelectOnly("node:s1:n1")

	// Right-click on an element outside the selection: the menu is for that
	// element alone and the stored selection is untouched.
	menu, err := s.OpenContextMenu("net:s1:net1", Pointer{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, []string{"net:s1:net1"}, menu.Selection)
	assert.Equal(t, Pointer{X: 10, Y: 20}, menu.Anchor)
	assert.Equal(t, []string{"node:s1:n1"}, s.Selection())
}

func TestContextMenuOnSelectedElementUsesFullSelection(t *testing.T) {
	s := newDraftSession(t)
	s.SelectOnly("node:s1:n1")
	s.ToggleInSelection("net:s1:net1")

	menu, err := s.OpenContextMenu("node:s1:n1", Pointer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"node:s1:n1", "net:s1:net1"}, menu.Selection)
	assert.True(t, menu.Offers(CommandDelete))
}

func TestContextMenuOnFacilityPortOffersDelete(t *testing.T) {
	ctx := context.Background()
	s := newDraftSession(t)
	require.NoError(t, s.AddNetwork(ctx, fabric.NetworkSpec{Name: "fp1", Type: "FacilityPort"}))

	menu, err := s.OpenContextMenu("net:s1:fp1", Pointer{})
	require.NoError(t, err)
	assert.True(t, menu.Offers(CommandDelete))
}

func TestOpenSessionOfferedOnlyForProvisionedNodes(t *testing.T) {
	ctx := context.Background()
	s := newDraftSession(t)

	menu, err := s.OpenContextMenu("node:s1:n1", Pointer{})
	require.NoError(t, err)
	assert.False(t, menu.Offers(CommandOpenSession))

	require.NoError(t, s.Submit(ctx))

	menu, err = s.OpenContextMenu("node:s1:n1", Pointer{})
	require.NoError(t, err)
	assert.True(t, menu.Offers(CommandOpenSession))
}

func TestResolveContextActionClosesMenu(t *testing.T) {
	s := newDraftSession(t)

	_, err := s.OpenContextMenu("node:s1:n1", Pointer{})
	require.NoError(t, err)

	cmd, err := s.ResolveContextAction(CommandDelete)
	require.NoError(t, err)
	assert.Equal(t, CommandDelete, cmd.Kind)
	assert.Equal(t, []Target{{Type: TargetNode, Name: "n1"}}, cmd.Targets)
	assert.Nil(t, s.PendingMenu())

	_, err = s.ResolveContextAction(CommandDelete)
	assert.Error(t, err, "second resolve should fail with no menu open")
}

func TestResolveContextActionNotOffered(t *testing.T) {
	s := newDraftSession(t)

	_, err := s.OpenContextMenu("node:s1:n1", Pointer{})
	require.NoError(t, err)

	// n1 has no management IP yet, so open-session is not offered.
	_, err = s.ResolveContextAction(CommandOpenSession)
	assert.Error(t, err)
	assert.Nil(t, s.PendingMenu(), "failed resolve still closes the menu")
}

// ============================================================================
// Batch delete
// ============================================================================

func TestBatchDeleteNodeThenNetwork(t *testing.T) {
	ctx := context.Background()
	s := newDraftSession(t)

	s.SelectOnly("node:s1:n1")
	s.ToggleInSelection("net:s1:net1")
	menu, err := s.OpenContextMenu("node:s1:n1", Pointer{})
	require.NoError(t, err)
	require.True(t, menu.Offers(CommandDelete))

	cmd, err := s.ResolveContextAction(CommandDelete)
	require.NoError(t, err)
	require.Len(t, cmd.Targets, 2)

	// Node first: its deletion detaches one of net1's interfaces, and each
	// later removal is evaluated against the folded intermediate snapshot.
	require.NoError(t, s.ExecuteDelete(ctx, cmd))

	sl := s.Slice()
	assert.Nil(t, sl.GetNode("n1"))
	assert.NotNil(t, sl.GetNode("n2"))
	assert.Empty(t, sl.Networks)
	assert.Empty(t, s.Selection())
	// n2's interface is dangling now: a warning, never an error.
	assert.True(t, s.Validation().Valid)
	assert.Equal(t, 1, s.Validation().WarningCount())
}

func TestBatchDeleteStopsOnFirstFailure(t *testing.T) {
	ctx := context.Background()
	s := newDraftSession(t)

	cmd := &Command{Kind: CommandDelete, Targets: []Target{
		{Type: TargetNetwork, Name: "net1"},
		{Type: TargetNode, Name: "ghost"},
		{Type: TargetNode, Name: "n1"},
	}}
	err := s.ExecuteDelete(ctx, cmd)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrNotFound))

	// Progress before the failure is kept; targets after it are untouched.
	sl := s.Slice()
	assert.Empty(t, sl.Networks)
	assert.NotNil(t, sl.GetNode("n1"))
	assert.False(t, s.MutationInFlight())
}

func TestExecuteDeleteRejectsConcurrentMutation(t *testing.T) {
	s := newDraftSession(t)
	s.mu.Lock()
	s.inFlight = true
	s.mu.Unlock()

	cmd := &Command{Kind: CommandDelete, Targets: []Target{{Type: TargetNode, Name: "n1"}}}
	err := s.ExecuteDelete(context.Background(), cmd)
	assert.ErrorIs(t, err, util.ErrMutationInFlight)
}

// ============================================================================
// Submit gate
// ============================================================================

func TestGateCreateIntentForDraft(t *testing.T) {
	s := newDraftSession(t)

	g := s.Gate()
	assert.True(t, g.Enabled)
	assert.Equal(t, IntentCreate, g.Intent)
	assert.Equal(t, "Submit", g.Label)
	assert.False(t, g.Warn)
}

func TestGateWarnsWhenInvalid(t *testing.T) {
	ctx := context.Background()
	s := NewSession(fabric.NewSimController(), "s1")
	require.NoError(t, s.Create(ctx))

	// An empty draft is invalid but still submittable-looking.
	g := s.Gate()
	assert.True(t, g.Enabled)
	assert.True(t, g.Warn)
}

func TestGateAfterSubmitAndModify(t *testing.T) {
	ctx := context.Background()
	s := newDraftSession(t)
	require.NoError(t, s.Submit(ctx))

	g := s.Gate()
	assert.Equal(t, IntentNone, g.Intent)
	assert.False(t, g.Enabled)

	require.NoError(t, s.AddNode(ctx, fabric.NodeSpec{Name: "n3", Site: "UTAH"}))
	g = s.Gate()
	assert.Equal(t, IntentModify, g.Intent)
	assert.Equal(t, "Submit Changes", g.Label)
	assert.True(t, g.Enabled)
}

func TestSubmitDisabledGate(t *testing.T) {
	ctx := context.Background()
	s := newDraftSession(t)
	require.NoError(t, s.Submit(ctx))

	// Nothing dirty: the gate is closed and submit refuses locally.
	err := s.Submit(ctx)
	assert.ErrorIs(t, err, util.ErrNothingToSubmit)
}

func TestSubmitInvalidDraftFailsRemotelyAndKeepsDraft(t *testing.T) {
	ctx := context.Background()
	s := NewSession(fabric.NewSimController(), "s1")
	require.NoError(t, s.Create(ctx))

	// Warn-gated submit goes through to the controller, which rejects it.
	err := s.Submit(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, util.ErrValidationFailed)
	assert.Equal(t, slice.StateDraft, s.Slice().State)
	assert.False(t, s.MutationInFlight())
}

// ============================================================================
// Refresh and staleness
// ============================================================================

func TestRefreshDropsLocalEditsWholesale(t *testing.T) {
	ctx := context.Background()
	s := newDraftSession(t)
	require.NoError(t, s.Submit(ctx))
	require.NoError(t, s.AddNode(ctx, fabric.NodeSpec{Name: "scratch", Site: "UTAH"}))
	s.SelectOnly("node:s1:scratch")

	require.NoError(t, s.Refresh(ctx))

	assert.Nil(t, s.Slice().GetNode("scratch"))
	assert.False(t, s.Model().Contains("node:s1:scratch"))
	assert.Empty(t, s.Selection(), "selection of the dropped node was pruned")
}

func TestLateSnapshotDiscarded(t *testing.T) {
	ctx := context.Background()
	s := newDraftSession(t)

	stale := s.Slice().Clone()
	staleGen := s.generation()

	// A newer command settles first and bumps the generation.
	require.NoError(t, s.AddNode(ctx, fabric.NodeSpec{Name: "n3", Site: "UTAH"}))
	require.NotNil(t, s.Slice().GetNode("n3"))

	// The older call's result arrives afterwards and is ignored.
	s.applySnapshot(stale, staleGen)
	assert.NotNil(t, s.Slice().GetNode("n3"), "late snapshot overwrote newer state")
}

func TestDeactivatedSessionDiscardsResults(t *testing.T) {
	s := newDraftSession(t)
	before := s.Slice()

	gen := s.generation()
	s.Deactivate()
	assert.False(t, s.Active())

	s.applySnapshot(slice.New("s1"), gen)
	assert.Same(t, before, s.Slice(), "snapshot applied after deactivation")
}

func TestGraphIDsStableAcrossFirstSubmit(t *testing.T) {
	ctx := context.Background()
	s := newDraftSession(t)
	require.NoError(t, s.Submit(ctx))

	// Submit assigned the remote ID, but element ids key on the name.
	require.NotEmpty(t, s.Slice().ID)
	assert.True(t, s.Model().Contains("node:s1:n1"))
	assert.True(t, s.Model().Contains("net:s1:net1"))
}
