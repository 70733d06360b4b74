package editor

import (
	"context"
	"fmt"
	"io"

	"github.com/fabvis/fabvis/pkg/fabric"
	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/util"
)

// CommandKind is the set of actions a context menu can resolve to.
type CommandKind string

const (
	CommandOpenSession CommandKind = "open-session"
	CommandDelete      CommandKind = "delete"
)

// TargetType distinguishes deletable element kinds.
type TargetType string

const (
	TargetNode    TargetType = "node"
	TargetNetwork TargetType = "network"
)

// Target names one domain element a command acts on.
type Target struct {
	Type TargetType
	Name string
}

// Command is one resolved context action. Delete commands carry the whole
// ordered batch; open-session commands carry one target per session to open.
type Command struct {
	Kind    CommandKind
	Targets []Target
}

// ResolveContextAction resolves the pending menu into a command and closes
// the menu. The returned command is not yet executed: hosts pass delete
// batches to ExecuteDelete and open sessions via OpenSession per target.
func (s *Session) ResolveContextAction(kind CommandKind) (*Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.menu == nil {
		return nil, fmt.Errorf("no context menu open")
	}
	menu := s.menu
	s.menu = nil

	if !menu.Offers(kind) {
		return nil, fmt.Errorf("action %q not offered for this selection", kind)
	}

	switch kind {
	case CommandOpenSession:
		return &Command{Kind: kind, Targets: s.openSessionTargetsLocked(menu.Selection)}, nil
	case CommandDelete:
		return &Command{Kind: kind, Targets: s.deleteTargetsLocked(menu.Selection)}, nil
	default:
		return nil, fmt.Errorf("unknown command kind %q", kind)
	}
}

// ============================================================================
// Command execution
// ============================================================================

// ExecuteDelete removes the command's targets one at a time, folding each
// response's updated slice into the session before issuing the next removal,
// so later removals are evaluated against up-to-date state (a network whose
// last interface was freed by a node deletion deletes cleanly).
//
// On the first failure the batch stops: already-applied removals are kept,
// the error is returned with the triggering target named, and validation has
// already been re-run against the partially-completed state.
func (s *Session) ExecuteDelete(ctx context.Context, cmd *Command) error {
	if cmd == nil || cmd.Kind != CommandDelete {
		return fmt.Errorf("not a delete command")
	}
	if _, err := s.beginMutation(); err != nil {
		return err
	}
	defer s.endMutation()

	for _, target := range cmd.Targets {
		var (
			sl  *slice.Slice
			err error
		)
		gen := s.generation()
		switch target.Type {
		case TargetNode:
			sl, err = s.ctrl.RemoveNode(ctx, s.name, target.Name)
		case TargetNetwork:
			sl, err = s.ctrl.RemoveNetwork(ctx, s.name, target.Name)
		default:
			err = fmt.Errorf("unknown target type %q", target.Type)
		}
		if err != nil {
			return util.NewCommandError(fmt.Sprintf("%s.remove", target.Type), target.Name, err)
		}
		s.applySnapshot(sl, gen)
		util.WithSlice(s.name).Infof("Removed %s %s", target.Type, target.Name)
	}
	return nil
}

// OpenSession opens a remote session stream to one node of an open-session
// command. The stream is handed to the host (terminal emulator) unchanged.
func (s *Session) OpenSession(ctx context.Context, nodeName string) (io.ReadWriteCloser, error) {
	stream, err := s.ctrl.OpenSession(ctx, s.name, nodeName)
	if err != nil {
		return nil, util.NewCommandError("node.open-session", nodeName, err)
	}
	return stream, nil
}

// Submit submits the slice: create intent from a draft, modify intent when
// dirty. The controller returns the post-submit snapshot, which replaces
// local state wholesale.
func (s *Session) Submit(ctx context.Context) error {
	gate := s.Gate()
	if !gate.Enabled {
		return util.ErrNothingToSubmit
	}

	gen, err := s.beginMutation()
	if err != nil {
		return err
	}
	defer s.endMutation()

	sl, err := s.ctrl.SubmitSlice(ctx, s.name)
	if err != nil {
		return util.NewCommandError("slice.submit", s.name, err)
	}
	s.applySnapshot(sl, gen)
	util.WithSlice(s.name).Infof("Submitted (%s)", gate.Intent)
	return nil
}

// Refresh re-reads the slice from the control framework, discarding local
// edits wholesale. Deliberate last-write-wins: no merge is attempted.
func (s *Session) Refresh(ctx context.Context) error {
	gen := s.generation()
	sl, err := s.ctrl.RefreshSlice(ctx, s.name)
	if err != nil {
		return util.NewCommandError("slice.refresh", s.name, err)
	}
	s.applySnapshot(sl, gen)
	return nil
}

// ============================================================================
// Local edits
// Edits are optimistic only in the sense that they have not been submitted;
// each one round-trips through the controller, which returns the updated
// draft snapshot that all derived views are recomputed from.
// ============================================================================

func (s *Session) edit(command, target string, fn func(ctx context.Context) (*slice.Slice, error), ctx context.Context) error {
	gen, err := s.beginMutation()
	if err != nil {
		return err
	}
	defer s.endMutation()

	sl, err := fn(ctx)
	if err != nil {
		return util.NewCommandError(command, target, err)
	}
	s.applySnapshot(sl, gen)
	return nil
}

// AddNode adds a node to the draft.
func (s *Session) AddNode(ctx context.Context, spec fabric.NodeSpec) error {
	return s.edit("node.add", spec.Name, func(ctx context.Context) (*slice.Slice, error) {
		return s.ctrl.AddNode(ctx, s.name, spec)
	}, ctx)
}

// UpdateNode changes a node's configurable fields.
func (s *Session) UpdateNode(ctx context.Context, nodeName string, update fabric.NodeUpdate) error {
	return s.edit("node.update", nodeName, func(ctx context.Context) (*slice.Slice, error) {
		return s.ctrl.UpdateNode(ctx, s.name, nodeName, update)
	}, ctx)
}

// AddComponent attaches a component to a node.
func (s *Session) AddComponent(ctx context.Context, nodeName string, spec fabric.ComponentSpec) error {
	return s.edit("component.add", spec.Name, func(ctx context.Context) (*slice.Slice, error) {
		return s.ctrl.AddComponent(ctx, s.name, nodeName, spec)
	}, ctx)
}

// RemoveComponent removes a component from a node.
func (s *Session) RemoveComponent(ctx context.Context, nodeName, compName string) error {
	return s.edit("component.remove", compName, func(ctx context.Context) (*slice.Slice, error) {
		return s.ctrl.RemoveComponent(ctx, s.name, nodeName, compName)
	}, ctx)
}

// AddNetwork creates a network attaching the named interfaces.
func (s *Session) AddNetwork(ctx context.Context, spec fabric.NetworkSpec) error {
	return s.edit("network.add", spec.Name, func(ctx context.Context) (*slice.Slice, error) {
		return s.ctrl.AddNetwork(ctx, s.name, spec)
	}, ctx)
}

// Attach joins a dangling interface to a network.
func (s *Session) Attach(ctx context.Context, ifaceName, networkName string) error {
	return s.edit("interface.attach", ifaceName, func(ctx context.Context) (*slice.Slice, error) {
		return s.ctrl.AttachInterface(ctx, s.name, ifaceName, networkName)
	}, ctx)
}

// Detach removes an interface from its network, leaving it dangling.
func (s *Session) Detach(ctx context.Context, ifaceName string) error {
	return s.edit("interface.detach", ifaceName, func(ctx context.Context) (*slice.Slice, error) {
		return s.ctrl.DetachInterface(ctx, s.name, ifaceName)
	}, ctx)
}
