// Package editor provides the stateful editing session for one slice: it
// owns the settled domain model snapshot, the derived graph model and issue
// list, the current selection, and the translation of pointer gestures into
// commands against the control framework.
//
// A Session is an explicit object rather than process-wide state so several
// independent slice sessions can coexist in one process. All derived views
// (graph, issues, gate) are recomputed from the most recently settled
// snapshot; in-flight optimistic state is never projected.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/fabvis/fabvis/pkg/fabric"
	"github.com/fabvis/fabvis/pkg/graph"
	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/util"
	"github.com/fabvis/fabvis/pkg/validate"
)

// Session is the editing context for a single slice.
type Session struct {
	mu   sync.Mutex
	name string
	ctrl fabric.Controller

	current    *slice.Slice
	model      *graph.Model
	validation *validate.Result

	selection map[string]bool
	menu      *Menu

	// One mutating command in flight per slice; reads are unbounded.
	inFlight bool

	// gen guards against late async results: a snapshot produced by a call
	// that started before the last wholesale replacement is discarded.
	gen int

	// active is cleared when the operator navigates away from the slice.
	active bool

	stopPoll chan struct{}
}

// NewSession creates a session bound to a named slice on the given
// controller. Call Load before using any derived view.
func NewSession(ctrl fabric.Controller, name string) *Session {
	return &Session{
		name:      name,
		ctrl:      ctrl,
		selection: make(map[string]bool),
		active:    true,
	}
}

// Name returns the slice name this session edits.
func (s *Session) Name() string { return s.name }

// Load fetches the slice from the controller and recomputes all derived
// state. Used both for the initial read and for an explicit refresh, which
// replaces local edits wholesale (last-write-wins, no merge).
func (s *Session) Load(ctx context.Context) error {
	gen := s.generation()
	sl, err := s.ctrl.GetSlice(ctx, s.name)
	if err != nil {
		return util.NewCommandError("slice.get", s.name, err)
	}
	s.applySnapshot(sl, gen)
	return nil
}

// Create asks the controller for a fresh draft slice and adopts it.
func (s *Session) Create(ctx context.Context) error {
	gen := s.generation()
	sl, err := s.ctrl.CreateSlice(ctx, s.name)
	if err != nil {
		return util.NewCommandError("slice.create", s.name, err)
	}
	s.applySnapshot(sl, gen)
	return nil
}

// ============================================================================
// Derived views (always computed from the last settled snapshot)
// ============================================================================

// Slice returns the settled domain model snapshot (nil before Load).
func (s *Session) Slice() *slice.Slice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Model returns the current graph model (nil before Load).
func (s *Session) Model() *graph.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Validation returns the current issue list (nil before Load).
func (s *Session) Validation() *validate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validation
}

// Gate returns the submit action state derived from the settled snapshot.
func (s *Session) Gate() Gate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeGate(s.current, s.validation, s.inFlight)
}

// ============================================================================
// Snapshot lifecycle
// ============================================================================

// applySnapshot atomically replaces the domain model and recomputes the
// graph model, validation, and selection. Late results (older generation, or
// arriving after the session was deactivated) are discarded.
func (s *Session) applySnapshot(sl *slice.Slice, gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || gen != s.gen {
		util.WithSlice(s.name).Debug("discarding late snapshot")
		return
	}
	s.gen++

	s.current = sl
	s.model = graph.Project(sl)
	s.validation = validate.Validate(sl)
	s.pruneSelectionLocked()
}

// generation reads the current snapshot generation for a command about to
// start; applySnapshot compares it to detect staleness.
func (s *Session) generation() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Deactivate marks the session inactive: periodic polling stops and results
// of still-outstanding one-shot commands are discarded on arrival.
func (s *Session) Deactivate() {
	s.mu.Lock()
	if s.stopPoll != nil {
		close(s.stopPoll)
		s.stopPoll = nil
	}
	s.active = false
	s.mu.Unlock()
}

// Active reports whether the session is still the operator's focus.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// StartPolling refreshes the slice from the controller at the given interval
// until Deactivate or StopPolling. Polling is a read-only operation and is
// not serialized against mutating commands.
func (s *Session) StartPolling(interval time.Duration) {
	s.mu.Lock()
	if s.stopPoll != nil || !s.active {
		s.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stopPoll = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				gen := s.generation()
				sl, err := s.ctrl.GetSlice(context.Background(), s.name)
				if err != nil {
					util.WithSlice(s.name).Debugf("poll failed: %v", err)
					continue
				}
				s.applySnapshot(sl, gen)
			}
		}
	}()
}

// StopPolling stops periodic refresh without deactivating the session.
func (s *Session) StopPolling() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopPoll != nil {
		close(s.stopPoll)
		s.stopPoll = nil
	}
}

// ============================================================================
// Mutation guard
// ============================================================================

// beginMutation sets the single in-flight-mutation flag, failing if another
// mutating command is outstanding for this slice.
func (s *Session) beginMutation() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return 0, util.ErrMutationInFlight
	}
	s.inFlight = true
	return s.gen, nil
}

func (s *Session) endMutation() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// MutationInFlight reports whether a mutating command is outstanding.
func (s *Session) MutationInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}
