package editor

import (
	"fmt"
	"strings"

	"github.com/fabvis/fabvis/pkg/graph"
	"github.com/fabvis/fabvis/pkg/util"
)

// Pointer is a pointer position in the host's coordinate space. The engine
// never interprets it; it is carried through so the host can anchor a menu.
type Pointer struct {
	X, Y int
}

// Menu is a pending context menu: the anchor, the effective selection it was
// opened for, and the command kinds it offers.
type Menu struct {
	Anchor    Pointer
	TargetID  string
	Selection []string // effective selection, in graph model order
	Kinds     []CommandKind
}

// Offers reports whether the menu offers the given command kind.
func (m *Menu) Offers(kind CommandKind) bool {
	for _, k := range m.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ============================================================================
// Selection operations
// ============================================================================

// SelectOnly replaces the selection with a single element (primary click).
// Unknown ids clear the selection rather than selecting a phantom.
func (s *Session) SelectOnly(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]bool)
	if s.model != nil && s.model.Contains(id) {
		s.selection[id] = true
	}
}

// ToggleInSelection adds or removes one element (additive/box selection).
func (s *Session) ToggleInSelection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.model == nil || !s.model.Contains(id) {
		return
	}
	if s.selection[id] {
		delete(s.selection, id)
	} else {
		s.selection[id] = true
	}
}

// ClearSelection empties the selection (background click).
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]bool)
	s.menu = nil
}

// Selection returns the selected element ids in graph model order, so the
// result is deterministic regardless of click order.
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderedSelectionLocked(s.selection)
}

// IsSelected reports whether the element is currently selected.
func (s *Session) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection[id]
}

// pruneSelectionLocked drops selection entries (and any pending menu) whose
// elements no longer exist in the recomputed graph model. Stale ids are
// silently removed, never left selected.
func (s *Session) pruneSelectionLocked() {
	for id := range s.selection {
		if !s.model.Contains(id) {
			delete(s.selection, id)
		}
	}
	if s.menu != nil && !s.model.Contains(s.menu.TargetID) {
		s.menu = nil
	}
}

// orderedSelectionLocked flattens a selection set in graph model order.
func (s *Session) orderedSelectionLocked(sel map[string]bool) []string {
	if s.model == nil {
		return nil
	}
	var out []string
	for _, n := range s.model.Nodes {
		if sel[n.ID] {
			out = append(out, n.ID)
		}
	}
	for _, e := range s.model.Edges {
		if sel[e.ID] {
			out = append(out, e.ID)
		}
	}
	return out
}

// ============================================================================
// Context menu
// ============================================================================

// OpenContextMenu opens a context menu for the element under the pointer.
// Right-clicking an unselected element offers that element alone without
// extending the stored selection; right-clicking a selected element offers
// the full current selection. Edges and the slice container are never valid
// menu targets.
func (s *Session) OpenContextMenu(id string, at Pointer) (*Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model == nil || !s.model.Contains(id) {
		return nil, fmt.Errorf("element '%s': %w", id, util.ErrNotFound)
	}
	data := s.model.DataOf(id)
	switch data["element_type"] {
	case graph.TypeNode, graph.TypeNetwork:
	default:
		return nil, fmt.Errorf("element '%s' is not a menu target", id)
	}

	effective := s.selection
	if !s.selection[id] {
		effective = map[string]bool{id: true}
	}
	ordered := s.orderedSelectionLocked(effective)

	var kinds []CommandKind
	if len(s.openSessionTargetsLocked(ordered)) > 0 {
		kinds = append(kinds, CommandOpenSession)
	}
	if len(s.deleteTargetsLocked(ordered)) > 0 {
		kinds = append(kinds, CommandDelete)
	}

	s.menu = &Menu{
		Anchor:    at,
		TargetID:  id,
		Selection: ordered,
		Kinds:     kinds,
	}
	return s.menu, nil
}

// PendingMenu returns the open context menu, or nil.
func (s *Session) PendingMenu() *Menu {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.menu
}

// CloseContextMenu dismisses the menu without resolving an action.
func (s *Session) CloseContextMenu() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menu = nil
}

// openSessionTargetsLocked filters ids to vm elements with a management
// address, the only elements a remote session can be opened on.
func (s *Session) openSessionTargetsLocked(ids []string) []Target {
	var out []Target
	for _, id := range ids {
		if s.model.ClassOf(id) != graph.ClassVM {
			continue
		}
		data := s.model.DataOf(id)
		if data["management_ip"] == "" {
			continue
		}
		out = append(out, Target{Type: TargetNode, Name: data["name"]})
	}
	return out
}

// deleteTargetsLocked filters ids to deletable elements: compute nodes and
// networks. Edges and the container are excluded here as well, so a mixed
// selection resolves to the deletable subset.
func (s *Session) deleteTargetsLocked(ids []string) []Target {
	var out []Target
	for _, id := range ids {
		class := s.model.ClassOf(id)
		data := s.model.DataOf(id)
		switch {
		case class == graph.ClassVM || class == graph.ClassSwitch:
			out = append(out, Target{Type: TargetNode, Name: data["name"]})
		case strings.HasPrefix(class, "network-") || class == graph.ClassFacilityPort:
			out = append(out, Target{Type: TargetNetwork, Name: data["name"]})
		}
	}
	return out
}

// ============================================================================
// Gesture dispatch
// ============================================================================

// GestureKind is the pointer/keyboard gesture vocabulary the host UI feeds
// into the engine, independent of any rendering library's event objects.
type GestureKind string

const (
	GesturePrimary    GestureKind = "primary"    // plain click on an element
	GestureAdditive   GestureKind = "additive"   // shift-click / box select
	GestureBackground GestureKind = "background" // click on empty canvas
	GestureContext    GestureKind = "context"    // right-click
)

// Gesture is one pointer/keyboard event, already hit-tested by the host.
type Gesture struct {
	Kind      GestureKind
	ElementID string
	At        Pointer
}

// Dispatch routes a gesture to the matching selection operation. Context
// gestures return the opened menu; all others return nil.
func (s *Session) Dispatch(g Gesture) (*Menu, error) {
	switch g.Kind {
	case GesturePrimary:
		s.SelectOnly(g.ElementID)
		return nil, nil
	case GestureAdditive:
		s.ToggleInSelection(g.ElementID)
		return nil, nil
	case GestureBackground:
		s.ClearSelection()
		return nil, nil
	case GestureContext:
		return s.OpenContextMenu(g.ElementID, g.At)
	default:
		return nil, fmt.Errorf("unknown gesture kind %q", g.Kind)
	}
}
