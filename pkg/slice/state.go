package slice

// State is the lifecycle state of a slice.
//
// Local editing begins in StateDraft. Submit moves the slice through
// StateSubmitting to either StateActive or StateSubmitError; later edits to an
// active slice go through StateModifying. StateRefreshing is transient while a
// wholesale re-read from the control framework is in flight, and StateDeleted
// is terminal.
type State string

const (
	StateDraft       State = "Draft"
	StateSubmitting  State = "Submitting"
	StateActive      State = "StableOK"
	StateSubmitError State = "StableError"
	StateModifying   State = "Modifying"
	StateModifyError State = "ModifyError"
	StateRefreshing  State = "Refreshing"
	StateClosing     State = "Closing"
	StateDead        State = "Dead"
	StateDeleted     State = "Deleted"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDeleted || s == StateDead
}

// Submittable reports whether a submit may be started from this state.
// Draft slices are always submittable (create intent); settled post-submit
// states allow a modify submit when local edits exist. In-flight and terminal
// states never accept a submit.
func (s State) Submittable() bool {
	switch s {
	case StateDraft, StateActive, StateSubmitError, StateModifyError:
		return true
	default:
		return false
	}
}

// InFlight reports whether a remote mutation or refresh is outstanding.
func (s State) InFlight() bool {
	return s == StateSubmitting || s == StateModifying || s == StateRefreshing
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Refresh may begin from any non-terminal state and settle to whatever
// state the control framework reports, so transitions out of StateRefreshing
// are always allowed.
func (s State) CanTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateDeleted || next == StateRefreshing {
		return true
	}
	switch s {
	case StateDraft:
		return next == StateSubmitting
	case StateSubmitting:
		return next == StateActive || next == StateSubmitError
	case StateActive, StateSubmitError, StateModifyError:
		return next == StateModifying || next == StateSubmitting ||
			next == StateActive || next == StateClosing
	case StateModifying:
		return next == StateActive || next == StateModifyError
	case StateRefreshing:
		return true
	case StateClosing:
		return next == StateDead
	}
	return false
}

// Reservation states reported per node by the control framework. The set is
// open: sites report vendor states we do not enumerate, so consumers must
// treat unrecognized values as unknown rather than failing.
const (
	ResActive       = "Active"
	ResActiveTicket = "ActiveTicketed"
	ResTicketed     = "Ticketed"
	ResConfiguring  = "Configuring"
	ResNascent      = "Nascent"
	ResClosing      = "Closing"
	ResDead         = "Dead"
	ResFailed       = "Failed"
)
