package editor

import (
	"github.com/fabvis/fabvis/pkg/slice"
	"github.com/fabvis/fabvis/pkg/validate"
)

// Intent is what a submit would mean right now.
type Intent string

const (
	IntentCreate Intent = "create"
	IntentModify Intent = "modify"
	IntentNone   Intent = "none"
)

// Gate is the derived state of the top-level submit action.
//
// Enabled is independent of validity: a freshly created draft is submittable
// even while invalid. Warn flags the enabled-but-invalid case, where the host
// renders the action clickable-looking but inert and steers the operator to
// the issue list instead of a silent remote failure.
type Gate struct {
	Enabled bool
	Intent  Intent
	Warn    bool
	Label   string
}

func computeGate(s *slice.Slice, v *validate.Result, inFlight bool) Gate {
	if s == nil {
		return Gate{Intent: IntentNone, Label: "Submit"}
	}

	g := Gate{Intent: IntentNone, Label: "Submit"}
	switch {
	case s.State == slice.StateDraft:
		g.Intent = IntentCreate
	case s.Dirty && s.State.Submittable():
		g.Intent = IntentModify
		g.Label = "Submit Changes"
	}

	g.Enabled = g.Intent != IntentNone && !inFlight
	g.Warn = g.Enabled && v != nil && !v.Valid
	return g
}
