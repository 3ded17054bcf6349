package wizard

import (
	"fmt"
	"strings"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/lead"
)

// State is the wizard's position in the intake flow.
type State int

const (
	StateStep1 State = iota + 1
	StateStep2
	StateStep3
	StateStep4
	StateSubmitting
	StateSuccess
	StateFailed
)

// States lists every state in declaration order.
var States = []State{
	StateStep1, StateStep2, StateStep3, StateStep4,
	StateSubmitting, StateSuccess, StateFailed,
}

func (s State) String() string {
	switch s {
	case StateStep1:
		return "step1"
	case StateStep2:
		return "step2"
	case StateStep3:
		return "step3"
	case StateStep4:
		return "step4"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Step returns the form step shown for s. Submission states belong to
// the contact step.
func (s State) Step() int {
	switch s {
	case StateStep1:
		return 1
	case StateStep2:
		return 2
	case StateStep3:
		return 3
	case StateStep4, StateSubmitting, StateSuccess, StateFailed:
		return 4
	default:
		return 0
	}
}

// Event drives a transition.
type Event int

const (
	EventNext Event = iota + 1
	EventBack
	EventSubmit
	EventAck
	EventReject
	EventNewRequest
)

// Events lists every event in declaration order.
var Events = []Event{EventNext, EventBack, EventSubmit, EventAck, EventReject, EventNewRequest}

func (e Event) String() string {
	switch e {
	case EventNext:
		return "next"
	case EventBack:
		return "back"
	case EventSubmit:
		return "submit"
	case EventAck:
		return "ack"
	case EventReject:
		return "reject"
	case EventNewRequest:
		return "new_request"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Guard reports whether the record satisfies a transition's precondition.
type Guard func(lead.Record) bool

type transition struct {
	to    State
	guard Guard
}

// transitions is the complete state machine. Pairs not listed are invalid.
var transitions = map[State]map[Event]transition{
	StateStep1: {
		EventNext: {to: StateStep2, guard: step1Complete},
	},
	StateStep2: {
		EventNext: {to: StateStep3, guard: step2Complete},
		EventBack: {to: StateStep1},
	},
	StateStep3: {
		EventNext: {to: StateStep4},
		EventBack: {to: StateStep2},
	},
	StateStep4: {
		EventSubmit: {to: StateSubmitting, guard: contactComplete},
		EventBack:   {to: StateStep3},
	},
	StateSubmitting: {
		EventAck:    {to: StateSuccess},
		EventReject: {to: StateFailed},
	},
	StateFailed: {
		EventSubmit: {to: StateSubmitting, guard: contactComplete},
		EventBack:   {to: StateStep3},
	},
	StateSuccess: {
		EventNewRequest: {to: StateStep1},
	},
}

// Lookup returns the target of (from, ev) and whether the pair is defined.
// It does not evaluate the guard.
func Lookup(from State, ev Event) (State, bool) {
	t, ok := transitions[from][ev]
	return t.to, ok
}

// Permitted reports whether ev fires from state with record r.
func Permitted(from State, ev Event, r lead.Record) bool {
	t, ok := transitions[from][ev]
	if !ok {
		return false
	}
	return t.guard == nil || t.guard(r)
}

func step1Complete(r lead.Record) bool {
	return r.OccasionType != "" && r.LocationArea != "" && r.HasDate()
}

func step2Complete(r lead.Record) bool {
	return r.BudgetRange != "" && r.VenuePreference != ""
}

func contactComplete(r lead.Record) bool {
	return strings.TrimSpace(r.FullName) != "" && strings.TrimSpace(r.Phone) != "" && r.Consent
}
