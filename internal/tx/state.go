// Package tx runs a submission: an optional approval followed by the pool
// operation, tracked as one explicit state machine.
package tx

import (
	"errors"
	"fmt"
)

// State is what the modal shows for a submission
type State int

const (
	NoAction State = iota
	WaitingForTransactions
	Error
	ApproveExecuting
	ApproveInProgress
)

func (s State) String() string {
	switch s {
	case NoAction:
		return "NoAction"
	case WaitingForTransactions:
		return "WaitingForTransactions"
	case Error:
		return "Error"
	case ApproveExecuting:
		return "ApproveExecuting"
	case ApproveInProgress:
		return "ApproveInProgress"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event drives a State change
type Event int

const (
	// Edit is any change to the amount text
	Edit Event = iota
	// ApproveStart is sent before the approval is signed
	ApproveStart
	// ApproveSubmitted is sent once the approval is broadcast
	ApproveSubmitted
	// Submit is sent before the pool operation is signed
	Submit
	// Fail is sent on any error
	Fail
	// Complete is sent when the flow finishes and the modal closes
	Complete
)

func (e Event) String() string {
	switch e {
	case Edit:
		return "Edit"
	case ApproveStart:
		return "ApproveStart"
	case ApproveSubmitted:
		return "ApproveSubmitted"
	case Submit:
		return "Submit"
	case Fail:
		return "Fail"
	case Complete:
		return "Complete"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// ErrIllegalTransition is returned by Transition for an event the state
// does not accept
var ErrIllegalTransition = errors.New("illegal state transition")

var transitions = map[State]map[Event]State{
	NoAction: {
		Edit:         NoAction,
		ApproveStart: ApproveExecuting,
		Submit:       WaitingForTransactions,
		Fail:         Error,
	},
	ApproveExecuting: {
		Edit:             NoAction,
		ApproveSubmitted: ApproveInProgress,
		Fail:             Error,
	},
	ApproveInProgress: {
		Edit:   NoAction,
		Submit: WaitingForTransactions,
		Fail:   Error,
	},
	WaitingForTransactions: {
		Fail:     Error,
		Complete: NoAction,
	},
	Error: {
		Edit: NoAction,
	},
}

// Transition returns the state after event
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[s][e]
	if !ok {
		return s, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, e, s)
	}
	return next, nil
}
