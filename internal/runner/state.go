package runner

import (
	"slices"
	"time"
)

// State is the lifecycle state of one generation task.
type State string

const (
	StateIdle            State = "idle"
	StateValidating      State = "validating"
	StateGuardedInvoking State = "guarded-invoking"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

var transitions = map[State][]State{
	StateIdle:            {StateValidating},
	StateValidating:      {StateGuardedInvoking, StateFailed},
	StateGuardedInvoking: {StateDone, StateFailed},
}

func canTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// Transition records when a task entered a state.
type Transition struct {
	State State     `json:"state"`
	At    time.Time `json:"at"`
}
