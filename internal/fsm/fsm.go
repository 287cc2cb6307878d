// Package fsm provides a small table-driven finite state machine used by
// the timing-based actions (tempo, double tap, smart toggle, virtual
// buttons). The transition table is authored by each action; a missing
// entry for a reachable (state, action) pair is an authoring bug, not a
// recoverable runtime condition.
package fsm

import "fmt"

// State identifies a machine state.
type State string

// Action identifies an input that drives a transition.
type Action string

// Callback is invoked when a transition fires. The arguments passed to
// Perform are forwarded unchanged. The return value is collected by
// Perform; virtual-button machines use it as a pass/fail signal.
type Callback func(args ...any) any

// Key addresses one entry in the transition table.
type Key struct {
	State  State
	Action Action
}

// Transition describes what happens when an action arrives in a state:
// the callbacks to run, in order, and the state to move to afterwards.
type Transition struct {
	Callbacks []Callback
	Next      State
}

// Machine is a table-driven finite state machine.
//
// Perform is not internally synchronized. Callers that drive the same
// machine from both an event path and a timer goroutine must serialize
// calls themselves.
type Machine struct {
	current     State
	start       State
	states      map[State]struct{}
	actions     map[Action]struct{}
	transitions map[Key]Transition
}

// New creates a machine from its declared states, actions, and
// transition table. The start state, every table key, and every table
// target must be declared; violations are reported as
// ErrUndeclaredState / ErrUndeclaredAction wrapped errors.
func New(start State, states []State, actions []Action, transitions map[Key]Transition) (*Machine, error) {
	m := &Machine{
		current:     start,
		start:       start,
		states:      make(map[State]struct{}, len(states)),
		actions:     make(map[Action]struct{}, len(actions)),
		transitions: transitions,
	}
	for _, s := range states {
		m.states[s] = struct{}{}
	}
	for _, a := range actions {
		m.actions[a] = struct{}{}
	}

	if _, ok := m.states[start]; !ok {
		return nil, fmt.Errorf("%w: start state %q", ErrUndeclaredState, start)
	}
	for key, tr := range transitions {
		if _, ok := m.states[key.State]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUndeclaredState, key.State)
		}
		if _, ok := m.actions[key.Action]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUndeclaredAction, key.Action)
		}
		if _, ok := m.states[tr.Next]; !ok {
			return nil, fmt.Errorf("%w: transition target %q", ErrUndeclaredState, tr.Next)
		}
	}

	return m, nil
}

// Current returns the current state.
func (m *Machine) Current() State {
	return m.current
}

// Reset returns the machine to its start state.
func (m *Machine) Reset() {
	m.current = m.start
}

// Perform drives the machine with an action. Every callback registered
// for the matching transition runs in declared order with args forwarded
// unchanged; their return values are collected and returned. The current
// state is updated to the transition's target after all callbacks ran.
//
// An action outside the declared action set returns ErrInvalidAction; a
// declared action with no table entry for the current state returns
// ErrMissingTransition. Both indicate an incomplete table and are fatal
// to the owning action instance.
func (m *Machine) Perform(action Action, args ...any) ([]any, error) {
	if _, ok := m.actions[action]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	tr, ok := m.transitions[Key{State: m.current, Action: action}]
	if !ok {
		return nil, fmt.Errorf("%w: (%q, %q)", ErrMissingTransition, m.current, action)
	}

	results := make([]any, 0, len(tr.Callbacks))
	for _, cb := range tr.Callbacks {
		results = append(results, cb(args...))
	}
	m.current = tr.Next
	return results, nil
}
