package fsm

import "errors"

// Machine errors. All of them indicate an incorrectly authored
// transition table rather than a recoverable runtime condition.
var (
	// ErrInvalidAction indicates an action outside the declared action set.
	ErrInvalidAction = errors.New("fsm: action not declared")

	// ErrMissingTransition indicates a declared action with no table entry
	// for the current state.
	ErrMissingTransition = errors.New("fsm: no transition for state/action pair")

	// ErrUndeclaredState indicates a table entry referencing an unknown state.
	ErrUndeclaredState = errors.New("fsm: state not declared")

	// ErrUndeclaredAction indicates a table entry keyed by an unknown action.
	ErrUndeclaredAction = errors.New("fsm: table action not declared")
)
