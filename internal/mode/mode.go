// Package mode tracks the active mode of a profile activation. Modes
// form a stack acting as history, enabling temporary overlays and
// "return to previous" bindings. Pushing a mode already on the stack is
// a cycle, resolved by a configurable policy.
package mode

// Mode is one entry of the mode stack. Two modes are equal when name,
// previous name, and temporary flag all match.
type Mode struct {
	// Name is the mode's profile name.
	Name string

	// Previous is the name of the mode this one was entered from.
	Previous string

	// Temporary marks a non-persistent overlay mode.
	Temporary bool
}

// CycleResolution selects how a cycle in the mode stack is resolved.
type CycleResolution uint8

const (
	// ResolveOldest truncates the stack back to the first occurrence of
	// the re-pushed mode, keeping the oldest history.
	ResolveOldest CycleResolution = iota

	// ResolveNewest discards everything up to and including the first
	// occurrence, keeping only the most recent chain. Non-temporary
	// ancestors of a temporary cycle are retained.
	ResolveNewest
)

// String returns a human-readable resolution name.
func (r CycleResolution) String() string {
	switch r {
	case ResolveOldest:
		return "oldest"
	case ResolveNewest:
		return "newest"
	default:
		return "unknown"
	}
}
