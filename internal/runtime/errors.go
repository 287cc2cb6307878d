package runtime

import "errors"

// Activation errors.
var (
	// ErrBadVirtualButton indicates a virtual button configuration with
	// neither an axis nor a hat form.
	ErrBadVirtualButton = errors.New("runtime: malformed virtual button")

	// ErrNoProfile indicates Activate was called without a profile.
	ErrNoProfile = errors.New("runtime: no profile to activate")

	// ErrCallbackPanic wraps a panic recovered from a callback so one
	// broken binding cannot take down the event pipeline.
	ErrCallbackPanic = errors.New("runtime: callback panicked")
)
