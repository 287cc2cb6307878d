package action

import "errors"

// Build and execution errors.
var (
	// ErrUnknownTag indicates a configuration node whose tag has no
	// registered constructor.
	ErrUnknownTag = errors.New("action: unknown action tag")

	// ErrBadConfig indicates a configuration node of the wrong concrete
	// type for its tag.
	ErrBadConfig = errors.New("action: malformed configuration")

	// ErrScript indicates a Lua script failed to compile or returned a
	// non-numeric result.
	ErrScript = errors.New("action: script failure")
)
