package device

import "errors"

// Logical device errors.
var (
	// ErrNotFound indicates a lookup of a nonexistent input or label.
	ErrNotFound = errors.New("device: input not found")

	// ErrDuplicateLabel indicates Create was given a label already in use.
	ErrDuplicateLabel = errors.New("device: label already in use")

	// ErrLabelInUse indicates SetLabel's new label is already taken.
	ErrLabelInUse = errors.New("device: new label already in use")

	// ErrUnknownType indicates an input type outside axis/button/hat.
	ErrUnknownType = errors.New("device: unknown input type")
)
