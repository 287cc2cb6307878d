package profile

import "errors"

// Decode errors. Each marks an authoring problem in the profile
// document; the runtime isolates them per binding instead of failing
// the whole activation.
var (
	// ErrInvalidProfile indicates the document is not valid JSON or is
	// structurally broken.
	ErrInvalidProfile = errors.New("profile: invalid document")

	// ErrUnknownAction indicates an action node carries an unknown type
	// tag.
	ErrUnknownAction = errors.New("profile: unknown action type")

	// ErrUnknownInputType indicates an item names an unknown input type.
	ErrUnknownInputType = errors.New("profile: unknown input type")

	// ErrUnknownDirection indicates an unknown hat direction name.
	ErrUnknownDirection = errors.New("profile: unknown hat direction")

	// ErrBadVirtualButton indicates a virtual button is neither an axis
	// nor a hat form.
	ErrBadVirtualButton = errors.New("profile: malformed virtual button")
)
