// Package event defines the data carriers flowing through the action
// pipeline: Event describes a single observed or synthesized input
// change, Value carries the (possibly transformed) payload handed down
// an action tree, and Significance filters axis noise.
package event

import "github.com/google/uuid"

// Event represents one observed or synthesized input change.
//
// Events are immutable once dispatched. Actions that need to replay an
// event later (double tap, deferred releases) take a Clone and mutate
// the copy. The event type determines which payload field is
// authoritative: RawValue for axes, Pressed for buttons, keys and
// virtual buttons, Direction for hats.
type Event struct {
	// Type is the input type.
	Type InputType

	// Device identifies the source device.
	Device uuid.UUID

	// Input is the axis/button/hat index. Unused for keyboard events.
	Input int

	// Key identifies the keyboard key for TypeKey events.
	Key KeyID

	// Mode is the mode the event belongs to, set at dispatch time.
	Mode string

	// RawValue is the unprocessed axis position in [-1, 1].
	RawValue float64

	// Pressed is the button/key state.
	Pressed bool

	// Direction is the hat direction.
	Direction HatDirection
}

// NewAxis creates an axis event.
func NewAxis(dev uuid.UUID, input int, value float64) *Event {
	return &Event{Type: TypeAxis, Device: dev, Input: input, RawValue: value}
}

// NewButton creates a button event.
func NewButton(dev uuid.UUID, input int, pressed bool) *Event {
	return &Event{Type: TypeButton, Device: dev, Input: input, Pressed: pressed}
}

// NewHat creates a hat event.
func NewHat(dev uuid.UUID, input int, dir HatDirection) *Event {
	return &Event{Type: TypeHat, Device: dev, Input: input, Direction: dir}
}

// NewKey creates a keyboard event.
func NewKey(dev uuid.UUID, key KeyID, pressed bool) *Event {
	return &Event{Type: TypeKey, Device: dev, Key: key, Pressed: pressed}
}

// NewVirtualButton creates a synthetic button event looping back through
// the dispatch layer.
func NewVirtualButton(dev uuid.UUID, input int, pressed bool) *Event {
	return &Event{Type: TypeVirtualButton, Device: dev, Input: input, Pressed: pressed}
}

// ID returns the registry key identifying the event's input.
func (e *Event) ID() ID {
	return ID{Type: e.Type, Device: e.Device, Input: e.Input, Key: e.Key}
}

// Clone returns a copy of the event that may be mutated independently.
func (e *Event) Clone() *Event {
	c := *e
	return &c
}

// Value returns the payload matching the event's type.
func (e *Event) Value() Value {
	switch e.Type {
	case TypeAxis:
		return NewAxisValue(e.RawValue)
	case TypeHat:
		return NewHatValue(e.Direction)
	default:
		return NewButtonValue(e.Pressed)
	}
}
