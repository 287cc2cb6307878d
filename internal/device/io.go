package device

import (
	"github.com/google/uuid"

	"github.com/OttScott/joygremlin/internal/event"
)

// JoystickReader reads current values from physical devices. The runtime
// only relies on device identifiers being stable across calls; how the
// values are obtained is opaque.
type JoystickReader interface {
	// Axis returns the current position of an axis in [-1, 1].
	Axis(dev uuid.UUID, index int) (float64, error)

	// Button returns the current press state of a button.
	Button(dev uuid.UUID, index int) (bool, error)

	// Hat returns the current direction of a hat.
	Hat(dev uuid.UUID, index int) (event.HatDirection, error)

	// Axes returns the axis indices a device exposes.
	Axes(dev uuid.UUID) []int
}

// VJoyWriter writes values to virtual joystick devices. Written values
// are eventually reflected in hardware; an invalid or unavailable device
// surfaces as an error the caller logs and skips.
type VJoyWriter interface {
	// SetAxis writes an axis position in [-1, 1].
	SetAxis(device, index int, value float64) error

	// SetButton writes a button state.
	SetButton(device, index int, pressed bool) error

	// SetHat writes a hat direction.
	SetHat(device, index int, dir event.HatDirection) error
}

// MouseButton identifies a mouse button for emission.
type MouseButton uint8

const (
	// MouseLeft is the left mouse button.
	MouseLeft MouseButton = iota
	// MouseRight is the right mouse button.
	MouseRight
	// MouseMiddle is the middle mouse button.
	MouseMiddle
	// MouseBack is the back side button.
	MouseBack
	// MouseForward is the forward side button.
	MouseForward
)

// String returns a human-readable mouse button name.
func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	case MouseBack:
		return "back"
	case MouseForward:
		return "forward"
	default:
		return "unknown"
	}
}

// KeyboardEmitter sends keyboard events to the operating system.
type KeyboardEmitter interface {
	// KeyDown presses a key.
	KeyDown(key event.KeyID) error

	// KeyUp releases a key.
	KeyUp(key event.KeyID) error
}

// MouseEmitter sends mouse events to the operating system.
type MouseEmitter interface {
	// ButtonDown presses a mouse button.
	ButtonDown(btn MouseButton) error

	// ButtonUp releases a mouse button.
	ButtonUp(btn MouseButton) error

	// Move moves the pointer by a relative delta.
	Move(dx, dy int) error

	// Wheel scrolls the wheel by the given number of ticks.
	Wheel(ticks int) error
}
