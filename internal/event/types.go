package event

import "github.com/google/uuid"

// InputType classifies the source of an input change.
type InputType uint8

const (
	// TypeAxis is a continuous axis input.
	TypeAxis InputType = iota
	// TypeButton is a physical button input.
	TypeButton
	// TypeHat is a multi-directional hat input.
	TypeHat
	// TypeKey is a keyboard key input.
	TypeKey
	// TypeVirtualButton is a synthetic button derived from an axis or hat.
	TypeVirtualButton
)

// String returns a human-readable input type name.
func (t InputType) String() string {
	switch t {
	case TypeAxis:
		return "axis"
	case TypeButton:
		return "button"
	case TypeHat:
		return "hat"
	case TypeKey:
		return "keyboard"
	case TypeVirtualButton:
		return "virtual-button"
	default:
		return "unknown"
	}
}

// KeyID identifies a keyboard key by scan code and extended flag.
type KeyID struct {
	ScanCode uint16
	Extended bool
}

// HatDirection is the direction a hat input points at.
type HatDirection uint8

const (
	// HatCenter is the neutral hat position.
	HatCenter HatDirection = iota
	// HatNorth points up.
	HatNorth
	// HatNorthEast points up and right.
	HatNorthEast
	// HatEast points right.
	HatEast
	// HatSouthEast points down and right.
	HatSouthEast
	// HatSouth points down.
	HatSouth
	// HatSouthWest points down and left.
	HatSouthWest
	// HatWest points left.
	HatWest
	// HatNorthWest points up and left.
	HatNorthWest
)

// String returns a human-readable hat direction name.
func (d HatDirection) String() string {
	switch d {
	case HatCenter:
		return "center"
	case HatNorth:
		return "north"
	case HatNorthEast:
		return "north-east"
	case HatEast:
		return "east"
	case HatSouthEast:
		return "south-east"
	case HatSouth:
		return "south"
	case HatSouthWest:
		return "south-west"
	case HatWest:
		return "west"
	case HatNorthWest:
		return "north-west"
	default:
		return "unknown"
	}
}

// ID identifies one input on one device. It is comparable and used as a
// registry key by the dispatch and release layers.
type ID struct {
	// Type is the input type.
	Type InputType

	// Device is the owning device identifier.
	Device uuid.UUID

	// Input is the axis/button/hat index. Unused for keyboard events.
	Input int

	// Key is the keyboard key identifier. Zero value for non-key events.
	Key KeyID
}
