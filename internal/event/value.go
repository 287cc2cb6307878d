package event

// Value is the payload handed to a functor chain. Ancestor actions may
// transform the current value (deadzones, curves, splits) before their
// descendants see it, so values are passed by pointer down one
// synchronous call chain and never retained beyond it except as
// explicit copies taken to freeze press-time state.
type Value struct {
	// Kind says which payload field is authoritative.
	Kind InputType

	// Axis is the current axis value in [-1, 1].
	Axis float64

	// Pressed is the current button state.
	Pressed bool

	// Hat is the current hat direction.
	Hat HatDirection
}

// NewAxisValue creates an axis-typed value.
func NewAxisValue(v float64) Value {
	return Value{Kind: TypeAxis, Axis: v}
}

// NewButtonValue creates a button-typed value.
func NewButtonValue(pressed bool) Value {
	return Value{Kind: TypeButton, Pressed: pressed}
}

// NewHatValue creates a hat-typed value.
func NewHatValue(dir HatDirection) Value {
	return Value{Kind: TypeHat, Hat: dir}
}

// IsButton reports whether the value carries a press state, which is the
// case for button, keyboard, and virtual-button payloads.
func (v Value) IsButton() bool {
	return v.Kind == TypeButton || v.Kind == TypeKey || v.Kind == TypeVirtualButton
}

// Copy returns an independent copy of the value. Transforming actions
// copy before mutating so sibling subtrees still see the original.
func (v Value) Copy() Value {
	return v
}
