// Package profile defines the in-memory binding tree a profile store
// hands to the runtime at activation time: which inputs are bound in
// which mode, and the action configuration tree per binding. The
// serialization format of the original application is not handled here;
// a JSON decoder is provided for the shell and for tests.
package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/OttScott/joygremlin/internal/device"
	"github.com/OttScott/joygremlin/internal/event"
)

// Profile is the complete configuration tree for one activation.
type Profile struct {
	// StartMode is the mode seeded into the mode stack.
	StartMode string

	// Modes is the mode hierarchy. A mode with a parent inherits the
	// parent's bindings for inputs it does not bind itself.
	Modes []ModeDef

	// Items are the configured inputs.
	Items []InputItem
}

// ModeDef declares a mode and its optional parent.
type ModeDef struct {
	Name   string
	Parent string
}

// InputItem configures one physical input in one mode.
type InputItem struct {
	// Device is the physical device identifier.
	Device uuid.UUID

	// Type is the input type.
	Type event.InputType

	// Input is the axis/button/hat index. Unused for keyboard inputs.
	Input int

	// Key is the key identifier for keyboard inputs.
	Key event.KeyID

	// Mode is the mode the item belongs to.
	Mode string

	// AlwaysExecute makes the item's bindings run even while the runtime
	// is paused. Set for mode-control bindings.
	AlwaysExecute bool

	// Bindings are the action bindings attached to the input.
	Bindings []Binding
}

// Binding attaches one action tree to an input, optionally behind a
// virtual button that converts axis/hat events into press/release
// semantics first.
type Binding struct {
	// Description is free-form text from the profile.
	Description string

	// VirtualButton, if set, gates the action tree behind synthetic
	// press/release events.
	VirtualButton *VirtualButton

	// Root is the root of the action configuration tree.
	Root ActionConfig
}

// AxisDirection restricts which direction of axis travel activates a
// virtual axis button.
type AxisDirection uint8

const (
	// DirectionAnywhere activates regardless of travel direction.
	DirectionAnywhere AxisDirection = iota
	// DirectionBelow activates only while the value is falling.
	DirectionBelow
	// DirectionAbove activates only while the value is rising.
	DirectionAbove
)

// String returns a human-readable direction name.
func (d AxisDirection) String() string {
	switch d {
	case DirectionBelow:
		return "below"
	case DirectionAbove:
		return "above"
	default:
		return "anywhere"
	}
}

// VirtualButton is the union of the two virtual button forms; exactly
// one of Axis and Hat is set.
type VirtualButton struct {
	Axis *VirtualAxisButton
	Hat  *VirtualHatButton
}

// VirtualAxisButton presses while the axis value lies inside
// [LowerLimit, UpperLimit] and travel matches Direction.
type VirtualAxisButton struct {
	LowerLimit float64
	UpperLimit float64
	Direction  AxisDirection
}

// VirtualHatButton presses while the hat direction is one of
// Directions.
type VirtualHatButton struct {
	Directions []event.HatDirection
}

// Action type tags. The set is closed; the runtime resolves tags to
// constructors once at activation time.
const (
	TagRoot          = "root"
	TagCondition     = "condition"
	TagTempo         = "tempo"
	TagDoubleTap     = "double-tap"
	TagSmartToggle   = "smart-toggle"
	TagSplitAxis     = "split-axis"
	TagDeadzone      = "deadzone"
	TagCurve         = "response-curve"
	TagScript        = "script"
	TagMapToKeyboard = "map-to-keyboard"
	TagMapToMouse    = "map-to-mouse"
	TagMapToVJoy     = "map-to-vjoy"
	TagMapToLogical  = "map-to-logical"
	TagHatButtons    = "hat-buttons"
	TagMacro         = "macro"
	TagChain         = "chain"
	TagModeSwitch    = "mode-switch"
)

// ActionConfig is one node of the action configuration tree.
type ActionConfig interface {
	// Tag returns the node's type tag.
	Tag() string
}

// RootConfig is the implicit container at the top of every tree.
type RootConfig struct {
	Children []ActionConfig
}

// Tag implements ActionConfig.
func (RootConfig) Tag() string { return TagRoot }

// ConditionKind selects the comparison a condition applies to the
// current value.
type ConditionKind uint8

const (
	// ConditionPressed passes while the value is pressed.
	ConditionPressed ConditionKind = iota
	// ConditionReleased passes while the value is released.
	ConditionReleased
	// ConditionInsideRange passes while an axis value lies in [Low, High].
	ConditionInsideRange
	// ConditionOutsideRange passes while an axis value lies outside [Low, High].
	ConditionOutsideRange
)

// ConditionConfig forwards to Then while the condition passes and to
// Else otherwise.
type ConditionConfig struct {
	Kind ConditionKind
	Low  float64
	High float64
	Then []ActionConfig
	Else []ActionConfig
}

// Tag implements ActionConfig.
func (ConditionConfig) Tag() string { return TagCondition }

// ActivationEdge selects which edge of a press gesture activates the
// long branch of a tempo action.
type ActivationEdge uint8

const (
	// ActivateOnRelease defers the short/long decision to release time.
	ActivateOnRelease ActivationEdge = iota
	// ActivateOnPress activates the short branch immediately on press.
	ActivateOnPress
)

// TempoConfig selects between Short and Long children by press
// duration.
type TempoConfig struct {
	Threshold  time.Duration
	ActivateOn ActivationEdge
	Short      []ActionConfig
	Long       []ActionConfig
}

// Tag implements ActionConfig.
func (TempoConfig) Tag() string { return TagTempo }

// DoubleTapConfig selects between Single and Double children by press
// count within Threshold. Exclusive fires only one of the two per
// gesture; otherwise Single fires on the first press and Double fires
// additionally when the second press lands in the window.
type DoubleTapConfig struct {
	Threshold time.Duration
	Exclusive bool
	Single    []ActionConfig
	Double    []ActionConfig
}

// Tag implements ActionConfig.
func (DoubleTapConfig) Tag() string { return TagDoubleTap }

// SmartToggleConfig acts as a momentary press for short presses and as
// a toggle when held past Threshold.
type SmartToggleConfig struct {
	Threshold time.Duration
	Children  []ActionConfig
}

// Tag implements ActionConfig.
func (SmartToggleConfig) Tag() string { return TagSmartToggle }

// SplitAxisConfig routes an axis to Low children below Center and High
// children above it.
type SplitAxisConfig struct {
	Center float64
	Low    []ActionConfig
	High   []ActionConfig
}

// Tag implements ActionConfig.
func (SplitAxisConfig) Tag() string { return TagSplitAxis }

// DeadzoneConfig remaps an axis through a four-point deadzone
// (Low, CenterLow, CenterHigh, High) before forwarding to Children.
type DeadzoneConfig struct {
	Low        float64
	CenterLow  float64
	CenterHigh float64
	High       float64
	Children   []ActionConfig
}

// Tag implements ActionConfig.
func (DeadzoneConfig) Tag() string { return TagDeadzone }

// CurvePoint is one control point of a response curve.
type CurvePoint struct {
	X float64
	Y float64
}

// CurveConfig remaps an axis through a piecewise-linear response curve
// before forwarding to Children. Symmetric mirrors the positive half
// onto the negative one.
type CurveConfig struct {
	Points    []CurvePoint
	Symmetric bool
	Children  []ActionConfig
}

// Tag implements ActionConfig.
func (CurveConfig) Tag() string { return TagCurve }

// ScriptConfig runs a Lua chunk defining process(value) over the
// current axis value before forwarding to Children.
type ScriptConfig struct {
	Source   string
	Children []ActionConfig
}

// Tag implements ActionConfig.
func (ScriptConfig) Tag() string { return TagScript }

// MapToKeyboardConfig presses and releases a keyboard key with the
// bound button.
type MapToKeyboardConfig struct {
	Key event.KeyID
}

// Tag implements ActionConfig.
func (MapToKeyboardConfig) Tag() string { return TagMapToKeyboard }

// MouseOutput selects what a map-to-mouse action drives.
type MouseOutput uint8

const (
	// MouseOutputButton drives a mouse button.
	MouseOutputButton MouseOutput = iota
	// MouseOutputMotion emits relative pointer motion on press.
	MouseOutputMotion
	// MouseOutputWheel emits wheel ticks on press.
	MouseOutputWheel
)

// MapToMouseConfig drives a mouse button, motion, or wheel from the
// bound input.
type MapToMouseConfig struct {
	Output MouseOutput
	Button device.MouseButton
	DX     int
	DY     int
	Ticks  int
}

// Tag implements ActionConfig.
func (MapToMouseConfig) Tag() string { return TagMapToMouse }

// MapToVJoyConfig writes the current value to a vJoy device input.
type MapToVJoyConfig struct {
	Device int
	Type   event.InputType
	Input  int
}

// Tag implements ActionConfig.
func (MapToVJoyConfig) Tag() string { return TagMapToVJoy }

// MapToLogicalConfig writes the current value to a logical device
// input.
type MapToLogicalConfig struct {
	Selector device.Selector
}

// Tag implements ActionConfig.
func (MapToLogicalConfig) Tag() string { return TagMapToLogical }

// HatButtonsConfig treats each configured hat direction as a button
// driving its own children.
type HatButtonsConfig struct {
	Mappings []HatButtonMapping
}

// HatButtonMapping binds one direction set to a child list.
type HatButtonMapping struct {
	Directions []event.HatDirection
	Children   []ActionConfig
}

// Tag implements ActionConfig.
func (HatButtonsConfig) Tag() string { return TagHatButtons }

// MacroStep is one step of a macro: a key or vJoy button edge, or a
// pause.
type MacroStep struct {
	Key        *event.KeyID
	VJoyDevice int
	VJoyButton int
	Press      bool
	Pause      time.Duration
}

// MacroConfig plays a step sequence when the bound button is pressed.
type MacroConfig struct {
	Steps []MacroStep
}

// Tag implements ActionConfig.
func (MacroConfig) Tag() string { return TagMacro }

// ChainConfig cycles through child groups on successive activations.
// A non-zero Timeout resets the cycle to the first group after
// inactivity.
type ChainConfig struct {
	Timeout time.Duration
	Groups  [][]ActionConfig
}

// Tag implements ActionConfig.
func (ChainConfig) Tag() string { return TagChain }

// ModeOp is a mode stack operation bound to a button.
type ModeOp uint8

const (
	// ModeOpSwitch switches to Target.
	ModeOpSwitch ModeOp = iota
	// ModeOpPrevious toggles back to the previous mode.
	ModeOpPrevious
	// ModeOpUnwind pops the current mode.
	ModeOpUnwind
	// ModeOpTemporary holds Target while the button is pressed.
	ModeOpTemporary
)

// ModeSwitchConfig performs a mode stack operation on press. The
// temporary form leaves the mode again on release.
type ModeSwitchConfig struct {
	Op     ModeOp
	Target string
}

// Tag implements ActionConfig.
func (ModeSwitchConfig) Tag() string { return TagModeSwitch }
