// Package device holds the logical device indirection layer and the
// opaque hardware boundary interfaces (joystick reads, vJoy writes,
// keyboard and mouse emission).
package device

import (
	"fmt"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/OttScott/joygremlin/internal/event"
)

// Input is one dynamically created input of a logical device. Mapping
// actions write to it via Update; readers use the typed projections on
// the concrete Axis, Button, and Hat variants.
type Input interface {
	// Type returns the input's type.
	Type() InputType

	// ID returns the input's id, unique within its type.
	ID() int

	// Label returns the input's label, unique within the device.
	Label() string

	// Update replaces the cached last-known value. Only the field of the
	// value matching the input's type is read.
	Update(value event.Value)
}

// InputType classifies logical device inputs.
type InputType uint8

const (
	// Axis is a continuous input.
	Axis InputType = iota
	// Button is a binary input.
	Button
	// Hat is a directional input.
	Hat
)

// String returns a human-readable input type name.
func (t InputType) String() string {
	switch t {
	case Axis:
		return "axis"
	case Button:
		return "button"
	case Hat:
		return "hat"
	default:
		return "unknown"
	}
}

type baseInput struct {
	typ   InputType
	id    int
	label string
}

func (i *baseInput) Type() InputType { return i.typ }
func (i *baseInput) ID() int         { return i.id }
func (i *baseInput) Label() string   { return i.label }

// AxisInput is a continuous logical input.
type AxisInput struct {
	baseInput
	value float64
}

// Update replaces the cached axis value.
func (i *AxisInput) Update(value event.Value) { i.value = value.Axis }

// Value returns the last written axis value.
func (i *AxisInput) Value() float64 { return i.value }

// ButtonInput is a binary logical input.
type ButtonInput struct {
	baseInput
	pressed bool
}

// Update replaces the cached press state.
func (i *ButtonInput) Update(value event.Value) { i.pressed = value.Pressed }

// IsPressed returns the last written press state.
func (i *ButtonInput) IsPressed() bool { return i.pressed }

// HatInput is a directional logical input.
type HatInput struct {
	baseInput
	direction event.HatDirection
}

// Update replaces the cached direction.
func (i *HatInput) Update(value event.Value) { i.direction = value.Hat }

// Direction returns the last written direction.
func (i *HatInput) Direction() event.HatDirection { return i.direction }

// Selector addresses a logical input either by (type, id) or by label.
// Exactly one form should be populated; the label form wins when both
// are set.
type Selector struct {
	Type  InputType
	ID    int
	Label string
}

// ByID creates a (type, id) selector.
func ByID(typ InputType, id int) Selector {
	return Selector{Type: typ, ID: id}
}

// ByLabel creates a label selector.
func ByLabel(label string) Selector {
	return Selector{Label: label}
}

// LogicalDevice is an in-process virtual device exposing dynamically
// created inputs. It decouples physical devices from output devices:
// mapping actions write intermediate values here and other actions read
// them back, independent of hardware.
//
// One instance exists per runtime session. All methods are safe for
// concurrent use.
type LogicalDevice struct {
	mu        sync.Mutex
	clock     clock.Clock
	inputs    map[InputType]map[int]Input
	labels    map[string]Input
	callbacks []func(Input)
}

// NewLogicalDevice creates an empty logical device.
func NewLogicalDevice(clk clock.Clock) *LogicalDevice {
	if clk == nil {
		clk = clock.New()
	}
	d := &LogicalDevice{clock: clk}
	d.resetLocked()
	return d
}

func (d *LogicalDevice) resetLocked() {
	d.inputs = map[InputType]map[int]Input{
		Axis:   make(map[int]Input),
		Button: make(map[int]Input),
		Hat:    make(map[int]Input),
	}
	d.labels = make(map[string]Input)
}

// Create adds a new input of the given type. A zero id requests the
// lowest unused id for that type; an explicit id already in use is also
// replaced by the lowest unused one. An empty label requests a generated
// label of the form "<type> <id>", suffixed with a timestamp if that is
// taken. An explicit label that is already in use fails with
// ErrDuplicateLabel.
func (d *LogicalDevice) Create(typ InputType, id int, label string) (Input, error) {
	d.mu.Lock()

	if label != "" {
		if _, taken := d.labels[label]; taken {
			d.mu.Unlock()
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
		}
	}

	byID := d.inputs[typ]
	if id <= 0 {
		id = d.lowestFreeID(typ)
	} else if _, taken := byID[id]; taken {
		id = d.lowestFreeID(typ)
	}

	if label == "" {
		label = fmt.Sprintf("%s %d", typ, id)
		if _, taken := d.labels[label]; taken {
			label = fmt.Sprintf("%s %d", label, d.clock.Now().UnixNano())
		}
	}

	base := baseInput{typ: typ, id: id, label: label}
	var in Input
	switch typ {
	case Axis:
		in = &AxisInput{baseInput: base}
	case Button:
		in = &ButtonInput{baseInput: base}
	case Hat:
		in = &HatInput{baseInput: base}
	default:
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, typ)
	}

	byID[id] = in
	d.labels[label] = in
	callbacks := d.copyCallbacksLocked()
	d.mu.Unlock()

	d.notify(callbacks, in)
	return in, nil
}

// lowestFreeID returns the smallest id >= 1 not in use for the type.
// Freed ids are reused.
func (d *LogicalDevice) lowestFreeID(typ InputType) int {
	byID := d.inputs[typ]
	id := 1
	for {
		if _, taken := byID[id]; !taken {
			return id
		}
		id++
	}
}

// Get resolves a selector to an input. A selector matching nothing fails
// with ErrNotFound; absent inputs are never silently defaulted.
func (d *LogicalDevice) Get(sel Selector) (Input, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.getLocked(sel)
}

func (d *LogicalDevice) getLocked(sel Selector) (Input, error) {
	if sel.Label != "" {
		in, ok := d.labels[sel.Label]
		if !ok {
			return nil, fmt.Errorf("%w: label %q", ErrNotFound, sel.Label)
		}
		return in, nil
	}
	in, ok := d.inputs[sel.Type][sel.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s %d", ErrNotFound, sel.Type, sel.ID)
	}
	return in, nil
}

// Delete removes an input. Its id becomes available for reuse by a
// later Create of the same type.
func (d *LogicalDevice) Delete(sel Selector) error {
	d.mu.Lock()
	in, err := d.getLocked(sel)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	delete(d.inputs[in.Type()], in.ID())
	delete(d.labels, in.Label())
	callbacks := d.copyCallbacksLocked()
	d.mu.Unlock()

	d.notify(callbacks, in)
	return nil
}

// SetLabel renames an input. Fails with ErrNotFound if old is absent and
// ErrLabelInUse if new is already taken.
func (d *LogicalDevice) SetLabel(oldLabel, newLabel string) error {
	d.mu.Lock()

	in, ok := d.labels[oldLabel]
	if !ok {
		d.mu.Unlock()
		return fmt.Errorf("%w: label %q", ErrNotFound, oldLabel)
	}
	if _, taken := d.labels[newLabel]; taken {
		d.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrLabelInUse, newLabel)
	}

	delete(d.labels, oldLabel)
	d.labels[newLabel] = in
	switch v := in.(type) {
	case *AxisInput:
		v.label = newLabel
	case *ButtonInput:
		v.label = newLabel
	case *HatInput:
		v.label = newLabel
	}
	callbacks := d.copyCallbacksLocked()
	d.mu.Unlock()

	d.notify(callbacks, in)
	return nil
}

// Update writes a new value to an input and notifies observers.
func (d *LogicalDevice) Update(sel Selector, value event.Value) error {
	d.mu.Lock()
	in, err := d.getLocked(sel)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	in.Update(value)
	callbacks := d.copyCallbacksLocked()
	d.mu.Unlock()

	d.notify(callbacks, in)
	return nil
}

// InputsOfType returns the inputs of the given types, stable-sorted by
// (type name, label). No types means all of them.
func (d *LogicalDevice) InputsOfType(types ...InputType) []Input {
	if len(types) == 0 {
		types = []InputType{Axis, Button, Hat}
	}

	d.mu.Lock()
	var result []Input
	for _, typ := range types {
		for _, in := range d.inputs[typ] {
			result = append(result, in)
		}
	}
	d.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].Type().String(), result[j].Type().String()
		if ti != tj {
			return ti < tj
		}
		return result[i].Label() < result[j].Label()
	})
	return result
}

// Reset removes every input.
func (d *LogicalDevice) Reset() {
	d.mu.Lock()
	d.resetLocked()
	d.mu.Unlock()
}

// OnChange registers a fire-and-forget callback invoked whenever an
// input is created, deleted, relabeled, or updated. Returns a function
// that unregisters the callback.
func (d *LogicalDevice) OnChange(cb func(Input)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callbacks = append(d.callbacks, cb)
	index := len(d.callbacks) - 1

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if index < len(d.callbacks) {
			d.callbacks[index] = nil
		}
	}
}

func (d *LogicalDevice) copyCallbacksLocked() []func(Input) {
	callbacks := make([]func(Input), len(d.callbacks))
	copy(callbacks, d.callbacks)
	return callbacks
}

// notify runs callbacks outside the lock.
func (d *LogicalDevice) notify(callbacks []func(Input), in Input) {
	for _, cb := range callbacks {
		if cb != nil {
			cb(in)
		}
	}
}
