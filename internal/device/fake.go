package device

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/OttScott/joygremlin/internal/event"
)

// The fakes below implement the hardware boundary for tests and for
// running the pipeline without drivers. Writers record everything they
// are given; the reader serves values set on it.

// FakeJoystick is a JoystickReader serving preset values.
type FakeJoystick struct {
	mu      sync.Mutex
	axes    map[uuid.UUID]map[int]float64
	buttons map[uuid.UUID]map[int]bool
	hats    map[uuid.UUID]map[int]event.HatDirection
}

// NewFakeJoystick creates an empty fake reader.
func NewFakeJoystick() *FakeJoystick {
	return &FakeJoystick{
		axes:    make(map[uuid.UUID]map[int]float64),
		buttons: make(map[uuid.UUID]map[int]bool),
		hats:    make(map[uuid.UUID]map[int]event.HatDirection),
	}
}

// SetAxis sets the value served for an axis.
func (f *FakeJoystick) SetAxis(dev uuid.UUID, index int, value float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.axes[dev] == nil {
		f.axes[dev] = make(map[int]float64)
	}
	f.axes[dev][index] = value
}

// SetButton sets the state served for a button.
func (f *FakeJoystick) SetButton(dev uuid.UUID, index int, pressed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buttons[dev] == nil {
		f.buttons[dev] = make(map[int]bool)
	}
	f.buttons[dev][index] = pressed
}

// SetHat sets the direction served for a hat.
func (f *FakeJoystick) SetHat(dev uuid.UUID, index int, dir event.HatDirection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hats[dev] == nil {
		f.hats[dev] = make(map[int]event.HatDirection)
	}
	f.hats[dev][index] = dir
}

// Axis implements JoystickReader.
func (f *FakeJoystick) Axis(dev uuid.UUID, index int) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.axes[dev][index], nil
}

// Button implements JoystickReader.
func (f *FakeJoystick) Button(dev uuid.UUID, index int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buttons[dev][index], nil
}

// Hat implements JoystickReader.
func (f *FakeJoystick) Hat(dev uuid.UUID, index int) (event.HatDirection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hats[dev][index], nil
}

// Axes implements JoystickReader.
func (f *FakeJoystick) Axes(dev uuid.UUID) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	indices := make([]int, 0, len(f.axes[dev]))
	for idx := range f.axes[dev] {
		indices = append(indices, idx)
	}
	return indices
}

// RecordingVJoy is a VJoyWriter remembering every write.
type RecordingVJoy struct {
	mu sync.Mutex

	// Writes lists the writes in order, formatted as
	// "axis <dev>.<idx>=<v>", "button <dev>.<idx>=<state>",
	// "hat <dev>.<idx>=<dir>".
	Writes []string

	// FailDevices makes writes to those device ids fail, simulating an
	// unavailable vJoy device.
	FailDevices map[int]bool

	buttons map[[2]int]bool
	axes    map[[2]int]float64
}

// NewRecordingVJoy creates an empty recorder.
func NewRecordingVJoy() *RecordingVJoy {
	return &RecordingVJoy{
		FailDevices: make(map[int]bool),
		buttons:     make(map[[2]int]bool),
		axes:        make(map[[2]int]float64),
	}
}

// SetAxis implements VJoyWriter.
func (r *RecordingVJoy) SetAxis(device, index int, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDevices[device] {
		return fmt.Errorf("vjoy device %d unavailable", device)
	}
	r.axes[[2]int{device, index}] = value
	r.Writes = append(r.Writes, fmt.Sprintf("axis %d.%d=%.3f", device, index, value))
	return nil
}

// SetButton implements VJoyWriter.
func (r *RecordingVJoy) SetButton(device, index int, pressed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDevices[device] {
		return fmt.Errorf("vjoy device %d unavailable", device)
	}
	r.buttons[[2]int{device, index}] = pressed
	r.Writes = append(r.Writes, fmt.Sprintf("button %d.%d=%t", device, index, pressed))
	return nil
}

// SetHat implements VJoyWriter.
func (r *RecordingVJoy) SetHat(device, index int, dir event.HatDirection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailDevices[device] {
		return fmt.Errorf("vjoy device %d unavailable", device)
	}
	r.Writes = append(r.Writes, fmt.Sprintf("hat %d.%d=%s", device, index, dir))
	return nil
}

// Button returns the last state written to a button.
func (r *RecordingVJoy) Button(device, index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buttons[[2]int{device, index}]
}

// Axis returns the last value written to an axis.
func (r *RecordingVJoy) Axis(device, index int) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.axes[[2]int{device, index}]
}

// WriteLog returns a copy of the recorded writes.
func (r *RecordingVJoy) WriteLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := make([]string, len(r.Writes))
	copy(log, r.Writes)
	return log
}

// RecordingKeyboard is a KeyboardEmitter remembering every emission.
type RecordingKeyboard struct {
	mu sync.Mutex

	// Events lists emissions as "down <scan>" / "up <scan>".
	Events []string
}

// KeyDown implements KeyboardEmitter.
func (r *RecordingKeyboard) KeyDown(key event.KeyID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, fmt.Sprintf("down %#x", key.ScanCode))
	return nil
}

// KeyUp implements KeyboardEmitter.
func (r *RecordingKeyboard) KeyUp(key event.KeyID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, fmt.Sprintf("up %#x", key.ScanCode))
	return nil
}

// EventLog returns a copy of the recorded emissions.
func (r *RecordingKeyboard) EventLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := make([]string, len(r.Events))
	copy(log, r.Events)
	return log
}

// RecordingMouse is a MouseEmitter remembering every emission.
type RecordingMouse struct {
	mu sync.Mutex

	// Events lists emissions as "down left", "up left", "move 3,-4",
	// "wheel 1".
	Events []string
}

// ButtonDown implements MouseEmitter.
func (r *RecordingMouse) ButtonDown(btn MouseButton) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, "down "+btn.String())
	return nil
}

// ButtonUp implements MouseEmitter.
func (r *RecordingMouse) ButtonUp(btn MouseButton) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, "up "+btn.String())
	return nil
}

// Move implements MouseEmitter.
func (r *RecordingMouse) Move(dx, dy int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, fmt.Sprintf("move %d,%d", dx, dy))
	return nil
}

// Wheel implements MouseEmitter.
func (r *RecordingMouse) Wheel(ticks int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, fmt.Sprintf("wheel %d", ticks))
	return nil
}

// EventLog returns a copy of the recorded emissions.
func (r *RecordingMouse) EventLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := make([]string, len(r.Events))
	copy(log, r.Events)
	return log
}
