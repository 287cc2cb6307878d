// Package release guarantees that buttons activated indirectly (vJoy
// writes, logical device updates, arbitrary callbacks) receive exactly
// one matching release when the physical input that armed them reaches
// the configured edge.
package release

import (
	"sync"

	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/device"
	"github.com/OttScott/joygremlin/internal/event"
)

// MatchPolicy decides whether an entry may fire given the current mode
// relative to the mode it was registered in.
type MatchPolicy uint8

const (
	// MatchIgnoreMode fires regardless of the current mode.
	MatchIgnoreMode MatchPolicy = iota

	// MatchDifferentMode fires only when the current mode differs from
	// the registration mode. Used for vJoy and logical releases so no
	// double release is sent when the original binding still handles the
	// input in the same mode.
	MatchDifferentMode
)

// Callback receives the physical event that satisfied the entry.
type Callback func(evt *event.Event)

type entry struct {
	callback     Callback
	registeredIn string
	policy       MatchPolicy
	// edgePressed is the pressed-state a physical event must carry to
	// fire the entry: true when the action armed on press, false when it
	// armed on release.
	edgePressed bool
}

// CurrentMode supplies the active mode at fire time.
type CurrentMode func() string

// Registry is the guaranteed-release registry. One instance is shared
// by all action instances of a profile activation.
type Registry struct {
	mu          sync.Mutex
	logger      *zap.Logger
	currentMode CurrentMode
	entries     map[event.ID][]entry
}

// NewRegistry creates an empty registry.
func NewRegistry(currentMode CurrentMode, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:      logger,
		currentMode: currentMode,
		entries:     make(map[event.ID][]entry),
	}
}

// RegisterCallback arms a caller-supplied callback to run when the
// physical input of evt reaches the matching edge, in any mode.
func (r *Registry) RegisterCallback(cb Callback, evt *event.Event, activateOnPress bool) {
	r.add(evt.ID(), entry{
		callback:     cb,
		registeredIn: r.currentMode(),
		policy:       MatchIgnoreMode,
		edgePressed:  activateOnPress,
	})
}

// RegisterVJoyButtonRelease arms a release write to a vJoy button. The
// entry only fires in a mode different from the current one; in the
// same mode the original binding delivers the release itself. A write
// failure is logged and skipped, never propagated into the event path.
func (r *Registry) RegisterVJoyButtonRelease(w device.VJoyWriter, vjoyDevice, vjoyButton int, evt *event.Event, activateOnPress bool) {
	logger := r.logger
	r.add(evt.ID(), entry{
		callback: func(*event.Event) {
			if err := w.SetButton(vjoyDevice, vjoyButton, false); err != nil {
				logger.Warn("deferred vjoy release skipped",
					zap.Int("device", vjoyDevice),
					zap.Int("button", vjoyButton),
					zap.Error(err))
			}
		},
		registeredIn: r.currentMode(),
		policy:       MatchDifferentMode,
		edgePressed:  activateOnPress,
	})
}

// RegisterLogicalButtonRelease arms a release write to a logical device
// button, with the same mode policy as vJoy releases.
func (r *Registry) RegisterLogicalButtonRelease(ld *device.LogicalDevice, buttonID int, evt *event.Event, activateOnPress bool) {
	logger := r.logger
	r.add(evt.ID(), entry{
		callback: func(*event.Event) {
			if err := ld.Update(device.ByID(device.Button, buttonID), event.NewButtonValue(false)); err != nil {
				logger.Warn("deferred logical release skipped",
					zap.Int("button", buttonID),
					zap.Error(err))
			}
		},
		registeredIn: r.currentMode(),
		policy:       MatchDifferentMode,
		edgePressed:  activateOnPress,
	})
}

func (r *Registry) add(id event.ID, e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = append(r.entries[id], e)
}

// ProcessEvent scans the entries armed for the event's input. An entry
// fires and is removed when its mode policy is satisfied and the
// event's pressed-state matches its edge; otherwise it is retained
// unchanged. An input with no entries is the normal case and does
// nothing.
func (r *Registry) ProcessEvent(evt *event.Event) {
	r.mu.Lock()
	pending, ok := r.entries[evt.ID()]
	if !ok {
		r.mu.Unlock()
		return
	}

	current := r.currentMode()
	var fired []Callback
	retained := pending[:0]
	for _, e := range pending {
		if e.edgePressed != evt.Pressed {
			retained = append(retained, e)
			continue
		}
		if e.policy == MatchDifferentMode && e.registeredIn == current {
			retained = append(retained, e)
			continue
		}
		fired = append(fired, e.callback)
	}
	if len(retained) == 0 {
		delete(r.entries, evt.ID())
	} else {
		r.entries[evt.ID()] = retained
	}
	r.mu.Unlock()

	for _, cb := range fired {
		cb(evt)
	}
}

// Reset clears every entry. Called on profile (re)activation.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[event.ID][]entry)
}
