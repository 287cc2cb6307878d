package runtime

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/mode"
	"github.com/OttScott/joygremlin/internal/release"
)

// EventHandler is the dispatch loop core: it resolves the callbacks for
// an event under the current mode and runs them isolated from each
// other. Deferred button releases are processed for every event before
// dispatch, and axis significance is reported to an optional observer
// without ever gating dispatch itself.
type EventHandler struct {
	mu     sync.Mutex
	paused bool

	logger       *zap.Logger
	registry     *CallbackRegistry
	modes        *mode.Manager
	releases     *release.Registry
	significance *event.Significance

	// OnSignificant, if set, is told about events that pass the
	// significance filter. Fire-and-forget, meant for input-highlight
	// style observers.
	OnSignificant func(evt *event.Event)
}

// NewEventHandler wires a handler from its collaborators.
func NewEventHandler(registry *CallbackRegistry, modes *mode.Manager, releases *release.Registry, significance *event.Significance, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{
		logger:       logger,
		registry:     registry,
		modes:        modes,
		releases:     releases,
		significance: significance,
	}
}

// Pause suspends dispatch. Callbacks flagged AlwaysExecute keep
// running so mode controls stay live.
func (h *EventHandler) Pause() {
	h.mu.Lock()
	h.paused = true
	h.mu.Unlock()
}

// Resume reenables dispatch.
func (h *EventHandler) Resume() {
	h.mu.Lock()
	h.paused = false
	h.mu.Unlock()
}

// TogglePause flips the paused state and returns the new value.
func (h *EventHandler) TogglePause() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = !h.paused
	return h.paused
}

// Paused reports whether dispatch is suspended.
func (h *EventHandler) Paused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.paused
}

// Process runs one event through the pipeline: deferred releases first,
// then significance observation, then the callbacks bound to the event
// under the current mode. Each callback is isolated; an error or panic
// in one never starves its siblings, and the aggregate is returned for
// logging.
func (h *EventHandler) Process(evt *event.Event) error {
	if h.releases != nil {
		h.releases.ProcessEvent(evt)
	}

	if h.significance != nil && h.significance.Significant(evt) {
		if h.OnSignificant != nil {
			h.OnSignificant(evt)
		}
	}

	current := h.modes.CurrentName()
	dispatched := evt.Clone()
	dispatched.Mode = current

	paused := h.Paused()
	var err error
	for _, cb := range h.registry.Lookup(evt.ID(), current) {
		if paused && !cb.AlwaysExecute {
			continue
		}
		err = multierr.Append(err, h.invoke(cb, dispatched))
	}
	if err != nil {
		h.logger.Warn("event dispatch errors", zap.Error(err))
	}
	return err
}

func (h *EventHandler) invoke(cb Callback, evt *event.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrCallbackPanic, r)
		}
	}()
	return cb.Fn(evt)
}
