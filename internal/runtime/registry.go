package runtime

import (
	"sync"

	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/profile"
)

// Callback is one executable binding attached to an input in a mode.
type Callback struct {
	// Fn runs the binding for one event.
	Fn func(evt *event.Event) error

	// AlwaysExecute keeps the callback running while the runtime is
	// paused. Set for mode-control bindings so the user can always
	// switch back.
	AlwaysExecute bool
}

type registryKey struct {
	id   event.ID
	mode string
}

// CallbackRegistry maps (input, mode) to the ordered callbacks bound to
// it. A mode without callbacks for an input inherits its parent's, so a
// child mode only overrides the inputs it binds itself.
type CallbackRegistry struct {
	mu        sync.RWMutex
	parents   map[string]string
	callbacks map[registryKey][]Callback
}

// NewCallbackRegistry creates an empty registry.
func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{
		parents:   make(map[string]string),
		callbacks: make(map[registryKey][]Callback),
	}
}

// SetModeHierarchy installs the mode parent relationships used for
// inheritance lookups.
func (r *CallbackRegistry) SetModeHierarchy(modes []profile.ModeDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parents = make(map[string]string, len(modes))
	for _, m := range modes {
		if m.Parent != "" {
			r.parents[m.Name] = m.Parent
		}
	}
}

// Register appends a callback for an input in a mode. Order of
// registration is preserved at dispatch time.
func (r *CallbackRegistry) Register(id event.ID, mode string, cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := registryKey{id: id, mode: mode}
	r.callbacks[key] = append(r.callbacks[key], cb)
}

// Lookup returns the callbacks for an input in a mode, falling back to
// the mode's ancestors when the mode itself binds nothing for it. The
// returned slice is shared; callers must not mutate it.
func (r *CallbackRegistry) Lookup(id event.ID, mode string) []Callback {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for mode != "" {
		if _, cycle := seen[mode]; cycle {
			return nil
		}
		seen[mode] = struct{}{}

		if cbs, ok := r.callbacks[registryKey{id: id, mode: mode}]; ok {
			return cbs
		}
		mode = r.parents[mode]
	}
	return nil
}

// Reset drops every registration and the mode hierarchy.
func (r *CallbackRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parents = make(map[string]string)
	r.callbacks = make(map[registryKey][]Callback)
}
