package mode

import (
	"sync"

	"go.uber.org/zap"
)

// ChangeCallback is notified after the current mode changed.
type ChangeCallback func(previous, current Mode)

// Options configures a Manager.
type Options struct {
	// Resolution is the cycle resolution policy. Default: ResolveOldest.
	Resolution CycleResolution

	// Persist, if set, receives the current mode name after every
	// mutation, for storing the last active mode.
	Persist func(name string)

	// AxisRefresh, if set, runs after every mutation so newly active
	// bindings see current axis positions.
	AxisRefresh func()

	// Logger is used for diagnostics. Default: zap.NewNop().
	Logger *zap.Logger
}

// Manager tracks the current mode as a stack. The stack is never empty
// after Reset; every mutation persists the last active mode and triggers
// an axis refresh.
type Manager struct {
	mu        sync.Mutex
	opts      Options
	stack     []Mode
	callbacks []ChangeCallback
}

// NewManager creates a mode manager.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{opts: opts}
}

// Reset clears the stack and seeds it with the given mode, typically the
// profile's first mode.
func (m *Manager) Reset(initial Mode) {
	m.mu.Lock()
	previous := m.currentLocked()
	m.stack = []Mode{initial}
	m.mutatedLocked(previous)
}

// Current returns the active mode. The zero Mode is returned before the
// first Reset.
func (m *Manager) Current() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLocked()
}

// CurrentName returns the name of the active mode.
func (m *Manager) CurrentName() string {
	return m.Current().Name
}

// Stack returns the mode names from oldest to newest.
func (m *Manager) Stack() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.stack))
	for i, entry := range m.stack {
		names[i] = entry.Name
	}
	return names
}

// SwitchTo pushes a mode onto the stack, resolving a cycle first if the
// mode is already present.
func (m *Manager) SwitchTo(mode Mode) {
	m.mu.Lock()
	previous := m.currentLocked()

	if i, ok := m.indexOfLocked(mode); ok {
		m.resolveCycleLocked(i, mode)
	}
	m.stack = append(m.stack, mode)
	m.mutatedLocked(previous)
}

// indexOfLocked returns the position of the first stack entry equal to
// the mode.
func (m *Manager) indexOfLocked(mode Mode) (int, bool) {
	for i, entry := range m.stack {
		if entry == mode {
			return i, true
		}
	}
	return 0, false
}

// resolveCycleLocked rewrites the stack according to the configured
// policy before the conflicting mode is re-pushed.
func (m *Manager) resolveCycleLocked(i int, mode Mode) {
	switch m.opts.Resolution {
	case ResolveNewest:
		if m.stack[i].Temporary {
			// Keep the non-temporary ancestors of the temporary cycle.
			kept := make([]Mode, 0, len(m.stack))
			for _, entry := range m.stack[:i+1] {
				if !entry.Temporary {
					kept = append(kept, entry)
				}
			}
			m.stack = append(kept, m.stack[i+1:]...)
		} else {
			m.stack = append([]Mode{}, m.stack[i+1:]...)
		}
	default: // ResolveOldest
		m.stack = m.stack[:i]
	}
	m.opts.Logger.Debug("mode cycle resolved",
		zap.String("mode", mode.Name),
		zap.String("policy", m.opts.Resolution.String()))
}

// Previous swaps the two top stack entries, toggling back to the mode
// active before the current one. No-op with fewer than two entries.
func (m *Manager) Previous() {
	m.mu.Lock()
	if len(m.stack) < 2 {
		m.mu.Unlock()
		return
	}
	previous := m.currentLocked()
	top := len(m.stack) - 1
	m.stack[top], m.stack[top-1] = m.stack[top-1], m.stack[top]
	m.mutatedLocked(previous)
}

// Unwind pops the top entry, falling back to the mode beneath it. No-op
// with fewer than two entries, so the stack stays non-empty.
func (m *Manager) Unwind() {
	m.mu.Lock()
	if len(m.stack) < 2 {
		m.mu.Unlock()
		return
	}
	previous := m.currentLocked()
	m.stack = m.stack[:len(m.stack)-1]
	m.mutatedLocked(previous)
}

// Temporary switches to a mode marked as a non-persistent overlay.
func (m *Manager) Temporary(mode Mode) {
	mode.Temporary = true
	m.SwitchTo(mode)
}

// LeaveTemporary leaves a temporary mode: if it is the current mode the
// stack unwinds from it, and every remaining entry equal to it is
// purged.
func (m *Manager) LeaveTemporary(mode Mode) {
	mode.Temporary = true

	m.mu.Lock()
	previous := m.currentLocked()

	if len(m.stack) > 1 && m.currentLocked() == mode {
		m.stack = m.stack[:len(m.stack)-1]
	}
	landed := m.currentLocked()
	kept := make([]Mode, 0, len(m.stack))
	for _, entry := range m.stack {
		if entry != mode {
			kept = append(kept, entry)
		}
	}
	if len(kept) == 0 {
		// The stack must never empty out; keep the entry we stand on.
		kept = append(kept, landed)
	}
	m.stack = kept
	m.mutatedLocked(previous)
}

// OnChange registers a fire-and-forget callback invoked after mode
// changes. Returns a function that unregisters the callback.
func (m *Manager) OnChange(cb ChangeCallback) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, cb)
	index := len(m.callbacks) - 1

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if index < len(m.callbacks) {
			m.callbacks[index] = nil
		}
	}
}

func (m *Manager) currentLocked() Mode {
	if len(m.stack) == 0 {
		return Mode{}
	}
	return m.stack[len(m.stack)-1]
}

// mutatedLocked runs the side effects of a stack mutation. It unlocks
// the manager; callbacks run outside the lock.
func (m *Manager) mutatedLocked(previous Mode) {
	current := m.currentLocked()
	callbacks := make([]ChangeCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	if m.opts.Persist != nil {
		m.opts.Persist(current.Name)
	}
	if m.opts.AxisRefresh != nil {
		m.opts.AxisRefresh()
	}
	if previous != current {
		for _, cb := range callbacks {
			if cb != nil {
				cb(previous, current)
			}
		}
	}
}
