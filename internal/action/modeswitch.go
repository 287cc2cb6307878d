package action

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/mode"
	"github.com/OttScott/joygremlin/internal/profile"
)

// modeSwitchFunctor drives the mode stack from a button. Switch,
// previous, and unwind act on the press edge; the temporary form enters
// the target on press and leaves the exact entry it pushed on release.
type modeSwitchFunctor struct {
	mu     sync.Mutex
	logger *zap.Logger
	modes  *mode.Manager
	cfg    profile.ModeSwitchConfig

	// pushed is the temporary entry currently held down, if any.
	pushed *mode.Mode
}

func newModeSwitch(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.ModeSwitchConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagModeSwitch)
	}
	switch c.Op {
	case profile.ModeOpSwitch, profile.ModeOpTemporary:
		if c.Target == "" {
			return nil, fmt.Errorf("%w: mode switch without target", ErrBadConfig)
		}
	case profile.ModeOpPrevious, profile.ModeOpUnwind:
	default:
		return nil, fmt.Errorf("%w: unknown mode op %d", ErrBadConfig, c.Op)
	}
	return &modeSwitchFunctor{logger: svc.logger(), modes: svc.Modes, cfg: c}, nil
}

func (f *modeSwitchFunctor) Process(evt *event.Event, value *event.Value) error {
	if !value.IsButton() {
		f.logger.Warn("mode switch ignoring non-button value",
			zap.Stringer("kind", value.Kind))
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.cfg.Op {
	case profile.ModeOpPrevious:
		if value.Pressed {
			f.modes.Previous()
		}
	case profile.ModeOpUnwind:
		if value.Pressed {
			f.modes.Unwind()
		}
	case profile.ModeOpTemporary:
		if value.Pressed {
			entry := mode.Mode{Name: f.cfg.Target, Previous: f.modes.CurrentName()}
			f.modes.Temporary(entry)
			entry.Temporary = true
			f.pushed = &entry
		} else if f.pushed != nil {
			f.modes.LeaveTemporary(*f.pushed)
			f.pushed = nil
		}
	default:
		if value.Pressed {
			f.modes.SwitchTo(mode.Mode{Name: f.cfg.Target, Previous: f.modes.CurrentName()})
		}
	}
	return nil
}
