package action

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/device"
	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/profile"
)

// macroFunctor replays a fixed step sequence of key edges, vJoy button
// edges, and pauses when the bound button is pressed. Steps run
// synchronously on the event path; pauses use the injected clock.
type macroFunctor struct {
	mu       sync.Mutex
	logger   *zap.Logger
	clock    clock.Clock
	keyboard device.KeyboardEmitter
	vjoy     device.VJoyWriter
	steps    []profile.MacroStep
}

func newMacro(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.MacroConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagMacro)
	}
	return &macroFunctor{
		logger:   svc.logger(),
		clock:    svc.clock(),
		keyboard: svc.Keyboard,
		vjoy:     svc.VJoy,
		steps:    c.Steps,
	}, nil
}

func (f *macroFunctor) Process(evt *event.Event, value *event.Value) error {
	if !value.IsButton() {
		f.logger.Warn("macro ignoring non-button value",
			zap.Stringer("kind", value.Kind))
		return nil
	}
	if !value.Pressed {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, step := range f.steps {
		if err := f.runStep(step); err != nil {
			return fmt.Errorf("macro step %d: %w", i, err)
		}
	}
	return nil
}

func (f *macroFunctor) runStep(step profile.MacroStep) error {
	if step.Pause > 0 {
		f.clock.Sleep(step.Pause)
	}
	if step.Key != nil {
		if step.Press {
			return f.keyboard.KeyDown(*step.Key)
		}
		return f.keyboard.KeyUp(*step.Key)
	}
	if step.VJoyDevice > 0 {
		return f.vjoy.SetButton(step.VJoyDevice, step.VJoyButton, step.Press)
	}
	return nil
}

// chainFunctor cycles through child groups: each full press/release of
// the bound input drives one group, then the cursor advances. An
// optional inactivity timeout snaps the cursor back to the first group.
type chainFunctor struct {
	mu        sync.Mutex
	logger    *zap.Logger
	clock     clock.Clock
	timeout   time.Duration
	groups    [][]Functor
	cursor    int
	inFlight  int
	lastPress time.Time
}

func newChain(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.ChainConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagChain)
	}
	if len(c.Groups) == 0 {
		return nil, fmt.Errorf("%w: chain needs at least one group", ErrBadConfig)
	}
	f := &chainFunctor{
		logger:  svc.logger(),
		clock:   svc.clock(),
		timeout: c.Timeout,
	}
	for _, g := range c.Groups {
		group, err := buildAll(g, svc)
		if err != nil {
			return nil, err
		}
		f.groups = append(f.groups, group)
	}
	return f, nil
}

func (f *chainFunctor) Process(evt *event.Event, value *event.Value) error {
	if !value.IsButton() {
		f.logger.Warn("chain ignoring non-button value",
			zap.Stringer("kind", value.Kind))
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if value.Pressed {
		now := f.clock.Now()
		if f.timeout > 0 && !f.lastPress.IsZero() && now.Sub(f.lastPress) > f.timeout {
			f.cursor = 0
		}
		f.lastPress = now
		f.inFlight = f.cursor
		return runAll(f.groups[f.inFlight], evt, value)
	}

	// The release goes to the group the press went to, even if a reset
	// would reposition the cursor in between.
	err := runAll(f.groups[f.inFlight], evt, value)
	f.cursor = (f.inFlight + 1) % len(f.groups)
	return err
}
