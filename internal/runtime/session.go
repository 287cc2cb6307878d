// Package runtime owns one profile activation: it builds functor trees
// from the profile's bindings, registers them as callbacks keyed by
// (input, mode), and dispatches incoming events through them. All
// services the functors need are constructed here and injected; nothing
// in the pipeline reaches for globals.
package runtime

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/action"
	"github.com/OttScott/joygremlin/internal/config"
	"github.com/OttScott/joygremlin/internal/device"
	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/mode"
	"github.com/OttScott/joygremlin/internal/profile"
	"github.com/OttScott/joygremlin/internal/release"
)

// DefaultSettleDelay is the pause between multiple values synthesized
// for one physical event, letting downstream hardware settle.
const DefaultSettleDelay = 50 * time.Millisecond

// NoSettleDelay disables the settle pause entirely.
const NoSettleDelay time.Duration = -1

// Options configures a Session.
type Options struct {
	Logger   *zap.Logger
	Clock    clock.Clock
	Config   *config.Store
	Joystick device.JoystickReader
	VJoy     device.VJoyWriter
	Keyboard device.KeyboardEmitter
	Mouse    device.MouseEmitter

	// Resolution is the mode-stack cycle resolution policy.
	Resolution mode.CycleResolution

	// SettleDelay is the pause between synthesized values; zero selects
	// DefaultSettleDelay, NoSettleDelay disables it.
	SettleDelay time.Duration
}

// Session owns the services of one profile activation.
type Session struct {
	logger       *zap.Logger
	clock        clock.Clock
	cfg          *config.Store
	joystick     device.JoystickReader
	settle       time.Duration
	modes        *mode.Manager
	logical      *device.LogicalDevice
	releases     *release.Registry
	registry     *CallbackRegistry
	significance *event.Significance
	handler      *EventHandler
	services     *action.Services

	axisDevices []uuid.UUID
	virtualSeq  int
}

// NewSession constructs the service graph. The session is inert until
// Activate installs a profile.
func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	settle := opts.SettleDelay
	switch {
	case settle == 0:
		settle = DefaultSettleDelay
	case settle < 0:
		settle = 0
	}

	s := &Session{
		logger:   opts.Logger,
		clock:    opts.Clock,
		cfg:      opts.Config,
		joystick: opts.Joystick,
		settle:   settle,
	}

	s.modes = mode.NewManager(mode.Options{
		Resolution:  opts.Resolution,
		Logger:      opts.Logger.Named("mode"),
		Persist:     s.persistMode,
		AxisRefresh: s.refreshAxes,
	})
	s.logical = device.NewLogicalDevice(opts.Clock)
	s.releases = release.NewRegistry(s.modes.CurrentName, opts.Logger.Named("release"))
	s.registry = NewCallbackRegistry()
	s.significance = event.NewSignificance(opts.Clock)
	s.handler = NewEventHandler(s.registry, s.modes, s.releases, s.significance, opts.Logger.Named("dispatch"))

	s.services = &action.Services{
		Clock:    opts.Clock,
		Logger:   opts.Logger.Named("action"),
		Modes:    s.modes,
		Logical:  s.logical,
		VJoy:     opts.VJoy,
		Keyboard: opts.Keyboard,
		Mouse:    opts.Mouse,
		Releases: s.releases,
	}
	return s
}

// Handler returns the dispatch entry point the hardware boundary feeds.
func (s *Session) Handler() *EventHandler { return s.handler }

// Modes returns the mode manager.
func (s *Session) Modes() *mode.Manager { return s.modes }

// Logical returns the session's logical device.
func (s *Session) Logical() *device.LogicalDevice { return s.logical }

// Releases returns the deferred-release registry.
func (s *Session) Releases() *release.Registry { return s.releases }

// Activate installs a profile: previous state is torn down, every
// binding is compiled to a functor tree and registered, and the start
// mode is seeded. Bindings that fail to compile are skipped and
// reported in the aggregate error; the remaining bindings activate
// normally.
func (s *Session) Activate(p *profile.Profile) error {
	if p == nil {
		return ErrNoProfile
	}

	s.teardown()
	s.registry.SetModeHierarchy(p.Modes)

	var err error
	axisDevices := make(map[uuid.UUID]struct{})
	for i := range p.Items {
		item := &p.Items[i]
		if item.Type == event.TypeAxis && item.Device != uuid.Nil {
			axisDevices[item.Device] = struct{}{}
		}
		for j := range item.Bindings {
			if bindErr := s.registerBinding(item, &item.Bindings[j]); bindErr != nil {
				s.logger.Error("binding skipped",
					zap.String("mode", item.Mode),
					zap.Stringer("type", item.Type),
					zap.Int("input", item.Input),
					zap.Error(bindErr))
				err = multierr.Append(err, bindErr)
			}
		}
	}
	s.axisDevices = make([]uuid.UUID, 0, len(axisDevices))
	for dev := range axisDevices {
		s.axisDevices = append(s.axisDevices, dev)
	}

	s.modes.Reset(mode.Mode{Name: s.startMode(p)})
	return err
}

// Deactivate tears the activation down; the session may be reused by a
// later Activate.
func (s *Session) Deactivate() {
	s.teardown()
}

func (s *Session) teardown() {
	s.registry.Reset()
	s.releases.Reset()
	s.significance.Reset()
	s.logical.Reset()
	s.handler.Resume()
	s.axisDevices = nil
	s.virtualSeq = 0
}

// startMode prefers the persisted last active mode when the profile
// still declares it, falling back to the profile's start mode.
func (s *Session) startMode(p *profile.Profile) string {
	start := p.StartMode
	if start == "" && len(p.Modes) > 0 {
		start = p.Modes[0].Name
	}
	if s.cfg == nil {
		return start
	}
	last := s.cfg.String("profile", "state", "last_mode", start)
	for _, m := range p.Modes {
		if m.Name == last {
			return last
		}
	}
	return start
}

func (s *Session) registerBinding(item *profile.InputItem, b *profile.Binding) error {
	functor, err := action.Build(b.Root, s.services)
	if err != nil {
		return err
	}

	physicalID := event.ID{Type: item.Type, Device: item.Device, Input: item.Input, Key: item.Key}

	if b.VirtualButton == nil {
		s.registry.Register(physicalID, item.Mode, Callback{
			AlwaysExecute: item.AlwaysExecute,
			Fn: func(evt *event.Event) error {
				value := evt.Value()
				return functor.Process(evt, &value)
			},
		})
		return nil
	}

	vb, err := newVirtualButton(b.VirtualButton)
	if err != nil {
		return err
	}

	// The virtual binding loops back through the dispatcher: the
	// physical callback only synthesizes virtual press/release events,
	// and the functor tree is bound to the synthetic input like any
	// physical button.
	s.virtualSeq++
	virtualInput := s.virtualSeq
	virtualID := event.ID{Type: event.TypeVirtualButton, Device: item.Device, Input: virtualInput}

	s.registry.Register(virtualID, item.Mode, Callback{
		AlwaysExecute: item.AlwaysExecute,
		Fn: func(evt *event.Event) error {
			value := evt.Value()
			return functor.Process(evt, &value)
		},
	})

	s.registry.Register(physicalID, item.Mode, Callback{
		AlwaysExecute: item.AlwaysExecute,
		Fn: func(evt *event.Event) error {
			edges, err := vb.process(evt.Value())
			if err != nil {
				return err
			}
			var dispatchErr error
			for i, pressed := range edges {
				if i > 0 && s.settle > 0 {
					s.clock.Sleep(s.settle)
				}
				synthetic := event.NewVirtualButton(item.Device, virtualInput, pressed)
				dispatchErr = multierr.Append(dispatchErr, s.handler.Process(synthetic))
			}
			return dispatchErr
		},
	})
	return nil
}

// persistMode records the active mode in the configuration store on
// every mode mutation.
func (s *Session) persistMode(name string) {
	if s.cfg == nil {
		return
	}
	if err := s.cfg.Set("profile", "state", "last_mode", name); err != nil {
		s.logger.Warn("persisting active mode failed", zap.Error(err))
	}
}

// refreshAxes replays current physical axis positions through the
// pipeline after a mode change, so newly active bindings see live
// values instead of stale ones.
func (s *Session) refreshAxes() {
	if s.joystick == nil {
		return
	}
	for _, dev := range s.axisDevices {
		for _, idx := range s.joystick.Axes(dev) {
			v, err := s.joystick.Axis(dev, idx)
			if err != nil {
				s.logger.Warn("axis refresh read failed",
					zap.Stringer("device", dev),
					zap.Int("axis", idx),
					zap.Error(err))
				continue
			}
			if err := s.handler.Process(event.NewAxis(dev, idx, v)); err != nil {
				s.logger.Warn("axis refresh dispatch failed", zap.Error(err))
			}
		}
	}
}
