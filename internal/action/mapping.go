package action

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/device"
	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/profile"
)

// mapToKeyboardFunctor presses and releases one keyboard key with the
// bound button.
type mapToKeyboardFunctor struct {
	logger   *zap.Logger
	keyboard device.KeyboardEmitter
	key      event.KeyID
}

func newMapToKeyboard(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.MapToKeyboardConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagMapToKeyboard)
	}
	return &mapToKeyboardFunctor{
		logger:   svc.logger(),
		keyboard: svc.Keyboard,
		key:      c.Key,
	}, nil
}

func (f *mapToKeyboardFunctor) Process(evt *event.Event, value *event.Value) error {
	if !value.IsButton() {
		f.logger.Warn("keyboard mapping ignoring non-button value",
			zap.Stringer("kind", value.Kind))
		return nil
	}
	if value.Pressed {
		return f.keyboard.KeyDown(f.key)
	}
	return f.keyboard.KeyUp(f.key)
}

// mapToMouseFunctor drives a mouse button, relative motion, or wheel
// ticks from the bound input.
type mapToMouseFunctor struct {
	logger *zap.Logger
	mouse  device.MouseEmitter
	cfg    profile.MapToMouseConfig
}

func newMapToMouse(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.MapToMouseConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagMapToMouse)
	}
	return &mapToMouseFunctor{logger: svc.logger(), mouse: svc.Mouse, cfg: c}, nil
}

func (f *mapToMouseFunctor) Process(evt *event.Event, value *event.Value) error {
	if !value.IsButton() {
		f.logger.Warn("mouse mapping ignoring non-button value",
			zap.Stringer("kind", value.Kind))
		return nil
	}
	switch f.cfg.Output {
	case profile.MouseOutputMotion:
		if value.Pressed {
			return f.mouse.Move(f.cfg.DX, f.cfg.DY)
		}
		return nil
	case profile.MouseOutputWheel:
		if value.Pressed {
			return f.mouse.Wheel(f.cfg.Ticks)
		}
		return nil
	default:
		if value.Pressed {
			return f.mouse.ButtonDown(f.cfg.Button)
		}
		return f.mouse.ButtonUp(f.cfg.Button)
	}
}

// mapToVJoyFunctor writes the current value to one vJoy input. Button
// presses arm a deferred release so a mode switch while held cannot
// leave the vJoy button stuck.
type mapToVJoyFunctor struct {
	logger   *zap.Logger
	vjoy     device.VJoyWriter
	releases releaseRegistry
	cfg      profile.MapToVJoyConfig
}

// releaseRegistry is the slice of the release bookkeeping the vJoy and
// logical mappings need.
type releaseRegistry interface {
	RegisterVJoyButtonRelease(w device.VJoyWriter, vjoyDevice, vjoyButton int, evt *event.Event, activateOnPress bool)
	RegisterLogicalButtonRelease(ld *device.LogicalDevice, buttonID int, evt *event.Event, activateOnPress bool)
}

func newMapToVJoy(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.MapToVJoyConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagMapToVJoy)
	}
	switch c.Type {
	case event.TypeAxis, event.TypeButton, event.TypeHat:
	default:
		return nil, fmt.Errorf("%w: vjoy target type %s", ErrBadConfig, c.Type)
	}
	f := &mapToVJoyFunctor{logger: svc.logger(), vjoy: svc.VJoy, cfg: c}
	if svc.Releases != nil {
		f.releases = svc.Releases
	}
	return f, nil
}

func (f *mapToVJoyFunctor) Process(evt *event.Event, value *event.Value) error {
	switch f.cfg.Type {
	case event.TypeAxis:
		if value.Kind != event.TypeAxis {
			f.logger.Warn("vjoy axis mapping ignoring non-axis value",
				zap.Stringer("kind", value.Kind))
			return nil
		}
		return f.vjoy.SetAxis(f.cfg.Device, f.cfg.Input, value.Axis)

	case event.TypeHat:
		if value.Kind != event.TypeHat {
			f.logger.Warn("vjoy hat mapping ignoring non-hat value",
				zap.Stringer("kind", value.Kind))
			return nil
		}
		return f.vjoy.SetHat(f.cfg.Device, f.cfg.Input, value.Hat)

	default:
		if !value.IsButton() {
			f.logger.Warn("vjoy button mapping ignoring non-button value",
				zap.Stringer("kind", value.Kind))
			return nil
		}
		if err := f.vjoy.SetButton(f.cfg.Device, f.cfg.Input, value.Pressed); err != nil {
			return err
		}
		if value.Pressed && f.releases != nil {
			f.releases.RegisterVJoyButtonRelease(f.vjoy, f.cfg.Device, f.cfg.Input, evt, false)
		}
		return nil
	}
}

// mapToLogicalFunctor writes the current value to one logical device
// input. Button presses arm a deferred release like the vJoy mapping.
type mapToLogicalFunctor struct {
	logger   *zap.Logger
	logical  *device.LogicalDevice
	releases releaseRegistry
	selector device.Selector
}

func newMapToLogical(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.MapToLogicalConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagMapToLogical)
	}
	f := &mapToLogicalFunctor{
		logger:   svc.logger(),
		logical:  svc.Logical,
		selector: c.Selector,
	}
	if svc.Releases != nil {
		f.releases = svc.Releases
	}
	return f, nil
}

func (f *mapToLogicalFunctor) Process(evt *event.Event, value *event.Value) error {
	if err := f.logical.Update(f.selector, *value); err != nil {
		return err
	}
	if value.IsButton() && value.Pressed && f.releases != nil {
		in, err := f.logical.Get(f.selector)
		if err != nil {
			return err
		}
		if in.Type() == device.Button {
			f.releases.RegisterLogicalButtonRelease(f.logical, in.ID(), evt, false)
		}
	}
	return nil
}

// hatButtonsFunctor treats hat direction sets as buttons: entering a
// configured set presses its children, leaving it releases them. Emits
// only on membership changes.
type hatButtonsFunctor struct {
	mu       sync.Mutex
	logger   *zap.Logger
	mappings []hatButtonMapping
}

type hatButtonMapping struct {
	directions map[event.HatDirection]struct{}
	children   []Functor
	active     bool
}

func newHatButtons(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.HatButtonsConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagHatButtons)
	}

	f := &hatButtonsFunctor{logger: svc.logger()}
	for _, m := range c.Mappings {
		children, err := buildAll(m.Children, svc)
		if err != nil {
			return nil, err
		}
		directions := make(map[event.HatDirection]struct{}, len(m.Directions))
		for _, d := range m.Directions {
			directions[d] = struct{}{}
		}
		f.mappings = append(f.mappings, hatButtonMapping{
			directions: directions,
			children:   children,
		})
	}
	return f, nil
}

func (f *hatButtonsFunctor) Process(evt *event.Event, value *event.Value) error {
	if value.Kind != event.TypeHat {
		f.logger.Warn("hat buttons ignoring non-hat value",
			zap.Stringer("kind", value.Kind))
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	for i := range f.mappings {
		m := &f.mappings[i]
		_, member := m.directions[value.Hat]
		if member == m.active {
			continue
		}
		m.active = member
		err = multierr.Append(err, pulse(m.children, evt, member))
	}
	return err
}
