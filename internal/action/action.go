// Package action turns profile configuration trees into runnable
// functor trees. A functor receives the physical event and the value as
// transformed by its ancestors, performs its effect, and forwards to
// its children. Timing-based actions (tempo, double tap, smart toggle)
// are driven by table-based state machines and an injectable clock.
package action

import (
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/device"
	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/mode"
	"github.com/OttScott/joygremlin/internal/profile"
	"github.com/OttScott/joygremlin/internal/release"
)

// Functor is one node of a runnable action tree. Process receives the
// physical event and the value as seen at this node; container functors
// transform the value before forwarding it to their children.
type Functor interface {
	Process(evt *event.Event, value *event.Value) error
}

// Services bundles the runtime facilities functors depend on. One
// instance is shared by every functor of a profile activation.
type Services struct {
	Clock    clock.Clock
	Logger   *zap.Logger
	Modes    *mode.Manager
	Logical  *device.LogicalDevice
	VJoy     device.VJoyWriter
	Keyboard device.KeyboardEmitter
	Mouse    device.MouseEmitter
	Releases *release.Registry
}

func (s *Services) clock() clock.Clock {
	if s.Clock == nil {
		s.Clock = clock.New()
	}
	return s.Clock
}

func (s *Services) logger() *zap.Logger {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	return s.Logger
}

// Constructor builds a functor from its configuration node.
type Constructor func(cfg profile.ActionConfig, svc *Services) (Functor, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// Register binds a constructor to a configuration tag. The builtin set
// is registered at package init; plugins may add more before profile
// activation.
func Register(tag string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[tag] = ctor
}

func init() {
	Register(profile.TagRoot, newRoot)
	Register(profile.TagCondition, newCondition)
	Register(profile.TagTempo, newTempo)
	Register(profile.TagDoubleTap, newDoubleTap)
	Register(profile.TagSmartToggle, newSmartToggle)
	Register(profile.TagSplitAxis, newSplitAxis)
	Register(profile.TagDeadzone, newDeadzone)
	Register(profile.TagCurve, newCurve)
	Register(profile.TagScript, newScript)
	Register(profile.TagMapToKeyboard, newMapToKeyboard)
	Register(profile.TagMapToMouse, newMapToMouse)
	Register(profile.TagMapToVJoy, newMapToVJoy)
	Register(profile.TagMapToLogical, newMapToLogical)
	Register(profile.TagHatButtons, newHatButtons)
	Register(profile.TagMacro, newMacro)
	Register(profile.TagChain, newChain)
	Register(profile.TagModeSwitch, newModeSwitch)
}

// Build resolves a configuration node to its constructor and builds the
// functor subtree rooted at it.
func Build(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil configuration", ErrBadConfig)
	}
	registryMu.RLock()
	ctor, ok := registry[cfg.Tag()]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, cfg.Tag())
	}
	return ctor(cfg, svc)
}

func buildAll(cfgs []profile.ActionConfig, svc *Services) ([]Functor, error) {
	functors := make([]Functor, 0, len(cfgs))
	for _, cfg := range cfgs {
		f, err := Build(cfg, svc)
		if err != nil {
			return nil, err
		}
		functors = append(functors, f)
	}
	return functors, nil
}

// runAll forwards an event to a child list, aggregating errors so one
// failing child never starves its siblings.
func runAll(children []Functor, evt *event.Event, value *event.Value) error {
	var err error
	for _, child := range children {
		err = multierr.Append(err, child.Process(evt, value))
	}
	return err
}

// rootFunctor is the implicit container at the top of every tree.
type rootFunctor struct {
	children []Functor
}

func newRoot(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.RootConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagRoot)
	}
	children, err := buildAll(c.Children, svc)
	if err != nil {
		return nil, err
	}
	return &rootFunctor{children: children}, nil
}

func (f *rootFunctor) Process(evt *event.Event, value *event.Value) error {
	return runAll(f.children, evt, value)
}

// pulse emits a synthetic press or release of the physical input to a
// child list. Used by the gesture functors, which decouple the edges
// their children see from the edges the hardware produced.
func pulse(children []Functor, template *event.Event, pressed bool) error {
	evt := template.Clone()
	evt.Pressed = pressed
	value := event.NewButtonValue(pressed)
	return runAll(children, evt, &value)
}
