package action

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/fsm"
	"github.com/OttScott/joygremlin/internal/profile"
)

// The gesture functors share one shape: a state machine driven by the
// press/release edges of the bound input plus a timer, with one mutex
// serializing the event path against the timer goroutine. Each timer
// arm bumps a generation counter so a stale timer that lost the race to
// Stop is discarded instead of driving the machine.
const (
	gesturePress   fsm.Action = "press"
	gestureRelease fsm.Action = "release"
	gestureTimeout fsm.Action = "timeout"
)

type gestureTimer struct {
	clock clock.Clock
	timer *clock.Timer
	gen   uint64
}

// arm schedules fire after d, cancelling any pending timer. fire runs
// on the timer goroutine and receives the generation of this arming; it
// must check valid under the owning functor's mutex before acting.
func (t *gestureTimer) arm(d time.Duration, fire func(gen uint64)) {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = t.clock.AfterFunc(d, func() { fire(gen) })
}

// cancel stops the pending timer and invalidates its generation.
func (t *gestureTimer) cancel() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// valid reports whether gen belongs to the most recent arming.
func (t *gestureTimer) valid(gen uint64) bool { return t.gen == gen }

// tempoFunctor selects between a short and a long child list by how
// long the input is held.
type tempoFunctor struct {
	mu       sync.Mutex
	machine  *fsm.Machine
	timer    gestureTimer
	logger   *zap.Logger
	cfg      profile.TempoConfig
	short    []Functor
	long     []Functor
	template *event.Event
	err      error
}

func newTempo(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.TempoConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagTempo)
	}
	short, err := buildAll(c.Short, svc)
	if err != nil {
		return nil, err
	}
	long, err := buildAll(c.Long, svc)
	if err != nil {
		return nil, err
	}

	f := &tempoFunctor{
		timer:  gestureTimer{clock: svc.clock()},
		logger: svc.logger(),
		cfg:    c,
		short:  short,
		long:   long,
	}

	onPress := func(...any) any { return f.onPress() }
	onShortRelease := func(...any) any { return f.onShortRelease() }
	onThreshold := func(...any) any { return f.onThreshold() }
	onLongRelease := func(...any) any { return f.onLongRelease() }

	machine, err := fsm.New("wait",
		[]fsm.State{"wait", "hold", "longHeld"},
		[]fsm.Action{gesturePress, gestureRelease, gestureTimeout},
		map[fsm.Key]fsm.Transition{
			{State: "wait", Action: gesturePress}:       {Callbacks: []fsm.Callback{onPress}, Next: "hold"},
			{State: "hold", Action: gestureRelease}:     {Callbacks: []fsm.Callback{onShortRelease}, Next: "wait"},
			{State: "hold", Action: gestureTimeout}:     {Callbacks: []fsm.Callback{onThreshold}, Next: "longHeld"},
			{State: "longHeld", Action: gestureRelease}: {Callbacks: []fsm.Callback{onLongRelease}, Next: "wait"},
			// Stale timers that lost the race to Stop land here.
			{State: "wait", Action: gestureTimeout}:     {Next: "wait"},
			{State: "longHeld", Action: gestureTimeout}: {Next: "longHeld"},
			{State: "wait", Action: gestureRelease}:     {Next: "wait"},
			// Repeated same-edge input, e.g. a release lost to a mode
			// switch mid-press.
			{State: "hold", Action: gesturePress}:     {Next: "hold"},
			{State: "longHeld", Action: gesturePress}: {Next: "longHeld"},
		})
	if err != nil {
		return nil, err
	}
	f.machine = machine
	return f, nil
}

func (f *tempoFunctor) Process(evt *event.Event, value *event.Value) error {
	if !value.IsButton() {
		f.logger.Warn("tempo ignoring non-button value",
			zap.Stringer("kind", value.Kind))
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	edge := gestureRelease
	if value.Pressed {
		edge = gesturePress
		f.template = evt.Clone()
	}
	if _, err := f.machine.Perform(edge); err != nil {
		return err
	}
	return f.take()
}

func (f *tempoFunctor) take() error {
	err := f.err
	f.err = nil
	return err
}

func (f *tempoFunctor) emit(children []Functor, pressed bool) {
	f.err = multierr.Append(f.err, pulse(children, f.template, pressed))
}

func (f *tempoFunctor) onPress() error {
	f.timer.arm(f.cfg.Threshold, func(gen uint64) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.timer.valid(gen) {
			return
		}
		if _, err := f.machine.Perform(gestureTimeout); err != nil {
			f.logger.Error("tempo timer transition failed", zap.Error(err))
		}
		if err := f.take(); err != nil {
			f.logger.Warn("tempo long activation failed", zap.Error(err))
		}
	})
	if f.cfg.ActivateOn == profile.ActivateOnPress {
		f.emit(f.short, true)
	}
	return nil
}

// onShortRelease handles a release before the threshold: the gesture is
// short. With release activation the short children never saw the press,
// so a full press/release pulse is replayed; with press activation only
// the release is still owed.
func (f *tempoFunctor) onShortRelease() error {
	f.timer.cancel()
	if f.cfg.ActivateOn == profile.ActivateOnRelease {
		f.emit(f.short, true)
	}
	f.emit(f.short, false)
	return nil
}

// onThreshold fires when the input is still held at the threshold: the
// gesture is long. With press activation the already-pressed short
// children are released first.
func (f *tempoFunctor) onThreshold() error {
	if f.cfg.ActivateOn == profile.ActivateOnPress {
		f.emit(f.short, false)
	}
	f.emit(f.long, true)
	return nil
}

func (f *tempoFunctor) onLongRelease() error {
	f.emit(f.long, false)
	return nil
}

// doubleTapFunctor selects between single and double tap children by
// whether a second press lands inside the threshold window.
type doubleTapFunctor struct {
	mu       sync.Mutex
	machine  *fsm.Machine
	timer    gestureTimer
	logger   *zap.Logger
	cfg      profile.DoubleTapConfig
	single   []Functor
	double   []Functor
	template *event.Event
	err      error
}

func newDoubleTap(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.DoubleTapConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagDoubleTap)
	}
	single, err := buildAll(c.Single, svc)
	if err != nil {
		return nil, err
	}
	double, err := buildAll(c.Double, svc)
	if err != nil {
		return nil, err
	}

	f := &doubleTapFunctor{
		timer:  gestureTimer{clock: svc.clock()},
		logger: svc.logger(),
		cfg:    c,
		single: single,
		double: double,
	}

	onFirstPress := func(...any) any { return f.onFirstPress() }
	onHeldPast := func(...any) any { return f.onHeldPast() }
	onHeldRelease := func(...any) any { return f.onHeldRelease() }
	onWindowExpired := func(...any) any { return f.onWindowExpired() }
	onSecondPress := func(...any) any { return f.onSecondPress() }
	onSecondRelease := func(...any) any { return f.onSecondRelease() }

	// States: idle (nothing pending), firstDown (first press held),
	// window (released, second press may still arrive), heldPast (held
	// beyond the window, single already delivered), secondDown (second
	// press held).
	machine, err := fsm.New("idle",
		[]fsm.State{"idle", "firstDown", "window", "heldPast", "secondDown"},
		[]fsm.Action{gesturePress, gestureRelease, gestureTimeout},
		map[fsm.Key]fsm.Transition{
			{State: "idle", Action: gesturePress}:         {Callbacks: []fsm.Callback{onFirstPress}, Next: "firstDown"},
			{State: "firstDown", Action: gestureRelease}:  {Next: "window"},
			{State: "firstDown", Action: gestureTimeout}:  {Callbacks: []fsm.Callback{onHeldPast}, Next: "heldPast"},
			{State: "heldPast", Action: gestureRelease}:   {Callbacks: []fsm.Callback{onHeldRelease}, Next: "idle"},
			{State: "window", Action: gestureTimeout}:     {Callbacks: []fsm.Callback{onWindowExpired}, Next: "idle"},
			{State: "window", Action: gesturePress}:       {Callbacks: []fsm.Callback{onSecondPress}, Next: "secondDown"},
			{State: "secondDown", Action: gestureRelease}: {Callbacks: []fsm.Callback{onSecondRelease}, Next: "idle"},
			// Stale timers.
			{State: "idle", Action: gestureTimeout}:       {Next: "idle"},
			{State: "heldPast", Action: gestureTimeout}:   {Next: "heldPast"},
			{State: "secondDown", Action: gestureTimeout}: {Next: "secondDown"},
			{State: "idle", Action: gestureRelease}:       {Next: "idle"},
			// Repeated same-edge input.
			{State: "firstDown", Action: gesturePress}:  {Next: "firstDown"},
			{State: "heldPast", Action: gesturePress}:   {Next: "heldPast"},
			{State: "secondDown", Action: gesturePress}: {Next: "secondDown"},
			{State: "window", Action: gestureRelease}:   {Next: "window"},
		})
	if err != nil {
		return nil, err
	}
	f.machine = machine
	return f, nil
}

func (f *doubleTapFunctor) Process(evt *event.Event, value *event.Value) error {
	if !value.IsButton() {
		f.logger.Warn("double tap ignoring non-button value",
			zap.Stringer("kind", value.Kind))
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if value.Pressed {
		f.template = evt.Clone()
	}
	edge := gestureRelease
	if value.Pressed {
		edge = gesturePress
	}
	if _, err := f.machine.Perform(edge); err != nil {
		return err
	}
	err := f.err
	f.err = nil
	return err
}

func (f *doubleTapFunctor) emit(children []Functor, pressed bool) {
	f.err = multierr.Append(f.err, pulse(children, f.template, pressed))
}

func (f *doubleTapFunctor) onFirstPress() error {
	f.timer.arm(f.cfg.Threshold, func(gen uint64) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.timer.valid(gen) {
			return
		}
		if _, err := f.machine.Perform(gestureTimeout); err != nil {
			f.logger.Error("double tap timer transition failed", zap.Error(err))
		}
		if f.err != nil {
			f.logger.Warn("double tap delivery failed", zap.Error(f.err))
			f.err = nil
		}
	})
	if !f.cfg.Exclusive {
		f.emit(f.single, true)
	}
	return nil
}

// onHeldPast fires when the first press outlives the window: the
// gesture is a single. In exclusive mode the single press is delivered
// now; in combined mode it already went out on the press edge.
func (f *doubleTapFunctor) onHeldPast() error {
	if f.cfg.Exclusive {
		f.emit(f.single, true)
	}
	return nil
}

func (f *doubleTapFunctor) onHeldRelease() error {
	f.emit(f.single, false)
	return nil
}

// onWindowExpired fires when the window closes after a release: a
// completed single tap. The exclusive form owes the full pulse, the
// combined form only the release.
func (f *doubleTapFunctor) onWindowExpired() error {
	if f.cfg.Exclusive {
		f.emit(f.single, true)
	}
	f.emit(f.single, false)
	return nil
}

func (f *doubleTapFunctor) onSecondPress() error {
	f.timer.cancel()
	f.emit(f.double, true)
	return nil
}

func (f *doubleTapFunctor) onSecondRelease() error {
	if !f.cfg.Exclusive {
		f.emit(f.single, false)
	}
	f.emit(f.double, false)
	return nil
}

// smartToggleFunctor acts as a momentary press when held past the
// threshold and as a latching toggle when tapped.
type smartToggleFunctor struct {
	mu       sync.Mutex
	machine  *fsm.Machine
	timer    gestureTimer
	logger   *zap.Logger
	cfg      profile.SmartToggleConfig
	children []Functor
	template *event.Event
	err      error
}

func newSmartToggle(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.SmartToggleConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagSmartToggle)
	}
	children, err := buildAll(c.Children, svc)
	if err != nil {
		return nil, err
	}

	f := &smartToggleFunctor{
		timer:    gestureTimer{clock: svc.clock()},
		logger:   svc.logger(),
		cfg:      c,
		children: children,
	}

	onPress := func(...any) any { return f.onPress() }
	onQuickRelease := func(...any) any { return f.onQuickRelease() }
	onUnlatch := func(...any) any { return f.onUnlatch() }

	// States: up (children released), down (pressed, threshold pending),
	// held (pressed past threshold, will latch), latched (released but
	// children stay pressed), unlatching (second press, its release lets
	// go). A quick press+release acts as a plain momentary press.
	machine, err := fsm.New("up",
		[]fsm.State{"up", "down", "held", "latched", "unlatching"},
		[]fsm.Action{gesturePress, gestureRelease, gestureTimeout},
		map[fsm.Key]fsm.Transition{
			{State: "up", Action: gesturePress}:          {Callbacks: []fsm.Callback{onPress}, Next: "down"},
			{State: "down", Action: gestureRelease}:      {Callbacks: []fsm.Callback{onQuickRelease}, Next: "up"},
			{State: "down", Action: gestureTimeout}:      {Next: "held"},
			{State: "held", Action: gestureRelease}:      {Next: "latched"},
			{State: "latched", Action: gesturePress}:     {Next: "unlatching"},
			{State: "unlatching", Action: gestureRelease}: {Callbacks: []fsm.Callback{onUnlatch}, Next: "up"},
			// Stale timers.
			{State: "up", Action: gestureTimeout}:         {Next: "up"},
			{State: "held", Action: gestureTimeout}:       {Next: "held"},
			{State: "latched", Action: gestureTimeout}:    {Next: "latched"},
			{State: "unlatching", Action: gestureTimeout}: {Next: "unlatching"},
			{State: "up", Action: gestureRelease}:         {Next: "up"},
			// Repeated same-edge input.
			{State: "down", Action: gesturePress}:       {Next: "down"},
			{State: "held", Action: gesturePress}:       {Next: "held"},
			{State: "unlatching", Action: gesturePress}: {Next: "unlatching"},
			{State: "latched", Action: gestureRelease}:  {Next: "latched"},
		})
	if err != nil {
		return nil, err
	}
	f.machine = machine
	return f, nil
}

func (f *smartToggleFunctor) Process(evt *event.Event, value *event.Value) error {
	if !value.IsButton() {
		f.logger.Warn("smart toggle ignoring non-button value",
			zap.Stringer("kind", value.Kind))
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if value.Pressed {
		f.template = evt.Clone()
	}
	edge := gestureRelease
	if value.Pressed {
		edge = gesturePress
	}
	if _, err := f.machine.Perform(edge); err != nil {
		return err
	}
	err := f.err
	f.err = nil
	return err
}

func (f *smartToggleFunctor) onPress() error {
	f.timer.arm(f.cfg.Threshold, func(gen uint64) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.timer.valid(gen) {
			return
		}
		if _, err := f.machine.Perform(gestureTimeout); err != nil {
			f.logger.Error("smart toggle timer transition failed", zap.Error(err))
		}
	})
	f.err = multierr.Append(f.err, pulse(f.children, f.template, true))
	return nil
}

// onQuickRelease fires when the press ends before the threshold: the
// gesture was a plain momentary press.
func (f *smartToggleFunctor) onQuickRelease() error {
	f.timer.cancel()
	f.err = multierr.Append(f.err, pulse(f.children, f.template, false))
	return nil
}

func (f *smartToggleFunctor) onUnlatch() error {
	f.timer.cancel()
	f.err = multierr.Append(f.err, pulse(f.children, f.template, false))
	return nil
}
