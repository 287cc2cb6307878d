package action

import (
	"fmt"
	"math"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/profile"
)

// splitAxisFunctor routes an axis to one of two child lists around a
// center point.
type splitAxisFunctor struct {
	logger *zap.Logger
	center float64
	low    []Functor
	high   []Functor
}

func newSplitAxis(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.SplitAxisConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagSplitAxis)
	}
	low, err := buildAll(c.Low, svc)
	if err != nil {
		return nil, err
	}
	high, err := buildAll(c.High, svc)
	if err != nil {
		return nil, err
	}
	return &splitAxisFunctor{logger: svc.logger(), center: c.Center, low: low, high: high}, nil
}

func (f *splitAxisFunctor) Process(evt *event.Event, value *event.Value) error {
	if value.Kind != event.TypeAxis {
		f.logger.Warn("split axis ignoring non-axis value",
			zap.Stringer("kind", value.Kind))
		return nil
	}
	if value.Axis < f.center {
		return runAll(f.low, evt, value)
	}
	return runAll(f.high, evt, value)
}

// deadzoneFunctor remaps an axis through a four-point deadzone before
// forwarding. Values between the center points collapse to zero; the
// remainder is rescaled to keep the full output range.
type deadzoneFunctor struct {
	logger   *zap.Logger
	cfg      profile.DeadzoneConfig
	children []Functor
}

func newDeadzone(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.DeadzoneConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagDeadzone)
	}
	children, err := buildAll(c.Children, svc)
	if err != nil {
		return nil, err
	}
	return &deadzoneFunctor{logger: svc.logger(), cfg: c, children: children}, nil
}

func (f *deadzoneFunctor) Process(evt *event.Event, value *event.Value) error {
	if value.Kind != event.TypeAxis {
		f.logger.Warn("deadzone ignoring non-axis value",
			zap.Stringer("kind", value.Kind))
		return nil
	}
	v := value.Copy()
	v.Axis = applyDeadzone(value.Axis, f.cfg)
	return runAll(f.children, evt, &v)
}

func applyDeadzone(v float64, c profile.DeadzoneConfig) float64 {
	if v >= 0 {
		span := math.Abs(c.High - c.CenterHigh)
		if span == 0 {
			return clampAxis(v)
		}
		return math.Min(1, math.Max(0, (v-c.CenterHigh)/span))
	}
	span := math.Abs(c.Low - c.CenterLow)
	if span == 0 {
		return clampAxis(v)
	}
	return -math.Min(1, math.Max(0, (math.Abs(v)-math.Abs(c.CenterLow))/span))
}

func clampAxis(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// curveFunctor remaps an axis through a piecewise-linear response curve
// before forwarding.
type curveFunctor struct {
	logger    *zap.Logger
	points    []profile.CurvePoint
	symmetric bool
	children  []Functor
}

func newCurve(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.CurveConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagCurve)
	}
	if len(c.Points) < 2 {
		return nil, fmt.Errorf("%w: response curve needs at least two points", ErrBadConfig)
	}
	children, err := buildAll(c.Children, svc)
	if err != nil {
		return nil, err
	}

	points := make([]profile.CurvePoint, len(c.Points))
	copy(points, c.Points)
	sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })

	return &curveFunctor{
		logger:    svc.logger(),
		points:    points,
		symmetric: c.Symmetric,
		children:  children,
	}, nil
}

func (f *curveFunctor) Process(evt *event.Event, value *event.Value) error {
	if value.Kind != event.TypeAxis {
		f.logger.Warn("response curve ignoring non-axis value",
			zap.Stringer("kind", value.Kind))
		return nil
	}
	v := value.Copy()
	v.Axis = f.eval(value.Axis)
	return runAll(f.children, evt, &v)
}

func (f *curveFunctor) eval(v float64) float64 {
	v = clampAxis(v)
	if f.symmetric {
		out := f.interpolate(math.Abs(v))
		if v < 0 {
			return -out
		}
		return out
	}
	return f.interpolate(v)
}

func (f *curveFunctor) interpolate(v float64) float64 {
	pts := f.points
	if v <= pts[0].X {
		return pts[0].Y
	}
	for i := 1; i < len(pts); i++ {
		if v <= pts[i].X {
			a, b := pts[i-1], pts[i]
			if b.X == a.X {
				return b.Y
			}
			t := (v - a.X) / (b.X - a.X)
			return a.Y + t*(b.Y-a.Y)
		}
	}
	return pts[len(pts)-1].Y
}

// scriptFunctor runs a user-supplied Lua chunk over the axis value. The
// chunk must define process(value) returning the transformed value. The
// Lua state is not safe for concurrent use, so calls are serialized.
type scriptFunctor struct {
	mu       sync.Mutex
	logger   *zap.Logger
	state    *lua.LState
	children []Functor
}

func newScript(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.ScriptConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagScript)
	}
	children, err := buildAll(c.Children, svc)
	if err != nil {
		return nil, err
	}

	state := lua.NewState()
	if err := state.DoString(c.Source); err != nil {
		state.Close()
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	if state.GetGlobal("process").Type() != lua.LTFunction {
		state.Close()
		return nil, fmt.Errorf("%w: script does not define process(value)", ErrScript)
	}

	return &scriptFunctor{logger: svc.logger(), state: state, children: children}, nil
}

func (f *scriptFunctor) Process(evt *event.Event, value *event.Value) error {
	if value.Kind != event.TypeAxis {
		f.logger.Warn("script ignoring non-axis value",
			zap.Stringer("kind", value.Kind))
		return nil
	}

	f.mu.Lock()
	err := f.state.CallByParam(lua.P{
		Fn:      f.state.GetGlobal("process"),
		NRet:    1,
		Protect: true,
	}, lua.LNumber(value.Axis))
	if err != nil {
		f.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrScript, err)
	}
	ret := f.state.Get(-1)
	f.state.Pop(1)
	f.mu.Unlock()

	num, ok := ret.(lua.LNumber)
	if !ok {
		return fmt.Errorf("%w: process returned %s, want number", ErrScript, ret.Type())
	}

	v := value.Copy()
	v.Axis = clampAxis(float64(num))
	return runAll(f.children, evt, &v)
}

// Close releases the Lua state.
func (f *scriptFunctor) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Close()
}
