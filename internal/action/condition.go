package action

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/profile"
)

// conditionFunctor forwards to its Then children while the comparison
// over the current value passes and to its Else children otherwise.
type conditionFunctor struct {
	logger *zap.Logger
	cfg    profile.ConditionConfig
	then   []Functor
	els    []Functor
}

func newCondition(cfg profile.ActionConfig, svc *Services) (Functor, error) {
	c, ok := cfg.(profile.ConditionConfig)
	if !ok {
		return nil, fmt.Errorf("%w: %T for %q", ErrBadConfig, cfg, profile.TagCondition)
	}
	switch c.Kind {
	case profile.ConditionPressed, profile.ConditionReleased,
		profile.ConditionInsideRange, profile.ConditionOutsideRange:
	default:
		return nil, fmt.Errorf("%w: unknown comparator %d", ErrBadConfig, c.Kind)
	}

	then, err := buildAll(c.Then, svc)
	if err != nil {
		return nil, err
	}
	els, err := buildAll(c.Else, svc)
	if err != nil {
		return nil, err
	}
	return &conditionFunctor{logger: svc.logger(), cfg: c, then: then, els: els}, nil
}

func (f *conditionFunctor) Process(evt *event.Event, value *event.Value) error {
	pass, ok := f.evaluate(value)
	if !ok {
		f.logger.Warn("condition ignoring mismatched value",
			zap.Stringer("kind", value.Kind))
		return nil
	}
	if pass {
		return runAll(f.then, evt, value)
	}
	return runAll(f.els, evt, value)
}

func (f *conditionFunctor) evaluate(value *event.Value) (pass, ok bool) {
	switch f.cfg.Kind {
	case profile.ConditionPressed:
		return value.Pressed, value.IsButton()
	case profile.ConditionReleased:
		return !value.Pressed, value.IsButton()
	case profile.ConditionInsideRange:
		inside := value.Axis >= f.cfg.Low && value.Axis <= f.cfg.High
		return inside, value.Kind == event.TypeAxis
	case profile.ConditionOutsideRange:
		inside := value.Axis >= f.cfg.Low && value.Axis <= f.cfg.High
		return !inside, value.Kind == event.TypeAxis
	default:
		return false, false
	}
}
