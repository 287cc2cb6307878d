package runtime

import (
	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/fsm"
	"github.com/OttScott/joygremlin/internal/profile"
)

// virtualButton converts axis or hat samples into synthetic press and
// release edges. Implementations return the edges to synthesize for one
// sample, in order; an empty slice means no state change.
type virtualButton interface {
	process(value event.Value) ([]bool, error)
}

const (
	vbUp   fsm.State = "up"
	vbDown fsm.State = "down"
)

func newVirtualMachine() (*fsm.Machine, error) {
	return fsm.New(vbUp,
		[]fsm.State{vbUp, vbDown},
		[]fsm.Action{"press", "release"},
		map[fsm.Key]fsm.Transition{
			{State: vbUp, Action: "press"}:     {Next: vbDown},
			{State: vbDown, Action: "release"}: {Next: vbUp},
			{State: vbUp, Action: "release"}:   {Next: vbUp},
			{State: vbDown, Action: "press"}:   {Next: vbDown},
		})
}

// virtualAxisButton presses while the axis value sits inside
// [lower, upper] and the travel direction matches. A sample pair that
// jumps across the whole band synthesizes a press+release pulse even
// though no sample measured inside it.
type virtualAxisButton struct {
	cfg     profile.VirtualAxisButton
	machine *fsm.Machine
	seeded  bool
	last    float64
}

func newVirtualAxisButton(cfg profile.VirtualAxisButton) (*virtualAxisButton, error) {
	machine, err := newVirtualMachine()
	if err != nil {
		return nil, err
	}
	return &virtualAxisButton{cfg: cfg, machine: machine}, nil
}

func (b *virtualAxisButton) inBand(v float64) bool {
	return v >= b.cfg.LowerLimit && v <= b.cfg.UpperLimit
}

func (b *virtualAxisButton) directionOK(v float64) bool {
	switch b.cfg.Direction {
	case profile.DirectionBelow:
		return v < b.last
	case profile.DirectionAbove:
		return v > b.last
	default:
		return true
	}
}

func (b *virtualAxisButton) process(value event.Value) ([]bool, error) {
	v := value.Axis

	// The first sample only seeds state; an axis already resting inside
	// the band must not fire a press on activation.
	if !b.seeded {
		b.seeded = true
		b.last = v
		if b.inBand(v) {
			if _, err := b.machine.Perform("press"); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	var edges []bool
	switch b.machine.Current() {
	case vbUp:
		switch {
		case b.inBand(v) && b.directionOK(v):
			if _, err := b.machine.Perform("press"); err != nil {
				return nil, err
			}
			edges = append(edges, true)
		case b.jumpedAcross(v):
			// Crossed the whole band between two samples: the press and
			// release both happened, deliver them as a pulse. The direction
			// gate applies only to samples measured inside the band.
			edges = append(edges, true, false)
		}
	case vbDown:
		if !b.inBand(v) {
			if _, err := b.machine.Perform("release"); err != nil {
				return nil, err
			}
			edges = append(edges, false)
		}
	}

	b.last = v
	return edges, nil
}

func (b *virtualAxisButton) jumpedAcross(v float64) bool {
	return (b.last < b.cfg.LowerLimit && v > b.cfg.UpperLimit) ||
		(b.last > b.cfg.UpperLimit && v < b.cfg.LowerLimit)
}

// virtualHatButton presses while the hat direction is a member of the
// configured set. Emits only on membership changes.
type virtualHatButton struct {
	directions map[event.HatDirection]struct{}
	machine    *fsm.Machine
}

func newVirtualHatButton(cfg profile.VirtualHatButton) (*virtualHatButton, error) {
	machine, err := newVirtualMachine()
	if err != nil {
		return nil, err
	}
	directions := make(map[event.HatDirection]struct{}, len(cfg.Directions))
	for _, d := range cfg.Directions {
		directions[d] = struct{}{}
	}
	return &virtualHatButton{directions: directions, machine: machine}, nil
}

func (b *virtualHatButton) process(value event.Value) ([]bool, error) {
	_, member := b.directions[value.Hat]

	switch {
	case member && b.machine.Current() == vbUp:
		if _, err := b.machine.Perform("press"); err != nil {
			return nil, err
		}
		return []bool{true}, nil
	case !member && b.machine.Current() == vbDown:
		if _, err := b.machine.Perform("release"); err != nil {
			return nil, err
		}
		return []bool{false}, nil
	default:
		return nil, nil
	}
}

func newVirtualButton(cfg *profile.VirtualButton) (virtualButton, error) {
	switch {
	case cfg.Axis != nil:
		return newVirtualAxisButton(*cfg.Axis)
	case cfg.Hat != nil:
		return newVirtualHatButton(*cfg.Hat)
	default:
		return nil, ErrBadVirtualButton
	}
}
