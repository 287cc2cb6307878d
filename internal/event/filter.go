package event

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Axis samples closer than this to the last significant sample are noise.
const significantAxisDelta = 0.33

// A tracked axis sample is forgotten after this long, so the first event
// of a fresh interaction is always measured against a clean slate.
const axisSampleTTL = 5 * time.Second

// Significance decides whether an input change is worth surfacing to
// observers (input highlighting and similar presentation concerns). It
// never gates action dispatch.
//
// Buttons are significant when pressed, hats when leaving center. An
// axis sample is significant when it moved at least significantAxisDelta
// away from the last significant sample; the comparison sample expires
// after axisSampleTTL.
type Significance struct {
	mu    sync.Mutex
	clock clock.Clock
	last  map[ID]axisSample
}

type axisSample struct {
	value float64
	seen  time.Time
}

// NewSignificance creates a significance filter using the given clock.
func NewSignificance(clk clock.Clock) *Significance {
	if clk == nil {
		clk = clock.New()
	}
	return &Significance{
		clock: clk,
		last:  make(map[ID]axisSample),
	}
}

// Significant reports whether the event represents a deliberate input
// change.
func (s *Significance) Significant(e *Event) bool {
	switch e.Type {
	case TypeAxis:
		return s.significantAxis(e)
	case TypeHat:
		return e.Direction != HatCenter
	default:
		return e.Pressed
	}
}

func (s *Significance) significantAxis(e *Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	id := e.ID()

	sample, ok := s.last[id]
	if ok && now.Sub(sample.seen) > axisSampleTTL {
		ok = false
	}
	if !ok {
		s.last[id] = axisSample{value: e.RawValue, seen: now}
		return false
	}

	delta := e.RawValue - sample.value
	if delta < 0 {
		delta = -delta
	}
	if delta >= significantAxisDelta {
		s.last[id] = axisSample{value: e.RawValue, seen: now}
		return true
	}
	return false
}

// Reset clears all tracked samples.
func (s *Significance) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = make(map[ID]axisSample)
}
