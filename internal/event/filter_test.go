package event

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

func TestSignificanceButtonsAndHats(t *testing.T) {
	s := NewSignificance(clock.NewMock())
	dev := uuid.New()

	if !s.Significant(NewButton(dev, 1, true)) {
		t.Error("button press should be significant")
	}
	if s.Significant(NewButton(dev, 1, false)) {
		t.Error("button release should not be significant")
	}
	if !s.Significant(NewHat(dev, 1, HatEast)) {
		t.Error("hat leaving center should be significant")
	}
	if s.Significant(NewHat(dev, 1, HatCenter)) {
		t.Error("hat returning to center should not be significant")
	}
}

func TestSignificanceAxisDelta(t *testing.T) {
	s := NewSignificance(clock.NewMock())
	dev := uuid.New()

	// First sample only seeds the baseline.
	if s.Significant(NewAxis(dev, 1, 0.0)) {
		t.Error("first axis sample should not be significant")
	}
	// Small wiggle around the baseline.
	if s.Significant(NewAxis(dev, 1, 0.2)) {
		t.Error("delta below threshold should not be significant")
	}
	// Large move away from the baseline.
	if !s.Significant(NewAxis(dev, 1, 0.4)) {
		t.Error("delta of 0.4 should be significant")
	}
	// The baseline moved to 0.4; another small move is noise again.
	if s.Significant(NewAxis(dev, 1, 0.5)) {
		t.Error("delta of 0.1 from new baseline should not be significant")
	}
}

func TestSignificanceAxisStaleness(t *testing.T) {
	clk := clock.NewMock()
	s := NewSignificance(clk)
	dev := uuid.New()

	if s.Significant(NewAxis(dev, 1, 0.0)) {
		t.Error("first sample should seed only")
	}

	// After the sample expires, even a big move only reseeds.
	clk.Add(6 * time.Second)
	if s.Significant(NewAxis(dev, 1, 0.9)) {
		t.Error("sample after expiry should reseed, not trigger")
	}
	if !s.Significant(NewAxis(dev, 1, 0.0)) {
		t.Error("move from reseeded baseline should be significant")
	}
}

func TestSignificanceReset(t *testing.T) {
	s := NewSignificance(clock.NewMock())
	dev := uuid.New()

	_ = s.Significant(NewAxis(dev, 1, 0.0))
	if !s.Significant(NewAxis(dev, 1, 1.0)) {
		t.Fatal("expected significant move")
	}

	s.Reset()
	if s.Significant(NewAxis(dev, 1, 0.0)) {
		t.Error("first sample after Reset should only seed")
	}
}

func TestSignificanceTracksInputsIndependently(t *testing.T) {
	s := NewSignificance(clock.NewMock())
	dev := uuid.New()

	_ = s.Significant(NewAxis(dev, 1, 0.0))
	_ = s.Significant(NewAxis(dev, 2, 0.0))

	if !s.Significant(NewAxis(dev, 1, 1.0)) {
		t.Error("axis 1 move should be significant")
	}
	if s.Significant(NewAxis(dev, 2, 0.1)) {
		t.Error("axis 2 wiggle should not be significant")
	}
}
