package runtime

import (
	"reflect"
	"testing"

	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/profile"
)

func axisEdges(t *testing.T, b virtualButton, v float64) []bool {
	t.Helper()
	edges, err := b.process(event.NewAxisValue(v))
	if err != nil {
		t.Fatalf("process(%v) error = %v", v, err)
	}
	return edges
}

func TestVirtualAxisButtonPressRelease(t *testing.T) {
	b, err := newVirtualAxisButton(profile.VirtualAxisButton{LowerLimit: 0.4, UpperLimit: 0.6})
	if err != nil {
		t.Fatal(err)
	}

	if edges := axisEdges(t, b, 0); edges != nil {
		t.Fatalf("seed sample edges = %v, want none", edges)
	}
	if edges := axisEdges(t, b, 0.5); !reflect.DeepEqual(edges, []bool{true}) {
		t.Fatalf("entering band edges = %v, want [true]", edges)
	}
	// Staying inside the band emits nothing.
	if edges := axisEdges(t, b, 0.55); edges != nil {
		t.Fatalf("inside band edges = %v, want none", edges)
	}
	if edges := axisEdges(t, b, 0.9); !reflect.DeepEqual(edges, []bool{false}) {
		t.Fatalf("leaving band edges = %v, want [false]", edges)
	}
}

func TestVirtualAxisButtonJumpAcrossBand(t *testing.T) {
	b, err := newVirtualAxisButton(profile.VirtualAxisButton{LowerLimit: 0.4, UpperLimit: 0.6})
	if err != nil {
		t.Fatal(err)
	}

	axisEdges(t, b, 0.1)
	// The value crosses the whole band between two samples: a full
	// press+release pulse even though no sample measured inside it.
	if edges := axisEdges(t, b, 0.9); !reflect.DeepEqual(edges, []bool{true, false}) {
		t.Fatalf("jump edges = %v, want [true false]", edges)
	}
	// And back again.
	if edges := axisEdges(t, b, 0.1); !reflect.DeepEqual(edges, []bool{true, false}) {
		t.Fatalf("reverse jump edges = %v, want [true false]", edges)
	}
}

func TestVirtualAxisButtonJumpBypassesDirectionGate(t *testing.T) {
	b, err := newVirtualAxisButton(profile.VirtualAxisButton{
		LowerLimit: 0.4,
		UpperLimit: 0.6,
		Direction:  profile.DirectionAbove,
	})
	if err != nil {
		t.Fatal(err)
	}

	// A downward jump across the whole band still pulses: the direction
	// gate restricts only samples measured inside the band.
	axisEdges(t, b, 0.9)
	if edges := axisEdges(t, b, 0.1); !reflect.DeepEqual(edges, []bool{true, false}) {
		t.Fatalf("downward jump edges = %v, want [true false]", edges)
	}
}

func TestVirtualAxisButtonSeedInsideBand(t *testing.T) {
	b, err := newVirtualAxisButton(profile.VirtualAxisButton{LowerLimit: 0.4, UpperLimit: 0.6})
	if err != nil {
		t.Fatal(err)
	}

	// An axis resting inside the band at activation seeds the pressed
	// state without firing.
	if edges := axisEdges(t, b, 0.5); edges != nil {
		t.Fatalf("seed edges = %v, want none", edges)
	}
	if edges := axisEdges(t, b, 0.9); !reflect.DeepEqual(edges, []bool{false}) {
		t.Fatalf("leaving edges = %v, want [false]", edges)
	}
}

func TestVirtualAxisButtonDirectionGate(t *testing.T) {
	b, err := newVirtualAxisButton(profile.VirtualAxisButton{
		LowerLimit: 0.4,
		UpperLimit: 0.6,
		Direction:  profile.DirectionAbove,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Entering the band from above moves downward; the gate rejects it.
	axisEdges(t, b, 0.9)
	if edges := axisEdges(t, b, 0.5); edges != nil {
		t.Fatalf("downward entry edges = %v, want none", edges)
	}
	// Falling below and rising back in passes.
	axisEdges(t, b, 0.1)
	if edges := axisEdges(t, b, 0.5); !reflect.DeepEqual(edges, []bool{true}) {
		t.Fatalf("upward entry edges = %v, want [true]", edges)
	}
}

func TestVirtualHatButton(t *testing.T) {
	b, err := newVirtualHatButton(profile.VirtualHatButton{
		Directions: []event.HatDirection{event.HatNorth, event.HatNorthEast},
	})
	if err != nil {
		t.Fatal(err)
	}

	edges, _ := b.process(event.NewHatValue(event.HatNorth))
	if !reflect.DeepEqual(edges, []bool{true}) {
		t.Fatalf("entering set edges = %v, want [true]", edges)
	}
	// Moving within the set emits nothing.
	edges, _ = b.process(event.NewHatValue(event.HatNorthEast))
	if edges != nil {
		t.Fatalf("within set edges = %v, want none", edges)
	}
	edges, _ = b.process(event.NewHatValue(event.HatCenter))
	if !reflect.DeepEqual(edges, []bool{false}) {
		t.Fatalf("leaving set edges = %v, want [false]", edges)
	}
}

func TestNewVirtualButtonRequiresForm(t *testing.T) {
	if _, err := newVirtualButton(&profile.VirtualButton{}); err == nil {
		t.Error("expected error for empty virtual button config")
	}
}
