package device

import (
	"errors"
	"testing"

	"github.com/benbjohnson/clock"

	"github.com/OttScott/joygremlin/internal/event"
)

func TestCreateAssignsLowestFreeID(t *testing.T) {
	d := NewLogicalDevice(clock.NewMock())

	a, err := d.Create(Button, 0, "a")
	if err != nil {
		t.Fatalf("Create(a) error = %v", err)
	}
	b, _ := d.Create(Button, 0, "b")
	c, _ := d.Create(Button, 0, "c")

	if a.ID() != 1 || b.ID() != 2 || c.ID() != 3 {
		t.Fatalf("ids = %d,%d,%d, want 1,2,3", a.ID(), b.ID(), c.ID())
	}

	if err := d.Delete(ByLabel("b")); err != nil {
		t.Fatalf("Delete(b) error = %v", err)
	}

	created, err := d.Create(Button, 0, "d")
	if err != nil {
		t.Fatalf("Create(d) error = %v", err)
	}
	if created.ID() != 2 {
		t.Errorf("Create after Delete id = %d, want lowest freed id 2", created.ID())
	}
}

func TestCreateExplicitIDInUse(t *testing.T) {
	d := NewLogicalDevice(clock.NewMock())

	_, _ = d.Create(Axis, 1, "x")
	in, err := d.Create(Axis, 1, "y")
	if err != nil {
		t.Fatalf("Create(y) error = %v", err)
	}
	if in.ID() != 2 {
		t.Errorf("conflicting explicit id assigned %d, want 2", in.ID())
	}
}

func TestCreateDuplicateLabel(t *testing.T) {
	d := NewLogicalDevice(clock.NewMock())

	if _, err := d.Create(Button, 0, "fire"); err != nil {
		t.Fatalf("Create error = %v", err)
	}
	_, err := d.Create(Axis, 0, "fire")
	if !errors.Is(err, ErrDuplicateLabel) {
		t.Errorf("second Create with same label error = %v, want ErrDuplicateLabel", err)
	}
}

func TestCreateGeneratedLabel(t *testing.T) {
	d := NewLogicalDevice(clock.NewMock())

	in, err := d.Create(Axis, 0, "")
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if in.Label() != "axis 1" {
		t.Errorf("generated label = %q, want %q", in.Label(), "axis 1")
	}

	// Occupy the next generated name, then force a collision.
	if _, err := d.Create(Axis, 0, "axis 2"); err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if err := d.Delete(ByLabel("axis 2")); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, err := d.Create(Hat, 0, "axis 2"); err != nil {
		t.Fatalf("Create error = %v", err)
	}
	in, err = d.Create(Axis, 0, "")
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if in.Label() == "axis 2" {
		t.Error("generated label should have been suffixed on collision")
	}
}

func TestGetByIDAndLabel(t *testing.T) {
	d := NewLogicalDevice(clock.NewMock())
	created, _ := d.Create(Hat, 0, "pov")

	byID, err := d.Get(ByID(Hat, created.ID()))
	if err != nil {
		t.Fatalf("Get(ByID) error = %v", err)
	}
	byLabel, err := d.Get(ByLabel("pov"))
	if err != nil {
		t.Fatalf("Get(ByLabel) error = %v", err)
	}
	if byID != byLabel {
		t.Error("Get by id and label should resolve to the same input")
	}

	if _, err := d.Get(ByID(Hat, 99)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing id) error = %v, want ErrNotFound", err)
	}
	if _, err := d.Get(ByLabel("ghost")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing label) error = %v, want ErrNotFound", err)
	}
}

func TestSetLabel(t *testing.T) {
	d := NewLogicalDevice(clock.NewMock())
	_, _ = d.Create(Button, 0, "old")
	_, _ = d.Create(Button, 0, "taken")

	if err := d.SetLabel("old", "new"); err != nil {
		t.Fatalf("SetLabel error = %v", err)
	}
	if _, err := d.Get(ByLabel("new")); err != nil {
		t.Errorf("Get(new) after rename error = %v", err)
	}
	if _, err := d.Get(ByLabel("old")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(old) after rename error = %v, want ErrNotFound", err)
	}

	if err := d.SetLabel("ghost", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetLabel(missing) error = %v, want ErrNotFound", err)
	}
	if err := d.SetLabel("new", "taken"); !errors.Is(err, ErrLabelInUse) {
		t.Errorf("SetLabel(to taken) error = %v, want ErrLabelInUse", err)
	}
}

func TestUpdateAndProjections(t *testing.T) {
	d := NewLogicalDevice(clock.NewMock())
	_, _ = d.Create(Axis, 0, "throttle")
	_, _ = d.Create(Button, 0, "fire")
	_, _ = d.Create(Hat, 0, "pov")

	if err := d.Update(ByLabel("throttle"), event.NewAxisValue(-0.5)); err != nil {
		t.Fatalf("Update(axis) error = %v", err)
	}
	if err := d.Update(ByLabel("fire"), event.NewButtonValue(true)); err != nil {
		t.Fatalf("Update(button) error = %v", err)
	}
	if err := d.Update(ByLabel("pov"), event.NewHatValue(event.HatSouth)); err != nil {
		t.Fatalf("Update(hat) error = %v", err)
	}

	axis, _ := d.Get(ByLabel("throttle"))
	if got := axis.(*AxisInput).Value(); got != -0.5 {
		t.Errorf("axis value = %v, want -0.5", got)
	}
	button, _ := d.Get(ByLabel("fire"))
	if !button.(*ButtonInput).IsPressed() {
		t.Error("button should be pressed")
	}
	hat, _ := d.Get(ByLabel("pov"))
	if got := hat.(*HatInput).Direction(); got != event.HatSouth {
		t.Errorf("hat direction = %v, want south", got)
	}
}

func TestInputsOfTypeOrdering(t *testing.T) {
	d := NewLogicalDevice(clock.NewMock())
	_, _ = d.Create(Hat, 0, "zz")
	_, _ = d.Create(Axis, 0, "bb")
	_, _ = d.Create(Axis, 0, "aa")
	_, _ = d.Create(Button, 0, "mm")

	all := d.InputsOfType()
	want := []string{"aa", "bb", "mm", "zz"}
	if len(all) != len(want) {
		t.Fatalf("InputsOfType() returned %d inputs, want %d", len(all), len(want))
	}
	for i, label := range want {
		if all[i].Label() != label {
			t.Errorf("InputsOfType()[%d] = %q, want %q", i, all[i].Label(), label)
		}
	}

	axes := d.InputsOfType(Axis)
	if len(axes) != 2 || axes[0].Label() != "aa" || axes[1].Label() != "bb" {
		t.Errorf("InputsOfType(Axis) = %v", axes)
	}
}

func TestOnChange(t *testing.T) {
	d := NewLogicalDevice(clock.NewMock())

	var seen []string
	cancel := d.OnChange(func(in Input) {
		seen = append(seen, in.Label())
	})

	_, _ = d.Create(Button, 0, "fire")
	_ = d.Update(ByLabel("fire"), event.NewButtonValue(true))

	if len(seen) != 2 {
		t.Fatalf("OnChange saw %d notifications, want 2", len(seen))
	}

	cancel()
	_ = d.Update(ByLabel("fire"), event.NewButtonValue(false))
	if len(seen) != 2 {
		t.Error("OnChange should not fire after unregister")
	}
}

func TestReset(t *testing.T) {
	d := NewLogicalDevice(clock.NewMock())
	_, _ = d.Create(Button, 0, "fire")

	d.Reset()
	if _, err := d.Get(ByLabel("fire")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Reset error = %v, want ErrNotFound", err)
	}
	in, _ := d.Create(Button, 0, "fire")
	if in.ID() != 1 {
		t.Errorf("id after Reset = %d, want 1", in.ID())
	}
}
