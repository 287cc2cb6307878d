package runtime

import (
	"testing"

	"github.com/google/uuid"

	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/profile"
)

func buttonID(dev uuid.UUID, input int) event.ID {
	return event.ID{Type: event.TypeButton, Device: dev, Input: input}
}

func TestRegistryLookupOrder(t *testing.T) {
	r := NewCallbackRegistry()
	dev := uuid.New()
	id := buttonID(dev, 1)

	var order []string
	r.Register(id, "Default", Callback{Fn: func(*event.Event) error { order = append(order, "first"); return nil }})
	r.Register(id, "Default", Callback{Fn: func(*event.Event) error { order = append(order, "second"); return nil }})

	for _, cb := range r.Lookup(id, "Default") {
		_ = cb.Fn(nil)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("order = %v", order)
	}
}

func TestRegistryModeInheritance(t *testing.T) {
	r := NewCallbackRegistry()
	r.SetModeHierarchy([]profile.ModeDef{
		{Name: "Default"},
		{Name: "Combat", Parent: "Default"},
		{Name: "Gunnery", Parent: "Combat"},
	})

	dev := uuid.New()
	inherited := buttonID(dev, 1)
	overridden := buttonID(dev, 2)

	r.Register(inherited, "Default", Callback{})
	r.Register(overridden, "Default", Callback{})
	r.Register(overridden, "Combat", Callback{})

	// An input the child does not bind falls through to the ancestor.
	if got := r.Lookup(inherited, "Gunnery"); len(got) != 1 {
		t.Errorf("inherited lookup = %d callbacks, want 1", len(got))
	}
	// A bound input shadows the ancestor's bindings entirely.
	if got := r.Lookup(overridden, "Gunnery"); len(got) != 1 {
		t.Errorf("overridden lookup = %d callbacks, want 1", len(got))
	}
	if got := r.Lookup(buttonID(dev, 3), "Gunnery"); got != nil {
		t.Errorf("unbound lookup = %v, want nil", got)
	}
}

func TestRegistryHierarchyCycleTerminates(t *testing.T) {
	r := NewCallbackRegistry()
	r.SetModeHierarchy([]profile.ModeDef{
		{Name: "A", Parent: "B"},
		{Name: "B", Parent: "A"},
	})
	if got := r.Lookup(buttonID(uuid.New(), 1), "A"); got != nil {
		t.Errorf("lookup = %v, want nil", got)
	}
}

func TestRegistryReset(t *testing.T) {
	r := NewCallbackRegistry()
	dev := uuid.New()
	id := buttonID(dev, 1)
	r.Register(id, "Default", Callback{})

	r.Reset()
	if got := r.Lookup(id, "Default"); got != nil {
		t.Errorf("lookup after reset = %v, want nil", got)
	}
}
