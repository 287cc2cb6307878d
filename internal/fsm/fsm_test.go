package fsm

import (
	"errors"
	"testing"
)

func newTestMachine(t *testing.T, log *[]string) *Machine {
	t.Helper()

	record := func(name string) Callback {
		return func(args ...any) any {
			*log = append(*log, name)
			return name
		}
	}

	m, err := New(
		"wait",
		[]State{"wait", "down"},
		[]Action{"press", "release", "timeout"},
		map[Key]Transition{
			{State: "wait", Action: "press"}:   {Callbacks: []Callback{record("a"), record("b")}, Next: "down"},
			{State: "down", Action: "release"}: {Callbacks: []Callback{record("c")}, Next: "wait"},
			{State: "down", Action: "timeout"}: {Next: "down"},
		},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m
}

func TestMachinePerform(t *testing.T) {
	var log []string
	m := newTestMachine(t, &log)

	results, err := m.Perform("press")
	if err != nil {
		t.Fatalf("Perform(press) error = %v", err)
	}
	if len(results) != 2 || results[0] != "a" || results[1] != "b" {
		t.Errorf("Perform(press) results = %v, want [a b]", results)
	}
	if got := m.Current(); got != "down" {
		t.Errorf("Current() = %q, want down", got)
	}
	if len(log) != 2 || log[0] != "a" || log[1] != "b" {
		t.Errorf("callback order = %v, want [a b]", log)
	}

	if _, err := m.Perform("release"); err != nil {
		t.Fatalf("Perform(release) error = %v", err)
	}
	if got := m.Current(); got != "wait" {
		t.Errorf("Current() after release = %q, want wait", got)
	}
}

func TestMachinePerformArgsForwarded(t *testing.T) {
	var got []any
	m, err := New(
		"s",
		[]State{"s"},
		[]Action{"go"},
		map[Key]Transition{
			{State: "s", Action: "go"}: {
				Callbacks: []Callback{func(args ...any) any {
					got = append(got, args...)
					return nil
				}},
				Next: "s",
			},
		},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := m.Perform("go", 1, "two"); err != nil {
		t.Fatalf("Perform() error = %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != "two" {
		t.Errorf("forwarded args = %v, want [1 two]", got)
	}
}

func TestMachinePerformInvalidAction(t *testing.T) {
	var log []string
	m := newTestMachine(t, &log)

	_, err := m.Perform("explode")
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Perform(explode) error = %v, want ErrInvalidAction", err)
	}
	if got := m.Current(); got != "wait" {
		t.Errorf("Current() after invalid action = %q, want wait", got)
	}
}

func TestMachinePerformMissingTransition(t *testing.T) {
	var log []string
	m := newTestMachine(t, &log)

	// "release" is declared but has no entry for state "wait".
	_, err := m.Perform("release")
	if !errors.Is(err, ErrMissingTransition) {
		t.Errorf("Perform(release) in wait error = %v, want ErrMissingTransition", err)
	}
	if len(log) != 0 {
		t.Errorf("callbacks ran on missing transition: %v", log)
	}
}

func TestMachineNoOpTransition(t *testing.T) {
	var log []string
	m := newTestMachine(t, &log)

	if _, err := m.Perform("press"); err != nil {
		t.Fatalf("Perform(press) error = %v", err)
	}

	// A stale timeout lands on an entry with no callbacks.
	results, err := m.Perform("timeout")
	if err != nil {
		t.Fatalf("Perform(timeout) error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("no-op transition results = %v, want empty", results)
	}
	if got := m.Current(); got != "down" {
		t.Errorf("Current() = %q, want down", got)
	}
}

func TestMachineReset(t *testing.T) {
	var log []string
	m := newTestMachine(t, &log)

	if _, err := m.Perform("press"); err != nil {
		t.Fatalf("Perform(press) error = %v", err)
	}
	m.Reset()
	if got := m.Current(); got != "wait" {
		t.Errorf("Current() after Reset = %q, want wait", got)
	}
}

func TestNewValidatesTable(t *testing.T) {
	tests := []struct {
		name    string
		start   State
		table   map[Key]Transition
		wantErr error
	}{
		{
			name:    "undeclared start",
			start:   "nope",
			table:   nil,
			wantErr: ErrUndeclaredState,
		},
		{
			name:  "undeclared table state",
			start: "s",
			table: map[Key]Transition{
				{State: "ghost", Action: "go"}: {Next: "s"},
			},
			wantErr: ErrUndeclaredState,
		},
		{
			name:  "undeclared table action",
			start: "s",
			table: map[Key]Transition{
				{State: "s", Action: "ghost"}: {Next: "s"},
			},
			wantErr: ErrUndeclaredAction,
		},
		{
			name:  "undeclared target",
			start: "s",
			table: map[Key]Transition{
				{State: "s", Action: "go"}: {Next: "ghost"},
			},
			wantErr: ErrUndeclaredState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.start, []State{"s"}, []Action{"go"}, tt.table)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
