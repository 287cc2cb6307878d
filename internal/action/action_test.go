package action

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/OttScott/joygremlin/internal/event"
	"github.com/OttScott/joygremlin/internal/profile"
)

// recordConfig builds a recorder leaf so tests can observe exactly what
// a container forwards to its children.
type recordConfig struct {
	name string
	log  *[]string
}

func (recordConfig) Tag() string { return "record" }

type recorder struct {
	name string
	log  *[]string
}

func (r *recorder) Process(evt *event.Event, value *event.Value) error {
	switch {
	case value.IsButton():
		edge := "release"
		if value.Pressed {
			edge = "press"
		}
		*r.log = append(*r.log, r.name+":"+edge)
	case value.Kind == event.TypeAxis:
		*r.log = append(*r.log, fmt.Sprintf("%s:%.2f", r.name, value.Axis))
	default:
		*r.log = append(*r.log, r.name+":"+value.Hat.String())
	}
	return nil
}

func init() {
	Register("record", func(cfg profile.ActionConfig, svc *Services) (Functor, error) {
		c := cfg.(recordConfig)
		return &recorder{name: c.name, log: c.log}, nil
	})
}

func record(name string, log *[]string) profile.ActionConfig {
	return recordConfig{name: name, log: log}
}

func drive(t *testing.T, f Functor, dev uuid.UUID, pressed bool) {
	t.Helper()
	evt := event.NewButton(dev, 1, pressed)
	value := evt.Value()
	if err := f.Process(evt, &value); err != nil {
		t.Fatalf("Process(pressed=%v) error = %v", pressed, err)
	}
}

func TestTempoShortOnQuickRelease(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.TempoConfig{
		Threshold: 500 * time.Millisecond,
		Short:     []profile.ActionConfig{record("short", &log)},
		Long:      []profile.ActionConfig{record("long", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}

	dev := uuid.New()
	drive(t, f, dev, true)
	mock.Add(200 * time.Millisecond)
	drive(t, f, dev, false)
	mock.Add(time.Second)

	want := []string{"short:press", "short:release"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestTempoLongOnHeldPress(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.TempoConfig{
		Threshold: 500 * time.Millisecond,
		Short:     []profile.ActionConfig{record("short", &log)},
		Long:      []profile.ActionConfig{record("long", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}

	dev := uuid.New()
	drive(t, f, dev, true)
	mock.Add(600 * time.Millisecond)

	if want := []string{"long:press"}; !reflect.DeepEqual(log, want) {
		t.Fatalf("log after threshold = %v, want %v", log, want)
	}

	drive(t, f, dev, false)
	want := []string{"long:press", "long:release"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestTempoActivateOnPress(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.TempoConfig{
		Threshold:  500 * time.Millisecond,
		ActivateOn: profile.ActivateOnPress,
		Short:      []profile.ActionConfig{record("short", &log)},
		Long:       []profile.ActionConfig{record("long", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}

	dev := uuid.New()
	drive(t, f, dev, true)
	if want := []string{"short:press"}; !reflect.DeepEqual(log, want) {
		t.Fatalf("log on press = %v, want %v", log, want)
	}

	// Held past the threshold: the short press is withdrawn and the long
	// branch takes over.
	mock.Add(600 * time.Millisecond)
	drive(t, f, dev, false)

	want := []string{"short:press", "short:release", "long:press", "long:release"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestTempoRepeatGestures(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.TempoConfig{
		Threshold: 500 * time.Millisecond,
		Short:     []profile.ActionConfig{record("short", &log)},
		Long:      []profile.ActionConfig{record("long", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}

	// A quick tap followed by a long hold; the first gesture's timer must
	// not leak into the second.
	dev := uuid.New()
	drive(t, f, dev, true)
	mock.Add(100 * time.Millisecond)
	drive(t, f, dev, false)

	mock.Add(100 * time.Millisecond)
	drive(t, f, dev, true)
	mock.Add(600 * time.Millisecond)
	drive(t, f, dev, false)

	want := []string{"short:press", "short:release", "long:press", "long:release"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestDoubleTapExclusive(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.DoubleTapConfig{
		Threshold: 300 * time.Millisecond,
		Exclusive: true,
		Single:    []profile.ActionConfig{record("single", &log)},
		Double:    []profile.ActionConfig{record("double", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	dev := uuid.New()

	// Two taps inside the window: double fires exactly once, single never.
	drive(t, f, dev, true)
	drive(t, f, dev, false)
	mock.Add(100 * time.Millisecond)
	drive(t, f, dev, true)
	drive(t, f, dev, false)
	mock.Add(time.Second)

	want := []string{"double:press", "double:release"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestDoubleTapExclusiveSingle(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.DoubleTapConfig{
		Threshold: 300 * time.Millisecond,
		Exclusive: true,
		Single:    []profile.ActionConfig{record("single", &log)},
		Double:    []profile.ActionConfig{record("double", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	dev := uuid.New()

	// One tap, then the window expires: single fires once as a full
	// press+release pulse.
	drive(t, f, dev, true)
	drive(t, f, dev, false)
	mock.Add(time.Second)

	want := []string{"single:press", "single:release"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestDoubleTapExclusiveHeld(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.DoubleTapConfig{
		Threshold: 300 * time.Millisecond,
		Exclusive: true,
		Single:    []profile.ActionConfig{record("single", &log)},
		Double:    []profile.ActionConfig{record("double", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	dev := uuid.New()

	// Held past the window: the single press goes out at expiry and its
	// release follows the physical release.
	drive(t, f, dev, true)
	mock.Add(time.Second)
	drive(t, f, dev, false)

	want := []string{"single:press", "single:release"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestDoubleTapCombined(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.DoubleTapConfig{
		Threshold: 300 * time.Millisecond,
		Single:    []profile.ActionConfig{record("single", &log)},
		Double:    []profile.ActionConfig{record("double", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	dev := uuid.New()

	// Combined: single fires on the first press, double joins on the
	// second.
	drive(t, f, dev, true)
	drive(t, f, dev, false)
	drive(t, f, dev, true)
	drive(t, f, dev, false)
	mock.Add(time.Second)

	want := []string{"single:press", "double:press", "single:release", "double:release"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestSmartToggleMomentary(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.SmartToggleConfig{
		Threshold: 400 * time.Millisecond,
		Children:  []profile.ActionConfig{record("out", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	dev := uuid.New()

	drive(t, f, dev, true)
	mock.Add(100 * time.Millisecond)
	drive(t, f, dev, false)

	want := []string{"out:press", "out:release"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestSmartToggleLatches(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.SmartToggleConfig{
		Threshold: 400 * time.Millisecond,
		Children:  []profile.ActionConfig{record("out", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	dev := uuid.New()

	// Hold past the threshold, then release: the children stay pressed.
	drive(t, f, dev, true)
	mock.Add(500 * time.Millisecond)
	drive(t, f, dev, false)

	if want := []string{"out:press"}; !reflect.DeepEqual(log, want) {
		t.Fatalf("log after latch = %v, want %v", log, want)
	}

	// A later press+release turns it off.
	drive(t, f, dev, true)
	drive(t, f, dev, false)

	want := []string{"out:press", "out:release"}
	if !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
}

func TestGestureToleratesRepeatedEdges(t *testing.T) {
	// A release lost to a mid-press mode switch makes the next event a
	// second press edge; the machines absorb it instead of erroring.
	t.Run("tempo", func(t *testing.T) {
		mock := clock.NewMock()
		var log []string
		f, err := Build(profile.TempoConfig{
			Threshold: 500 * time.Millisecond,
			Short:     []profile.ActionConfig{record("short", &log)},
			Long:      []profile.ActionConfig{record("long", &log)},
		}, &Services{Clock: mock})
		if err != nil {
			t.Fatalf("Build error = %v", err)
		}

		dev := uuid.New()
		drive(t, f, dev, true)
		drive(t, f, dev, true)
		mock.Add(600 * time.Millisecond)
		drive(t, f, dev, false)

		want := []string{"long:press", "long:release"}
		if !reflect.DeepEqual(log, want) {
			t.Errorf("log = %v, want %v", log, want)
		}
	})

	t.Run("double tap", func(t *testing.T) {
		mock := clock.NewMock()
		var log []string
		f, err := Build(profile.DoubleTapConfig{
			Threshold: 300 * time.Millisecond,
			Exclusive: true,
			Single:    []profile.ActionConfig{record("single", &log)},
			Double:    []profile.ActionConfig{record("double", &log)},
		}, &Services{Clock: mock})
		if err != nil {
			t.Fatalf("Build error = %v", err)
		}

		dev := uuid.New()
		drive(t, f, dev, true)
		drive(t, f, dev, true)
		drive(t, f, dev, false)
		drive(t, f, dev, false)
		mock.Add(time.Second)

		want := []string{"single:press", "single:release"}
		if !reflect.DeepEqual(log, want) {
			t.Errorf("log = %v, want %v", log, want)
		}
	})

	t.Run("smart toggle", func(t *testing.T) {
		mock := clock.NewMock()
		var log []string
		f, err := Build(profile.SmartToggleConfig{
			Threshold: 400 * time.Millisecond,
			Children:  []profile.ActionConfig{record("out", &log)},
		}, &Services{Clock: mock})
		if err != nil {
			t.Fatalf("Build error = %v", err)
		}

		dev := uuid.New()
		drive(t, f, dev, true)
		mock.Add(500 * time.Millisecond)
		drive(t, f, dev, true)
		drive(t, f, dev, false)

		if want := []string{"out:press"}; !reflect.DeepEqual(log, want) {
			t.Errorf("log = %v, want %v", log, want)
		}
	})
}

func TestBuildUnknownTag(t *testing.T) {
	_, err := Build(fakeConfig{}, &Services{})
	if !errors.Is(err, ErrUnknownTag) {
		t.Errorf("Build error = %v, want ErrUnknownTag", err)
	}
}

type fakeConfig struct{}

func (fakeConfig) Tag() string { return "no-such-action" }

func TestGestureDropsAxisValue(t *testing.T) {
	mock := clock.NewMock()
	var log []string
	svc := &Services{Clock: mock}

	f, err := Build(profile.TempoConfig{
		Threshold: 500 * time.Millisecond,
		Short:     []profile.ActionConfig{record("short", &log)},
	}, svc)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}

	evt := event.NewAxis(uuid.New(), 1, 0.7)
	value := evt.Value()
	if err := f.Process(evt, &value); err != nil {
		t.Fatalf("Process error = %v", err)
	}
	if len(log) != 0 {
		t.Errorf("axis value must be dropped, log = %v", log)
	}
}
