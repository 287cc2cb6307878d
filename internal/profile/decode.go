package profile

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/OttScott/joygremlin/internal/device"
	"github.com/OttScott/joygremlin/internal/event"
)

// Parse decodes a JSON profile document into the binding tree.
func Parse(data []byte) (*Profile, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidProfile
	}
	doc := gjson.ParseBytes(data)

	p := &Profile{StartMode: doc.Get("start_mode").String()}

	for _, m := range doc.Get("modes").Array() {
		p.Modes = append(p.Modes, ModeDef{
			Name:   m.Get("name").String(),
			Parent: m.Get("parent").String(),
		})
	}

	for i, it := range doc.Get("items").Array() {
		item, err := decodeItem(it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		p.Items = append(p.Items, item)
	}
	return p, nil
}

// ParseFile decodes the profile document at path.
func ParseFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(data)
}

func decodeItem(r gjson.Result) (InputItem, error) {
	typ, err := parseInputType(r.Get("type").String())
	if err != nil {
		return InputItem{}, err
	}

	item := InputItem{
		Type:          typ,
		Input:         int(r.Get("input").Int()),
		Mode:          r.Get("mode").String(),
		AlwaysExecute: r.Get("always_execute").Bool(),
	}

	if s := r.Get("device").String(); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return InputItem{}, fmt.Errorf("%w: bad device id %q", ErrInvalidProfile, s)
		}
		item.Device = id
	}

	if typ == event.TypeKey {
		item.Key = event.KeyID{
			ScanCode: uint16(r.Get("key.scan_code").Int()),
			Extended: r.Get("key.extended").Bool(),
		}
	}

	for i, b := range r.Get("bindings").Array() {
		binding, err := decodeBinding(b)
		if err != nil {
			return InputItem{}, fmt.Errorf("binding %d: %w", i, err)
		}
		item.Bindings = append(item.Bindings, binding)
	}
	return item, nil
}

func decodeBinding(r gjson.Result) (Binding, error) {
	b := Binding{Description: r.Get("description").String()}

	if vb := r.Get("virtual_button"); vb.Exists() {
		decoded, err := decodeVirtualButton(vb)
		if err != nil {
			return Binding{}, err
		}
		b.VirtualButton = decoded
	}

	root, err := decodeAction(r.Get("root"))
	if err != nil {
		return Binding{}, err
	}
	b.Root = root
	return b, nil
}

func decodeVirtualButton(r gjson.Result) (*VirtualButton, error) {
	switch {
	case r.Get("lower_limit").Exists() || r.Get("upper_limit").Exists():
		dir, err := parseAxisDirection(r.Get("direction").String())
		if err != nil {
			return nil, err
		}
		return &VirtualButton{Axis: &VirtualAxisButton{
			LowerLimit: r.Get("lower_limit").Float(),
			UpperLimit: r.Get("upper_limit").Float(),
			Direction:  dir,
		}}, nil
	case r.Get("directions").Exists():
		dirs, err := parseHatDirections(r.Get("directions"))
		if err != nil {
			return nil, err
		}
		return &VirtualButton{Hat: &VirtualHatButton{Directions: dirs}}, nil
	default:
		return nil, ErrBadVirtualButton
	}
}

func decodeAction(r gjson.Result) (ActionConfig, error) {
	if !r.Exists() {
		return nil, fmt.Errorf("%w: missing action node", ErrInvalidProfile)
	}
	tag := r.Get("type").String()
	switch tag {
	case TagRoot:
		children, err := decodeChildren(r.Get("children"))
		if err != nil {
			return nil, err
		}
		return RootConfig{Children: children}, nil

	case TagCondition:
		kind, err := parseConditionKind(r.Get("comparator").String())
		if err != nil {
			return nil, err
		}
		then, err := decodeChildren(r.Get("then"))
		if err != nil {
			return nil, err
		}
		els, err := decodeChildren(r.Get("else"))
		if err != nil {
			return nil, err
		}
		return ConditionConfig{
			Kind: kind,
			Low:  r.Get("low").Float(),
			High: r.Get("high").Float(),
			Then: then,
			Else: els,
		}, nil

	case TagTempo:
		short, err := decodeChildren(r.Get("short"))
		if err != nil {
			return nil, err
		}
		long, err := decodeChildren(r.Get("long"))
		if err != nil {
			return nil, err
		}
		edge := ActivateOnRelease
		if r.Get("activate_on").String() == "press" {
			edge = ActivateOnPress
		}
		return TempoConfig{
			Threshold:  millis(r.Get("threshold_ms")),
			ActivateOn: edge,
			Short:      short,
			Long:       long,
		}, nil

	case TagDoubleTap:
		single, err := decodeChildren(r.Get("single"))
		if err != nil {
			return nil, err
		}
		double, err := decodeChildren(r.Get("double"))
		if err != nil {
			return nil, err
		}
		return DoubleTapConfig{
			Threshold: millis(r.Get("threshold_ms")),
			Exclusive: r.Get("activate_on").String() != "combined",
			Single:    single,
			Double:    double,
		}, nil

	case TagSmartToggle:
		children, err := decodeChildren(r.Get("children"))
		if err != nil {
			return nil, err
		}
		return SmartToggleConfig{
			Threshold: millis(r.Get("threshold_ms")),
			Children:  children,
		}, nil

	case TagSplitAxis:
		low, err := decodeChildren(r.Get("low"))
		if err != nil {
			return nil, err
		}
		high, err := decodeChildren(r.Get("high"))
		if err != nil {
			return nil, err
		}
		return SplitAxisConfig{
			Center: r.Get("center").Float(),
			Low:    low,
			High:   high,
		}, nil

	case TagDeadzone:
		children, err := decodeChildren(r.Get("children"))
		if err != nil {
			return nil, err
		}
		return DeadzoneConfig{
			Low:        r.Get("low").Float(),
			CenterLow:  r.Get("center_low").Float(),
			CenterHigh: r.Get("center_high").Float(),
			High:       r.Get("high").Float(),
			Children:   children,
		}, nil

	case TagCurve:
		children, err := decodeChildren(r.Get("children"))
		if err != nil {
			return nil, err
		}
		cfg := CurveConfig{
			Symmetric: r.Get("symmetric").Bool(),
			Children:  children,
		}
		for _, pt := range r.Get("points").Array() {
			cfg.Points = append(cfg.Points, CurvePoint{
				X: pt.Get("x").Float(),
				Y: pt.Get("y").Float(),
			})
		}
		return cfg, nil

	case TagScript:
		children, err := decodeChildren(r.Get("children"))
		if err != nil {
			return nil, err
		}
		return ScriptConfig{
			Source:   r.Get("source").String(),
			Children: children,
		}, nil

	case TagMapToKeyboard:
		return MapToKeyboardConfig{Key: event.KeyID{
			ScanCode: uint16(r.Get("key.scan_code").Int()),
			Extended: r.Get("key.extended").Bool(),
		}}, nil

	case TagMapToMouse:
		cfg := MapToMouseConfig{
			DX:    int(r.Get("dx").Int()),
			DY:    int(r.Get("dy").Int()),
			Ticks: int(r.Get("ticks").Int()),
		}
		switch r.Get("output").String() {
		case "motion":
			cfg.Output = MouseOutputMotion
		case "wheel":
			cfg.Output = MouseOutputWheel
		default:
			cfg.Output = MouseOutputButton
			cfg.Button = parseMouseButton(r.Get("button").String())
		}
		return cfg, nil

	case TagMapToVJoy:
		typ, err := parseInputType(r.Get("axis_type").String())
		if err != nil {
			return nil, err
		}
		return MapToVJoyConfig{
			Device: int(r.Get("device").Int()),
			Type:   typ,
			Input:  int(r.Get("input").Int()),
		}, nil

	case TagMapToLogical:
		if label := r.Get("label").String(); label != "" {
			return MapToLogicalConfig{Selector: device.ByLabel(label)}, nil
		}
		typ, err := parseLogicalType(r.Get("input_type").String())
		if err != nil {
			return nil, err
		}
		return MapToLogicalConfig{Selector: device.ByID(typ, int(r.Get("input").Int()))}, nil

	case TagHatButtons:
		cfg := HatButtonsConfig{}
		for _, m := range r.Get("mappings").Array() {
			dirs, err := parseHatDirections(m.Get("directions"))
			if err != nil {
				return nil, err
			}
			children, err := decodeChildren(m.Get("children"))
			if err != nil {
				return nil, err
			}
			cfg.Mappings = append(cfg.Mappings, HatButtonMapping{
				Directions: dirs,
				Children:   children,
			})
		}
		return cfg, nil

	case TagMacro:
		cfg := MacroConfig{}
		for _, s := range r.Get("steps").Array() {
			step := MacroStep{
				Press: s.Get("press").Bool(),
				Pause: millis(s.Get("pause_ms")),
			}
			if k := s.Get("key"); k.Exists() {
				step.Key = &event.KeyID{
					ScanCode: uint16(k.Get("scan_code").Int()),
					Extended: k.Get("extended").Bool(),
				}
			}
			if v := s.Get("vjoy"); v.Exists() {
				step.VJoyDevice = int(v.Get("device").Int())
				step.VJoyButton = int(v.Get("button").Int())
			}
			cfg.Steps = append(cfg.Steps, step)
		}
		return cfg, nil

	case TagChain:
		cfg := ChainConfig{Timeout: millis(r.Get("timeout_ms"))}
		for _, g := range r.Get("groups").Array() {
			group, err := decodeChildren(g)
			if err != nil {
				return nil, err
			}
			cfg.Groups = append(cfg.Groups, group)
		}
		return cfg, nil

	case TagModeSwitch:
		cfg := ModeSwitchConfig{Target: r.Get("target").String()}
		switch r.Get("op").String() {
		case "previous":
			cfg.Op = ModeOpPrevious
		case "unwind":
			cfg.Op = ModeOpUnwind
		case "temporary":
			cfg.Op = ModeOpTemporary
		default:
			cfg.Op = ModeOpSwitch
		}
		return cfg, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, tag)
	}
}

func decodeChildren(r gjson.Result) ([]ActionConfig, error) {
	var children []ActionConfig
	for i, c := range r.Array() {
		child, err := decodeAction(c)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		children = append(children, child)
	}
	return children, nil
}

func millis(r gjson.Result) time.Duration {
	return time.Duration(r.Int()) * time.Millisecond
}

func parseInputType(s string) (event.InputType, error) {
	switch s {
	case "axis":
		return event.TypeAxis, nil
	case "button":
		return event.TypeButton, nil
	case "hat":
		return event.TypeHat, nil
	case "keyboard":
		return event.TypeKey, nil
	case "virtual-button":
		return event.TypeVirtualButton, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownInputType, s)
	}
}

func parseLogicalType(s string) (device.InputType, error) {
	switch s {
	case "axis":
		return device.Axis, nil
	case "button":
		return device.Button, nil
	case "hat":
		return device.Hat, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownInputType, s)
	}
}

func parseConditionKind(s string) (ConditionKind, error) {
	switch s {
	case "pressed":
		return ConditionPressed, nil
	case "released":
		return ConditionReleased, nil
	case "inside":
		return ConditionInsideRange, nil
	case "outside":
		return ConditionOutsideRange, nil
	default:
		return 0, fmt.Errorf("%w: bad comparator %q", ErrInvalidProfile, s)
	}
}

func parseAxisDirection(s string) (AxisDirection, error) {
	switch s {
	case "", "anywhere":
		return DirectionAnywhere, nil
	case "below":
		return DirectionBelow, nil
	case "above":
		return DirectionAbove, nil
	default:
		return 0, fmt.Errorf("%w: bad axis direction %q", ErrInvalidProfile, s)
	}
}

func parseHatDirections(r gjson.Result) ([]event.HatDirection, error) {
	var dirs []event.HatDirection
	for _, d := range r.Array() {
		dir, err := parseHatDirection(d.String())
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

func parseHatDirection(s string) (event.HatDirection, error) {
	switch s {
	case "center":
		return event.HatCenter, nil
	case "north":
		return event.HatNorth, nil
	case "north-east":
		return event.HatNorthEast, nil
	case "east":
		return event.HatEast, nil
	case "south-east":
		return event.HatSouthEast, nil
	case "south":
		return event.HatSouth, nil
	case "south-west":
		return event.HatSouthWest, nil
	case "west":
		return event.HatWest, nil
	case "north-west":
		return event.HatNorthWest, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

func parseMouseButton(s string) device.MouseButton {
	switch s {
	case "right":
		return device.MouseRight
	case "middle":
		return device.MouseMiddle
	case "forward":
		return device.MouseForward
	case "back":
		return device.MouseBack
	default:
		return device.MouseLeft
	}
}
