package graph

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Port is a named, typed input slot on a node. Ports are values: every With
// method returns a modified copy.
//
// Standard-typed ports store a value: int64 for int, float64 for float,
// string, bool, Point or Color. Custom-typed ports store nothing; they only
// receive values through connections.
type Port struct {
	name           string
	typ            PortType
	label          string
	description    string
	childReference string
	widget         Widget
	rng            Range
	value          any
	min, max       *float64
	menuItems      []MenuItem
}

// NewPort returns a port of type t holding the type's default value and
// using the type's default widget.
func NewPort(name string, t PortType) Port {
	return Port{
		name:   name,
		typ:    t,
		widget: DefaultWidget(t),
		value:  defaultValue(t),
	}
}

// IntPort returns an int port holding v.
func IntPort(name string, v int64) Port { return NewPort(name, IntType).withRaw(v) }

// FloatPort returns a float port holding v.
func FloatPort(name string, v float64) Port { return NewPort(name, FloatType).withRaw(v) }

// StringPort returns a string port holding v.
func StringPort(name string, v string) Port { return NewPort(name, StringType).withRaw(v) }

// BooleanPort returns a boolean port holding v.
func BooleanPort(name string, v bool) Port { return NewPort(name, BooleanType).withRaw(v) }

// PointPort returns a point port holding v.
func PointPort(name string, v Point) Port { return NewPort(name, PointType).withRaw(v) }

// ColorPort returns a color port holding v.
func ColorPort(name string, v Color) Port { return NewPort(name, ColorType).withRaw(v) }

// ParsePort returns a port of type t whose value is parsed from s. An empty
// s yields the type's default value.
func ParsePort(name string, t PortType, s string) (Port, error) {
	p := NewPort(name, t)
	if s == "" {
		return p, nil
	}
	return p.WithParsedValue(s)
}

func defaultValue(t PortType) any {
	switch t.kind {
	case TypeInt:
		return int64(0)
	case TypeFloat:
		return 0.0
	case TypeString:
		return ""
	case TypeBoolean:
		return false
	case TypePoint:
		return ZeroPoint
	case TypeColor:
		return Black
	default:
		return nil
	}
}

func (p Port) withRaw(v any) Port {
	p.value = v
	return p
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (p Port) Name() string        { return p.name }
func (p Port) Type() PortType      { return p.typ }
func (p Port) Description() string { return p.description }
func (p Port) Widget() Widget      { return p.widget }
func (p Port) Range() Range        { return p.rng }
func (p Port) HasListRange() bool  { return p.rng == RangeList }
func (p Port) HasValueRange() bool { return p.rng == RangeValue }
func (p Port) IsFileWidget() bool  { return p.widget == WidgetFile }

// ChildReference returns "child.port" for published ports, or "".
func (p Port) ChildReference() string { return p.childReference }

// Label returns the display label, falling back to the name.
func (p Port) Label() string {
	if p.label == "" {
		return p.name
	}
	return p.label
}

// IsPublished reports whether the port forwards to a child's port.
func (p Port) IsPublished() bool { return p.childReference != "" }

// PublishedTarget splits the child reference into child and port names.
func (p Port) PublishedTarget() (child, port string, ok bool) {
	return strings.Cut(p.childReference, ".")
}

// Value returns the stored value, or nil for custom types.
func (p Port) Value() any { return p.value }

// IntValue returns the value of an int port, or 0.
func (p Port) IntValue() int64 {
	v, _ := p.value.(int64)
	return v
}

// FloatValue returns the value of a numeric port, or 0.
func (p Port) FloatValue() float64 {
	switch v := p.value.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

// StringValue returns the value of a string port, or "".
func (p Port) StringValue() string {
	v, _ := p.value.(string)
	return v
}

// BooleanValue returns the value of a boolean port, or false.
func (p Port) BooleanValue() bool {
	v, _ := p.value.(bool)
	return v
}

// PointValue returns the value of a point port, or the origin.
func (p Port) PointValue() Point {
	v, _ := p.value.(Point)
	return v
}

// ColorValue returns the value of a color port, or black.
func (p Port) ColorValue() Color {
	if v, ok := p.value.(Color); ok {
		return v
	}
	return Black
}

// Minimum returns the lower bound, if set.
func (p Port) Minimum() (float64, bool) {
	if p.min == nil {
		return 0, false
	}
	return *p.min, true
}

// Maximum returns the upper bound, if set.
func (p Port) Maximum() (float64, bool) {
	if p.max == nil {
		return 0, false
	}
	return *p.max, true
}

// MenuItems returns a copy of the menu items.
func (p Port) MenuItems() []MenuItem { return slices.Clone(p.menuItems) }

// ValueString serializes the value in the form ParsePort accepts.
func (p Port) ValueString() string {
	switch v := p.value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case Point:
		return v.String()
	case Color:
		return v.String()
	}
	return ""
}

// Equal reports whether two ports are identical in every attribute.
func (p Port) Equal(o Port) bool {
	return p.name == o.name &&
		p.typ == o.typ &&
		p.label == o.label &&
		p.description == o.description &&
		p.childReference == o.childReference &&
		p.widget == o.widget &&
		p.rng == o.rng &&
		p.value == o.value &&
		equalBound(p.min, o.min) &&
		equalBound(p.max, o.max) &&
		slices.Equal(p.menuItems, o.menuItems)
}

func equalBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (p Port) String() string {
	return fmt.Sprintf("<Port %s:%s>", p.name, p.typ)
}

// ---------------------------------------------------------------------------
// With methods
// ---------------------------------------------------------------------------

// WithName returns a copy with a different name.
func (p Port) WithName(name string) Port {
	p.name = name
	return p
}

func (p Port) WithLabel(label string) Port {
	p.label = label
	return p
}

func (p Port) WithDescription(d string) Port {
	p.description = d
	return p
}

func (p Port) WithWidget(w Widget) Port {
	p.widget = w
	return p
}

func (p Port) WithRange(r Range) Port {
	p.rng = r
	return p
}

// WithChildReference marks the port as publishing child.port.
func (p Port) WithChildReference(child, port string) Port {
	p.childReference = child + "." + port
	return p
}

// WithMenuItems returns a copy using items as its menu.
func (p Port) WithMenuItems(items []MenuItem) Port {
	p.menuItems = slices.Clone(items)
	return p
}

// WithMinimum sets the lower bound and clamps the value. A nil bound removes it.
func (p Port) WithMinimum(bound *float64) Port {
	p.min = cloneBound(bound)
	p.value = p.clamp(p.value)
	return p
}

// WithMaximum sets the upper bound and clamps the value. A nil bound removes it.
func (p Port) WithMaximum(bound *float64) Port {
	p.max = cloneBound(bound)
	p.value = p.clamp(p.value)
	return p
}

func cloneBound(b *float64) *float64 {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

// WithValue returns a copy holding v, coerced to the port's type and clamped
// to its bounds. Custom-typed ports reject every value.
func (p Port) WithValue(v any) (Port, error) {
	cv, err := coerce(p.typ, v)
	if err != nil {
		return p, fmt.Errorf("graph: port %s: %w", p.name, err)
	}
	p.value = p.clamp(cv)
	return p, nil
}

// WithParsedValue parses s according to the port's type.
func (p Port) WithParsedValue(s string) (Port, error) {
	var (
		v   any
		err error
	)
	switch p.typ.kind {
	case TypeInt:
		v, err = strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	case TypeFloat:
		var f float64
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && (math.IsInf(f, 0) || math.IsNaN(f)) {
			err = fmt.Errorf("not finite")
		}
		v = f
	case TypeString:
		v = s
	case TypeBoolean:
		v, err = strconv.ParseBool(strings.TrimSpace(s))
	case TypePoint:
		v, err = ParsePoint(s)
	case TypeColor:
		v, err = ParseColor(s)
	default:
		return p, fmt.Errorf("graph: port %s: custom type %s has no value: %w", p.name, p.typ, ErrInvalidValue)
	}
	if err != nil {
		return p, fmt.Errorf("graph: port %s: parse %q: %w", p.name, s, ErrInvalidValue)
	}
	return p.WithValue(v)
}

// WithDefaultValue resets the value to the type's default.
func (p Port) WithDefaultValue() Port {
	p.value = p.clamp(defaultValue(p.typ))
	return p
}

func (p Port) clamp(v any) any {
	switch n := v.(type) {
	case int64:
		if p.min != nil && float64(n) < *p.min {
			n = int64(math.Ceil(*p.min))
		}
		if p.max != nil && float64(n) > *p.max {
			n = int64(math.Floor(*p.max))
		}
		return n
	case float64:
		if p.min != nil {
			n = math.Max(n, *p.min)
		}
		if p.max != nil {
			n = math.Min(n, *p.max)
		}
		return n
	}
	return v
}

func coerce(t PortType, v any) (any, error) {
	switch t.kind {
	case TypeInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			return int64(n), nil
		}
	case TypeFloat:
		switch n := v.(type) {
		case int:
			return float64(n), nil
		case int32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		case float32:
			return float64(n), nil
		case float64:
			return n, nil
		}
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypePoint:
		if pt, ok := v.(Point); ok {
			return pt, nil
		}
	case TypeColor:
		if c, ok := v.(Color); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%T value for %s port: %w", v, t, ErrInvalidValue)
}
