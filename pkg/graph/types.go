package graph

import "fmt"

// ---------------------------------------------------------------------------
// Port types
// ---------------------------------------------------------------------------

// TypeKind enumerates the standard port types. Anything else is TypeCustom.
type TypeKind int

const (
	TypeInt TypeKind = iota
	TypeFloat
	TypeString
	TypeBoolean
	TypePoint
	TypeColor
	TypeCustom
)

// PortType is the declared type of a port or of a node's output. Standard
// types carry storable values; custom types are opaque and named.
type PortType struct {
	kind TypeKind
	name string // only for TypeCustom
}

// Standard port types.
var (
	IntType     = PortType{kind: TypeInt}
	FloatType   = PortType{kind: TypeFloat}
	StringType  = PortType{kind: TypeString}
	BooleanType = PortType{kind: TypeBoolean}
	PointType   = PortType{kind: TypePoint}
	ColorType   = PortType{kind: TypeColor}
)

// Well-known custom types.
var (
	ListType     = CustomType("list")
	GeometryType = CustomType("geometry")
	ContextType  = CustomType("context")
	StateType    = CustomType("state")
)

// CustomType returns the opaque type with the given name.
func CustomType(name string) PortType {
	if t, ok := standardTypes[name]; ok {
		return t
	}
	return PortType{kind: TypeCustom, name: name}
}

var standardTypes = map[string]PortType{
	"int":     IntType,
	"float":   FloatType,
	"string":  StringType,
	"boolean": BooleanType,
	"point":   PointType,
	"color":   ColorType,
}

// ParsePortType maps a type name to a PortType. Unknown names become custom
// types, so parsing never fails.
func ParsePortType(name string) PortType {
	return CustomType(name)
}

// Kind returns the type's variant.
func (t PortType) Kind() TypeKind { return t.kind }

// IsStandard reports whether values of this type can be stored on a port.
func (t PortType) IsStandard() bool { return t.kind != TypeCustom }

// IsContext reports whether ports of this type receive the evaluation context.
func (t PortType) IsContext() bool { return t == ContextType }

func (t PortType) String() string {
	switch t.kind {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBoolean:
		return "boolean"
	case TypePoint:
		return "point"
	case TypeColor:
		return "color"
	default:
		return t.name
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t PortType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PortType) UnmarshalText(b []byte) error {
	*t = ParsePortType(string(b))
	return nil
}

// ---------------------------------------------------------------------------
// Range
// ---------------------------------------------------------------------------

// Range says whether a port (or node output) holds one value or a list.
type Range int

const (
	RangeValue Range = iota
	RangeList
)

func (r Range) String() string {
	switch r {
	case RangeValue:
		return "value"
	case RangeList:
		return "list"
	default:
		return fmt.Sprintf("Range(%d)", int(r))
	}
}

// ParseRange parses "value" or "list".
func ParseRange(s string) (Range, error) {
	switch s {
	case "value", "":
		return RangeValue, nil
	case "list":
		return RangeList, nil
	}
	return RangeValue, fmt.Errorf("graph: range %q: %w", s, ErrInvalidValue)
}

// ---------------------------------------------------------------------------
// Widgets
// ---------------------------------------------------------------------------

// Widget hints how an editor should present a port.
type Widget int

const (
	WidgetNone Widget = iota
	WidgetAngle
	WidgetColor
	WidgetData
	WidgetFile
	WidgetFloat
	WidgetFont
	WidgetGradient
	WidgetImage
	WidgetInt
	WidgetMenu
	WidgetSeed
	WidgetString
	WidgetText
	WidgetPassword
	WidgetToggle
	WidgetPoint
)

var widgetNames = [...]string{
	WidgetNone:     "none",
	WidgetAngle:    "angle",
	WidgetColor:    "color",
	WidgetData:     "data",
	WidgetFile:     "file",
	WidgetFloat:    "float",
	WidgetFont:     "font",
	WidgetGradient: "gradient",
	WidgetImage:    "image",
	WidgetInt:      "int",
	WidgetMenu:     "menu",
	WidgetSeed:     "seed",
	WidgetString:   "string",
	WidgetText:     "text",
	WidgetPassword: "password",
	WidgetToggle:   "toggle",
	WidgetPoint:    "point",
}

func (w Widget) String() string {
	if w >= 0 && int(w) < len(widgetNames) {
		return widgetNames[w]
	}
	return fmt.Sprintf("Widget(%d)", int(w))
}

// ParseWidget parses a widget name.
func ParseWidget(s string) (Widget, error) {
	if s == "" {
		return WidgetNone, nil
	}
	for w, name := range widgetNames {
		if name == s {
			return Widget(w), nil
		}
	}
	return WidgetNone, fmt.Errorf("graph: widget %q: %w", s, ErrInvalidValue)
}

// DefaultWidget returns the widget used for new ports of type t.
func DefaultWidget(t PortType) Widget {
	switch t.kind {
	case TypeInt:
		return WidgetInt
	case TypeFloat:
		return WidgetFloat
	case TypeString:
		return WidgetString
	case TypeBoolean:
		return WidgetToggle
	case TypePoint:
		return WidgetPoint
	case TypeColor:
		return WidgetColor
	default:
		return WidgetNone
	}
}

// MenuItem is one key/label choice of a menu port.
type MenuItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
