package graph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Point
// ---------------------------------------------------------------------------

// Point is a 2D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ZeroPoint is the origin.
var ZeroPoint = Point{}

// Moved returns p offset by dx, dy.
func (p Point) Moved(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// String formats the point as "x,y", the form accepted by ParsePoint.
func (p Point) String() string {
	return formatFloat(p.X) + "," + formatFloat(p.Y)
}

// ParsePoint parses a point in "x,y" form.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("graph: point %q: want \"x,y\": %w", s, ErrInvalidValue)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("graph: point %q: %w", s, ErrInvalidValue)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("graph: point %q: %w", s, ErrInvalidValue)
	}
	return Point{X: x, Y: y}, nil
}

// ---------------------------------------------------------------------------
// Color
// ---------------------------------------------------------------------------

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Black is opaque black, the default color value.
var Black = Color{A: 1}

// String formats the color as "#rrggbbaa".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B), channel(c.A))
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("graph: color %q: want #rrggbb or #rrggbbaa: %w", s, ErrInvalidValue)
	}
	var comps [4]float64
	for i := range comps {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("graph: color %q: %w", s, ErrInvalidValue)
		}
		comps[i] = float64(v) / 255
	}
	return Color{R: comps[0], G: comps[1], B: comps[2], A: comps[3]}, nil
}

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

// Geometry is implemented by values made of points, such as paths and
// meshes. Values crossing a connection into a point port are flattened into
// their points.
type Geometry interface {
	Points() []Point
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
