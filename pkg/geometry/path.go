// Package geometry provides 2D polyline paths produced by the vector
// functions. Paths implement graph.Geometry, so connecting them to a point
// port delivers their points.
package geometry

import (
	"fmt"
	"math"
	"slices"

	"github.com/chazu/nodal/pkg/graph"
)

// EllipseSegments is the number of line segments approximating an ellipse.
const EllipseSegments = 32

// Path is an immutable polyline, optionally closed.
type Path struct {
	points []graph.Point
	closed bool
}

var _ graph.Geometry = Path{}

// NewPath returns a path through points.
func NewPath(points []graph.Point, closed bool) Path {
	return Path{points: slices.Clone(points), closed: closed}
}

// Points returns a copy of the path's points.
func (p Path) Points() []graph.Point { return slices.Clone(p.points) }

// Closed reports whether the last point connects back to the first.
func (p Path) Closed() bool { return p.closed }

// Len returns the number of points.
func (p Path) Len() int { return len(p.points) }

func (p Path) String() string {
	return fmt.Sprintf("<Path %d points closed=%v>", len(p.points), p.closed)
}

// Translate returns the path moved by (dx, dy).
func (p Path) Translate(dx, dy float64) Path {
	return p.mapPoints(func(pt graph.Point) graph.Point { return pt.Moved(dx, dy) })
}

// Scale returns the path scaled by (sx, sy) around the origin.
func (p Path) Scale(sx, sy float64) Path {
	return p.mapPoints(func(pt graph.Point) graph.Point { return graph.Point{X: pt.X * sx, Y: pt.Y * sy} })
}

func (p Path) mapPoints(f func(graph.Point) graph.Point) Path {
	out := make([]graph.Point, len(p.points))
	for i, pt := range p.points {
		out[i] = f(pt)
	}
	return Path{points: out, closed: p.closed}
}

// Bounds returns the smallest box enclosing the path.
func (p Path) Bounds() (lo, hi graph.Point) {
	if len(p.points) == 0 {
		return graph.ZeroPoint, graph.ZeroPoint
	}
	lo, hi = p.points[0], p.points[0]
	for _, pt := range p.points[1:] {
		lo.X, lo.Y = math.Min(lo.X, pt.X), math.Min(lo.Y, pt.Y)
		hi.X, hi.Y = math.Max(hi.X, pt.X), math.Max(hi.Y, pt.Y)
	}
	return lo, hi
}

// Centroid returns the center of the bounding box.
func (p Path) Centroid() graph.Point {
	lo, hi := p.Bounds()
	return graph.Point{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2}
}

// ---------------------------------------------------------------------------
// Generators
// ---------------------------------------------------------------------------

// Rect returns a closed rectangle centered on position.
func Rect(position graph.Point, width, height float64) Path {
	x, y := position.X-width/2, position.Y-height/2
	return Path{closed: true, points: []graph.Point{
		{X: x, Y: y},
		{X: x + width, Y: y},
		{X: x + width, Y: y + height},
		{X: x, Y: y + height},
	}}
}

// Ellipse returns a closed ellipse centered on position, approximated by
// EllipseSegments segments.
func Ellipse(position graph.Point, width, height float64) Path {
	pts := make([]graph.Point, EllipseSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / EllipseSegments
		pts[i] = graph.Point{X: position.X + width/2*math.Cos(a), Y: position.Y + height/2*math.Sin(a)}
	}
	return Path{points: pts, closed: true}
}

// Polygon returns a regular polygon with at least three sides. The first
// vertex points up unless align is set, which puts a flat edge on top.
func Polygon(position graph.Point, radius float64, sides int, align bool) Path {
	sides = max(sides, 3)
	step := 2 * math.Pi / float64(sides)
	start := -math.Pi / 2
	if align {
		start += step / 2
	}
	pts := make([]graph.Point, sides)
	for i := range pts {
		a := start + float64(i)*step
		pts[i] = graph.Point{X: position.X + radius*math.Cos(a), Y: position.Y + radius*math.Sin(a)}
	}
	return Path{points: pts, closed: true}
}

// Line returns an open path from p1 to p2 with n evenly spaced points (at
// least two).
func Line(p1, p2 graph.Point, n int) Path {
	n = max(n, 2)
	pts := make([]graph.Point, n)
	for i := range pts {
		t := float64(i) / float64(n-1)
		pts[i] = graph.Point{X: p1.X + (p2.X-p1.X)*t, Y: p1.Y + (p2.Y-p1.Y)*t}
	}
	return Path{points: pts}
}

// Coordinates returns the point at distance from p in the direction of
// angle degrees (0 is right, 90 is down).
func Coordinates(p graph.Point, angle, distance float64) graph.Point {
	rad := angle * math.Pi / 180
	return graph.Point{X: p.X + distance*math.Cos(rad), Y: p.Y + distance*math.Sin(rad)}
}

// Grid returns columns*rows points spread over a width x height area
// centered on position, row by row.
func Grid(columns, rows int, width, height float64, position graph.Point) []graph.Point {
	columns, rows = max(columns, 1), max(rows, 1)
	colSize, left := 0.0, position.X
	if columns > 1 {
		colSize, left = width/float64(columns-1), position.X-width/2
	}
	rowSize, top := 0.0, position.Y
	if rows > 1 {
		rowSize, top = height/float64(rows-1), position.Y-height/2
	}
	pts := make([]graph.Point, 0, columns*rows)
	for r := range rows {
		for c := range columns {
			pts = append(pts, graph.Point{X: left + float64(c)*colSize, Y: top + float64(r)*rowSize})
		}
	}
	return pts
}
