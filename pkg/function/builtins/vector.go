package builtins

import (
	"fmt"

	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/geometry"
	"github.com/chazu/nodal/pkg/graph"
)

// Vector holds 2D point and path functions. Shapes are geometry.Path
// values, so they flatten into points when connected to a point port.
func Vector() *function.Namespace {
	return function.NewNamespace("vector", map[string]function.Function{
		"make_point": function.Fixed(2, func(args []any) (any, error) {
			x, y, err := twoFloats(args)
			if err != nil {
				return nil, err
			}
			return graph.Point{X: x, Y: y}, nil
		}),
		"point_x": function.Fixed(1, func(args []any) (any, error) {
			p, err := function.Point(args, 0)
			return p.X, err
		}),
		"point_y": function.Fixed(1, func(args []any) (any, error) {
			p, err := function.Point(args, 0)
			return p.Y, err
		}),
		"rect":      function.Fixed(3, sized(geometry.Rect)),
		"ellipse":   function.Fixed(3, sized(geometry.Ellipse)),
		"polygon":   function.Fixed(4, polygon),
		"line":      function.Fixed(3, line),
		"grid":      function.Fixed(5, grid),
		"coordinates": function.Fixed(3, func(args []any) (any, error) {
			p, err := function.Point(args, 0)
			if err != nil {
				return nil, err
			}
			angle, dist, err := twoFloats(args[1:])
			if err != nil {
				return nil, err
			}
			return geometry.Coordinates(p, angle, dist), nil
		}),
		"translate": function.Fixed(2, translate),
		"scale":     function.Fixed(3, scale),
		"centroid": function.Fixed(1, func(args []any) (any, error) {
			p, err := path(args, 0)
			if err != nil {
				return nil, err
			}
			return p.Centroid(), nil
		}),
	})
}

// path accepts a path or any geometry, which is treated as an open path
// through its points.
func path(args []any, i int) (geometry.Path, error) {
	switch v := args[i].(type) {
	case geometry.Path:
		return v, nil
	case graph.Geometry:
		return geometry.NewPath(v.Points(), false), nil
	}
	return geometry.Path{}, argErrorf(args, i, "shape")
}

// sized adapts a (position, width, height) constructor.
func sized(build func(graph.Point, float64, float64) geometry.Path) func([]any) (any, error) {
	return func(args []any) (any, error) {
		pos, err := function.Point(args, 0)
		if err != nil {
			return nil, err
		}
		w, h, err := twoFloats(args[1:])
		if err != nil {
			return nil, err
		}
		return build(pos, w, h), nil
	}
}

func polygon(args []any) (any, error) {
	pos, err := function.Point(args, 0)
	if err != nil {
		return nil, err
	}
	radius, err := function.Float(args, 1)
	if err != nil {
		return nil, err
	}
	sides, err := function.Int(args, 2)
	if err != nil {
		return nil, err
	}
	align, err := function.Bool(args, 3)
	if err != nil {
		return nil, err
	}
	return geometry.Polygon(pos, radius, int(sides), align), nil
}

func line(args []any) (any, error) {
	p1, err := function.Point(args, 0)
	if err != nil {
		return nil, err
	}
	p2, err := function.Point(args, 1)
	if err != nil {
		return nil, err
	}
	n, err := function.Int(args, 2)
	if err != nil {
		return nil, err
	}
	return geometry.Line(p1, p2, int(n)), nil
}

// grid returns its points as a list so each one feeds a separate call
// downstream.
func grid(args []any) (any, error) {
	cols, err := function.Int(args, 0)
	if err != nil {
		return nil, err
	}
	rows, err := function.Int(args, 1)
	if err != nil {
		return nil, err
	}
	w, h, err := twoFloats(args[2:])
	if err != nil {
		return nil, err
	}
	pos, err := function.Point(args, 4)
	if err != nil {
		return nil, err
	}
	if cols < 0 || rows < 0 {
		return nil, fmt.Errorf("grid %dx%d: %w", cols, rows, function.ErrArgument)
	}
	pts := geometry.Grid(int(cols), int(rows), w, h, pos)
	out := make([]any, len(pts))
	for i, p := range pts {
		out[i] = p
	}
	return out, nil
}

func translate(args []any) (any, error) {
	p, err := path(args, 0)
	if err != nil {
		return nil, err
	}
	t, err := function.Point(args, 1)
	if err != nil {
		return nil, err
	}
	return p.Translate(t.X, t.Y), nil
}

// scale takes percentages; 100 leaves the shape unchanged.
func scale(args []any) (any, error) {
	p, err := path(args, 0)
	if err != nil {
		return nil, err
	}
	sx, sy, err := twoFloats(args[1:])
	if err != nil {
		return nil, err
	}
	return p.Scale(sx/100, sy/100), nil
}
