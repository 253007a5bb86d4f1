package builtins

import (
	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/kernel"
)

// Solid holds 3D modeling functions backed by k. Solids are opaque values;
// mesh turns one into a kernel.Mesh, which also flattens into points.
func Solid(k kernel.Kernel) *function.Namespace {
	return function.NewNamespace("solid", map[string]function.Function{
		"box": function.Fixed(3, func(args []any) (any, error) {
			x, y, z, err := three(args, 0)
			if err != nil {
				return nil, err
			}
			return k.Box(x, y, z)
		}),
		"cylinder": function.Fixed(2, func(args []any) (any, error) {
			h, r, err := twoFloats(args)
			if err != nil {
				return nil, err
			}
			return k.Cylinder(h, r)
		}),
		"sphere": function.Fixed(1, func(args []any) (any, error) {
			r, err := function.Float(args, 0)
			if err != nil {
				return nil, err
			}
			return k.Sphere(r)
		}),
		"translate": function.Fixed(4, transform(k.Translate)),
		"rotate":    function.Fixed(4, transform(k.Rotate)),

		"union":        function.Fixed(2, boolean(k.Union)),
		"difference":   function.Fixed(2, boolean(k.Difference)),
		"intersection": function.Fixed(2, boolean(k.Intersection)),

		"mesh": function.Fixed(2, func(args []any) (any, error) {
			s, err := solidArg(args, 0)
			if err != nil {
				return nil, err
			}
			cells, err := function.Int(args, 1)
			if err != nil {
				return nil, err
			}
			return k.ToMesh(s, int(cells))
		}),
	})
}

func solidArg(args []any, i int) (kernel.Solid, error) {
	if s, ok := args[i].(kernel.Solid); ok {
		return s, nil
	}
	return nil, argErrorf(args, i, "solid")
}

func three(args []any, from int) (x, y, z float64, err error) {
	if x, err = function.Float(args, from); err != nil {
		return
	}
	if y, err = function.Float(args, from+1); err != nil {
		return
	}
	z, err = function.Float(args, from+2)
	return
}

func transform(op func(kernel.Solid, float64, float64, float64) (kernel.Solid, error)) func([]any) (any, error) {
	return func(args []any) (any, error) {
		s, err := solidArg(args, 0)
		if err != nil {
			return nil, err
		}
		x, y, z, err := three(args, 1)
		if err != nil {
			return nil, err
		}
		return op(s, x, y, z)
	}
}

func boolean(op func(a, b kernel.Solid) (kernel.Solid, error)) func([]any) (any, error) {
	return func(args []any) (any, error) {
		a, err := solidArg(args, 0)
		if err != nil {
			return nil, err
		}
		b, err := solidArg(args, 1)
		if err != nil {
			return nil, err
		}
		return op(a, b)
	}
}
