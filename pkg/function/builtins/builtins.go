// Package builtins provides the native function libraries: core, math,
// list, string, vector and solid.
//
// Every function receives one argument per input port of the calling node.
// Numbers arrive as int64 or float64, points as graph.Point and lists as
// []any. A nil result means the node produces no value.
package builtins

import (
	"fmt"
	"reflect"

	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/kernel"
)

// Libraries returns every builtin library. Solid functions build their
// solids with k.
func Libraries(k kernel.Kernel) []function.Library {
	return []function.Library{
		Core(),
		Math(),
		List(),
		String(),
		Vector(),
		Solid(k),
	}
}

// NewRegistry returns a registry preloaded with all builtin libraries.
func NewRegistry(k kernel.Kernel) *function.Registry {
	return function.NewRegistry(Libraries(k)...)
}

// Core holds functions every document relies on.
func Core() *function.Namespace {
	return function.NewNamespace("core", map[string]function.Function{
		"zero": function.Fixed(0, func([]any) (any, error) {
			return 0.0, nil
		}),
		"identity": function.Fixed(1, func(args []any) (any, error) {
			return args[0], nil
		}),
		"frame": function.Fixed(1, func(args []any) (any, error) {
			c, ok := args[0].(function.Context)
			if !ok {
				return nil, argErrorf(args, 0, "context")
			}
			return c.Frame(), nil
		}),
	})
}

func argErrorf(args []any, i int, want string) error {
	return fmt.Errorf("argument %d: want %s, got %T: %w", i+1, want, args[i], function.ErrArgument)
}

func equalValues(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
