package function

import (
	"fmt"
	"reflect"

	"github.com/chazu/nodal/pkg/graph"
)

// Fixed wraps fn so it is only called with exactly n arguments.
func Fixed(n int, fn func(args []any) (any, error)) Func {
	return func(args []any) (any, error) {
		if len(args) != n {
			return nil, fmt.Errorf("want %d arguments, got %d: %w", n, len(args), ErrArgument)
		}
		return fn(args)
	}
}

// AsList returns v as a list if it is any kind of slice other than a string
// or byte slice. Values of type []any are returned as is.
func AsList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Float converts numeric argument i to float64.
func Float(args []any, i int) (float64, error) {
	switch v := args[i].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, argError(args, i, "number")
}

// Int converts numeric argument i to int64, truncating floats.
func Int(args []any, i int) (int64, error) {
	switch v := args[i].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	}
	return 0, argError(args, i, "integer")
}

// String returns argument i as a string.
func String(args []any, i int) (string, error) {
	if s, ok := args[i].(string); ok {
		return s, nil
	}
	return "", argError(args, i, "string")
}

// Bool returns argument i as a bool.
func Bool(args []any, i int) (bool, error) {
	if b, ok := args[i].(bool); ok {
		return b, nil
	}
	return false, argError(args, i, "boolean")
}

// Point returns argument i as a point.
func Point(args []any, i int) (graph.Point, error) {
	if p, ok := args[i].(graph.Point); ok {
		return p, nil
	}
	return graph.Point{}, argError(args, i, "point")
}

// List returns argument i as a list. A nil argument is an empty list.
func List(args []any, i int) ([]any, error) {
	if args[i] == nil {
		return []any{}, nil
	}
	if l, ok := AsList(args[i]); ok {
		return l, nil
	}
	return nil, argError(args, i, "list")
}

// IsNumber reports whether v is an int or float value.
func IsNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func argError(args []any, i int, want string) error {
	return fmt.Errorf("argument %d: want %s, got %T: %w", i+1, want, args[i], ErrArgument)
}
