package builtins

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/chazu/nodal/pkg/function"
)

// ErrDivideByZero is returned by divide and mod for a zero divisor.
var ErrDivideByZero = errors.New("division by zero")

// Math holds numeric functions. Binary arithmetic keeps integers when both
// operands are integers and switches to floats otherwise.
func Math() *function.Namespace {
	return function.NewNamespace("math", map[string]function.Function{
		"number":  function.Fixed(1, unaryFloat(func(v float64) float64 { return v })),
		"integer": function.Fixed(1, toInteger),
		"boolean": function.Fixed(1, toBoolean),

		"add": function.Fixed(2, arith(
			func(a, b int64) int64 { return a + b },
			func(a, b float64) float64 { return a + b })),
		"subtract": function.Fixed(2, arith(
			func(a, b int64) int64 { return a - b },
			func(a, b float64) float64 { return a - b })),
		"multiply": function.Fixed(2, arith(
			func(a, b int64) int64 { return a * b },
			func(a, b float64) float64 { return a * b })),
		"divide": function.Fixed(2, divide),
		"mod":    function.Fixed(2, mod),

		"negate": function.Fixed(1, negate),
		"abs":    function.Fixed(1, absolute),
		"sqrt":   function.Fixed(1, squareRoot),

		"sum":     function.Fixed(1, sum),
		"average": function.Fixed(1, average),
		"max":     function.Fixed(1, extreme(1)),
		"min":     function.Fixed(1, extreme(-1)),
		"range":   function.Fixed(3, numberRange),
		"compare": function.Fixed(3, compare),
	})
}

func unaryFloat(f func(float64) float64) func([]any) (any, error) {
	return func(args []any) (any, error) {
		v, err := function.Float(args, 0)
		if err != nil {
			return nil, err
		}
		return f(v), nil
	}
}

func toInteger(args []any) (any, error) {
	if b, ok := args[0].(bool); ok {
		if b {
			return int64(1), nil
		}
		return int64(0), nil
	}
	return function.Int(args, 0)
}

func toBoolean(args []any) (any, error) {
	switch v := args[0].(type) {
	case bool:
		return v, nil
	case string:
		return v == "true", nil
	}
	f, err := function.Float(args, 0)
	if err != nil {
		return nil, err
	}
	return f != 0, nil
}

func bothInts(args []any) (a, b int64, ok bool) {
	a, aok := args[0].(int64)
	b, bok := args[1].(int64)
	return a, b, aok && bok
}

func arith(ints func(a, b int64) int64, floats func(a, b float64) float64) func([]any) (any, error) {
	return func(args []any) (any, error) {
		if a, b, ok := bothInts(args); ok {
			return ints(a, b), nil
		}
		a, b, err := twoFloats(args)
		if err != nil {
			return nil, err
		}
		return floats(a, b), nil
	}
}

func twoFloats(args []any) (a, b float64, err error) {
	if a, err = function.Float(args, 0); err != nil {
		return 0, 0, err
	}
	if b, err = function.Float(args, 1); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// divide always produces a float.
func divide(args []any) (any, error) {
	a, b, err := twoFloats(args)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, fmt.Errorf("divide %g by 0: %w", a, ErrDivideByZero)
	}
	return a / b, nil
}

// mod follows the sign of the divisor.
func mod(args []any) (any, error) {
	if a, b, ok := bothInts(args); ok {
		if b == 0 {
			return nil, fmt.Errorf("mod %d by 0: %w", a, ErrDivideByZero)
		}
		m := a % b
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m, nil
	}
	a, b, err := twoFloats(args)
	if err != nil {
		return nil, err
	}
	if b == 0 {
		return nil, fmt.Errorf("mod %g by 0: %w", a, ErrDivideByZero)
	}
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m, nil
}

func negate(args []any) (any, error) {
	if i, ok := args[0].(int64); ok {
		return -i, nil
	}
	return unaryFloat(func(v float64) float64 { return -v })(args)
}

func absolute(args []any) (any, error) {
	if i, ok := args[0].(int64); ok {
		if i < 0 {
			return -i, nil
		}
		return i, nil
	}
	return unaryFloat(math.Abs)(args)
}

func squareRoot(args []any) (any, error) {
	v, err := function.Float(args, 0)
	if err != nil {
		return nil, err
	}
	if v < 0 {
		return nil, fmt.Errorf("sqrt of negative number %g: %w", v, function.ErrArgument)
	}
	return math.Sqrt(v), nil
}

// numbers returns the list argument as floats.
func numbers(args []any, i int) ([]float64, error) {
	list, err := function.List(args, i)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(list))
	for j := range list {
		v, err := function.Float(list, j)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", j, err)
		}
		out[j] = v
	}
	return out, nil
}

func sum(args []any) (any, error) {
	vals, err := numbers(args, 0)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, v := range vals {
		total += v
	}
	return total, nil
}

func average(args []any) (any, error) {
	vals, err := numbers(args, 0)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return 0.0, nil
	}
	total, _ := sum(args)
	return total.(float64) / float64(len(vals)), nil
}

// extreme returns max (sign 1) or min (sign -1). An empty list has no
// extreme and produces no value.
func extreme(sign int) func([]any) (any, error) {
	return func(args []any) (any, error) {
		vals, err := numbers(args, 0)
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			return nil, nil
		}
		if sign > 0 {
			return slices.Max(vals), nil
		}
		return slices.Min(vals), nil
	}
}

// numberRange returns start, start+step, ... up to but excluding end.
func numberRange(args []any) (any, error) {
	start, err := function.Float(args, 0)
	if err != nil {
		return nil, err
	}
	end, step, err := twoFloats(args[1:])
	if err != nil {
		return nil, err
	}
	for _, v := range []float64{start, end, step} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("range bound %v: %w", v, function.ErrArgument)
		}
	}
	if step == 0 {
		return nil, fmt.Errorf("range step 0: %w", function.ErrArgument)
	}
	out := []any{}
	if (step > 0 && start > end) || (step < 0 && start < end) {
		return out, nil
	}
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if (step > 0 && v >= end) || (step < 0 && v <= end) {
			break
		}
		out = append(out, v)
	}
	return out, nil
}

// compare applies one of <, >, <=, >=, ==, != to two values. Numbers
// compare numerically, everything else by equality only.
func compare(args []any) (any, error) {
	op, err := function.String(args, 2)
	if err != nil {
		return nil, err
	}
	if function.IsNumber(args[0]) && function.IsNumber(args[1]) {
		a, b, _ := twoFloats(args)
		switch op {
		case "<":
			return a < b, nil
		case ">":
			return a > b, nil
		case "<=":
			return a <= b, nil
		case ">=":
			return a >= b, nil
		case "==":
			return a == b, nil
		case "!=":
			return a != b, nil
		}
		return nil, fmt.Errorf("unknown comparator %q: %w", op, function.ErrArgument)
	}
	switch op {
	case "==":
		return equalValues(args[0], args[1]), nil
	case "!=":
		return !equalValues(args[0], args[1]), nil
	}
	return nil, fmt.Errorf("comparator %q needs numbers: %w", op, function.ErrArgument)
}
