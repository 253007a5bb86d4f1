package builtins

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chazu/nodal/pkg/function"
)

// String holds text functions.
func String() *function.Namespace {
	return function.NewNamespace("string", map[string]function.Function{
		"string":      function.Fixed(1, func(args []any) (any, error) { return format(args[0]), nil }),
		"concatenate": function.Func(concatenate),
		"length": function.Fixed(1, func(args []any) (any, error) {
			s, err := function.String(args, 0)
			if err != nil {
				return nil, err
			}
			return int64(utf8.RuneCountInString(s)), nil
		}),
		"upper":         function.Fixed(1, mapString(strings.ToUpper)),
		"lower":         function.Fixed(1, mapString(strings.ToLower)),
		"split":         function.Fixed(2, split),
		"format_number": function.Fixed(2, formatNumber),
	})
}

// format renders a value the way it is shown in ports.
func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func concatenate(args []any) (any, error) {
	var b strings.Builder
	for _, v := range args {
		b.WriteString(format(v))
	}
	return b.String(), nil
}

func mapString(f func(string) string) func([]any) (any, error) {
	return func(args []any) (any, error) {
		s, err := function.String(args, 0)
		if err != nil {
			return nil, err
		}
		return f(s), nil
	}
}

// split cuts s at every separator. An empty separator splits into
// characters.
func split(args []any) (any, error) {
	s, err := function.String(args, 0)
	if err != nil {
		return nil, err
	}
	sep, err := function.String(args, 1)
	if err != nil {
		return nil, err
	}
	out := []any{}
	if s == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, sep) {
		out = append(out, part)
	}
	return out, nil
}

// formatNumber formats v with a printf verb such as "%.2f".
func formatNumber(args []any) (any, error) {
	v, err := function.Float(args, 0)
	if err != nil {
		return nil, err
	}
	f, err := function.String(args, 1)
	if err != nil {
		return nil, err
	}
	if strings.Count(f, "%") != 1 {
		return nil, fmt.Errorf("format %q: want exactly one verb: %w", f, function.ErrArgument)
	}
	return fmt.Sprintf(f, v), nil
}
