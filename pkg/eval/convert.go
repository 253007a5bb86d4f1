package eval

import (
	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/graph"
)

// convert adapts the values crossing a connection to the type of the port
// they feed. Into a point port, geometry is replaced by its points. Into an
// int port, floats are truncated. Everything else passes through. Nested
// lists are converted element list by element list, keeping their shape.
func convert(values []any, t graph.PortType) []any {
	if values == nil {
		return nil
	}
	if level(values) > 0 {
		out := make([]any, 0, len(values))
		for _, v := range values {
			if list, ok := function.AsList(v); ok {
				out = append(out, convert(list, t))
			} else {
				out = append(out, v)
			}
		}
		return out
	}

	switch t.Kind() {
	case graph.TypePoint:
		return flattenPoints(values)
	case graph.TypeInt:
		return truncateFloats(values)
	}
	return values
}

func flattenPoints(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		g, ok := v.(graph.Geometry)
		if !ok {
			out = append(out, v)
			continue
		}
		for _, p := range g.Points() {
			out = append(out, p)
		}
	}
	return out
}

func truncateFloats(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		switch f := v.(type) {
		case float64:
			out[i] = int64(f)
		case float32:
			out[i] = int64(f)
		default:
			out[i] = v
		}
	}
	return out
}
