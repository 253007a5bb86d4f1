package render

import (
	"fmt"

	"github.com/chazu/nodal/pkg/geometry"
	"github.com/chazu/nodal/pkg/graph"
	"github.com/chazu/nodal/pkg/kernel"
)

// Encode converts a render value into a form encoding/json writes
// faithfully. Solids and meshes are summarized rather than serialized in
// full; tessellate them for geometry.
func Encode(v any) any {
	switch v := v.(type) {
	case nil, bool, string, int64, float64, graph.Point:
		return v
	case graph.Color:
		return v.String()
	case geometry.Path:
		return map[string]any{"points": v.Points(), "closed": v.Closed()}
	case *kernel.Mesh:
		return map[string]any{"mesh": v.Name, "vertices": v.VertexCount(), "triangles": v.TriangleCount()}
	case kernel.Solid:
		lo, hi := v.BoundingBox()
		return map[string]any{"solid": map[string]any{"min": lo, "max": hi}}
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = Encode(e)
		}
		return out
	case []graph.Point:
		return v
	case error:
		return v.Error()
	}
	return fmt.Sprint(v)
}

// EncodeAll applies Encode to every value of a render result.
func EncodeAll(values []any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = Encode(v)
	}
	return out
}
