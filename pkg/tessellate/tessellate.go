// Package tessellate walks render results and produces triangle meshes
// using a geometry kernel. One mesh is produced per solid found.
package tessellate

import (
	"fmt"

	"github.com/chazu/nodal/pkg/function"
	"github.com/chazu/nodal/pkg/kernel"
)

// Meshes walks values, descending into nested lists, and meshes every solid
// with k at the given resolution. Meshes already present in the values are
// kept as they are. Other values are skipped. Each mesh is named after
// name and its position in the result, e.g. "box[1][0]".
func Meshes(values []any, k kernel.Kernel, name string, cells int) ([]*kernel.Mesh, error) {
	var meshes []*kernel.Mesh
	for i, v := range values {
		collected, err := walkValue(k, v, fmt.Sprintf("%s[%d]", name, i), cells)
		if err != nil {
			return nil, err
		}
		meshes = append(meshes, collected...)
	}
	return meshes, nil
}

// walkValue recursively traverses a value, collecting meshes.
func walkValue(k kernel.Kernel, v any, name string, cells int) ([]*kernel.Mesh, error) {
	switch x := v.(type) {
	case kernel.Solid:
		mesh, err := k.ToMesh(x, cells)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %s: %w", name, err)
		}
		mesh.Name = name
		return []*kernel.Mesh{mesh}, nil

	case *kernel.Mesh:
		m := *x
		if m.Name == "" {
			m.Name = name
		}
		return []*kernel.Mesh{&m}, nil
	}

	list, ok := function.AsList(v)
	if !ok {
		return nil, nil
	}
	return Meshes(list, k, name, cells)
}
