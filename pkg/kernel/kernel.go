// Package kernel defines the solid modeling interface used by the solid
// functions. Solids are opaque values that flow through node graphs like any
// other value; meshes are what export and point conversion see.
package kernel

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds and combines solids. Constructors return errors for
// degenerate dimensions instead of panicking, since their arguments come
// from user-edited ports.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Transforms
	Translate(s Solid, x, y, z float64) (Solid, error)
	Rotate(s Solid, x, y, z float64) (Solid, error) // Euler angles in degrees

	// Mesh output; cells is the tessellation resolution along the longest axis.
	ToMesh(s Solid, cells int) (*Mesh, error)
}
