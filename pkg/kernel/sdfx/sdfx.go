// Package sdfx implements kernel.Kernel with the github.com/deadsy/sdfx
// signed distance field library.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/nodal/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// DefaultMeshCells is the marching cubes resolution used when callers pass
// a non-positive cell count.
const DefaultMeshCells = 64

var (
	// ErrForeignSolid is returned when a solid from another kernel is passed in.
	ErrForeignSolid = errors.New("solid does not belong to the sdfx kernel")

	// ErrDimension is returned for zero or negative sizes.
	ErrDimension = errors.New("dimension must be positive")
)

func positive(what string, vals ...float64) error {
	for _, v := range vals {
		if !(v > 0) {
			return fmt.Errorf("sdfx: %s %g: %w", what, v, ErrDimension)
		}
	}
	return nil
}

// solid wraps an sdf.SDF3 to implement kernel.Solid.
type solid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

func (s *solid) String() string {
	lo, hi := s.BoundingBox()
	return fmt.Sprintf("<Solid %v..%v>", lo, hi)
}

// Kernel implements kernel.Kernel using sdfx. It holds no state.
type Kernel struct{}

// New returns a new Kernel.
func New() *Kernel {
	return &Kernel{}
}

func unwrap(s kernel.Solid) (sdf.SDF3, error) {
	w, ok := s.(*solid)
	if !ok || w == nil {
		return nil, fmt.Errorf("sdfx: %T: %w", s, ErrForeignSolid)
	}
	return w.s, nil
}

func unwrap2(a, b kernel.Solid) (sdf.SDF3, sdf.SDF3, error) {
	sa, err := unwrap(a)
	if err != nil {
		return nil, nil, err
	}
	sb, err := unwrap(b)
	if err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &solid{s: s}
}

// Box creates a box with its minimum corner at the origin, so translating
// it places that corner.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	if err := positive("box size", x, y, z); err != nil {
		return nil, err
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box %gx%gx%g: %w", x, y, z, err)
	}
	// sdf.Box3D is centered on the origin.
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// Cylinder creates a cylinder along Z, centered on the origin.
func (k *Kernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if err := positive("cylinder size", height, radius); err != nil {
		return nil, err
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder h=%g r=%g: %w", height, radius, err)
	}
	return wrap(s), nil
}

// Sphere creates a sphere centered on the origin.
func (k *Kernel) Sphere(radius float64) (kernel.Solid, error) {
	if err := positive("sphere radius", radius); err != nil {
		return nil, err
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere r=%g: %w", radius, err)
	}
	return wrap(s), nil
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := unwrap2(a, b)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Union3D(sa, sb)), nil
}

// Difference returns a with b cut away.
func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := unwrap2(a, b)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Difference3D(sa, sb)), nil
}

// Intersection returns the volume shared by both solids.
func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	sa, sb, err := unwrap2(a, b)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Intersect3D(sa, sb)), nil
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	inner, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	return wrap(sdf.Transform3D(inner, sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))), nil
}

// Rotate rotates a solid by Euler angles in degrees, applied X, then Y,
// then Z.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) (kernel.Solid, error) {
	inner, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	m := sdf.RotateZ(rad(z)).Mul(sdf.RotateY(rad(y))).Mul(sdf.RotateX(rad(x)))
	return wrap(sdf.Transform3D(inner, m)), nil
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *Kernel) ToMesh(s kernel.Solid, cells int) (*kernel.Mesh, error) {
	inner, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if cells <= 0 {
		cells = DefaultMeshCells
	}

	triangles := render.ToTriangles(inner, render.NewMarchingCubesUniform(cells))

	vertices := make([]float32, 0, len(triangles)*9)
	normals := make([]float32, 0, len(triangles)*9)
	indices := make([]uint32, 0, len(triangles)*3)

	for i, tri := range triangles {
		// Flat shading: every corner gets the face normal.
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{Vertices: vertices, Normals: normals, Indices: indices}, nil
}
