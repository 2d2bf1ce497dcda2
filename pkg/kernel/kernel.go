// Package kernel defines the solid modeling interface used to build sample
// meshes. A backend (sdfx) builds solids from primitives and booleans and
// tessellates them into a mesh.Mesh that the section pipeline can cut.
package kernel

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/kerf/pkg/mesh"
)

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max v3.Vec)
}

// Kernel builds solids and turns them into triangle meshes.
type Kernel interface {
	// Primitives. Box has its minimum corner at the origin; Cylinder and
	// Sphere are centered on it.
	Box(size v3.Vec) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid

	// Transforms
	Translate(s Solid, d v3.Vec) Solid
	Rotate(s Solid, deg v3.Vec) Solid // Euler angles in degrees, applied X then Y then Z

	// Mesh output
	ToMesh(s Solid, name string) (*mesh.Mesh, error)
}
