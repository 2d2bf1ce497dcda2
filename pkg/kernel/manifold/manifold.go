//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold booleans
// always produce closed manifold meshes, so sections cut from its output
// close on every contour.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"runtime"
	"unsafe"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"

	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/mesh"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// DefaultSegments is the number of facets around cylinders and spheres.
const DefaultSegments = 64

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max v3.Vec) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min = v3.Vec{
		X: float64(C.manifold_box_min_x(bbox)),
		Y: float64(C.manifold_box_min_y(bbox)),
		Z: float64(C.manifold_box_min_z(bbox)),
	}
	max = v3.Vec{
		X: float64(C.manifold_box_max_x(bbox)),
		Y: float64(C.manifold_box_max_y(bbox)),
		Z: float64(C.manifold_box_max_z(bbox)),
	}
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

func unwrap(s kernel.Solid) *C.ManifoldManifold {
	return s.(*manifoldSolid).ptr
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct {
	segments int
}

// New creates a new ManifoldKernel. Non-positive segments select
// DefaultSegments.
func New(segments int) (kernel.Kernel, error) {
	if segments <= 0 {
		segments = DefaultSegments
	}
	return &ManifoldKernel{segments: segments}, nil
}

// Box creates an axis-aligned box with its minimum corner at the origin.
func (k *ManifoldKernel) Box(size v3.Vec) (kernel.Solid, error) {
	if !(size.X > 0 && size.Y > 0 && size.Z > 0) {
		return nil, errors.Errorf("manifold: box: size %v must be positive", size)
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(size.X), C.double(size.Y), C.double(size.Z),
		C.int(0), // center=false
	)
	return newSolid(ptr), nil
}

// Cylinder creates a cylinder along the Z axis centered at the origin.
func (k *ManifoldKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if !(height > 0 && radius > 0) {
		return nil, errors.Errorf("manifold: cylinder: height %g and radius %g must be positive", height, radius)
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(radius), // radius_low
		C.double(radius), // radius_high (same = not tapered)
		C.int(k.segments),
		C.int(1), // center=true
	)
	return newSolid(ptr), nil
}

// Sphere creates a sphere centered at the origin.
func (k *ManifoldKernel) Sphere(radius float64) (kernel.Solid, error) {
	if !(radius > 0) {
		return nil, errors.Errorf("manifold: sphere: radius %g must be positive", radius)
	}
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_sphere(alloc, C.double(radius), C.int(k.segments))
	return newSolid(ptr), nil
}

// Union returns the boolean union of two solids.
func (k *ManifoldKernel) Union(a, b kernel.Solid) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_union(alloc, unwrap(a), unwrap(b)))
}

// Difference returns the boolean difference (a minus b).
func (k *ManifoldKernel) Difference(a, b kernel.Solid) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	return newSolid(C.manifold_difference(alloc, unwrap(a), unwrap(b)))
}

// Translate moves the solid by d.
func (k *ManifoldKernel) Translate(s kernel.Solid, d v3.Vec) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_translate(alloc, unwrap(s),
		C.double(d.X), C.double(d.Y), C.double(d.Z),
	)
	return newSolid(ptr)
}

// Rotate rotates the solid by Euler angles (in degrees) around the X, Y, Z axes.
func (k *ManifoldKernel) Rotate(s kernel.Solid, deg v3.Vec) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_rotate(alloc, unwrap(s),
		C.double(deg.X), C.double(deg.Y), C.double(deg.Z),
	)
	return newSolid(ptr)
}

// ToMesh extracts the solid's MeshGL and expands its indexed triangles
// into a triangle soup with flat face normals.
func (k *ManifoldKernel) ToMesh(s kernel.Solid, name string) (*mesh.Mesh, error) {
	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, unwrap(s))
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return nil, errors.Errorf("manifold: %q has no triangles", name)
	}

	// The first 3 of numProp properties per vertex are the position.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	props := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&props[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	vertex := func(i uint32) (v3.Vec, error) {
		if int(i) >= numVert {
			return v3.Vec{}, errors.Errorf("manifold: vertex index %d out of range (%d vertices)", i, numVert)
		}
		base := int(i) * numProp
		return v3.Vec{
			X: float64(props[base+0]),
			Y: float64(props[base+1]),
			Z: float64(props[base+2]),
		}, nil
	}

	m := mesh.New(name)
	m.Triangles = make([]mesh.Triangle, 0, numTri)
	for t := 0; t < numTri; t++ {
		var tri mesh.Triangle
		for j := 0; j < 3; j++ {
			v, err := vertex(indices[t*3+j])
			if err != nil {
				return nil, err
			}
			tri.Vertices[j] = v
		}
		tri.Normal = faceNormal(tri.Vertices)
		m.Add(tri)
	}
	return m, nil
}

// faceNormal returns the unit normal of a counter-clockwise triangle, or
// the zero vector for a degenerate one.
func faceNormal(v [3]v3.Vec) v3.Vec {
	n := v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
	if l := n.Length(); l > 1e-12 {
		return n.DivScalar(l)
	}
	return v3.Vec{}
}
