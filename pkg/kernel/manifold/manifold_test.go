//go:build manifold

package manifold

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/mesh"
)

func mustNew(t *testing.T) kernel.Kernel {
	t.Helper()
	k, err := New(32)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return k
}

func mustSolid(t *testing.T, s kernel.Solid, err error) kernel.Solid {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func checkBounds(t *testing.T, s kernel.Solid, wantMin, wantMax v3.Vec) {
	t.Helper()
	min, max := s.BoundingBox()
	near := func(a, b v3.Vec) bool {
		return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6 && math.Abs(a.Z-b.Z) < 1e-6
	}
	if !near(min, wantMin) || !near(max, wantMax) {
		t.Errorf("bounds = %v - %v, want %v - %v", min, max, wantMin, wantMax)
	}
}

func TestBox(t *testing.T) {
	k := mustNew(t)
	s := mustSolid(t, k.Box(v3.Vec{X: 10, Y: 20, Z: 30}))
	checkBounds(t, s, v3.Vec{}, v3.Vec{X: 10, Y: 20, Z: 30})

	if _, err := k.Box(v3.Vec{X: 1, Y: 0, Z: 1}); err == nil {
		t.Error("Box() with zero size: error = nil")
	}
}

func TestCylinder(t *testing.T) {
	k := mustNew(t)
	s := mustSolid(t, k.Cylinder(20, 5))
	min, max := s.BoundingBox()

	// Centered, so Z spans [-10, 10]. The polygon is inscribed in the circle.
	if math.Abs(min.Z+10) > 0.01 || math.Abs(max.Z-10) > 0.01 {
		t.Errorf("Cylinder Z = [%f, %f], want ~[-10, 10]", min.Z, max.Z)
	}
	if min.X > -4.5 || max.X < 4.5 || min.Y > -4.5 || max.Y < 4.5 {
		t.Errorf("Cylinder XY bounds = %v - %v", min, max)
	}
}

func TestDifference(t *testing.T) {
	k := mustNew(t)
	box := mustSolid(t, k.Box(v3.Vec{X: 10, Y: 10, Z: 10}))
	hole := mustSolid(t, k.Cylinder(20, 3))
	result := k.Difference(box, k.Translate(hole, v3.Vec{X: 5, Y: 5, Z: 5}))

	// The hole is inside the box footprint, so the bounds do not change.
	checkBounds(t, result, v3.Vec{}, v3.Vec{X: 10, Y: 10, Z: 10})
}

func TestTranslate(t *testing.T) {
	k := mustNew(t)
	box := mustSolid(t, k.Box(v3.Vec{X: 10, Y: 10, Z: 10}))
	moved := k.Translate(box, v3.Vec{X: 100, Y: 200, Z: 300})
	checkBounds(t, moved, v3.Vec{X: 100, Y: 200, Z: 300}, v3.Vec{X: 110, Y: 210, Z: 310})
}

func TestToMesh(t *testing.T) {
	k := mustNew(t)
	box := mustSolid(t, k.Box(v3.Vec{X: 10, Y: 10, Z: 10}))
	m, err := k.ToMesh(box, "box")
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m.Len() != 12 {
		t.Errorf("ToMesh() triangle count = %d, want 12", m.Len())
	}
	if r := mesh.Validate(m); !r.OK() {
		t.Errorf("ToMesh() mesh has validation errors: %v", r.Errors)
	}
}
