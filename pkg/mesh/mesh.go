// Package mesh defines the in-memory triangle soup that kerf slices.
// A Mesh is produced by the STL reader or by a geometry kernel and is
// treated as read-only by every downstream stage.
package mesh

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is one facet of a surface mesh.
type Triangle struct {
	Normal   v3.Vec    // unit normal as stored by the source
	Vertices [3]v3.Vec // corner positions
}

// Mesh is a named list of triangles. Triangle order carries no meaning.
type Mesh struct {
	Name      string
	Triangles []Triangle
}

// New returns an empty mesh with the given name.
func New(name string) *Mesh {
	return &Mesh{Name: name}
}

// Add appends a triangle.
func (m *Mesh) Add(t Triangle) {
	m.Triangles = append(m.Triangles, t)
}

// Len returns the number of triangles.
func (m *Mesh) Len() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no triangles.
func (m *Mesh) IsEmpty() bool {
	return len(m.Triangles) == 0
}

// Bounds returns the axis-aligned bounding box of every finite vertex.
// ok is false when the mesh has no finite vertex.
func (m *Mesh) Bounds() (bb sdf.Box3, ok bool) {
	var lo, hi v3.Vec
	for _, t := range m.Triangles {
		for _, v := range t.Vertices {
			if !finite(v.X) || !finite(v.Y) || !finite(v.Z) {
				continue
			}
			if !ok {
				lo, hi, ok = v, v, true
				continue
			}
			lo = v3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
			hi = v3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
		}
	}
	return sdf.Box3{Min: lo, Max: hi}, ok
}

// Translate moves every vertex by d. Normals are unchanged.
func (m *Mesh) Translate(d v3.Vec) {
	for i := range m.Triangles {
		for j := range m.Triangles[i].Vertices {
			m.Triangles[i].Vertices[j] = m.Triangles[i].Vertices[j].Add(d)
		}
	}
}

// TranslateToOrigin moves the mesh so that its bounding box minimum sits at
// the origin: the base rests on z=0 and the outline lies in the positive
// xy quadrant. It returns the offset that was applied.
func (m *Mesh) TranslateToOrigin() v3.Vec {
	bb, ok := m.Bounds()
	if !ok {
		return v3.Vec{}
	}
	d := v3.Vec{X: -bb.Min.X, Y: -bb.Min.Y, Z: -bb.Min.Z}
	m.Translate(d)
	return d
}

// Area returns the triangle's surface area.
func (t Triangle) Area() float64 {
	e1 := t.Vertices[1].Sub(t.Vertices[0])
	e2 := t.Vertices[2].Sub(t.Vertices[0])
	c := v3.Vec{
		X: e1.Y*e2.Z - e1.Z*e2.Y,
		Y: e1.Z*e2.X - e1.X*e2.Z,
		Z: e1.X*e2.Y - e1.Y*e2.X,
	}
	return 0.5 * math.Sqrt(c.X*c.X+c.Y*c.Y+c.Z*c.Z)
}

// IsFinite reports whether every vertex coordinate is a finite number.
func (t Triangle) IsFinite() bool {
	for _, v := range t.Vertices {
		if !finite(v.X) || !finite(v.Y) || !finite(v.Z) {
			return false
		}
	}
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
