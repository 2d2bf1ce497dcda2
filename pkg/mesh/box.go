package mesh

import v3 "github.com/deadsy/sdfx/vec/v3"

// boxFaces lists each face of a box as four corner indices in
// counter-clockwise order seen from outside, plus its outward normal.
// Corner i has bit 0 = x, bit 1 = y, bit 2 = z (0 = min, 1 = max).
var boxFaces = [6]struct {
	corners [4]int
	normal  v3.Vec
}{
	{[4]int{0, 2, 3, 1}, v3.Vec{Z: -1}}, // bottom
	{[4]int{4, 5, 7, 6}, v3.Vec{Z: 1}},  // top
	{[4]int{0, 1, 5, 4}, v3.Vec{Y: -1}}, // front
	{[4]int{2, 6, 7, 3}, v3.Vec{Y: 1}},  // back
	{[4]int{0, 4, 6, 2}, v3.Vec{X: -1}}, // left
	{[4]int{1, 3, 7, 5}, v3.Vec{X: 1}},  // right
}

// Box returns an axis-aligned box spanning min to max as exactly 12
// triangles, two per face.
func Box(name string, min, max v3.Vec) *Mesh {
	var corners [8]v3.Vec
	for i := range corners {
		c := min
		if i&1 != 0 {
			c.X = max.X
		}
		if i&2 != 0 {
			c.Y = max.Y
		}
		if i&4 != 0 {
			c.Z = max.Z
		}
		corners[i] = c
	}

	m := New(name)
	for _, f := range boxFaces {
		a, b, c, d := corners[f.corners[0]], corners[f.corners[1]], corners[f.corners[2]], corners[f.corners[3]]
		m.Add(Triangle{Normal: f.normal, Vertices: [3]v3.Vec{a, b, c}})
		m.Add(Triangle{Normal: f.normal, Vertices: [3]v3.Vec{a, c, d}})
	}
	return m
}

// Merge returns a new mesh holding the triangles of every input in order.
func Merge(name string, meshes ...*Mesh) *Mesh {
	out := New(name)
	for _, m := range meshes {
		if m == nil {
			continue
		}
		out.Triangles = append(out.Triangles, m.Triangles...)
	}
	return out
}
