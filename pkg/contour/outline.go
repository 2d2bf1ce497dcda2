package contour

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Role tells whether a closed contour bounds material or a hole in it.
type Role int

const (
	// RoleUnknown is reported for open contours and for contours whose
	// source normals are missing or inconsistent.
	RoleUnknown Role = iota
	// RoleOuter is an outline with material inside it.
	RoleOuter
	// RoleHole is an outline with empty space inside it.
	RoleHole
)

func (r Role) String() string {
	switch r {
	case RoleOuter:
		return "outer"
	case RoleHole:
		return "hole"
	default:
		return "unknown"
	}
}

// Outline is a contour reduced to its corner points.
type Outline struct {
	Points []v2.Vec // closing point not repeated
	Closed bool
	Role   Role
}

// Edges calls fn for every edge of the outline, including the closing edge
// of a closed outline.
func (o Outline) Edges(fn func(a, b v2.Vec)) {
	for i := 1; i < len(o.Points); i++ {
		fn(o.Points[i-1], o.Points[i])
	}
	if o.Closed && len(o.Points) > 2 {
		fn(o.Points[len(o.Points)-1], o.Points[0])
	}
}

// Simplify removes consecutive points closer than tol and interior points
// that lie within tol of the straight line through their neighbors. For a
// closed polyline the input may or may not repeat its first point; the
// result never does, and corners are considered cyclically.
//
// The walk enters every segment once, so a straight run of the outline made
// of many segments comes back as many collinear points; Simplify collapses
// it to its two ends.
func Simplify(pts []v2.Vec, closed bool, tol float64) []v2.Vec {
	out := make([]v2.Vec, 0, len(pts))
	for _, p := range pts {
		if len(out) == 0 || !near(out[len(out)-1], p, tol) {
			out = append(out, p)
		}
	}
	if closed {
		for len(out) > 1 && near(out[0], out[len(out)-1], tol) {
			out = out[:len(out)-1]
		}
	}

	for changed := true; changed && len(out) > 2; {
		changed = false
		for i := 0; i < len(out) && len(out) > 2; {
			n := len(out)
			if !closed && (i == 0 || i == n-1) {
				i++
				continue
			}
			prev, next := out[(i+n-1)%n], out[(i+1)%n]
			if between(prev, out[i], next, tol) {
				out = append(out[:i], out[i+1:]...)
				changed = true
				if i > 0 {
					i--
				}
				continue
			}
			i++
		}
	}
	return out
}

func near(a, b v2.Vec, tol float64) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx+dy*dy <= tol*tol
}

// between reports whether b lies within tol of segment a-c.
func between(a, b, c v2.Vec, tol float64) bool {
	acx, acy := c.X-a.X, c.Y-a.Y
	abx, aby := b.X-a.X, b.Y-a.Y
	l2 := acx*acx + acy*acy
	if l2 <= tol*tol {
		return false
	}
	if math.Abs(acx*aby-acy*abx)/math.Sqrt(l2) > tol {
		return false
	}
	dot := acx*abx + acy*aby
	return dot >= 0 && dot <= l2
}
