// Package cut intersects a triangle mesh with a horizontal plane and emits
// one 2D line segment for every triangle that crosses it.
package cut

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/chazu/kerf/pkg/mesh"
)

// OnPlanePolicy decides which side a vertex lying exactly on the cutting
// plane is counted on.
type OnPlanePolicy int

const (
	// OnPlaneAbove counts z == h as above (z >= h).
	OnPlaneAbove OnPlanePolicy = iota
	// OnPlaneBelow counts z == h as below (z > h is above).
	OnPlaneBelow
)

func (p OnPlanePolicy) String() string {
	switch p {
	case OnPlaneAbove:
		return "above"
	case OnPlaneBelow:
		return "below"
	default:
		return fmt.Sprintf("OnPlanePolicy(%d)", int(p))
	}
}

// ParseOnPlanePolicy converts "above" or "below" into a policy.
func ParseOnPlanePolicy(s string) (OnPlanePolicy, error) {
	switch s {
	case "above", "":
		return OnPlaneAbove, nil
	case "below":
		return OnPlaneBelow, nil
	default:
		return 0, errors.Errorf("cut: unknown on-plane policy %q (want above or below)", s)
	}
}

// Plane is a horizontal cutting plane z = Height.
type Plane struct {
	Height  float64
	OnPlane OnPlanePolicy
}

// Above classifies a vertex against the plane.
func (p Plane) Above(v v3.Vec) bool {
	if p.OnPlane == OnPlaneBelow {
		return v.Z > p.Height
	}
	return v.Z >= p.Height
}

// Segment is the line where one triangle crosses the plane, projected onto
// the xy plane.
type Segment struct {
	Triangle int       // index of the source triangle
	Points   [2]v2.Vec // cut points on the two edges leaving the lone vertex
	Normal   v2.Vec    // xy projection of the triangle normal
}

// MalformedGeometryError reports a crossing triangle whose intersection
// cannot be computed.
type MalformedGeometryError struct {
	Triangle int
	Reason   string
}

func (e *MalformedGeometryError) Error() string {
	return fmt.Sprintf("cut: triangle %d: %s", e.Triangle, e.Reason)
}

// Intersect returns one segment for every triangle with one or two vertices
// above the plane, in triangle order. Triangles entirely on one side are
// skipped. The first triangle whose cut is undefined aborts the call with
// a *MalformedGeometryError.
func Intersect(triangles []mesh.Triangle, p Plane) ([]Segment, error) {
	var segments []Segment
	for i, t := range triangles {
		seg, crosses, err := intersectTriangle(i, t, p)
		if err != nil {
			return nil, err
		}
		if crosses {
			segments = append(segments, seg)
		}
	}
	return segments, nil
}

// intersectTriangle solves a single triangle. crosses is false when all
// three vertices fall on the same side.
func intersectTriangle(index int, t mesh.Triangle, p Plane) (Segment, bool, error) {
	above := [3]bool{p.Above(t.Vertices[0]), p.Above(t.Vertices[1]), p.Above(t.Vertices[2])}
	n := lo.Count(above[:], true)
	if n == 0 || n == 3 {
		return Segment{}, false, nil
	}
	if !t.IsFinite() {
		return Segment{}, false, &MalformedGeometryError{Triangle: index, Reason: "non-finite vertex coordinates"}
	}

	// The shared vertex is the one alone on its side of the plane.
	var shared int
	switch {
	case above[0] != above[1] && above[0] != above[2]:
		shared = 0
	case above[1] != above[0] && above[1] != above[2]:
		shared = 1
	default:
		shared = 2
	}
	s := t.Vertices[shared]
	others := [2]v3.Vec{t.Vertices[(shared+1)%3], t.Vertices[(shared+2)%3]}

	seg := Segment{
		Triangle: index,
		Normal:   v2.Vec{X: t.Normal.X, Y: t.Normal.Y},
	}
	for k, o := range others {
		pt, err := edgePoint(s, o, p.Height)
		if err != nil {
			return Segment{}, false, &MalformedGeometryError{
				Triangle: index,
				Reason:   fmt.Sprintf("edge %d-%d: %v", shared, (shared+1+k)%3, err),
			}
		}
		seg.Points[k] = pt
	}
	return seg, true, nil
}

// edgePoint returns the xy position where the edge s->o reaches height h.
func edgePoint(s, o v3.Vec, h float64) (v2.Vec, error) {
	dz := o.Z - s.Z
	if dz == 0 {
		return v2.Vec{}, errors.Errorf("edge is horizontal at z=%g", s.Z)
	}
	t := (h - s.Z) / dz
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 || t > 1 {
		return v2.Vec{}, errors.Errorf("intersection fraction %g outside [0,1]", t)
	}
	return v2.Vec{
		X: s.X + t*(o.X-s.X),
		Y: s.Y + t*(o.Y-s.Y),
	}, nil
}
