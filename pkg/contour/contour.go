// Package contour stitches the unordered segment endpoints held in a
// registry back into ordered outlines. From a seed point it repeatedly jumps
// to the point's segment partner, then asks the spatial index for the
// nearest unvisited endpoint next to that partner, which is the entry of the
// adjacent segment.
package contour

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chazu/kerf/pkg/registry"
)

// Index finds the next endpoint during a walk. *quadtree.Tree implements it.
type Index interface {
	NearestUnvisited(query v2.Vec, excludeID int, visited []bool) (int, error)
}

// Contour is the ordered list of registry ids produced by one walk. When
// Closed, the last id repeats the first.
type Contour struct {
	IDs     []int
	Closed  bool
	Stalled bool  // the walk ended without returning to its seed
	Err     error // why a stalled walk stopped, if the index reported it
}

// Len returns the number of distinct points visited.
func (c Contour) Len() int {
	if c.Closed {
		return len(c.IDs) - 1
	}
	return len(c.IDs)
}

// Points returns the coordinates of c.IDs in order.
func (c Contour) Points(reg *registry.Registry) []v2.Vec {
	pts := make([]v2.Vec, len(c.IDs))
	for i, id := range c.IDs {
		pts[i] = reg.Get(id).Coords
	}
	return pts
}

// Outline returns the contour as a simplified polygon (see Simplify). The
// closing point of a closed contour is not repeated.
func (c Contour) Outline(reg *registry.Registry, tol float64) Outline {
	return Outline{
		Points: Simplify(c.Points(reg), c.Closed, tol),
		Closed: c.Closed,
		Role:   c.Role(reg),
	}
}

// Role compares the winding of a closed contour with the projected normals
// of the triangles its segments came from. Each segment is traversed from
// its entry point to its partner. Normals pointing to the outside of the
// winding mean the contour encloses material.
func (c Contour) Role(reg *registry.Registry) Role {
	if !c.Closed || len(c.IDs) < 4 {
		return RoleUnknown
	}
	var area, facing float64
	for i := 1; i < len(c.IDs); i++ {
		a, b := reg.Get(c.IDs[i-1]).Coords, reg.Get(c.IDs[i]).Coords
		area += a.X*b.Y - b.X*a.Y
	}
	for _, id := range c.IDs[:len(c.IDs)-1] {
		r := reg.Get(id)
		q := reg.Get(r.PartnerID).Coords
		// Positive when the normal points to the right of the direction of
		// travel, which is outward for a counter-clockwise ring.
		facing += r.Normal.X*(q.Y-r.Coords.Y) - r.Normal.Y*(q.X-r.Coords.X)
	}
	switch p := area * facing; {
	case p > 0:
		return RoleOuter
	case p < 0:
		return RoleHole
	}
	return RoleUnknown
}

// StallError reports a contour that could not be closed when the walker was
// asked to stop on the first stall.
type StallError struct {
	Contour int // index of the offending contour
	Seed    int // registry id the walk started from
	Last    int // last registry id reached
	Err     error
}

func (e *StallError) Error() string {
	msg := fmt.Sprintf("contour %d: walk from point %d stalled at point %d", e.Contour, e.Seed, e.Last)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StallError) Unwrap() error {
	return e.Err
}

// Options controls Reconstruct.
type Options struct {
	// AllContours keeps seeding new walks from the lowest unvisited id once
	// a walk ends. Without it only the contour through id 0 is traced.
	AllContours bool
	// StopOnStall aborts the run with a *StallError as soon as a walk fails
	// to close.
	StopOnStall bool
}

// Walker owns the visited set for one reconstruction pass.
type Walker struct {
	reg     *registry.Registry
	idx     Index
	visited []bool
	log     logrus.FieldLogger
}

// NewWalker returns a walker over reg using idx, with nothing visited.
func NewWalker(reg *registry.Registry, idx Index, log logrus.FieldLogger) *Walker {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Walker{
		reg:     reg,
		idx:     idx,
		visited: make([]bool, reg.Len()),
		log:     log,
	}
}

// Visited reports whether id has been consumed by a walk.
func (w *Walker) Visited(id int) bool {
	return w.visited[id]
}

// Walk traces one contour from start.
//
// Each step queries the index at the current point's partner, excluding
// the partner itself, and moves to the answer. Entered points and their
// partners are marked visited, so the walk takes at most reg.Len() steps.
// It ends Closed when the answer is start, and Stalled when the answer is
// the current point, the index finds nothing, or the step bound runs out.
// start is marked visited when the walk ends.
func (w *Walker) Walk(start int) Contour {
	if start < 0 || start >= w.reg.Len() {
		return Contour{Stalled: true, Err: errors.Errorf("contour: seed %d out of range [0,%d)", start, w.reg.Len())}
	}
	if w.visited[start] {
		return Contour{Stalled: true, Err: errors.Errorf("contour: seed %d already visited", start)}
	}

	c := Contour{IDs: []int{start}}
	defer func() { w.visited[start] = true }()
	w.visited[w.reg.Partner(start)] = true

	p1 := start
	for steps := 0; steps < w.reg.Len(); steps++ {
		partner := w.reg.Get(p1).PartnerID
		p2, err := w.idx.NearestUnvisited(w.reg.Get(partner).Coords, partner, w.visited)
		if err != nil {
			c.Stalled, c.Err = true, err
			return c
		}
		if p2 == start && len(c.IDs) > 1 {
			c.IDs = append(c.IDs, start)
			c.Closed = true
			return c
		}
		if p2 == p1 || p2 == start {
			c.Stalled = true
			return c
		}
		w.visited[p2] = true
		w.visited[w.reg.Partner(p2)] = true
		c.IDs = append(c.IDs, p2)
		p1 = p2
	}
	c.Stalled = true
	return c
}

// Reconstruct walks the registry and returns the contours found, in seed
// order. With StopOnStall the contours traced so far are returned together
// with a *StallError.
func (w *Walker) Reconstruct(opts Options) ([]Contour, error) {
	var contours []Contour
	for seed := 0; seed < w.reg.Len(); seed++ {
		if w.visited[seed] {
			continue
		}
		c := w.Walk(seed)
		contours = append(contours, c)
		w.log.WithFields(logrus.Fields{
			"contour": len(contours) - 1,
			"seed":    seed,
			"points":  c.Len(),
			"closed":  c.Closed,
		}).Debug("walked contour")

		if c.Stalled && opts.StopOnStall {
			return contours, &StallError{
				Contour: len(contours) - 1,
				Seed:    seed,
				Last:    c.IDs[len(c.IDs)-1],
				Err:     c.Err,
			}
		}
		if !opts.AllContours {
			break
		}
	}
	return contours, nil
}
