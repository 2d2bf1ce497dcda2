// Package section runs the full cross-section pipeline over a mesh: cut the
// triangles with the plane, register the segment endpoints, index them in a
// quadtree over their bounds, and walk the index into contours.
package section

import (
	"time"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/chazu/kerf/pkg/contour"
	"github.com/chazu/kerf/pkg/cut"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/quadtree"
	"github.com/chazu/kerf/pkg/registry"
)

// DefaultTolerance is the distance under which outline points are merged
// or treated as collinear.
const DefaultTolerance = 1e-9

// Options configures one Section run.
type Options struct {
	Height  float64
	OnPlane cut.OnPlanePolicy

	// FromBase slices a copy of the mesh moved so its bounding box minimum
	// is at the origin. Height is then measured from the base.
	FromBase bool

	MinDiagonal2 float64 // zero selects quadtree.DefaultMinDiagonal2
	AllContours  bool
	StopOnStall  bool

	SimplifyTolerance float64 // zero selects DefaultTolerance

	Logger logrus.FieldLogger
}

// Stats counts what each stage produced.
type Stats struct {
	Triangles int
	Segments  int
	Points    int
	Contours  int
	Closed    int
	Tree      quadtree.Stats
	Offset    v3.Vec // translation applied by FromBase
	Elapsed   time.Duration
}

// Result holds every intermediate product of a run.
type Result struct {
	RunID     string
	Plane     cut.Plane
	Segments  []cut.Segment
	Registry  *registry.Registry
	Tree      *quadtree.Tree // nil when the plane misses the mesh
	Contours  []contour.Contour
	Stats     Stats
	tolerance float64
}

// Outlines returns every contour simplified to its corner points.
func (r *Result) Outlines() []contour.Outline {
	out := make([]contour.Outline, len(r.Contours))
	for i, c := range r.Contours {
		out[i] = c.Outline(r.Registry, r.tolerance)
	}
	return out
}

// Section cuts m at opts.Height and reconstructs the contours.
//
// A *cut.MalformedGeometryError or *quadtree.OutOfBoundsError aborts the run
// and no result is returned. With StopOnStall, a *contour.StallError is
// returned together with the partial result. A plane that misses the mesh
// is not an error; the result simply has no segments.
func Section(m *mesh.Mesh, opts Options) (*Result, error) {
	if m == nil {
		return nil, errors.New("section: nil mesh")
	}
	start := time.Now()

	res := &Result{
		RunID:     uuid.NewString(),
		Plane:     cut.Plane{Height: opts.Height, OnPlane: opts.OnPlane},
		tolerance: opts.SimplifyTolerance,
	}
	if res.tolerance <= 0 {
		res.tolerance = DefaultTolerance
	}
	log := logger(opts.Logger).WithFields(logrus.Fields{
		"run":    res.RunID,
		"mesh":   m.Name,
		"height": opts.Height,
	})

	if opts.FromBase {
		m = copyMesh(m)
		res.Stats.Offset = m.TranslateToOrigin()
		log.WithField("offset", res.Stats.Offset).Debug("moved mesh to origin")
	}
	res.Stats.Triangles = m.Len()

	segs, err := cut.Intersect(m.Triangles, res.Plane)
	if err != nil {
		return nil, errors.Wrap(err, "section")
	}
	res.Segments = segs
	res.Stats.Segments = len(segs)
	log.WithField("segments", len(segs)).Debug("intersected triangles")

	res.Registry = registry.FromSegments(segs)
	res.Stats.Points = res.Registry.Len()

	lo, hi, ok := res.Registry.Bounds()
	if !ok {
		res.Stats.Elapsed = time.Since(start)
		log.Info("plane does not cross the mesh")
		return res, nil
	}

	var treeOpts []quadtree.Option
	if opts.MinDiagonal2 > 0 {
		treeOpts = append(treeOpts, quadtree.WithMinDiagonal2(opts.MinDiagonal2))
	}
	res.Tree = quadtree.New(quadtree.Box{Min: lo, Max: hi}, treeOpts...)
	for _, r := range res.Registry.Records() {
		if err := res.Tree.Insert(quadtree.Item{ID: r.ID, Coords: r.Coords}); err != nil {
			return nil, errors.Wrapf(err, "section: index point %d", r.ID)
		}
	}
	res.Stats.Tree = res.Tree.Stats()
	log.WithFields(logrus.Fields{
		"points":    res.Stats.Points,
		"leaves":    res.Stats.Tree.Leaves,
		"depth":     res.Stats.Tree.MaxDepth,
		"overfills": res.Stats.Tree.Overfilled,
	}).Debug("built quadtree")

	w := contour.NewWalker(res.Registry, res.Tree, log)
	res.Contours, err = w.Reconstruct(contour.Options{
		AllContours: opts.AllContours,
		StopOnStall: opts.StopOnStall,
	})
	res.Stats.Contours = len(res.Contours)
	for _, c := range res.Contours {
		if c.Closed {
			res.Stats.Closed++
		}
	}
	res.Stats.Elapsed = time.Since(start)
	if err != nil {
		return res, errors.Wrap(err, "section")
	}

	log.WithFields(logrus.Fields{
		"segments": res.Stats.Segments,
		"contours": res.Stats.Contours,
		"closed":   res.Stats.Closed,
		"elapsed":  res.Stats.Elapsed,
	}).Info("section complete")
	return res, nil
}

func copyMesh(m *mesh.Mesh) *mesh.Mesh {
	c := mesh.New(m.Name)
	c.Triangles = append([]mesh.Triangle(nil), m.Triangles...)
	return c
}

func logger(l logrus.FieldLogger) logrus.FieldLogger {
	if l != nil {
		return l
	}
	quiet := logrus.New()
	quiet.SetLevel(logrus.PanicLevel)
	return quiet
}
