// Package registry owns the endpoint records of every cut segment. Each
// segment contributes two records that name each other as partners; ids are
// dense offsets into the registry and never change once assigned.
package registry

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/kerf/pkg/cut"
)

// PointRecord is one segment endpoint.
type PointRecord struct {
	ID        int
	Coords    v2.Vec
	PartnerID int // the other endpoint of the same segment
	Triangle  int    // source triangle of the segment
	Normal    v2.Vec // xy projection of the source triangle normal
}

// Registry is an append-only list of paired point records.
type Registry struct {
	records []PointRecord
}

// New returns an empty registry with room for n segments.
func New(n int) *Registry {
	return &Registry{records: make([]PointRecord, 0, 2*n)}
}

// FromSegments registers every segment in order.
func FromSegments(segments []cut.Segment) *Registry {
	r := New(len(segments))
	for _, s := range segments {
		r.Register(s)
	}
	return r
}

// Register allocates two consecutive ids for the segment's endpoints and
// links them as partners.
func (r *Registry) Register(s cut.Segment) (PointRecord, PointRecord) {
	a := PointRecord{ID: len(r.records), Coords: s.Points[0], Triangle: s.Triangle, Normal: s.Normal}
	b := PointRecord{ID: a.ID + 1, Coords: s.Points[1], Triangle: s.Triangle, Normal: s.Normal}
	a.PartnerID, b.PartnerID = b.ID, a.ID
	r.records = append(r.records, a, b)
	return a, b
}

// Get returns the record with the given id. It panics if id is out of range.
func (r *Registry) Get(id int) PointRecord {
	return r.records[id]
}

// Partner returns the id of the other endpoint of id's segment.
func (r *Registry) Partner(id int) int {
	return r.records[id].PartnerID
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// Records returns the backing records. Callers must not modify them.
func (r *Registry) Records() []PointRecord {
	return r.records
}

// Bounds returns the bounding rectangle of every endpoint.
// ok is false for an empty registry.
func (r *Registry) Bounds() (min, max v2.Vec, ok bool) {
	if len(r.records) == 0 {
		return v2.Vec{}, v2.Vec{}, false
	}
	min, max = r.records[0].Coords, r.records[0].Coords
	for _, rec := range r.records[1:] {
		min = v2.Vec{X: math.Min(min.X, rec.Coords.X), Y: math.Min(min.Y, rec.Coords.Y)}
		max = v2.Vec{X: math.Max(max.X, rec.Coords.X), Y: math.Max(max.Y, rec.Coords.Y)}
	}
	return min, max, true
}
