package mesh

import (
	"fmt"
	"math"
)

// ValidationSeverity indicates whether a finding blocks slicing or is
// merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks slicing
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a blocking problem with one triangle.
type ValidationError struct {
	Triangle int    // index into Mesh.Triangles (-1 if mesh-level)
	Message  string // human-readable description
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Triangle < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] triangle %d: %s", e.Severity, e.Triangle, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Triangle int
	Message  string
}

// ValidationResult bundles errors (blocking) and warnings (advisory).
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK returns true if no blocking errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// normalTolerance is how far |n|² may drift from 1 before a warning.
const normalTolerance = 1e-3

// Validate inspects the mesh without modifying it. Non-finite coordinates
// are errors; empty meshes, zero-area triangles and non-unit normals are
// warnings. It is not a watertightness check.
func Validate(m *Mesh) ValidationResult {
	var result ValidationResult
	if m == nil || m.IsEmpty() {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Triangle: -1,
			Message:  "mesh has no triangles",
		})
		return result
	}

	for i, t := range m.Triangles {
		if !t.IsFinite() {
			result.Errors = append(result.Errors, ValidationError{
				Triangle: i,
				Message:  "vertex coordinates must be finite",
				Severity: SeverityError,
			})
			continue
		}
		if t.Area() == 0 {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Triangle: i,
				Message:  "triangle has zero area",
			})
		}
		n2 := t.Normal.X*t.Normal.X + t.Normal.Y*t.Normal.Y + t.Normal.Z*t.Normal.Z
		if math.Abs(n2-1) > normalTolerance {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Triangle: i,
				Message:  fmt.Sprintf("normal length² is %.4f, want 1", n2),
			})
		}
	}

	return result
}
