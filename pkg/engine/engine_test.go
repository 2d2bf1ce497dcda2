package engine

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"

	"github.com/chazu/kerf/pkg/kernel"
	"github.com/chazu/kerf/pkg/mesh"
)

// fakeSolid records how it was built.
type fakeSolid struct {
	desc     string
	min, max v3.Vec
}

func (s *fakeSolid) BoundingBox() (min, max v3.Vec) { return s.min, s.max }

// fakeKernel tracks bounding boxes and logs every call.
type fakeKernel struct {
	calls []string
}

func (k *fakeKernel) log(format string, args ...interface{}) {
	k.calls = append(k.calls, fmt.Sprintf(format, args...))
}

func (k *fakeKernel) Box(size v3.Vec) (kernel.Solid, error) {
	k.log("box %g %g %g", size.X, size.Y, size.Z)
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, errors.New("size must be positive")
	}
	return &fakeSolid{desc: "box", max: size}, nil
}

func (k *fakeKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	k.log("cylinder %g %g", height, radius)
	return &fakeSolid{
		desc: "cylinder",
		min:  v3.Vec{X: -radius, Y: -radius, Z: -height / 2},
		max:  v3.Vec{X: radius, Y: radius, Z: height / 2},
	}, nil
}

func (k *fakeKernel) Sphere(radius float64) (kernel.Solid, error) {
	k.log("sphere %g", radius)
	r := v3.Vec{X: radius, Y: radius, Z: radius}
	return &fakeSolid{desc: "sphere", min: v3.Vec{}.Sub(r), max: r}, nil
}

func (k *fakeKernel) Union(a, b kernel.Solid) kernel.Solid {
	k.log("union %s %s", a.(*fakeSolid).desc, b.(*fakeSolid).desc)
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	return &fakeSolid{desc: "union", min: amin.Min(bmin), max: amax.Max(bmax)}
}

func (k *fakeKernel) Difference(a, b kernel.Solid) kernel.Solid {
	k.log("difference %s %s", a.(*fakeSolid).desc, b.(*fakeSolid).desc)
	min, max := a.BoundingBox()
	return &fakeSolid{desc: "difference", min: min, max: max}
}

func (k *fakeKernel) Translate(s kernel.Solid, d v3.Vec) kernel.Solid {
	k.log("translate %s %g %g %g", s.(*fakeSolid).desc, d.X, d.Y, d.Z)
	min, max := s.BoundingBox()
	return &fakeSolid{desc: s.(*fakeSolid).desc, min: min.Add(d), max: max.Add(d)}
}

func (k *fakeKernel) Rotate(s kernel.Solid, deg v3.Vec) kernel.Solid {
	k.log("rotate %s %g %g %g", s.(*fakeSolid).desc, deg.X, deg.Y, deg.Z)
	return s
}

func (k *fakeKernel) ToMesh(s kernel.Solid, name string) (*mesh.Mesh, error) {
	min, max := s.BoundingBox()
	return mesh.Box(name, min, max), nil
}

func evalOK(t *testing.T, source string) (*fakeSolid, *fakeKernel) {
	t.Helper()
	k := &fakeKernel{}
	s, evalErrs, err := NewEngine(k).Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil solid")
	}
	return s.(*fakeSolid), k
}

func evalErrors(t *testing.T, source string) []EvalError {
	t.Helper()
	s, evalErrs, err := NewEngine(&fakeKernel{}).Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil solid, got %v", s)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	return evalErrs
}

func TestEvaluateEmptyString(t *testing.T) {
	errs := evalErrors(t, "")
	if !strings.Contains(errs[0].Message, "empty") {
		t.Errorf("message = %q, want containing %q", errs[0].Message, "empty")
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	errs := evalErrors(t, "   \n\t  \n  ")
	if !strings.Contains(errs[0].Message, "empty") {
		t.Errorf("message = %q, want containing %q", errs[0].Message, "empty")
	}
}

func TestEvaluateNonSolidResult(t *testing.T) {
	errs := evalErrors(t, "(+ 1 2)")
	if !strings.Contains(errs[0].Message, "must end with a solid") {
		t.Errorf("message = %q, want containing %q", errs[0].Message, "must end with a solid")
	}
}

func TestEvaluateMultipleExpressions(t *testing.T) {
	source := `
(def w 10)
(def h (* w 2))
(box w w h)
`
	s, _ := evalOK(t, source)
	if s.max != (v3.Vec{X: 10, Y: 10, Z: 20}) {
		t.Errorf("max = %v, want (10,10,20)", s.max)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	evalErrors(t, "(box 1 2 3")
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	evalErrors(t, "(box undefined_width 2 3)")
}

func TestEvaluateBuiltinError(t *testing.T) {
	errs := evalErrors(t, "(box 0 1 1)")
	if !strings.Contains(errs[0].Message, "box") {
		t.Errorf("message = %q, want containing %q", errs[0].Message, "box")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	var err error = EvalError{Line: 3, Message: "bad thing"}
	if err.Error() != "line 3: bad thing" {
		t.Errorf("Error() = %q", err.Error())
	}
	err = EvalError{Message: "no line"}
	if err.Error() != "no line" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	source := `(translate (box 1 2 3) (vec3 1 1 1))`
	a, ka := evalOK(t, source)
	b, kb := evalOK(t, source)
	if a.min != b.min || a.max != b.max {
		t.Errorf("results differ: %v vs %v", a, b)
	}
	if strings.Join(ka.calls, ";") != strings.Join(kb.calls, ";") {
		t.Errorf("calls differ: %v vs %v", ka.calls, kb.calls)
	}
}

func TestSetTimeout(t *testing.T) {
	eng := NewEngine(&fakeKernel{})
	eng.SetTimeout(50 * time.Millisecond)
	if eng.timeout != 50*time.Millisecond {
		t.Errorf("timeout = %s, want 50ms", eng.timeout)
	}
	eng.SetTimeout(0)
	if eng.timeout != EvalTimeout {
		t.Errorf("timeout = %s, want %s", eng.timeout, EvalTimeout)
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// A channel that never sends stands in for a script that never finishes.
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult)

	start := time.Now()
	_, _, err := waitWithTimeout(ch, 1, 20*time.Millisecond, &mu, &gen)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error message, got: %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout took %s", time.Since(start))
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // Current generation is 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	// Pass generation 1 (stale).
	_, _, err := waitWithTimeout(ch, 1, time.Second, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "short line format",
			msg:      "line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
