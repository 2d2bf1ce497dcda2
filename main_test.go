package main

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/kerf/pkg/cut"
	"github.com/chazu/kerf/pkg/mesh"
	"github.com/chazu/kerf/pkg/stl"
)

// run executes the CLI with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

// writeBox writes an exact 10-unit box and returns its path.
func writeBox(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "box.stl")
	_, err := run(t, "primitive", "box", "--exact", "--size", "10", "--out", path, "--log-level", "error")
	require.NoError(t, err)
	return path
}

// --- primitive ---

func TestPrimitiveExactBox(t *testing.T) {
	path := writeBox(t, t.TempDir())
	m, err := stl.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 12, m.Len())
}

func TestPrimitiveTessellated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sphere.stl")
	_, err := run(t, "primitive", "sphere", "--cells", "20", "--out", path, "--log-level", "error")
	require.NoError(t, err)

	m, err := stl.ReadFile(path)
	require.NoError(t, err)
	assert.Greater(t, m.Len(), 12)
}

func TestPrimitiveRejectsBadArgs(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "primitive", "torus", "--out", filepath.Join(dir, "t.stl"))
	assert.Error(t, err)

	_, err = run(t, "primitive", "sphere", "--exact", "--out", filepath.Join(dir, "s.stl"))
	assert.Error(t, err)

	_, err = run(t, "primitive", "box", "--size", "-1", "--out", filepath.Join(dir, "b.stl"))
	assert.Error(t, err)
}

// --- build ---

func TestBuildScriptThenSlice(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "block.zy")
	require.NoError(t, os.WriteFile(script, []byte(`
; hollow block
(def side 10)
(difference
  (box side side side)
  (translate (cylinder :height 15 :radius 2.5) (vec3 5 5 5)))
`), 0o644))

	_, err := run(t, "build", script, "--cells", "30", "--log-level", "error")
	require.NoError(t, err)

	stlPath := filepath.Join(dir, "block.stl")
	m, err := stl.ReadFile(stlPath)
	require.NoError(t, err)
	assert.Greater(t, m.Len(), 12)

	out, err := run(t, "slice", stlPath, "--height", "5", "--all-contours",
		"--out", filepath.Join(dir, "block.png"), "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "contours:")
}

func TestBuildReportsScriptErrors(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "bad.zy")
	require.NoError(t, os.WriteFile(script, []byte(`(+ 1 2)`), 0o644))
	out := filepath.Join(dir, "bad.stl")

	_, err := run(t, "build", script, "--out", out, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must end with a solid")
	assert.NoFileExists(t, out)

	_, err = run(t, "build", filepath.Join(dir, "missing.zy"))
	assert.Error(t, err)
}

// --- slice ---

func TestSliceBox(t *testing.T) {
	dir := t.TempDir()
	in := writeBox(t, dir)
	img := filepath.Join(dir, "slice.png")
	vec := filepath.Join(dir, "slice.geojson")

	out, err := run(t, "slice", in, "--height", "5", "--out", img, "--contours", vec,
		"--all-contours", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "segments: 8")
	assert.Contains(t, out, "contours: 1 (closed 1)")

	f, err := os.Open(img)
	require.NoError(t, err)
	defer f.Close()
	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 600, decoded.Bounds().Dx())

	data, err := os.ReadFile(vec)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Polygon", fc.Features[0].Geometry.GeoJSONType())
	assert.Equal(t, 4.0, fc.Features[0].Properties["points"])
}

func TestSliceWithConfig(t *testing.T) {
	dir := t.TempDir()
	in := writeBox(t, dir)
	img := filepath.Join(dir, "from-config.bmp")
	conf := filepath.Join(dir, "kerf.yaml")
	body := "height: 2\noutput: " + img + "\nlog_level: error\nimage:\n  size: 64\n"
	require.NoError(t, os.WriteFile(conf, []byte(body), 0o644))

	out, err := run(t, "slice", in, "--config", conf)
	require.NoError(t, err)
	assert.Contains(t, out, "closed 1")
	assert.FileExists(t, img)
}

func TestSliceRequiresHeight(t *testing.T) {
	in := writeBox(t, t.TempDir())
	_, err := run(t, "slice", in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--height")
}

func TestSliceRejectsBadFlags(t *testing.T) {
	in := writeBox(t, t.TempDir())
	_, err := run(t, "slice", in, "--height", "5", "--on-plane", "sideways")
	assert.Error(t, err)

	_, err = run(t, "slice", in, "--height", "5", "--out", "slice.jpg")
	assert.Error(t, err)
}

func TestSliceMalformedWritesNothing(t *testing.T) {
	dir := t.TempDir()
	m := mesh.Box("cube", v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	m.Add(mesh.Triangle{Vertices: [3]v3.Vec{{}, {X: math.NaN()}, {Y: 1, Z: 1}}})
	in := filepath.Join(dir, "bad.stl")
	require.NoError(t, stl.WriteFile(in, m))

	img := filepath.Join(dir, "bad.png")
	_, err := run(t, "slice", in, "--height", "0.5", "--out", img, "--log-level", "error")
	require.Error(t, err)

	var mg *cut.MalformedGeometryError
	require.True(t, errors.As(err, &mg))
	assert.Equal(t, 12, mg.Triangle)
	assert.Contains(t, err.Error(), "triangle 12")
	assert.NoFileExists(t, img)
}

func TestSliceMissesMesh(t *testing.T) {
	dir := t.TempDir()
	in := writeBox(t, dir)
	img := filepath.Join(dir, "empty.png")

	out, err := run(t, "slice", in, "--height", "50", "--out", img, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "segments: 0")
	assert.FileExists(t, img)
}

// --- info ---

func TestInfo(t *testing.T) {
	in := writeBox(t, t.TempDir())
	out, err := run(t, "info", in)
	require.NoError(t, err)
	assert.Contains(t, out, "triangles: 12")
	assert.Contains(t, out, "bounds: (0, 0, 0) - (10, 10, 10)")
	assert.Contains(t, out, "errors: 0")
}

func TestInfoReportsInvalidTriangles(t *testing.T) {
	dir := t.TempDir()
	m := mesh.New("bad")
	m.Add(mesh.Triangle{Vertices: [3]v3.Vec{{}, {X: math.Inf(1)}, {Y: 1}}})
	in := filepath.Join(dir, "bad.stl")
	require.NoError(t, stl.WriteFile(in, m))

	out, err := run(t, "info", in)
	require.Error(t, err)
	assert.True(t, strings.Contains(out, "triangle 0"), out)
}
