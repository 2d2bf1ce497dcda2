package stl

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/kerf/pkg/mesh"
)

const asciiTriangle = `solid wedge
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 0 1 0.5
    endloop
  endfacet
endsolid wedge
`

func TestReadASCII(t *testing.T) {
	m, err := Read(strings.NewReader(asciiTriangle))
	require.NoError(t, err)
	assert.Equal(t, "wedge", m.Name)
	require.Equal(t, 1, m.Len())

	tri := m.Triangles[0]
	assert.Equal(t, v3.Vec{Z: 1}, tri.Normal)
	assert.Equal(t, v3.Vec{X: 0, Y: 1, Z: 0.5}, tri.Vertices[2])
}

func TestReadASCIIErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		substr string
	}{
		{"bad keyword", "solid x\n bogus 1 2 3\n", "unknown keyword"},
		{"bad number", "solid x\n facet normal 0 0 q\n", "line 2"},
		{"short facet", "solid x\n facet normal 0 0 1\n outer loop\n vertex 0 0 0\n endloop\n endfacet\n", "has 1 vertices"},
		{"unterminated", "solid x\n facet normal 0 0 1\n outer loop\n vertex 0 0 0\n", "unterminated"},
		{"vertex outside facet", "solid x\n vertex 0 0 0\n", "unexpected vertex"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.source))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.substr)
		})
	}
}

func TestReadUnknownEncoding(t *testing.T) {
	_, err := Read(strings.NewReader("not a mesh"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized")
}

func TestBinaryRoundTrip(t *testing.T) {
	cube := mesh.Box("cube", v3.Vec{X: -1, Y: -2, Z: -3}, v3.Vec{X: 1, Y: 2, Z: 3})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cube))
	assert.Equal(t, headerSize+4+recordSize*12, buf.Len())

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, "cube", got.Name)
	assert.Equal(t, cube.Triangles, got.Triangles)
}

// A binary file whose header begins with "solid" must still be decoded as
// binary; many exporters write such headers.
func TestBinaryWithSolidHeader(t *testing.T) {
	cube := mesh.Box("solid cube", v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cube))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Len())
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	cube := mesh.Box("cube", v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	require.NoError(t, WriteFile(path, cube))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cube.Len(), got.Len())
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.stl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.stl")
}
