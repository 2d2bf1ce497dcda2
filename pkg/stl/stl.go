// Package stl reads and writes STL surface meshes. Both the binary and the
// ASCII encodings are accepted on input; output is always binary.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/pkg/errors"

	"github.com/chazu/kerf/pkg/mesh"
)

const (
	headerSize = 80
	recordSize = 50 // normal + 3 vertices as float32, plus a uint16 attribute
)

// Read decodes an STL stream. The encoding is detected from the payload:
// a stream whose length matches the binary triangle count is binary, one
// starting with "solid" is otherwise parsed as ASCII.
func Read(r io.Reader) (*mesh.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "stl: read")
	}
	if isBinary(data) {
		return decodeBinary(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return decodeASCII(data)
	}
	return nil, errors.New("stl: unrecognized encoding")
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stl: open %s", path)
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "stl: %s", path)
	}
	return m, nil
}

func isBinary(data []byte) bool {
	if len(data) < headerSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[headerSize:])
	return uint64(len(data)) == uint64(headerSize+4)+uint64(n)*recordSize
}

func decodeBinary(data []byte) (*mesh.Mesh, error) {
	name := strings.TrimRight(string(bytes.TrimRight(data[:headerSize], "\x00")), " ")
	n := int(binary.LittleEndian.Uint32(data[headerSize:]))
	m := mesh.New(name)
	m.Triangles = make([]mesh.Triangle, 0, n)

	body := data[headerSize+4:]
	for i := 0; i < n; i++ {
		rec := body[i*recordSize : (i+1)*recordSize]
		var t mesh.Triangle
		t.Normal = readVec(rec[0:])
		for v := range t.Vertices {
			t.Vertices[v] = readVec(rec[12+12*v:])
		}
		m.Add(t)
	}
	return m, nil
}

func readVec(b []byte) v3.Vec {
	f := func(off int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b[off:])))
	}
	return v3.Vec{X: f(0), Y: f(4), Z: f(8)}
}

func decodeASCII(data []byte) (*mesh.Mesh, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	m := mesh.New("")

	var (
		cur     mesh.Triangle
		nVerts  int
		inFacet bool
		line    int
	)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}
		case "facet":
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, errors.Errorf("stl: line %d: malformed facet", line)
			}
			n, err := parseVec(fields[2:])
			if err != nil {
				return nil, errors.Wrapf(err, "stl: line %d", line)
			}
			cur = mesh.Triangle{Normal: n}
			nVerts = 0
			inFacet = true
		case "vertex":
			if !inFacet || nVerts >= 3 || len(fields) != 4 {
				return nil, errors.Errorf("stl: line %d: unexpected vertex", line)
			}
			v, err := parseVec(fields[1:])
			if err != nil {
				return nil, errors.Wrapf(err, "stl: line %d", line)
			}
			cur.Vertices[nVerts] = v
			nVerts++
		case "endfacet":
			if !inFacet || nVerts != 3 {
				return nil, errors.Errorf("stl: line %d: facet %d has %d vertices", line, m.Len(), nVerts)
			}
			m.Add(cur)
			inFacet = false
		case "outer", "endloop", "endsolid":
		default:
			return nil, errors.Errorf("stl: line %d: unknown keyword %q", line, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "stl: scan")
	}
	if inFacet {
		return nil, errors.New("stl: unterminated facet")
	}
	return m, nil
}

func parseVec(fields []string) (v3.Vec, error) {
	var c [3]float64
	for i, s := range fields {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return v3.Vec{}, errors.Wrapf(err, "coordinate %q", s)
		}
		c[i] = f
	}
	return v3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// Write encodes m as binary STL.
func Write(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:], m.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return errors.Wrap(err, "stl: write header")
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(m.Len())); err != nil {
		return errors.Wrap(err, "stl: write count")
	}

	var rec [recordSize]byte
	for i, t := range m.Triangles {
		putVec(rec[0:], t.Normal)
		for v, p := range t.Vertices {
			putVec(rec[12+12*v:], p)
		}
		if _, err := bw.Write(rec[:]); err != nil {
			return errors.Wrapf(err, "stl: write triangle %d", i)
		}
	}
	return errors.Wrap(bw.Flush(), "stl: flush")
}

// WriteFile creates path and encodes m into it.
func WriteFile(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "stl: create %s", path)
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "stl: close %s", path)
}

func putVec(b []byte, v v3.Vec) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}
