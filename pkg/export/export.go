// Package export writes outlines as vector data: GeoJSON features and WKT
// through paulmach/orb, SVG drawings through ajstarks/svgo and DXF drawings
// through yofu/dxf.
package export

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	svg "github.com/ajstarks/svgo"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/yofu/dxf"

	"github.com/chazu/kerf/pkg/contour"
	"github.com/chazu/kerf/pkg/raster"
)

// Geometry converts an outline to a Polygon when it is closed and has at
// least three points, and to a LineString otherwise. Outlines with fewer
// than two points have no valid geometry and yield nil.
func Geometry(o contour.Outline) orb.Geometry {
	if !drawable(o) {
		return nil
	}
	if o.Closed && len(o.Points) >= 3 {
		ring := make(orb.Ring, 0, len(o.Points)+1)
		for _, p := range o.Points {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		ring = append(ring, ring[0])
		return orb.Polygon{ring}
	}
	ls := make(orb.LineString, len(o.Points))
	for i, p := range o.Points {
		ls[i] = orb.Point{p.X, p.Y}
	}
	return ls
}

// drawable reports whether o has at least one edge. Zero-length segments
// from vertices lying on the plane walk into single-point contours.
func drawable(o contour.Outline) bool {
	return len(o.Points) >= 2
}

// FeatureCollection returns one feature per drawable outline, in order.
// The index property is the outline's position in outlines.
func FeatureCollection(outlines []contour.Outline) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, o := range outlines {
		g := Geometry(o)
		if g == nil {
			continue
		}
		f := geojson.NewFeature(g)
		f.Properties = geojson.Properties{
			"index":  i,
			"closed": o.Closed,
			"points": len(o.Points),
			"role":   o.Role.String(),
		}
		if poly, ok := g.(orb.Polygon); ok {
			f.Properties["area"] = math.Abs(planar.Area(poly))
			f.Properties["orientation"] = orientation(poly[0])
		}
		fc.Append(f)
	}
	return fc
}

func orientation(r orb.Ring) string {
	switch r.Orientation() {
	case orb.CCW:
		return "ccw"
	case orb.CW:
		return "cw"
	default:
		return "degenerate"
	}
}

// WKT returns the well-known text of every drawable outline.
func WKT(outlines []contour.Outline) []string {
	out := make([]string, 0, len(outlines))
	for _, o := range outlines {
		if g := Geometry(o); g != nil {
			out = append(out, wkt.MarshalString(g))
		}
	}
	return out
}

// WriteGeoJSON encodes the outlines as a FeatureCollection.
func WriteGeoJSON(w io.Writer, outlines []contour.Outline) error {
	data, err := FeatureCollection(outlines).MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "export: geojson")
	}
	_, err = w.Write(append(data, '\n'))
	return errors.Wrap(err, "export: geojson")
}

// WriteWKT writes one outline per line.
func WriteWKT(w io.Writer, outlines []contour.Outline) error {
	for _, s := range WKT(outlines) {
		if _, err := io.WriteString(w, s+"\n"); err != nil {
			return errors.Wrap(err, "export: wkt")
		}
	}
	return nil
}

// WriteSVG draws the outlines white on black using the same pixel mapping
// as the raster image.
func WriteSVG(w io.Writer, outlines []contour.Outline, vp raster.Viewport) error {
	canvas := svg.New(w)
	canvas.Start(vp.Size, vp.Size)
	canvas.Rect(0, 0, vp.Size, vp.Size, "fill:black")
	for _, o := range lo.Filter(outlines, func(o contour.Outline, _ int) bool { return drawable(o) }) {
		xs, ys := make([]int, len(o.Points)), make([]int, len(o.Points))
		for i, p := range o.Points {
			x, y := vp.Pixel(p)
			xs[i], ys[i] = int(math.Round(x)), int(math.Round(y))
		}
		if o.Closed && len(o.Points) >= 3 {
			style := "fill:none;stroke:white"
			if o.Role == contour.RoleHole {
				style += ";stroke-dasharray:4,2"
			}
			canvas.Polygon(xs, ys, style)
		} else {
			canvas.Polyline(xs, ys, "fill:none;stroke:gray")
		}
	}
	canvas.End()
	return nil
}

// WriteDXF saves the outline edges as LINE entities in model units.
// Outlines with fewer than two points have no edges and add nothing.
func WriteDXF(path string, outlines []contour.Outline) error {
	d := dxf.NewDrawing()
	var err error
	for _, o := range outlines {
		o.Edges(func(a, b v2.Vec) {
			if err == nil {
				_, err = d.Line(a.X, a.Y, 0, b.X, b.Y, 0)
			}
		})
	}
	if err != nil {
		return errors.Wrap(err, "export: dxf")
	}
	return errors.Wrap(d.SaveAs(path), "export: dxf")
}

// Extensions lists the file extensions WriteFile understands.
var Extensions = []string{".geojson", ".json", ".wkt", ".svg", ".dxf"}

// CheckPath reports an error if WriteFile cannot encode path.
func CheckPath(path string) error {
	if !lo.Contains(Extensions, strings.ToLower(filepath.Ext(path))) {
		return errors.Errorf("export: unsupported contour format %q", filepath.Ext(path))
	}
	return nil
}

// WriteFile picks the encoding from the extension of path: .geojson or
// .json, .wkt, .svg, or .dxf.
func WriteFile(path string, outlines []contour.Outline, vp raster.Viewport) error {
	var write func(io.Writer) error
	if err := CheckPath(path); err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dxf":
		return WriteDXF(path, outlines)
	case ".geojson", ".json":
		write = func(w io.Writer) error { return WriteGeoJSON(w, outlines) }
	case ".wkt":
		write = func(w io.Writer) error { return WriteWKT(w, outlines) }
	default:
		write = func(w io.Writer) error { return WriteSVG(w, outlines, vp) }
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "export")
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "export")
}
