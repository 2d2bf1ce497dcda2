// Package raster draws cut segments and contours into a square grayscale
// image and encodes it. World coordinates are mapped with a uniform scale
// that fits the bounds inside a one-pixel margin, with +y pointing up.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/pkg/errors"

	"github.com/chazu/kerf/pkg/contour"
	"github.com/chazu/kerf/pkg/cut"
	"github.com/chazu/kerf/pkg/registry"
)

const (
	// DefaultSize is the width and height of the image in pixels.
	DefaultSize = 600
	// Margin is the blank border, in pixels, kept on every side.
	Margin = 1

	// SegmentShade is the gray level of raw cut segments.
	SegmentShade uint8 = 60
	// ContourShade is the gray level of walked contour edges.
	ContourShade uint8 = 255
)

// Style selects how lines are drawn.
type Style int

const (
	// StyleCrisp plots one-pixel lines into an 8-bit gray image.
	StyleCrisp Style = iota
	// StyleSmooth strokes anti-aliased lines with draw2d.
	StyleSmooth
)

func (s Style) String() string {
	switch s {
	case StyleCrisp:
		return "crisp"
	case StyleSmooth:
		return "smooth"
	default:
		return "unknown"
	}
}

// ParseStyle maps "crisp" (or "") and "smooth" to a Style.
func ParseStyle(s string) (Style, error) {
	switch s {
	case "", "crisp":
		return StyleCrisp, nil
	case "smooth":
		return StyleSmooth, nil
	default:
		return 0, errors.Errorf("raster: unknown style %q", s)
	}
}

// Viewport maps world xy coordinates to pixel coordinates.
type Viewport struct {
	Size  int
	Min   v2.Vec
	Scale float64
}

// NewViewport fits the rectangle [min,max] into a size x size image. A
// rectangle with no extent gets a scale of 1.
func NewViewport(size int, min, max v2.Vec) Viewport {
	extent := math.Max(max.X-min.X, max.Y-min.Y)
	scale := 1.0
	if extent > 0 {
		scale = float64(size-1-2*Margin) / extent
	}
	return Viewport{Size: size, Min: min, Scale: scale}
}

// Pixel returns the pixel position of p. Row 0 is the top of the image.
func (v Viewport) Pixel(p v2.Vec) (x, y float64) {
	x = Margin + (p.X-v.Min.X)*v.Scale
	y = float64(v.Size-1-Margin) - (p.Y-v.Min.Y)*v.Scale
	return x, y
}

// Canvas is a black square image that lines are drawn onto.
type Canvas struct {
	vp    Viewport
	style Style
	img   draw.Image
	gc    *draw2dimg.GraphicContext // StyleSmooth only
}

// NewCanvas returns a blank canvas covering [min,max].
func NewCanvas(size int, min, max v2.Vec, style Style) *Canvas {
	c := &Canvas{vp: NewViewport(size, min, max), style: style}
	r := image.Rect(0, 0, size, size)
	if style == StyleSmooth {
		rgba := image.NewRGBA(r)
		draw.Draw(rgba, r, image.Black, image.Point{}, draw.Src)
		c.img = rgba
		c.gc = draw2dimg.NewGraphicContext(rgba)
		c.gc.SetLineWidth(1)
	} else {
		c.img = image.NewGray(r)
	}
	return c
}

// Viewport returns the canvas coordinate mapping.
func (c *Canvas) Viewport() Viewport {
	return c.vp
}

// Image returns the drawn image.
func (c *Canvas) Image() image.Image {
	return c.img
}

// Line draws the world-space segment a-b.
func (c *Canvas) Line(a, b v2.Vec, shade uint8) {
	x0, y0 := c.vp.Pixel(a)
	x1, y1 := c.vp.Pixel(b)
	if c.style == StyleSmooth {
		c.gc.SetStrokeColor(color.Gray{Y: shade})
		c.gc.BeginPath()
		c.gc.MoveTo(x0+0.5, y0+0.5)
		c.gc.LineTo(x1+0.5, y1+0.5)
		c.gc.Stroke()
		return
	}
	c.dda(x0, y0, x1, y1, color.Gray{Y: shade})
}

// dda steps along the longer axis one pixel at a time.
func (c *Canvas) dda(x0, y0, x1, y1 float64, col color.Gray) {
	dx, dy := x1-x0, y1-y0
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		c.plot(x0, y0, col)
		return
	}
	for i := 0; i <= steps; i++ {
		f := float64(i) / float64(steps)
		c.plot(x0+f*dx, y0+f*dy, col)
	}
}

func (c *Canvas) plot(x, y float64, col color.Gray) {
	px, py := int(math.Round(x)), int(math.Round(y))
	if image.Pt(px, py).In(c.img.Bounds()) {
		c.img.Set(px, py, col)
	}
}

// DrawSegments draws every cut segment.
func (c *Canvas) DrawSegments(segs []cut.Segment, shade uint8) {
	for _, s := range segs {
		c.Line(s.Points[0], s.Points[1], shade)
	}
}

// DrawContours draws the edges between consecutive walked points.
func (c *Canvas) DrawContours(contours []contour.Contour, reg *registry.Registry, shade uint8) {
	for _, ct := range contours {
		pts := ct.Points(reg)
		for i := 1; i < len(pts); i++ {
			c.Line(pts[i-1], pts[i], shade)
		}
	}
}

// DrawOutlines draws simplified outlines, closing the closed ones.
func (c *Canvas) DrawOutlines(outlines []contour.Outline, shade uint8) {
	for _, o := range outlines {
		o.Edges(func(a, b v2.Vec) { c.Line(a, b, shade) })
	}
}
