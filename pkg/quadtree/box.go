package quadtree

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Box is a closed axis-aligned rectangle [Min, Max].
type Box struct {
	Min v2.Vec
	Max v2.Vec
}

// Contains reports whether p lies inside the box or on its boundary.
func (b Box) Contains(p v2.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Mid returns the center of the box.
func (b Box) Mid() v2.Vec {
	return v2.Vec{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// Diagonal2 returns the squared length of the box diagonal.
func (b Box) Diagonal2() float64 {
	dx, dy := b.Max.X-b.Min.X, b.Max.Y-b.Min.Y
	return dx*dx + dy*dy
}

// Quadrant returns the index of the child box that p falls in:
//
//	0 = lower x, lower y
//	1 = lower x, upper y
//	2 = upper x, upper y
//	3 = upper x, lower y
//
// A coordinate equal to the midpoint counts as upper.
func (b Box) Quadrant(p v2.Vec) int {
	mid := b.Mid()
	if p.X < mid.X {
		if p.Y < mid.Y {
			return 0
		}
		return 1
	}
	if p.Y < mid.Y {
		return 3
	}
	return 2
}

// Child returns the sub-box for quadrant q, using the numbering of Quadrant.
func (b Box) Child(q int) Box {
	mid := b.Mid()
	switch q {
	case 0:
		return Box{Min: b.Min, Max: mid}
	case 1:
		return Box{Min: v2.Vec{X: b.Min.X, Y: mid.Y}, Max: v2.Vec{X: mid.X, Y: b.Max.Y}}
	case 2:
		return Box{Min: mid, Max: b.Max}
	case 3:
		return Box{Min: v2.Vec{X: mid.X, Y: b.Min.Y}, Max: v2.Vec{X: b.Max.X, Y: mid.Y}}
	default:
		panic(fmt.Sprintf("quadtree: invalid quadrant %d", q))
	}
}

func (b Box) String() string {
	return fmt.Sprintf("[(%g,%g) (%g,%g)]", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}
