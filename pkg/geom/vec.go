// Package geom provides the shape primitives and distance predicates used by
// the clearance engine.
//
// Coordinates are integer nanometres, the same unit KiCad uses internally.
// Distance math is carried out in float64 (via gonum's r2 vectors), which is
// exact for board-sized coordinates (well below 2^53 nm).
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a point or displacement in board coordinates (nanometres).
type Vec struct {
	X int64
	Y int64
}

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y int64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

// Dot returns the dot product of v and o.
func (v Vec) Dot(o Vec) int64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the cross product of v and o.
func (v Vec) Cross(o Vec) int64 {
	return v.X*o.Y - v.Y*o.X
}

// SquaredNorm returns |v|^2.
func (v Vec) SquaredNorm() int64 {
	return v.X*v.X + v.Y*v.Y
}

// Norm returns the Euclidean length of v.
func (v Vec) Norm() float64 {
	return math.Hypot(float64(v.X), float64(v.Y))
}

// Rotate rotates v around the origin by angle degrees. Positive angles turn
// counter-clockwise on screen, matching KiCad's Y-down convention.
func (v Vec) Rotate(angle float64) Vec {
	if angle == 0 {
		return v
	}
	rad := -angle * math.Pi / 180.0
	return fromR2(r2.Rotate(v.r2(), rad, r2.Vec{}))
}

// String implements fmt.Stringer.
func (v Vec) String() string {
	return fmt.Sprintf("(%d, %d)", v.X, v.Y)
}

func (v Vec) r2() r2.Vec {
	return r2.Vec{X: float64(v.X), Y: float64(v.Y)}
}

func fromR2(p r2.Vec) Vec {
	return Vec{X: int64(math.Round(p.X)), Y: int64(math.Round(p.Y))}
}

// Box is an axis-aligned bounding box. Min and Max are inclusive.
type Box struct {
	Min Vec
	Max Vec
}

// NewBox returns the smallest box holding all points.
func NewBox(pts ...Vec) Box {
	if len(pts) == 0 {
		return Box{}
	}
	b := Box{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b = b.extend(p)
	}
	return b
}

func (b Box) extend(p Vec) Box {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	return b
}

// Inflate grows the box by d on every side.
func (b Box) Inflate(d int64) Box {
	return Box{
		Min: Vec{X: b.Min.X - d, Y: b.Min.Y - d},
		Max: Vec{X: b.Max.X + d, Y: b.Max.Y + d},
	}
}

// Merge returns the smallest box containing b and o.
func (b Box) Merge(o Box) Box {
	return b.extend(o.Min).extend(o.Max)
}

// Intersects reports whether the two boxes share at least one point.
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Width returns the horizontal extent.
func (b Box) Width() int64 {
	return b.Max.X - b.Min.X
}

// Height returns the vertical extent.
func (b Box) Height() int64 {
	return b.Max.Y - b.Min.Y
}

// Centre returns the box centre.
func (b Box) Centre() Vec {
	return Vec{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}
