package geom

import (
	"fmt"
	"math"
)

// ShapeType identifies a concrete Shape.
type ShapeType uint8

const (
	ShapeCircle ShapeType = iota
	ShapeSegment
	ShapeArc
	ShapeLineChain
	ShapePolygon
)

func (t ShapeType) String() string {
	switch t {
	case ShapeCircle:
		return "circle"
	case ShapeSegment:
		return "segment"
	case ShapeArc:
		return "arc"
	case ShapeLineChain:
		return "line-chain"
	case ShapePolygon:
		return "polygon"
	default:
		return fmt.Sprintf("shape(%d)", t)
	}
}

// Shape is an immutable outline used in clearance tests.
//
// Every shape is described as a skeleton (points, segments, arcs, or a filled
// area) inflated by a radius. The set of implementations is closed.
type Shape interface {
	Type() ShapeType

	// BBox returns the bounding box inflated by clearance.
	BBox(clearance int64) Box

	elements() []element
	radius() float64
	area() []Vec // filled outline, nil when the shape has no interior
}

// Circle is a filled disc.
type Circle struct {
	Center Vec
	Radius int64
}

// NewCircle returns a disc centred at c.
func NewCircle(c Vec, radius int64) *Circle {
	return &Circle{Center: c, Radius: radius}
}

func (c *Circle) Type() ShapeType { return ShapeCircle }

func (c *Circle) BBox(clearance int64) Box {
	return NewBox(c.Center).Inflate(c.Radius + clearance)
}

func (c *Circle) elements() []element { return []element{pointElem(c.Center)} }
func (c *Circle) radius() float64     { return float64(c.Radius) }
func (c *Circle) area() []Vec         { return nil }

// Segment is a stroked straight segment with round ends (a capsule).
type Segment struct {
	A     Vec
	B     Vec
	Width int64
}

// NewSegment returns a stroked segment from a to b.
func NewSegment(a, b Vec, width int64) *Segment {
	return &Segment{A: a, B: b, Width: width}
}

func (s *Segment) Type() ShapeType { return ShapeSegment }

func (s *Segment) BBox(clearance int64) Box {
	return NewBox(s.A, s.B).Inflate((s.Width+1)/2 + clearance)
}

func (s *Segment) elements() []element { return []element{segElem(s.A, s.B)} }
func (s *Segment) radius() float64     { return float64(s.Width) / 2 }
func (s *Segment) area() []Vec         { return nil }

// Length returns the centerline length.
func (s *Segment) Length() float64 {
	return s.B.Sub(s.A).Norm()
}

// Arc is a stroked circular arc through Start, Mid and End.
type Arc struct {
	Start Vec
	Mid   Vec
	End   Vec
	Width int64
	g     *arcGeom
}

// NewArc returns a stroked arc. Collinear points degrade to a straight
// segment from start to end.
func NewArc(start, mid, end Vec, width int64) *Arc {
	return &Arc{
		Start: start,
		Mid:   mid,
		End:   end,
		Width: width,
		g:     newArcGeom(start.r2(), mid.r2(), end.r2()),
	}
}

func (a *Arc) Type() ShapeType { return ShapeArc }

func (a *Arc) BBox(clearance int64) Box {
	return a.g.box().Inflate((a.Width+1)/2 + clearance)
}

// Center returns the centre of the arc's circle.
func (a *Arc) Center() Vec { return fromR2(a.g.center) }

// Radius returns the centerline radius.
func (a *Arc) Radius() float64 { return a.g.radius }

// Sweep returns the signed sweep angle in degrees.
func (a *Arc) Sweep() float64 { return a.g.sweep * 180 / math.Pi }

func (a *Arc) elements() []element { return []element{arcElem(a.g)} }
func (a *Arc) radius() float64     { return float64(a.Width) / 2 }
func (a *Arc) area() []Vec         { return nil }

// LineChain is an open or closed polyline with no width. Routed lines are
// tested as centerlines and add their half width to the clearance.
type LineChain struct {
	Points []Vec
	Closed bool
}

// NewLineChain returns an open polyline through pts.
func NewLineChain(pts ...Vec) *LineChain {
	return &LineChain{Points: pts}
}

func (l *LineChain) Type() ShapeType { return ShapeLineChain }

func (l *LineChain) BBox(clearance int64) Box {
	return NewBox(l.Points...).Inflate(clearance)
}

// SegmentCount returns the number of segments in the chain.
func (l *LineChain) SegmentCount() int {
	n := len(l.Points) - 1
	if l.Closed && len(l.Points) > 2 {
		n++
	}
	return max(n, 0)
}

// CPoint returns the point at index i; negative indices count from the end.
func (l *LineChain) CPoint(i int) Vec {
	if i < 0 {
		i += len(l.Points)
	}
	return l.Points[i]
}

func (l *LineChain) elements() []element {
	if len(l.Points) == 1 {
		return []element{pointElem(l.Points[0])}
	}
	els := make([]element, 0, l.SegmentCount())
	for i := 0; i < l.SegmentCount(); i++ {
		els = append(els, segElem(l.Points[i], l.Points[(i+1)%len(l.Points)]))
	}
	return els
}

func (l *LineChain) radius() float64 { return 0 }
func (l *LineChain) area() []Vec     { return nil }

// Polygon is a filled simple polygon. The outline is implicitly closed.
type Polygon struct {
	Points []Vec
}

// NewPolygon returns a filled polygon with the given outline.
func NewPolygon(pts ...Vec) *Polygon {
	return &Polygon{Points: pts}
}

// NewRect returns a w x h rectangle centred at c, rotated by angle degrees.
func NewRect(c Vec, w, h int64, angle float64) *Polygon {
	hw, hh := w/2, h/2
	corners := []Vec{{-hw, -hh}, {w - hw, -hh}, {w - hw, h - hh}, {-hw, h - hh}}
	for i, p := range corners {
		corners[i] = p.Rotate(angle).Add(c)
	}
	return &Polygon{Points: corners}
}

// NewOval returns a stadium-shaped outline of size w x h centred at c. A
// square oval is a circle.
func NewOval(c Vec, w, h int64, angle float64) Shape {
	switch {
	case w == h:
		return NewCircle(c, w/2)
	case w > h:
		d := Vec{X: (w - h) / 2}.Rotate(angle)
		return NewSegment(c.Sub(d), c.Add(d), h)
	default:
		d := Vec{Y: (h - w) / 2}.Rotate(angle)
		return NewSegment(c.Sub(d), c.Add(d), w)
	}
}

func (p *Polygon) Type() ShapeType { return ShapePolygon }

func (p *Polygon) BBox(clearance int64) Box {
	return NewBox(p.Points...).Inflate(clearance)
}

func (p *Polygon) elements() []element {
	n := len(p.Points)
	if n == 1 {
		return []element{pointElem(p.Points[0])}
	}
	els := make([]element, 0, n)
	for i := range p.Points {
		els = append(els, segElem(p.Points[i], p.Points[(i+1)%n]))
	}
	return els
}

func (p *Polygon) radius() float64 { return 0 }

func (p *Polygon) area() []Vec {
	if len(p.Points) < 3 {
		return nil
	}
	return p.Points
}
