package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

type elemKind uint8

const (
	elemPoint elemKind = iota
	elemSeg
	elemArc
)

// element is one piece of a shape skeleton: a point, a segment or an arc.
type element struct {
	kind elemKind
	a, b r2.Vec
	arc  *arcGeom
}

func pointElem(p Vec) element {
	return element{kind: elemPoint, a: p.r2()}
}

func segElem(a, b Vec) element {
	if a == b {
		return pointElem(a)
	}
	return element{kind: elemSeg, a: a.r2(), b: b.r2()}
}

func arcElem(g *arcGeom) element {
	if g.straight {
		return element{kind: elemSeg, a: g.start, b: g.end}
	}
	return element{kind: elemArc, a: g.start, b: g.end, arc: g}
}

// first returns a point lying on the element.
func (e element) first() r2.Vec {
	return e.a
}

// elemDistance returns the distance between two skeleton elements together
// with the closest point on each of them.
func elemDistance(x, y element) (float64, r2.Vec, r2.Vec) {
	switch x.kind {
	case elemPoint:
		switch y.kind {
		case elemPoint:
			return r2.Norm(r2.Sub(x.a, y.a)), x.a, y.a
		case elemSeg:
			d, q := pointSegDistance(x.a, y.a, y.b)
			return d, x.a, q
		default:
			d, q := pointArcDistance(x.a, y.arc)
			return d, x.a, q
		}
	case elemSeg:
		switch y.kind {
		case elemPoint:
			d, q := pointSegDistance(y.a, x.a, x.b)
			return d, q, y.a
		case elemSeg:
			return segSegDistance(x.a, x.b, y.a, y.b)
		default:
			return segArcDistance(x.a, x.b, y.arc)
		}
	default:
		switch y.kind {
		case elemPoint:
			d, q := pointArcDistance(y.a, x.arc)
			return d, q, y.a
		case elemSeg:
			d, pa, pb := segArcDistance(y.a, y.b, x.arc)
			return d, pb, pa
		default:
			return arcArcDistance(x.arc, y.arc)
		}
	}
}

func pointSegDistance(p, a, b r2.Vec) (float64, r2.Vec) {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a)), a
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	switch {
	case t <= 0:
		return r2.Norm(r2.Sub(p, a)), a
	case t >= 1:
		return r2.Norm(r2.Sub(p, b)), b
	}
	q := r2.Add(a, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p, q)), q
}

func pointArcDistance(p r2.Vec, g *arcGeom) (float64, r2.Vec) {
	v := r2.Sub(p, g.center)
	if r := r2.Norm(v); r > 0 && g.containsAngle(angleOf(v)) {
		q := r2.Add(g.center, r2.Scale(g.radius/r, v))
		return math.Abs(r - g.radius), q
	}
	ds := r2.Norm(r2.Sub(p, g.start))
	de := r2.Norm(r2.Sub(p, g.end))
	if ds <= de {
		return ds, g.start
	}
	return de, g.end
}

func orientation(a, b, c r2.Vec) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}

// segIntersection returns the intersection point of two segments, if any.
func segIntersection(a1, b1, a2, b2 r2.Vec) (r2.Vec, bool) {
	d1 := r2.Sub(b1, a1)
	d2 := r2.Sub(b2, a2)
	den := r2.Cross(d1, d2)
	if den == 0 {
		// Parallel. Collinear overlap is reported through endpoint distances.
		if orientation(a1, b1, a2) != 0 {
			return r2.Vec{}, false
		}
		for _, p := range []r2.Vec{a2, b2} {
			if d, _ := pointSegDistance(p, a1, b1); d == 0 {
				return p, true
			}
		}
		for _, p := range []r2.Vec{a1, b1} {
			if d, _ := pointSegDistance(p, a2, b2); d == 0 {
				return p, true
			}
		}
		return r2.Vec{}, false
	}
	w := r2.Sub(a2, a1)
	t := r2.Cross(w, d2) / den
	u := r2.Cross(w, d1) / den
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return r2.Vec{}, false
	}
	return r2.Add(a1, r2.Scale(t, d1)), true
}

func segSegDistance(a1, b1, a2, b2 r2.Vec) (float64, r2.Vec, r2.Vec) {
	if p, ok := segIntersection(a1, b1, a2, b2); ok {
		return 0, p, p
	}
	best, pa, pb := math.Inf(1), r2.Vec{}, r2.Vec{}
	try := func(d float64, x, y r2.Vec) {
		if d < best {
			best, pa, pb = d, x, y
		}
	}
	d, q := pointSegDistance(a1, a2, b2)
	try(d, a1, q)
	d, q = pointSegDistance(b1, a2, b2)
	try(d, b1, q)
	d, q = pointSegDistance(a2, a1, b1)
	try(d, q, a2)
	d, q = pointSegDistance(b2, a1, b1)
	try(d, q, b2)
	return best, pa, pb
}

// segArcDistance returns the distance between segment a-b and an arc. The
// minimum lies at an endpoint of either element, at an intersection, or at
// the foot of the perpendicular from the arc centre onto the segment.
func segArcDistance(a, b r2.Vec, g *arcGeom) (float64, r2.Vec, r2.Vec) {
	best, ps, pc := math.Inf(1), r2.Vec{}, r2.Vec{}
	try := func(d float64, onSeg, onArc r2.Vec) {
		if d < best {
			best, ps, pc = d, onSeg, onArc
		}
	}

	d, q := pointArcDistance(a, g)
	try(d, a, q)
	d, q = pointArcDistance(b, g)
	try(d, b, q)
	d, q = pointSegDistance(g.start, a, b)
	try(d, q, g.start)
	d, q = pointSegDistance(g.end, a, b)
	try(d, q, g.end)

	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return best, ps, pc
	}

	// Line/circle intersections within both the segment and the sweep.
	f := r2.Sub(a, g.center)
	bq := 2 * r2.Dot(f, ab)
	cq := r2.Norm2(f) - g.radius*g.radius
	if disc := bq*bq - 4*l2*cq; disc >= 0 {
		sq := math.Sqrt(disc)
		for _, t := range []float64{(-bq - sq) / (2 * l2), (-bq + sq) / (2 * l2)} {
			if t < 0 || t > 1 {
				continue
			}
			p := r2.Add(a, r2.Scale(t, ab))
			if g.containsAngle(angleOf(r2.Sub(p, g.center))) {
				return 0, p, p
			}
		}
	}

	// Foot of the perpendicular from the centre.
	t := r2.Dot(r2.Sub(g.center, a), ab) / l2
	if t > 0 && t < 1 {
		foot := r2.Add(a, r2.Scale(t, ab))
		dir := r2.Sub(foot, g.center)
		if r2.Norm(dir) > 0 && g.containsAngle(angleOf(dir)) {
			onArc := g.pointAt(angleOf(dir))
			d, q := pointSegDistance(onArc, a, b)
			try(d, q, onArc)
		}
	}
	return best, ps, pc
}

// arcArcDistance returns the distance between two arcs. Interior critical
// points of two circles lie on the line through both centres; everything else
// is an endpoint or an intersection.
func arcArcDistance(x, y *arcGeom) (float64, r2.Vec, r2.Vec) {
	best, px, py := math.Inf(1), r2.Vec{}, r2.Vec{}
	try := func(d float64, onX, onY r2.Vec) {
		if d < best {
			best, px, py = d, onX, onY
		}
	}

	d, q := pointArcDistance(x.start, y)
	try(d, x.start, q)
	d, q = pointArcDistance(x.end, y)
	try(d, x.end, q)
	d, q = pointArcDistance(y.start, x)
	try(d, q, y.start)
	d, q = pointArcDistance(y.end, x)
	try(d, q, y.end)

	cc := r2.Sub(y.center, x.center)
	dc := r2.Norm(cc)
	if dc == 0 {
		return best, px, py
	}

	// Circle/circle intersections.
	if dc <= x.radius+y.radius && dc >= math.Abs(x.radius-y.radius) {
		along := (dc*dc + x.radius*x.radius - y.radius*y.radius) / (2 * dc)
		h := math.Sqrt(math.Max(0, x.radius*x.radius-along*along))
		u := r2.Scale(1/dc, cc)
		base := r2.Add(x.center, r2.Scale(along, u))
		perp := r2.Vec{X: -u.Y, Y: u.X}
		for _, p := range []r2.Vec{r2.Add(base, r2.Scale(h, perp)), r2.Sub(base, r2.Scale(h, perp))} {
			if x.containsAngle(angleOf(r2.Sub(p, x.center))) && y.containsAngle(angleOf(r2.Sub(p, y.center))) {
				return 0, p, p
			}
		}
	}

	theta := angleOf(cc)
	for _, a := range []float64{theta, theta + math.Pi} {
		if x.containsAngle(a) {
			onX := x.pointAt(a)
			d, q := pointArcDistance(onX, y)
			try(d, onX, q)
		}
		if y.containsAngle(a) {
			onY := y.pointAt(a)
			d, q := pointArcDistance(onY, x)
			try(d, q, onY)
		}
	}
	return best, px, py
}

// pointInPolygon is an even-odd ray cast. Points on the boundary are handled
// by the edge distance test, not here.
func pointInPolygon(p r2.Vec, pts []Vec) bool {
	inside := false
	n := len(pts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := pts[i].r2(), pts[j].r2()
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
