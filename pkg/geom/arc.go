package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const angleEpsilon = 1e-9

// arcGeom holds the derived circle of a three-point arc.
type arcGeom struct {
	start, mid, end r2.Vec
	center          r2.Vec
	radius          float64
	startAngle      float64
	sweep           float64 // signed, radians
	straight        bool    // collinear points: behaves as the chord start-end
}

func newArcGeom(s, m, e r2.Vec) *arcGeom {
	g := &arcGeom{start: s, mid: m, end: e}

	// Work relative to the start point to keep magnitudes small.
	b := r2.Sub(m, s)
	c := r2.Sub(e, s)
	if s == e {
		// Full circle: start and end coincide, mid is diametrically opposite.
		g.center = r2.Add(s, r2.Scale(0.5, b))
		g.radius = r2.Norm(b) / 2
		g.startAngle = angleOf(r2.Sub(s, g.center))
		g.sweep = 2 * math.Pi
		return g
	}

	d := 2 * r2.Cross(b, c)
	if math.Abs(d) < 1e-6 {
		g.straight = true
		return g
	}

	bb := r2.Norm2(b)
	cc := r2.Norm2(c)
	ux := (c.Y*bb - b.Y*cc) / d
	uy := (b.X*cc - c.X*bb) / d
	g.center = r2.Add(s, r2.Vec{X: ux, Y: uy})
	g.radius = math.Hypot(ux, uy)

	g.startAngle = angleOf(r2.Sub(s, g.center))
	dMid := normAngle(angleOf(r2.Sub(m, g.center)) - g.startAngle)
	dEnd := normAngle(angleOf(r2.Sub(e, g.center)) - g.startAngle)
	if dMid <= dEnd {
		g.sweep = dEnd
	} else {
		g.sweep = dEnd - 2*math.Pi
	}
	return g
}

// containsAngle reports whether the direction theta falls inside the sweep.
func (g *arcGeom) containsAngle(theta float64) bool {
	if g.sweep >= 0 {
		return normAngle(theta-g.startAngle) <= g.sweep+angleEpsilon
	}
	return normAngle(g.startAngle-theta) <= -g.sweep+angleEpsilon
}

func (g *arcGeom) pointAt(theta float64) r2.Vec {
	return r2.Add(g.center, r2.Vec{X: g.radius * math.Cos(theta), Y: g.radius * math.Sin(theta)})
}

// box returns the bounding box of the arc centerline.
func (g *arcGeom) box() Box {
	b := NewBox(fromR2(g.start), fromR2(g.end), fromR2(g.mid))
	if g.straight {
		return b
	}
	for q := 0; q < 4; q++ {
		theta := float64(q) * math.Pi / 2
		if g.containsAngle(theta) {
			b = b.extend(fromR2(g.pointAt(theta)))
		}
	}
	// Rounding of the extreme points can shave a nanometre off.
	return b.Inflate(1)
}

func angleOf(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// normAngle maps a to [0, 2π).
func normAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
