package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// nearest returns the distance between the skeletons of a and b and the
// closest point on each. Filled areas count as part of the skeleton.
func nearest(a, b Shape) (float64, r2.Vec, r2.Vec) {
	ea, eb := a.elements(), b.elements()
	best, pa, pb := math.Inf(1), r2.Vec{}, r2.Vec{}
	for _, x := range ea {
		for _, y := range eb {
			d, qa, qb := elemDistance(x, y)
			if d < best {
				best, pa, pb = d, qa, qb
				if d == 0 {
					return 0, pa, pb
				}
			}
		}
	}

	// Without a boundary crossing, one skeleton is either fully inside the
	// other's area or fully outside it.
	if poly := a.area(); poly != nil && len(eb) > 0 {
		if p := eb[0].first(); pointInPolygon(p, poly) {
			return 0, p, p
		}
	}
	if poly := b.area(); poly != nil && len(ea) > 0 {
		if p := ea[0].first(); pointInPolygon(p, poly) {
			return 0, p, p
		}
	}
	return best, pa, pb
}

// Distance returns the gap between the outlines of a and b. Overlapping
// shapes report a negative gap; shapes with touching skeletons report the
// negated sum of their radii.
func Distance(a, b Shape) float64 {
	d, _, _ := nearest(a, b)
	return d - a.radius() - b.radius()
}

// Collide reports whether a and b are closer than clearance. Shapes whose
// skeletons touch always collide.
func Collide(a, b Shape, clearance int64) bool {
	if clearance >= 0 && !a.BBox(clearance).Intersects(b.BBox(0)) {
		return false
	}
	d, _, _ := nearest(a, b)
	return d == 0 || d-a.radius()-b.radius() < float64(clearance)
}

// CollideLocate is Collide that also returns the actual gap (clamped at zero)
// and the point midway between the nearest features of both shapes.
func CollideLocate(a, b Shape, clearance int64) (bool, int64, Vec) {
	if clearance >= 0 && !a.BBox(clearance).Intersects(b.BBox(0)) {
		return false, 0, Vec{}
	}
	d, pa, pb := nearest(a, b)
	gap := d - a.radius() - b.radius()
	if d != 0 && gap >= float64(clearance) {
		return false, 0, Vec{}
	}
	actual := int64(math.Round(math.Max(gap, 0)))
	return true, actual, fromR2(r2.Scale(0.5, r2.Add(pa, pb)))
}

// Contains reports whether p lies inside or on the outline of s.
func Contains(s Shape, p Vec) bool {
	if !s.BBox(0).Contains(p) {
		return false
	}
	pt := pointElem(p)
	if poly := s.area(); poly != nil && pointInPolygon(pt.a, poly) {
		return true
	}
	r := s.radius()
	for _, e := range s.elements() {
		if d, _, _ := elemDistance(e, pt); d <= r {
			return true
		}
	}
	return false
}

// Closest returns the point midway between the nearest features of a and b.
func Closest(a, b Shape) Vec {
	_, pa, pb := nearest(a, b)
	return fromR2(r2.Scale(0.5, r2.Add(pa, pb)))
}

// NearestPoints returns the closest points of the skeletons of a and b.
// Each point lies inside its own shape.
func NearestPoints(a, b Shape) (Vec, Vec) {
	_, pa, pb := nearest(a, b)
	return fromR2(pa), fromR2(pb)
}
