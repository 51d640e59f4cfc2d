package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollideCircleBoundary(t *testing.T) {
	const r1, r2, c = 500, 300, 200

	tests := []struct {
		name string
		dist int64
		want bool
	}{
		{"exactly at clearance", r1 + r2 + c, false},
		{"one below clearance", r1 + r2 + c - 1, true},
		{"far apart", 10000, false},
		{"overlapping", 100, true},
		{"concentric", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewCircle(V(0, 0), r1)
			b := NewCircle(V(tt.dist, 0), r2)
			assert.Equal(t, tt.want, Collide(a, b, c))
			assert.Equal(t, tt.want, Collide(b, a, c))
		})
	}
}

func TestCollideSegmentCircle(t *testing.T) {
	seg := NewSegment(V(0, 0), V(10000, 0), 200)

	assert.False(t, Collide(seg, NewCircle(V(10000, 3000), 500), 200))
	assert.True(t, Collide(seg, NewCircle(V(10000, 700), 500), 200))
	assert.True(t, Collide(seg, NewCircle(V(5000, 799), 500), 200))
	assert.False(t, Collide(seg, NewCircle(V(5000, 800), 500), 200))
}

func TestCollideLineChainCenterline(t *testing.T) {
	line := NewLineChain(V(0, 0), V(10000, 0), V(10000, 10000))
	via := NewCircle(V(11000, 5000), 400)

	// 1000 between centerline and via centre, radius 400 leaves a 600 gap.
	assert.False(t, Collide(line, via, 600))
	assert.True(t, Collide(line, via, 601))
}

func TestCollideSegmentsCrossing(t *testing.T) {
	a := NewSegment(V(0, 0), V(1000, 1000), 0)
	b := NewSegment(V(0, 1000), V(1000, 0), 0)
	assert.True(t, Collide(a, b, 0))

	c := NewSegment(V(0, 2000), V(1000, 2000), 100)
	assert.False(t, Collide(a, c, 0))
	assert.True(t, Collide(a, c, 1000))
}

func TestCollideArcs(t *testing.T) {
	// Quarter arcs of radius 1000 and 2000 around the origin.
	inner := NewArc(V(1000, 0), V(707, -707), V(0, -1000), 200)
	outer := NewArc(V(2000, 0), V(1414, -1414), V(0, -2000), 200)

	require.InDelta(t, 1000, inner.Radius(), 1)
	require.InDelta(t, 2000, outer.Radius(), 1)

	// Centerlines are 1000 apart, strokes take 200 of it.
	assert.False(t, Collide(inner, outer, 799))
	assert.True(t, Collide(inner, outer, 801))
	assert.InDelta(t, 800, Distance(inner, outer), 1)

	thin := NewArc(V(2000, 0), V(1414, -1414), V(0, -2000), 0)
	assert.InDelta(t, 900, Distance(inner, thin), 1)
}

func TestCollideArcSweep(t *testing.T) {
	// Upper half circle only; a point below the centre is near the
	// endpoints, not the curve.
	arc := NewArc(V(-1000, 0), V(0, -1000), V(1000, 0), 0)
	dot := NewCircle(V(0, 1000), 0)

	assert.InDelta(t, 1414, Distance(arc, dot), 1)
	assert.True(t, Collide(arc, NewCircle(V(0, -1100), 0), 101))
	assert.False(t, Collide(arc, NewCircle(V(0, -1100), 0), 99))
}

func TestCollideArcCrossingSegment(t *testing.T) {
	arc := NewArc(V(-1000, 0), V(0, -1000), V(1000, 0), 0)
	seg := NewSegment(V(0, 0), V(0, -5000), 0)
	assert.True(t, Collide(arc, seg, 0))

	below := NewSegment(V(0, 100), V(0, 5000), 0)
	assert.False(t, Collide(arc, below, 50))
}

func TestCollidePolygonContainment(t *testing.T) {
	pad := NewRect(V(0, 0), 2000, 1000, 0)

	inside := NewCircle(V(100, 100), 10)
	assert.True(t, Collide(pad, inside, 0))
	assert.True(t, Collide(inside, pad, 0))

	outside := NewCircle(V(1500, 0), 100)
	assert.False(t, Collide(pad, outside, 300))
	assert.True(t, Collide(pad, outside, 401))
}

func TestCollideLocate(t *testing.T) {
	a := NewCircle(V(0, 0), 500)
	b := NewCircle(V(1200, 0), 500)

	hit, actual, loc := CollideLocate(a, b, 300)
	require.True(t, hit)
	assert.Equal(t, int64(200), actual)
	assert.Equal(t, V(600, 0), loc)

	_, _, back := CollideLocate(b, a, 300)
	assert.Equal(t, loc, back)

	hit, _, _ = CollideLocate(a, b, 200)
	assert.False(t, hit)
}

func TestContains(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		p     Vec
		want  bool
	}{
		{"circle centre", NewCircle(V(0, 0), 100), V(0, 0), true},
		{"circle rim", NewCircle(V(0, 0), 100), V(100, 0), true},
		{"circle outside", NewCircle(V(0, 0), 100), V(101, 0), false},
		{"segment body", NewSegment(V(0, 0), V(1000, 0), 200), V(500, 100), true},
		{"segment cap", NewSegment(V(0, 0), V(1000, 0), 200), V(1100, 0), true},
		{"segment outside", NewSegment(V(0, 0), V(1000, 0), 200), V(500, 101), false},
		{"rect inside", NewRect(V(0, 0), 1000, 1000, 0), V(400, -400), true},
		{"rect outside", NewRect(V(0, 0), 1000, 1000, 0), V(600, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(tt.shape, tt.p))
		})
	}
}

func TestNewOval(t *testing.T) {
	assert.Equal(t, ShapeCircle, NewOval(V(0, 0), 1000, 1000, 0).Type())

	s, ok := NewOval(V(0, 0), 3000, 1000, 0).(*Segment)
	require.True(t, ok)
	assert.Equal(t, V(-1000, 0), s.A)
	assert.Equal(t, V(1000, 0), s.B)
	assert.Equal(t, int64(1000), s.Width)

	s, ok = NewOval(V(0, 0), 3000, 1000, 90).(*Segment)
	require.True(t, ok)
	assert.Equal(t, int64(0), s.A.X)
	assert.Equal(t, int64(1000), abs(s.A.Y))
}

func TestBoxInflateIntersects(t *testing.T) {
	a := NewBox(V(0, 0), V(100, 100))
	b := NewBox(V(150, 0), V(200, 100))
	assert.False(t, a.Intersects(b))
	assert.True(t, a.Inflate(50).Intersects(b))
	assert.Equal(t, V(100, 50), a.Merge(b).Centre())
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestClosest(t *testing.T) {
	a := NewCircle(V(0, 0), 500)
	b := NewSegment(V(1000, -1000), V(1000, 1000), 100)
	assert.Equal(t, V(500, 0), Closest(a, b))
	assert.Equal(t, Closest(a, b), Closest(b, a))
}
