package drc

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/router"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/rules"
)

func TestBuilderLayers(t *testing.T) {
	b := &builder{copper: []int{0, 1, 2, 31}}

	tests := []struct {
		name  string
		names []string
		want  []int
	}{
		{"wildcard", []string{"*.Cu", "*.Mask"}, []int{0, 1, 2, 31}},
		{"front and back", []string{"F&B.Cu"}, []int{0, 31}},
		{"inner", []string{"In2.Cu", "In1.Cu"}, []int{1, 2}},
		{"missing layer", []string{"In5.Cu"}, nil},
		{"duplicates", []string{"F.Cu", "*.Cu"}, []int{0, 1, 2, 31}},
		{"no copper", []string{"F.SilkS"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.layers(tt.names))
		})
	}
}

func TestPadShapes(t *testing.T) {
	p := &pcb.Pad{Shape: "oval", Position: pt(10, 10), Width: mm(2), Height: mm(1), Angle: 90,
		Drill: pcb.Drill{Width: mm(0.5), Height: mm(0.5), Offset: pt(0.5, 0)}}

	s, ok := padShape(p).(*geom.Segment)
	require.True(t, ok)
	assert.Equal(t, mm(1), s.Width)
	assert.Equal(t, int64(0), s.A.X-s.B.X, "rotated oval is vertical")

	hole, ok := holeShape(p).(*geom.Circle)
	require.True(t, ok)
	assert.Equal(t, pt(10, 9.5), hole.Center, "offset turns with the pad")

	p.Shape = "roundrect"
	assert.Equal(t, geom.ShapePolygon, padShape(p).Type())
	p.Shape = "circle"
	assert.Equal(t, geom.ShapeCircle, padShape(p).Type())
}

func TestGraphicShapes(t *testing.T) {
	circle := pcb.Graphic{Kind: pcb.GraphicCircle, Start: pt(5, 5), End: pt(6, 5)}
	shapes := graphicShapes(circle, 0)
	require.Len(t, shapes, 1)
	ring, ok := shapes[0].(*geom.Arc)
	require.True(t, ok)
	assert.InDelta(t, float64(mm(1)), ring.Radius(), 1)
	assert.False(t, geom.Collide(ring, geom.NewCircle(pt(5, 5), 0), mm(0.5)), "the inside of an outline is free")

	circle.Filled = true
	assert.Equal(t, geom.ShapeCircle, graphicShapes(circle, mm(0.2))[0].Type())

	rect := pcb.Graphic{Kind: pcb.GraphicRect, Start: pt(0, 0), End: pt(10, 5)}
	assert.Len(t, graphicShapes(rect, 0), 4)

	poly := pcb.Graphic{Kind: pcb.GraphicPoly, Points: []geom.Vec{pt(0, 0), pt(1, 0), pt(1, 1)}, Filled: true}
	assert.Equal(t, geom.ShapePolygon, graphicShapes(poly, 0)[0].Type())
}

func TestBuildObjects(t *testing.T) {
	d := mustBuild(t, testBoard())

	var vias, pads, edges, zones int
	for _, it := range d.Node.Items() {
		obj := d.Arena.Get(it.Parent())
		require.NotNil(t, obj, "every item has a board object: %s", it)
		switch {
		case obj.Kind == router.ObjectVia:
			vias++
			assert.Equal(t, router.AllLayers().Start, it.Layers().Start)
		case obj.Kind == router.ObjectPad:
			pads++
			assert.Equal(t, obj.Net <= 0, it.Net() == -1, "no net maps to unassigned")
		case obj.OnEdgeCuts:
			edges++
			assert.Equal(t, router.NewLayerRange(0, 31), it.Layers())
		case obj.IsKeepout():
			zones++
		}
	}
	assert.Equal(t, 3, vias)
	assert.Equal(t, 7, pads)
	assert.Equal(t, 4, edges)
	assert.Equal(t, 1, zones)

	v3 := findVia(t, d, pt(40, 20))
	assert.False(t, v3.IsFlashedOn(router.LayerFront), "no track on F.Cu")
	assert.True(t, v3.IsFlashedOn(router.LayerBack))

	assert.True(t, d.Node.QueryEdgeExclusions(pt(50, 15)), "castellated pad")
	assert.False(t, d.Node.QueryEdgeExclusions(pt(50, 5)))
	assert.Equal(t, "Default", d.Resolver.NetClassOf(netGND))
}

func findVia(t *testing.T, d *Design, pos geom.Vec) *router.Item {
	t.Helper()
	for _, it := range d.Node.Items() {
		if it.Kind() == router.KindVia && it.Pos() == pos {
			return it
		}
	}
	t.Fatalf("no via at %v", pos)
	return nil
}

func TestBuildKeepEndLayers(t *testing.T) {
	board := testBoard()
	board.Vias[2].KeepEndLayers = true
	d := mustBuild(t, board)
	assert.True(t, findVia(t, d, pt(40, 20)).IsFlashedOn(router.LayerFront))
}

func TestBuildWithDRU(t *testing.T) {
	dru, err := rules.ParseDRU(strings.NewReader(`(version 1)
(rule "tight vias" (constraint hole_to_hole (min 0.1mm)) (condition "A.Type == 'Via'"))
(rule "unsupported" (constraint track_width (min 0.1mm)))`))
	require.NoError(t, err)

	d, err := Build(testBoard(), testConfig(), dru, nil)
	require.NoError(t, err)

	report, err := d.Check(context.Background(), Options{})
	require.NoError(t, err)
	assert.Zero(t, report.Counts()[KindHoleToHole])
	assert.Equal(t, 3, report.Counts()[KindClearance], "the via rings are 0.1mm apart")
}

const e2eBoard = `(kicad_pcb (version 20240108) (generator "pcbnew")
	(layers (0 "F.Cu" signal) (31 "B.Cu" signal) (44 "Edge.Cuts" user))
	(net 0 "") (net 1 "A") (net 2 "B")
	(segment (start 0 0) (end 10 0) (width 0.2) (layer "F.Cu") (net 1) (uuid "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"))
	(segment (start 0 0.3) (end 10 0.3) (width 0.2) (layer "F.Cu") (net 2) (uuid "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"))
	(segment (start 0 0.3) (end 10 0.3) (width 0.2) (layer "B.Cu") (net 1))
)`

func TestEndToEnd(t *testing.T) {
	board, err := pcb.Parse(strings.NewReader(e2eBoard))
	require.NoError(t, err)

	d, err := Build(board, rules.DefaultConfig(), nil, nil)
	require.NoError(t, err)
	report, err := d.Check(context.Background(), Options{})
	require.NoError(t, err)

	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa", v.A.UUID)
	assert.Equal(t, "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb", v.B.UUID)
	assert.Equal(t, mm(0.1), v.Actual)
	assert.Equal(t, "track", v.A.Type)
}
