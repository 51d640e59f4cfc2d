package pcb

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
)

// GetBoundingBox calculates the bounding box of the entire board.
// The Edge.Cuts outline wins when present; otherwise the copper is used.
func (b *Board) GetBoundingBox() geom.Box {
	var pts []geom.Vec
	for _, g := range b.GetEdgeGraphics() {
		pts = append(pts, g.extent()...)
	}
	if len(pts) > 0 {
		return geom.NewBox(pts...)
	}

	for _, t := range b.Tracks {
		pts = append(pts, t.Start, t.End)
	}
	for _, a := range b.Arcs {
		pts = append(pts, a.Start, a.Mid, a.End)
	}
	for _, v := range b.Vias {
		r := v.Size / 2
		pts = append(pts, v.Position.Add(geom.V(-r, -r)), v.Position.Add(geom.V(r, r)))
	}
	for _, fp := range b.Footprints {
		for _, pad := range fp.Pads {
			// Half the diagonal covers any rotation.
			r := max(pad.Width, pad.Height)/2 + 1
			pts = append(pts, pad.Position.Add(geom.V(-r, -r)), pad.Position.Add(geom.V(r, r)))
		}
		if len(fp.Pads) == 0 {
			pts = append(pts, fp.Position)
		}
	}
	if len(pts) == 0 {
		return geom.Box{}
	}
	return geom.NewBox(pts...)
}

// extent returns points spanning the graphic. Arcs use their three points.
func (g Graphic) extent() []geom.Vec {
	switch g.Kind {
	case GraphicCircle:
		r := int64(g.End.Sub(g.Start).Norm())
		return []geom.Vec{g.Start.Add(geom.V(-r, -r)), g.Start.Add(geom.V(r, r))}
	case GraphicArc:
		return []geom.Vec{g.Start, g.Mid, g.End}
	case GraphicPoly:
		return g.Points
	}
	return []geom.Vec{g.Start, g.End}
}

// TransformPosition transforms a footprint-relative position to board
// coordinates by the footprint rotation and position.
func (fp *Footprint) TransformPosition(rel geom.Vec) geom.Vec {
	if fp.Angle != 0 {
		rel = rel.Rotate(fp.Angle)
	}
	return fp.Position.Add(rel)
}
