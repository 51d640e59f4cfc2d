package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp/kicadsexp"
)

// relevantLayer reports whether graphics on the layer take part in
// clearance checks.
func relevantLayer(name string) bool {
	return name == "Edge.Cuts" || strings.HasSuffix(name, ".Cu")
}

// parseGraphics extracts the line, arc, circle, rect and poly primitives
// named prefix+kind (gr_ on the board, fp_ in footprints). Footprint
// graphics are transformed to board coordinates.
func (p *Parser) parseGraphics(node *kicadsexp.List, prefix string, fp *Footprint, nets *NetMap) ([]Graphic, error) {
	var graphics []Graphic

	for _, child := range node.Lists() {
		key := child.Key()
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		kind := GraphicKind(strings.TrimPrefix(key, prefix))
		switch kind {
		case GraphicLine, GraphicArc, GraphicCircle, GraphicRect, GraphicPoly:
		default:
			continue
		}

		layer, _ := child.Value("layer")
		if !relevantLayer(layer) {
			continue
		}

		g, err := parseGraphic(child, kind)
		if err != nil {
			p.logger.Warn("skipping graphic", "kind", key, "line", child.Line(), "err", err)
			continue
		}
		g.Layer = layer
		g.Net, _ = getNet(child, nets)
		if fp != nil {
			g = fp.transformGraphic(g)
		}
		graphics = append(graphics, g)
	}

	return graphics, nil
}

// parseGraphic reads the geometry of one primitive.
// Expected formats:
//
//	(gr_line (start x y) (end x y) (stroke (width w)) (layer "Edge.Cuts"))
//	(gr_arc (start x y) (mid x y) (end x y) ...)
//	(gr_circle (center x y) (end x y) (fill solid) ...)
//	(gr_rect (start x y) (end x y) ...)
//	(gr_poly (pts (xy x y) ...) ...)
func parseGraphic(node *kicadsexp.List, kind GraphicKind) (Graphic, error) {
	g := Graphic{UUID: getUUID(node), Kind: kind}

	var err error
	switch kind {
	case GraphicLine, GraphicRect:
		if g.Start, err = getPoint(node, "start"); err != nil {
			return g, err
		}
		if g.End, err = getPoint(node, "end"); err != nil {
			return g, err
		}
	case GraphicArc:
		if g.Start, err = getPoint(node, "start"); err != nil {
			return g, err
		}
		if g.Mid, err = getPoint(node, "mid"); err != nil {
			return g, fmt.Errorf("arc without mid point (pre KiCad 6 format?): %w", err)
		}
		if g.End, err = getPoint(node, "end"); err != nil {
			return g, err
		}
	case GraphicCircle:
		if g.Start, err = getPoint(node, "center"); err != nil {
			return g, err
		}
		if g.End, err = getPoint(node, "end"); err != nil {
			return g, err
		}
	case GraphicPoly:
		if g.Points, err = getPoints(node); err != nil {
			return g, err
		}
		if len(g.Points) < 2 {
			return g, fmt.Errorf("polygon with %d points", len(g.Points))
		}
	}

	if stroke := node.Find("stroke"); stroke != nil {
		g.Width, _ = getLength(stroke, "width")
	} else {
		g.Width, _ = getLength(node, "width")
	}

	if fill, ok := node.Value("fill"); ok {
		g.Filled = fill == "solid" || fill == "yes"
	}

	return g, nil
}

// transformGraphic moves a footprint graphic to board coordinates. Rects
// on rotated footprints become polygons.
func (fp *Footprint) transformGraphic(g Graphic) Graphic {
	if g.Kind == GraphicRect && fp.Angle != 0 {
		g.Kind = GraphicPoly
		g.Points = []geom.Vec{g.Start, geom.V(g.End.X, g.Start.Y), g.End, geom.V(g.Start.X, g.End.Y)}
	}

	g.Start = fp.TransformPosition(g.Start)
	g.Mid = fp.TransformPosition(g.Mid)
	g.End = fp.TransformPosition(g.End)
	if len(g.Points) > 0 {
		pts := make([]geom.Vec, len(g.Points))
		for i, pt := range g.Points {
			pts[i] = fp.TransformPosition(pt)
		}
		g.Points = pts
	}
	return g
}
