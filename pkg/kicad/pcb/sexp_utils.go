package pcb

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp/kicadsexp"
)

// getPoint reads (key X Y) from node and converts it to nanometres.
func getPoint(node *kicadsexp.List, key string) (geom.Vec, error) {
	child := node.Find(key)
	if child == nil {
		return geom.Vec{}, fmt.Errorf("missing (%s x y)", key)
	}
	return parseXY(child)
}

// parseXY reads the two numbers following the key of an (xy X Y) style list.
func parseXY(node *kicadsexp.List) (geom.Vec, error) {
	x, okX := node.FloatAt(1)
	y, okY := node.FloatAt(2)
	if !okX || !okY {
		return geom.Vec{}, fmt.Errorf("line %d: invalid coordinates in %s", node.Line(), node.Key())
	}
	return geom.V(geom.FromMM(x), geom.FromMM(y)), nil
}

// getAt reads (at X Y [angle]).
func getAt(node *kicadsexp.List) (geom.Vec, float64, error) {
	at := node.Find("at")
	if at == nil {
		return geom.Vec{}, 0, fmt.Errorf("line %d: missing required 'at' position", node.Line())
	}
	pos, err := parseXY(at)
	if err != nil {
		return geom.Vec{}, 0, err
	}
	angle, _ := at.FloatAt(3)
	return pos, angle, nil
}

// getLength reads (key value) in millimetres and returns nanometres.
func getLength(node *kicadsexp.List, key string) (int64, bool) {
	child := node.Find(key)
	if child == nil {
		return 0, false
	}
	v, ok := child.FloatAt(1)
	if !ok {
		return 0, false
	}
	return geom.FromMM(v), true
}

// getLayerNames reads (layers "A" "B" ...) or (layer "A").
func getLayerNames(node *kicadsexp.List) []string {
	if l := node.Find("layers"); l != nil {
		var names []string
		for _, item := range l.Items()[1:] {
			if sym, ok := item.(kicadsexp.Symbol); ok && sym != "" {
				names = append(names, string(sym))
			}
		}
		return names
	}
	if name, ok := node.Value("layer"); ok {
		return []string{name}
	}
	return nil
}

// getUUID reads (uuid ...) or the older (tstamp ...). A missing or
// malformed identifier yields uuid.Nil.
func getUUID(node *kicadsexp.List) uuid.UUID {
	s, ok := node.Value("uuid")
	if !ok {
		s, ok = node.Value("tstamp")
	}
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// getPoints reads (pts (xy X Y) ...) below node.
func getPoints(node *kicadsexp.List) ([]geom.Vec, error) {
	pts := node.Find("pts")
	if pts == nil {
		return nil, fmt.Errorf("line %d: missing pts", node.Line())
	}
	var out []geom.Vec
	for _, xy := range pts.Lists() {
		switch xy.Key() {
		case "xy":
			p, err := parseXY(xy)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		case "arc":
			// Arcs inside outlines are flattened to their three points.
			for _, key := range []string{"start", "mid", "end"} {
				p, err := getPoint(xy, key)
				if err != nil {
					return nil, err
				}
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// getNet reads (net N ["name"]) or the name-only (net "name") form.
func getNet(node *kicadsexp.List, nets *NetMap) (int, string) {
	n := node.Find("net")
	if n == nil {
		return 0, ""
	}
	if code, ok := n.IntAt(1); ok {
		name, _ := n.StringAt(2)
		if name == "" && nets != nil {
			if net, ok := nets.GetByNumber(code); ok {
				name = net.Name
			}
		}
		return code, name
	}
	name, _ := n.StringAt(1)
	if nets != nil {
		if net, ok := nets.GetByName(name); ok {
			return net.Number, name
		}
	}
	return 0, name
}

// isLocked reports (locked yes) or a bare locked flag.
func isLocked(node *kicadsexp.List) bool {
	if node.HasSymbol("locked") {
		return true
	}
	return yes(node, "locked")
}

// yes reports whether (key yes) is present.
func yes(node *kicadsexp.List, key string) bool {
	v, ok := node.Value(key)
	return ok && strings.EqualFold(v, "yes")
}
