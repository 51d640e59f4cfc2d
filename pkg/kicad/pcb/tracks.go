package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp/kicadsexp"
)

// parseTracks extracts all track segments
// Expected format: (segment (start x y) (end x y) (width w) (layer "F.Cu") (net n) (uuid ...))
func parseTracks(root *kicadsexp.List, nets *NetMap) ([]Track, error) {
	var tracks []Track

	for _, node := range root.FindAll("segment") {
		t := Track{UUID: getUUID(node), Locked: isLocked(node)}
		var err error
		if t.Start, err = getPoint(node, "start"); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line(), err)
		}
		if t.End, err = getPoint(node, "end"); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line(), err)
		}
		t.Width, _ = getLength(node, "width")
		t.Layer, _ = node.Value("layer")
		t.Net, _ = getNet(node, nets)
		tracks = append(tracks, t)
	}

	return tracks, nil
}

// parseArcs extracts all arc tracks
// Expected format: (arc (start x y) (mid x y) (end x y) (width w) (layer "F.Cu") (net n))
func parseArcs(root *kicadsexp.List, nets *NetMap) ([]Arc, error) {
	var arcs []Arc

	for _, node := range root.FindAll("arc") {
		a := Arc{UUID: getUUID(node), Locked: isLocked(node)}
		var err error
		for _, pt := range []struct {
			key string
			dst *geom.Vec
		}{{"start", &a.Start}, {"mid", &a.Mid}, {"end", &a.End}} {
			if *pt.dst, err = getPoint(node, pt.key); err != nil {
				return nil, fmt.Errorf("line %d: %w", node.Line(), err)
			}
		}
		a.Width, _ = getLength(node, "width")
		a.Layer, _ = node.Value("layer")
		a.Net, _ = getNet(node, nets)
		arcs = append(arcs, a)
	}

	return arcs, nil
}

// parseVias extracts all vias
// Expected format: (via [blind|micro] (at x y) (size s) (drill d) (layers "F.Cu" "B.Cu") (net n))
func parseVias(root *kicadsexp.List, nets *NetMap) ([]Via, error) {
	var vias []Via

	for _, node := range root.FindAll("via") {
		v := Via{UUID: getUUID(node), Locked: isLocked(node)}
		switch {
		case node.HasSymbol("blind"):
			v.Type = "blind"
		case node.HasSymbol("micro"):
			v.Type = "micro"
		}

		var err error
		if v.Position, _, err = getAt(node); err != nil {
			return nil, err
		}
		var ok bool
		if v.Size, ok = getLength(node, "size"); !ok {
			return nil, fmt.Errorf("line %d: via without size", node.Line())
		}
		v.Drill, _ = getLength(node, "drill")
		v.Layers = getLayerNames(node)
		if len(v.Layers) == 0 {
			v.Layers = []string{"F.Cu", "B.Cu"}
		}
		v.Net, _ = getNet(node, nets)
		v.RemoveUnusedLayers = node.Find("remove_unused_layers") != nil && !isNo(node, "remove_unused_layers")
		v.KeepEndLayers = node.Find("keep_end_layers") != nil && !isNo(node, "keep_end_layers")
		vias = append(vias, v)
	}

	return vias, nil
}

// isNo reports an explicit (key no).
func isNo(node *kicadsexp.List, key string) bool {
	v, ok := node.Value(key)
	return ok && v == "no"
}
