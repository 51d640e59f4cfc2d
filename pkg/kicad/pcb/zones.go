package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp/kicadsexp"
)

// parseZones extracts board-level zones. Only the outline is read; fills
// are recomputed by KiCad and are not needed for rule areas.
func (p *Parser) parseZones(root *kicadsexp.List, nets *NetMap) []Zone {
	var zones []Zone
	for _, node := range root.FindAll("zone") {
		zone, err := parseZone(node, nets)
		if err != nil {
			p.logger.Warn("skipping zone", "line", node.Line(), "err", err)
			continue
		}
		zones = append(zones, *zone)
	}
	return zones
}

// parseZone reads one zone
// Expected format: (zone (net 0) (net_name "") (layers "F.Cu" "B.Cu") (name "x")
// (keepout (tracks not_allowed) (vias not_allowed) ...) (polygon (pts (xy x y) ...)))
func parseZone(node *kicadsexp.List, nets *NetMap) (*Zone, error) {
	z := &Zone{UUID: getUUID(node)}
	z.Net, z.NetName = getNet(node, nets)
	if z.NetName == "" {
		z.NetName, _ = node.Value("net_name")
	}
	z.Name, _ = node.Value("name")
	z.Layers = getLayerNames(node)
	if len(z.Layers) == 0 {
		return nil, fmt.Errorf("line %d: zone without layers", node.Line())
	}

	poly := node.Find("polygon")
	if poly == nil {
		return nil, fmt.Errorf("line %d: zone without outline", node.Line())
	}
	outline, err := getPoints(poly)
	if err != nil {
		return nil, err
	}
	if len(outline) < 3 {
		return nil, fmt.Errorf("line %d: zone outline has %d points", node.Line(), len(outline))
	}
	z.Outline = outline

	if ko := node.Find("keepout"); ko != nil {
		notAllowed := func(key string) bool {
			v, ok := ko.Value(key)
			return ok && v == "not_allowed"
		}
		z.Keepout = &Keepout{
			Tracks:     notAllowed("tracks"),
			Vias:       notAllowed("vias"),
			Pads:       notAllowed("pads"),
			CopperPour: notAllowed("copperpour"),
			Footprints: notAllowed("footprints"),
		}
	}

	return z, nil
}
