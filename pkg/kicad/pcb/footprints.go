package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp/kicadsexp"
)

// parseFootprints extracts all footprints. Footprints that fail to parse
// are logged and skipped.
func (p *Parser) parseFootprints(root *kicadsexp.List, nets *NetMap) ([]Footprint, error) {
	var footprints []Footprint

	for _, node := range root.FindAll("footprint") {
		fp, err := p.parseFootprint(node, nets)
		if err != nil {
			p.logger.Warn("skipping footprint", "line", node.Line(), "err", err)
			continue
		}
		footprints = append(footprints, *fp)
	}

	return footprints, nil
}

// parseFootprint extracts a single footprint definition
// Expected format: (footprint "library:name" (layer "layer") (at x y [angle]) ...)
func (p *Parser) parseFootprint(node *kicadsexp.List, nets *NetMap) (*Footprint, error) {
	fp := &Footprint{UUID: getUUID(node)}

	fullName, ok := node.StringAt(1)
	if !ok {
		return nil, fmt.Errorf("line %d: missing footprint name", node.Line())
	}
	if lib, name, found := strings.Cut(fullName, ":"); found {
		fp.Library, fp.Name = lib, name
	} else {
		fp.Name = fullName
	}

	fp.Layer, _ = node.Value("layer")

	pos, angle, err := getAt(node)
	if err != nil {
		return nil, err
	}
	fp.Position, fp.Angle = pos, angle

	// KiCad 8+ stores reference and value as properties, KiCad 6/7 as fp_text.
	for _, prop := range node.FindAll("property") {
		key, _ := prop.StringAt(1)
		value, _ := prop.StringAt(2)
		switch key {
		case "Reference":
			fp.Reference = value
		case "Value":
			fp.Value = value
		}
	}
	for _, text := range node.FindAll("fp_text") {
		kind, _ := text.StringAt(1)
		value, _ := text.StringAt(2)
		switch {
		case kind == "reference" && fp.Reference == "":
			fp.Reference = value
		case kind == "value" && fp.Value == "":
			fp.Value = value
		}
	}

	if groups := node.Find("net_tie_pad_groups"); groups != nil {
		for _, item := range groups.Items()[1:] {
			sym, ok := item.(kicadsexp.Symbol)
			if !ok {
				continue
			}
			var group []string
			for _, num := range strings.Split(string(sym), ",") {
				if num = strings.TrimSpace(num); num != "" {
					group = append(group, num)
				}
			}
			if len(group) > 1 {
				fp.NetTiePadGroups = append(fp.NetTiePadGroups, group)
			}
		}
	}

	for _, padNode := range node.FindAll("pad") {
		pad, err := fp.parsePad(padNode, nets)
		if err != nil {
			p.logger.Warn("skipping pad", "footprint", fp.Reference, "line", padNode.Line(), "err", err)
			continue
		}
		fp.Pads = append(fp.Pads, *pad)
	}

	graphics, err := p.parseGraphics(node, "fp_", fp, nets)
	if err != nil {
		return nil, err
	}
	fp.Graphics = graphics

	for _, zoneNode := range node.FindAll("zone") {
		if zone, err := parseZone(zoneNode, nets); err == nil {
			fp.Zones = append(fp.Zones, *zone)
		} else {
			p.logger.Warn("skipping footprint zone", "footprint", fp.Reference, "err", err)
		}
	}

	return fp, nil
}

// parsePad extracts a pad definition from a footprint
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (layers ...) (net n) ...)
//
// The pad position in the file is relative to the footprint; its angle
// already includes the footprint rotation.
func (fp *Footprint) parsePad(node *kicadsexp.List, nets *NetMap) (*Pad, error) {
	pad := &Pad{UUID: getUUID(node)}

	var ok bool
	if pad.Number, ok = node.StringAt(1); !ok {
		return nil, fmt.Errorf("line %d: missing pad number", node.Line())
	}
	if pad.Type, ok = node.StringAt(2); !ok {
		return nil, fmt.Errorf("line %d: missing pad type", node.Line())
	}
	if pad.Shape, ok = node.StringAt(3); !ok {
		return nil, fmt.Errorf("line %d: missing pad shape", node.Line())
	}

	rel, angle, err := getAt(node)
	if err != nil {
		return nil, err
	}
	pad.Position = fp.TransformPosition(rel)
	pad.Angle = angle

	size := node.Find("size")
	if size == nil {
		return nil, fmt.Errorf("line %d: missing required 'size' field", node.Line())
	}
	w, okW := size.FloatAt(1)
	h, okH := size.FloatAt(2)
	if !okW || !okH {
		return nil, fmt.Errorf("line %d: invalid pad size", size.Line())
	}
	pad.Width, pad.Height = geom.FromMM(w), geom.FromMM(h)

	if drill := node.Find("drill"); drill != nil {
		pad.Drill = parseDrill(drill)
	}

	pad.Layers = getLayerNames(node)
	pad.Net, pad.NetName = getNet(node, nets)
	pad.PinType, _ = node.Value("pintype")

	if prop, ok := node.Value("property"); ok && prop == "pad_prop_castellated" {
		pad.Castellated = true
	}
	pad.RemoveUnusedLayers = node.Find("remove_unused_layers") != nil && !isNo(node, "remove_unused_layers")
	pad.KeepEndLayers = node.Find("keep_end_layers") != nil && !isNo(node, "keep_end_layers")

	return pad, nil
}

// parseDrill reads (drill D), (drill oval W H) and an optional (offset X Y).
func parseDrill(node *kicadsexp.List) Drill {
	var d Drill
	i := 1
	if node.HasSymbol("oval") {
		d.Oval = true
		i = 2
	}
	if v, ok := node.FloatAt(i); ok {
		d.Width = geom.FromMM(v)
		d.Height = d.Width
	}
	if d.Oval {
		if v, ok := node.FloatAt(i + 1); ok {
			d.Height = geom.FromMM(v)
		}
	}
	if off := node.Find("offset"); off != nil {
		if v, err := parseXY(off); err == nil {
			d.Offset = v
		}
	}
	return d
}
