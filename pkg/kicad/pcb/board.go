package pcb

import (
	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
)

// All coordinates and sizes are integer nanometres, converted from the
// millimetres stored in the file. Angles are degrees.

// Board represents the parts of a KiCad PCB relevant to clearance checks.
type Board struct {
	Version    int         // File format version
	Generator  string      // Generator info (e.g., "pcbnew")
	General    General     // General board properties
	Layers     []Layer     // Layer definitions
	Nets       []Net       // Electrical nets
	Footprints []Footprint // Component footprints
	Graphics   []Graphic   // Board-level graphics on Edge.Cuts and copper
	Tracks     []Track     // Straight track segments
	Arcs       []Arc       // Arc tracks
	Vias       []Via       // Vias
	Zones      []Zone      // Copper zones and rule areas
}

// General contains general board properties
type General struct {
	Thickness float64 // Board thickness in mm
}

// Footprint represents a component footprint
type Footprint struct {
	UUID      uuid.UUID
	Library   string   // Library name
	Name      string   // Footprint name
	Layer     string   // F.Cu or B.Cu
	Position  geom.Vec // Anchor
	Angle     float64  // Rotation in degrees
	Reference string   // Reference designator (e.g., "R1")
	Value     string   // Component value
	Pads      []Pad
	Graphics  []Graphic // Graphics transformed to board coordinates
	Zones     []Zone    // Footprint-level rule areas

	// NetTiePadGroups lists groups of pad numbers shorted by a net-tie.
	NetTiePadGroups [][]string
}

// IsNetTie reports whether the footprint declares net-tie pad groups.
func (fp *Footprint) IsNetTie() bool {
	return len(fp.NetTiePadGroups) > 0
}

// Pad represents a footprint pad. Position and Angle are absolute.
type Pad struct {
	UUID     uuid.UUID
	Number   string   // Pad number/name
	Type     string   // thru_hole, smd, connect, np_thru_hole
	Shape    string   // circle, rect, oval, roundrect, trapezoid, custom
	Position geom.Vec // Board position
	Angle    float64  // Absolute rotation
	Width    int64
	Height   int64
	Drill    Drill
	Layers   []string // Layer names, possibly with wildcards ("*.Cu")
	Net      int      // Net code, 0 when unconnected
	NetName  string
	PinType  string

	Castellated        bool
	RemoveUnusedLayers bool
	KeepEndLayers      bool
}

// Drill describes a pad hole.
type Drill struct {
	Width  int64 // Diameter, or X size of an oval
	Height int64 // Y size of an oval; equals Width for round holes
	Oval   bool
	Offset geom.Vec
}

// HasHole reports whether the pad is drilled.
func (p *Pad) HasHole() bool {
	return p.Drill.Width > 0
}

// IsFree reports whether the pad is an unconnected pin that may join any
// net.
func (p *Pad) IsFree() bool {
	return p.Net <= 0 && p.PinType == "free"
}

// GraphicKind identifies a graphic primitive.
type GraphicKind string

const (
	GraphicLine   GraphicKind = "line"
	GraphicArc    GraphicKind = "arc"
	GraphicCircle GraphicKind = "circle"
	GraphicRect   GraphicKind = "rect"
	GraphicPoly   GraphicKind = "poly"
)

// Graphic represents a drawn shape. Only geometry is kept.
type Graphic struct {
	UUID   uuid.UUID
	Kind   GraphicKind
	Layer  string
	Start  geom.Vec // line, arc, rect; centre of circles
	Mid    geom.Vec // arc
	End    geom.Vec // line, arc, rect; a point on the rim of circles
	Points []geom.Vec
	Width  int64
	Filled bool
	Net    int // copper graphics may carry a net
}

// Track represents a copper track segment
type Track struct {
	UUID   uuid.UUID
	Start  geom.Vec
	End    geom.Vec
	Width  int64
	Layer  string
	Net    int
	Locked bool
}

// Arc represents an arc track through Start, Mid and End.
type Arc struct {
	UUID   uuid.UUID
	Start  geom.Vec
	Mid    geom.Vec
	End    geom.Vec
	Width  int64
	Layer  string
	Net    int
	Locked bool
}

// Via represents a via
type Via struct {
	UUID     uuid.UUID
	Type     string // "", "blind" or "micro"
	Position geom.Vec
	Size     int64 // Diameter
	Drill    int64
	Layers   []string // Start and end layer
	Net      int
	Locked   bool

	RemoveUnusedLayers bool
	KeepEndLayers      bool
}

// Keepout holds the rule-area restrictions of a zone.
type Keepout struct {
	Tracks     bool
	Vias       bool
	Pads       bool
	CopperPour bool
	Footprints bool
}

// Zone represents a copper zone or a rule area. Fills are not read.
type Zone struct {
	UUID    uuid.UUID
	Name    string
	Net     int
	NetName string
	Layers  []string
	Outline []geom.Vec
	Keepout *Keepout // nil for copper zones
}

// IsRuleArea reports whether the zone is a keepout.
func (z *Zone) IsRuleArea() bool {
	return z.Keepout != nil
}

// GetNet returns a net by name, or nil if not found
func (b *Board) GetNet(name string) *Net {
	for i := range b.Nets {
		if b.Nets[i].Name == name {
			return &b.Nets[i]
		}
	}
	return nil
}

// GetNetName returns the name of a net code, or "" when unknown.
func (b *Board) GetNetName(code int) string {
	for _, n := range b.Nets {
		if n.Number == code {
			return n.Name
		}
	}
	return ""
}

// GetLayerMap returns a lookup over the board layers.
func (b *Board) GetLayerMap() *LayerMap {
	return NewLayerMap(b.Layers)
}

// GetEdgeGraphics returns every Edge.Cuts graphic on the board and in
// footprints.
func (b *Board) GetEdgeGraphics() []Graphic {
	var out []Graphic
	for _, g := range b.Graphics {
		if g.Layer == "Edge.Cuts" {
			out = append(out, g)
		}
	}
	for _, fp := range b.Footprints {
		for _, g := range fp.Graphics {
			if g.Layer == "Edge.Cuts" {
				out = append(out, g)
			}
		}
	}
	return out
}

// Stats summarises the board contents.
type Stats struct {
	CopperLayers int
	Nets         int
	Footprints   int
	Pads         int
	Tracks       int
	Arcs         int
	Vias         int
	Zones        int
	RuleAreas    int
	EdgeShapes   int
	NetTies      int
}

// GetStats counts the board contents.
func (b *Board) GetStats() Stats {
	s := Stats{
		CopperLayers: len(b.GetLayerMap().CopperLayers()),
		Nets:         len(b.Nets),
		Footprints:   len(b.Footprints),
		Tracks:       len(b.Tracks),
		Arcs:         len(b.Arcs),
		Vias:         len(b.Vias),
		EdgeShapes:   len(b.GetEdgeGraphics()),
	}
	countZones := func(zones []Zone) {
		for _, z := range zones {
			if z.IsRuleArea() {
				s.RuleAreas++
			} else {
				s.Zones++
			}
		}
	}
	countZones(b.Zones)
	for _, fp := range b.Footprints {
		s.Pads += len(fp.Pads)
		countZones(fp.Zones)
		if fp.IsNetTie() {
			s.NetTies++
		}
	}
	return s
}
