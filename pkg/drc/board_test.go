package drc

import (
	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/rules"
)

const (
	netGND = 1
	netVCC = 2
	netSIG = 3
)

func mm(v float64) int64 { return geom.FromMM(v) }

func pt(x, y float64) geom.Vec { return geom.V(mm(x), mm(y)) }

func testConfig() *rules.Config {
	cfg := rules.DefaultConfig()
	cfg.Clearance = 0.2
	cfg.HoleClearance = 0.1
	cfg.HoleToHoleClearance = 0.25
	cfg.EdgeClearance = 0.5
	return cfg
}

var (
	uuidT1 = uuid.MustParse("00000000-0000-4000-8000-000000000001")
	uuidT2 = uuid.MustParse("00000000-0000-4000-8000-000000000002")
)

func track(id uuid.UUID, x1, y1, x2, y2, w float64, layer string, net int) pcb.Track {
	return pcb.Track{UUID: id, Start: pt(x1, y1), End: pt(x2, y2), Width: mm(w), Layer: layer, Net: net}
}

func via(x, y, size, drill float64, net int) pcb.Via {
	return pcb.Via{Position: pt(x, y), Size: mm(size), Drill: mm(drill), Layers: []string{"F.Cu", "B.Cu"}, Net: net}
}

func smdRect(num string, x, y float64, net int) pcb.Pad {
	return pcb.Pad{Number: num, Type: "smd", Shape: "rect", Position: pt(x, y), Width: mm(1), Height: mm(1),
		Layers: []string{"F.Cu", "F.Paste", "F.Mask"}, Net: net}
}

func thPad(num string, x, y float64, net int) pcb.Pad {
	return pcb.Pad{Number: num, Type: "thru_hole", Shape: "circle", Position: pt(x, y), Width: mm(1.5), Height: mm(1.5),
		Drill: pcb.Drill{Width: mm(0.8), Height: mm(0.8)}, Layers: []string{"*.Cu", "*.Mask"}, Net: net}
}

// testBoard is a 50 x 30 mm two layer board with six violations under
// all_rules:
//
//	T1-T2 clearance, T4-edge, V1-V2 hole to hole, T7 in keepout,
//	U1 pad 1-pad 2 clearance, J2-edge.
//
// The net-tie pads of NT1, the castellated pad J1, the free pad and T6
// passing V3 on a layer where V3 has no ring are not violations.
func testBoard() *pcb.Board {
	castellated := thPad("1", 50, 15, netSIG)
	castellated.Castellated = true

	free := pcb.Pad{Number: "1", Type: "smd", Shape: "circle", Position: pt(20.3, 5.2), Width: mm(0.3), Height: mm(0.3),
		Layers: []string{"F.Cu"}, PinType: "free"}

	v3 := via(40, 20, 0.6, 0.3, netVCC)
	v3.RemoveUnusedLayers = true

	return &pcb.Board{
		Version: 20240108,
		Layers: []pcb.Layer{
			{Number: 0, Name: "F.Cu", Type: "signal"},
			{Number: 31, Name: "B.Cu", Type: "signal"},
			{Number: 44, Name: "Edge.Cuts", Type: "user"},
		},
		Nets: []pcb.Net{{Number: 0}, {Number: netGND, Name: "GND"}, {Number: netVCC, Name: "VCC"}, {Number: netSIG, Name: "SIG"}},
		Tracks: []pcb.Track{
			track(uuidT1, 5, 5, 20, 5, 0.25, "F.Cu", netGND),
			track(uuidT2, 5, 5.4, 20, 5.4, 0.25, "F.Cu", netVCC),
			track(uuid.Nil, 5, 10, 20, 10, 0.25, "B.Cu", netVCC),
			track(uuid.Nil, 0.2, 20, 10, 20, 0.25, "F.Cu", netSIG),
			track(uuid.Nil, 40, 20, 45, 20, 0.25, "B.Cu", netVCC),
			track(uuid.Nil, 35, 20.45, 45, 20.45, 0.2, "F.Cu", netSIG),
			track(uuid.Nil, 12, 26, 18, 26, 0.2, "F.Cu", netSIG),
		},
		Vias: []pcb.Via{
			via(30, 10, 0.4, 0.3, netSIG),
			via(30.5, 10, 0.4, 0.3, netGND),
			v3,
		},
		Footprints: []pcb.Footprint{
			{Reference: "U1", Position: pt(29.5, 25), Pads: []pcb.Pad{
				smdRect("1", 29, 25, netGND),
				smdRect("2", 30.1, 25, netVCC),
			}},
			{Reference: "NT1", Position: pt(35.4, 25), NetTiePadGroups: [][]string{{"1", "2"}}, Pads: []pcb.Pad{
				smdRect("1", 35, 25, netGND),
				smdRect("2", 35.8, 25, netSIG),
			}},
			{Reference: "J1", Position: pt(50, 15), Pads: []pcb.Pad{castellated}},
			{Reference: "J2", Position: pt(50, 5), Pads: []pcb.Pad{thPad("1", 50, 5, netSIG)}},
			{Reference: "TP1", Position: pt(20.3, 5.2), Pads: []pcb.Pad{free}},
		},
		Graphics: []pcb.Graphic{
			{Kind: pcb.GraphicRect, Layer: "Edge.Cuts", Start: pt(0, 0), End: pt(50, 30), Width: mm(0.05)},
		},
		Zones: []pcb.Zone{{
			Name:    "no tracks",
			Layers:  []string{"F.Cu"},
			Outline: []geom.Vec{pt(10, 24), pt(20, 24), pt(20, 28), pt(10, 28)},
			Keepout: &pcb.Keepout{Tracks: true},
		}},
	}
}
