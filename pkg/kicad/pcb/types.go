package pcb

import (
	"strconv"
	"strings"
)

// Layer represents a PCB layer
type Layer struct {
	Number int    // Layer number (ordinal in the file)
	Name   string // Layer name (e.g., "F.Cu", "B.Cu", "Edge.Cuts")
	Type   string // Layer type (e.g., "signal", "power", "user")
}

// IsCopper reports whether the layer is a copper layer.
func (l Layer) IsCopper() bool {
	_, ok := CopperOrdinal(l.Name)
	return ok
}

// Net represents an electrical net
type Net struct {
	Number int    // Net code
	Name   string // Net name
}

// Copper ordinals used by the clearance engine. They follow the KiCad 6-8
// numbering regardless of the numbers stored in the file.
const (
	FrontCopper = 0
	BackCopper  = 31
)

// CopperOrdinal maps a copper layer name to its ordinal: F.Cu is 0,
// In<n>.Cu is n and B.Cu is 31.
func CopperOrdinal(name string) (int, bool) {
	switch name {
	case "F.Cu":
		return FrontCopper, true
	case "B.Cu":
		return BackCopper, true
	}
	if strings.HasPrefix(name, "In") && strings.HasSuffix(name, ".Cu") {
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "In"), ".Cu"))
		if err == nil && n > 0 && n < BackCopper {
			return n, true
		}
	}
	return 0, false
}

// LayerMap provides efficient lookup of layers by number or name
type LayerMap struct {
	byNumber map[int]*Layer
	byName   map[string]*Layer
}

// NewLayerMap creates a LayerMap from a slice of layers
func NewLayerMap(layers []Layer) *LayerMap {
	lm := &LayerMap{
		byNumber: make(map[int]*Layer),
		byName:   make(map[string]*Layer),
	}

	for i := range layers {
		layer := &layers[i]
		lm.byNumber[layer.Number] = layer
		lm.byName[layer.Name] = layer
	}

	return lm
}

// GetByName retrieves a layer by its name (e.g., "F.Cu")
func (lm *LayerMap) GetByName(name string) (*Layer, bool) {
	layer, ok := lm.byName[name]
	return layer, ok
}

// GetByNumber retrieves a layer by its number
func (lm *LayerMap) GetByNumber(num int) (*Layer, bool) {
	layer, ok := lm.byNumber[num]
	return layer, ok
}

// CopperLayers returns the copper ordinals defined in the map, front to
// back.
func (lm *LayerMap) CopperLayers() []int {
	var out []int
	for ord := FrontCopper; ord <= BackCopper; ord++ {
		for _, l := range lm.byName {
			if o, ok := CopperOrdinal(l.Name); ok && o == ord {
				out = append(out, ord)
				break
			}
		}
	}
	return out
}

// NetMap provides efficient lookup of nets by number or name
type NetMap struct {
	byNumber map[int]*Net
	byName   map[string]*Net
}

// NewNetMap creates a NetMap from a slice of nets
func NewNetMap(nets []Net) *NetMap {
	nm := &NetMap{
		byNumber: make(map[int]*Net),
		byName:   make(map[string]*Net),
	}

	for i := range nets {
		net := &nets[i]
		nm.byNumber[net.Number] = net
		if net.Name != "" {
			nm.byName[net.Name] = net
		}
	}

	return nm
}

// GetByName retrieves a net by its name (e.g., "GND", "+5V")
func (nm *NetMap) GetByName(name string) (*Net, bool) {
	net, ok := nm.byName[name]
	return net, ok
}

// GetByNumber retrieves a net by its number
func (nm *NetMap) GetByNumber(num int) (*Net, bool) {
	net, ok := nm.byNumber[num]
	return net, ok
}

// IsUnconnected reports whether a net code is KiCad's "no net" (0).
func (nm *NetMap) IsUnconnected(num int) bool {
	return num <= 0
}
