package router

import "fmt"

// Copper layer ordinals follow KiCad: F.Cu is 0, inner layers count up from
// 1 and B.Cu is 31.
const (
	LayerFront = 0
	LayerBack  = 31

	// LayerCount is the number of copper layer slots.
	LayerCount = 32
)

// LayerName returns the KiCad name of a copper layer ordinal.
func LayerName(layer int) string {
	switch layer {
	case LayerFront:
		return "F.Cu"
	case LayerBack:
		return "B.Cu"
	default:
		return fmt.Sprintf("In%d.Cu", layer)
	}
}

// LayerRange is an inclusive span of copper layers.
type LayerRange struct {
	Start int
	End   int
}

// NewLayerRange returns the range spanning a and b in either order.
func NewLayerRange(a, b int) LayerRange {
	if a > b {
		a, b = b, a
	}
	return LayerRange{Start: a, End: b}
}

// SingleLayer returns a range holding only layer.
func SingleLayer(layer int) LayerRange {
	return LayerRange{Start: layer, End: layer}
}

// AllLayers spans every copper layer.
func AllLayers() LayerRange {
	return LayerRange{Start: LayerFront, End: LayerBack}
}

// Overlaps reports whether the two ranges share a layer.
func (r LayerRange) Overlaps(o LayerRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// Contains reports whether layer falls inside the range.
func (r LayerRange) Contains(layer int) bool {
	return layer >= r.Start && layer <= r.End
}

// IsMultilayer reports whether the range covers more than one layer.
func (r LayerRange) IsMultilayer() bool {
	return r.Start != r.End
}

// Valid reports whether the range is non-empty and within the copper stack.
func (r LayerRange) Valid() bool {
	return r.Start >= 0 && r.Start <= r.End && r.End < LayerCount
}

func (r LayerRange) String() string {
	if !r.IsMultilayer() {
		return LayerName(r.Start)
	}
	return fmt.Sprintf("%s-%s", LayerName(r.Start), LayerName(r.End))
}
