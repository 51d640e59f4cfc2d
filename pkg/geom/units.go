package geom

import "math"

// FromMM converts millimetres to nanometres.
func FromMM(mm float64) int64 {
	return int64(math.Round(mm * 1e6))
}

// ToMM converts nanometres to millimetres.
func ToMM(nm int64) float64 {
	return float64(nm) / 1e6
}
