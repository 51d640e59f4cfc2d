package router

import "fmt"

// Kind identifies the variant of an Item.
type Kind uint8

const (
	KindSegment Kind = iota
	KindArc
	KindLine
	KindVia
	KindSolid
	KindJoint
	KindDiffPair
)

// String returns the kind name used in logs and reports.
func (k Kind) String() string {
	switch k {
	case KindSegment:
		return "segment"
	case KindArc:
		return "arc"
	case KindLine:
		return "line"
	case KindVia:
		return "via"
	case KindSolid:
		return "solid"
	case KindJoint:
		return "joint"
	case KindDiffPair:
		return "diff-pair"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// IsTrack reports whether the kind is routed copper (segments, arcs, lines).
func (k Kind) IsTrack() bool {
	return k == KindSegment || k == KindArc || k == KindLine
}
