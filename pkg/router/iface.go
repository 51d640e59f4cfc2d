package router

import "github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"

// RuleResolver answers design-rule questions for a pair of items.
// Clearances are in nanometres; a negative value means no constraint.
type RuleResolver interface {
	Clearance(a, b *Item) int64
	HoleClearance(a, b *Item) int64
	HoleToHoleClearance(a, b *Item) int64

	// IsInNetTie reports whether item belongs to a net-tie footprint.
	IsInNetTie(item *Item) bool

	// IsNetTieExclusion reports whether a collision between self (a net-tie
	// member) and other at point is the designed net-tie junction.
	IsNetTieExclusion(other *Item, point geom.Vec, self *Item) bool
}

// RouterIface exposes board facts the engine cannot derive from items alone.
type RouterIface interface {
	IsFlashedOnLayer(item *Item, layer int) bool
}

// DefaultIface answers from the item's own layer range and unflashed layers.
type DefaultIface struct{}

func (DefaultIface) IsFlashedOnLayer(item *Item, layer int) bool {
	return item.IsFlashedOn(layer)
}

// QueryScope selects how much exception handling a collision query does.
type QueryScope uint8

const (
	// ScopeFromNode uses the scope configured on the node.
	ScopeFromNode QueryScope = iota
	// ScopeQuick skips hole tests on flashed pairs and all castellation and
	// net-tie exceptions.
	ScopeQuick
	// ScopeAllRules runs every test and exception.
	ScopeAllRules
)

func (s QueryScope) String() string {
	switch s {
	case ScopeQuick:
		return "quick"
	case ScopeAllRules:
		return "all_rules"
	default:
		return "node"
	}
}

// ParseQueryScope maps "quick" and "all_rules" to a scope.
func ParseQueryScope(s string) (QueryScope, bool) {
	switch s {
	case "quick", "QUICK":
		return ScopeQuick, true
	case "all_rules", "ALL_RULES", "all":
		return ScopeAllRules, true
	}
	return ScopeFromNode, false
}

// CollisionFlags classify a detected collision.
type CollisionFlags uint8

const (
	// FlagHole is set when a drilled hole is too close to copper.
	FlagHole CollisionFlags = 1 << iota
	// FlagHoleToHole is set when two drilled holes are too close.
	FlagHoleToHole
	// FlagClearance is set for copper to copper violations.
	FlagClearance
	// FlagKeepout is set when one side is a rule area.
	FlagKeepout
	// FlagEdge is set when one side is the board outline.
	FlagEdge
)

// Has reports whether all bits of f are set.
func (c CollisionFlags) Has(f CollisionFlags) bool {
	return c&f == f
}

// CollideOptions tune a single collision query.
type CollideOptions struct {
	// DifferentNetsOnly skips pairs on the same net and free pads.
	DifferentNetsOnly bool

	// OverrideClearance replaces the resolved copper clearance when >= 0.
	OverrideClearance int64

	// Scope overrides the node's query scope unless ScopeFromNode.
	Scope QueryScope
}

// DefaultCollideOptions returns the options used by Item.Collide.
func DefaultCollideOptions() CollideOptions {
	return CollideOptions{DifferentNetsOnly: true, OverrideClearance: -1}
}

// CollisionResult is the outcome of a collision query.
type CollisionResult struct {
	Collided bool
	Flags    CollisionFlags

	// Marked lists the items the violation is attributed to, in ID order.
	Marked []*Item

	// Location is set by the exception-aware path and the hole tests.
	Location    geom.Vec
	HasLocation bool
}
