package router

import "github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"

// Collide reports whether it and other violate spacing on node. Items on
// the same net never collide and the clearance comes from the node's rules.
func (it *Item) Collide(other *Item, node *Node) bool {
	return it.CollideWith(other, node, DefaultCollideOptions()).Collided
}

// CollideWith runs a collision query with explicit options.
//
// A line ending in a via behaves as one object: the via is tested on its
// own after the line body. Diff pairs are tested member by member. Two
// lines that both carry a trailing via do not get a via to via test.
func (it *Item) CollideWith(other *Item, node *Node, opts CollideOptions) CollisionResult {
	if node == nil {
		panic("router: collision query without a node")
	}
	if other == nil || it == other {
		return CollisionResult{}
	}

	if r := collideSimple(it, other, node, opts); r.Collided {
		return r
	}
	if via := it.Via(); via != nil && via != other {
		if r := collideSimple(via, other, node, opts); r.Collided {
			return r
		}
	}
	if via := other.Via(); via != nil && via != it {
		if r := collideSimple(it, via, node, opts); r.Collided {
			return r
		}
	}

	if it.kind == KindDiffPair {
		for _, m := range []*Item{it.PLine(), it.NLine()} {
			if r := m.CollideWith(other, node, opts); r.Collided {
				return r
			}
		}
	}
	if other.kind == KindDiffPair {
		for _, m := range []*Item{other.PLine(), other.NLine()} {
			if r := it.CollideWith(m, node, opts); r.Collided {
				return r
			}
		}
	}
	return CollisionResult{}
}

// collideSimple tests two non-compound items.
func collideSimple(a, b *Item, node *Node, opts CollideOptions) CollisionResult {
	var none CollisionResult

	if a == b || a.shape == nil || b.shape == nil {
		return none
	}
	// Canonical order keeps the result independent of argument order.
	if a.id > b.id {
		a, b = b, a
	}

	if opts.DifferentNetsOnly && a.net >= 0 && a.net == b.net {
		return none
	}
	if opts.DifferentNetsOnly && (a.freePad || b.freePad) {
		return none
	}

	// Holes are drilled through the whole board, so hole to hole spacing
	// is checked even without a shared copper layer.
	overlap := a.layers.Overlaps(b.layers)
	if !overlap && (a.hole == nil || b.hole == nil) {
		return none
	}

	arena := node.GetArena()
	pa, pb := arena.Get(a.parent), arena.Get(b.parent)
	if pa.IsKeepout() && !keepoutApplies(pa, b, pb) {
		return none
	}
	if pb.IsKeepout() && !keepoutApplies(pb, a, pa) {
		return none
	}

	var base CollisionFlags
	if pa.IsKeepout() || pb.IsKeepout() {
		base |= FlagKeepout
	}
	edge := isEdge(pa) || isEdge(pb)
	if edge {
		base |= FlagEdge
	}

	scope := opts.Scope
	if scope == ScopeFromNode {
		scope = node.GetCollisionQueryScope()
	}

	iface := node.GetIface()
	aNotFlashed := !iface.IsFlashedOnLayer(a, b.Layer())
	bNotFlashed := !iface.IsFlashedOnLayer(b, a.Layer())
	lwA, lwB := a.CenterlineWidth()/2, b.CenterlineWidth()/2

	if (scope == ScopeAllRules || aNotFlashed || bNotFlashed) && (a.hole != nil || b.hole != nil) {
		if overlap {
			if a.hole != nil {
				if hc := node.GetHoleClearance(a, b); hc >= 0 {
					if hit, _, loc := geom.CollideLocate(a.hole, b.shape, hc+lwB); hit {
						return located(base|FlagHole, loc, a)
					}
				}
			}
			if b.hole != nil {
				if hc := node.GetHoleClearance(a, b); hc >= 0 {
					if hit, _, loc := geom.CollideLocate(b.hole, a.shape, hc+lwA); hit {
						return located(base|FlagHole, loc, b)
					}
				}
			}
		}
		if a.hole != nil && b.hole != nil {
			if hh := node.GetHoleToHoleClearance(a, b); hh >= 0 {
				if hit, _, loc := geom.CollideLocate(a.hole, b.hole, hh); hit {
					return located(base|FlagHoleToHole, loc, a, b)
				}
			}
		}
	}

	if !overlap {
		return none
	}

	// Annular rings removed from a layer do not reach single layer items
	// there.
	if !a.IsMultilayer() && bNotFlashed {
		return none
	}
	if !b.IsMultilayer() && aNotFlashed {
		return none
	}

	clearance := opts.OverrideClearance
	if clearance < 0 {
		clearance = node.GetClearance(a, b)
	}
	if clearance < 0 {
		return none
	}
	total := clearance + lwA + lwB

	if scope == ScopeAllRules {
		rr := node.GetRuleResolver()
		tieA := rr != nil && rr.IsInNetTie(a)
		tieB := rr != nil && rr.IsInNetTie(b)

		if edge || tieA || tieB {
			hit, _, loc := geom.CollideLocate(a.shape, b.shape, total)
			if !hit {
				return none
			}
			if edge && edgeExcluded(node, a, b, pa, loc) {
				return none
			}
			if tieA && rr.IsNetTieExclusion(b, loc, a) {
				return none
			}
			if tieB && rr.IsNetTieExclusion(a, loc, b) {
				return none
			}
			return located(base|FlagClearance, loc)
		}
	}

	if geom.Collide(a.shape, b.shape, total) {
		return CollisionResult{Collided: true, Flags: base | FlagClearance}
	}
	return none
}

func located(flags CollisionFlags, loc geom.Vec, marked ...*Item) CollisionResult {
	return CollisionResult{
		Collided:    true,
		Flags:       flags,
		Marked:      marked,
		Location:    loc,
		HasLocation: true,
	}
}

// keepoutApplies reports whether the rule area zone disallows other.
func keepoutApplies(zone *BoardObject, other *Item, otherObj *BoardObject) bool {
	k := zone.Keepout
	switch {
	case other.kind.IsTrack():
		return k.Tracks
	case other.kind == KindVia:
		return k.Vias
	case otherObj != nil && otherObj.Kind == ObjectPad:
		if k.Pads {
			return true
		}
		if k.Footprints {
			return zone.Footprint == NoParent || zone.Footprint != otherObj.Footprint
		}
	}
	return false
}

// edgeExcluded reports whether an edge contact at loc belongs to a
// castellated pad. A pad short of the edge leaves loc outside its outline,
// so the copper side's own nearest point is tried too.
func edgeExcluded(node *Node, a, b *Item, pa *BoardObject, loc geom.Vec) bool {
	if node.QueryEdgeExclusions(loc) {
		return true
	}
	onA, onB := geom.NearestPoints(a.shape, b.shape)
	if isEdge(pa) {
		return node.QueryEdgeExclusions(onB)
	}
	return node.QueryEdgeExclusions(onA)
}

func isEdge(obj *BoardObject) bool {
	return obj != nil && obj.OnEdgeCuts
}
