package router

import (
	"errors"
	"slices"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
)

var (
	// ErrDuplicateItem is returned when adding an item the node already holds.
	ErrDuplicateItem = errors.New("router: item already in node")
	// ErrItemNotFound is returned when removing an item the node does not hold.
	ErrItemNotFound = errors.New("router: item not in node")
)

// DefaultMaxClearance bounds the broad phase search radius when no larger
// rule is known (0.8 mm).
const DefaultMaxClearance = 800_000

// Node is a snapshot of board state. A branch holds only its own changes
// on top of its parent; the parent must not change while branches exist.
type Node struct {
	parent *Node
	depth  int

	resolver     RuleResolver
	iface        RouterIface
	arena        *Arena
	scope        QueryScope
	maxClearance int64

	items   map[*Item]struct{}
	index   *index
	removed map[*Item]struct{} // ancestor items hidden in this branch

	edgeExclusions []geom.Shape
}

// NewNode returns an empty root node. A nil iface uses DefaultIface and a
// nil arena an empty one. A nil resolver imposes no constraints.
func NewNode(resolver RuleResolver, iface RouterIface, arena *Arena) *Node {
	if iface == nil {
		iface = DefaultIface{}
	}
	if arena == nil {
		arena = NewArena()
	}
	return &Node{
		resolver:     resolver,
		iface:        iface,
		arena:        arena,
		scope:        ScopeAllRules,
		maxClearance: DefaultMaxClearance,
		items:        make(map[*Item]struct{}),
		index:        newIndex(),
		removed:      make(map[*Item]struct{}),
	}
}

// Branch returns a child node that sees every item of n and records its
// own additions and removals.
func (n *Node) Branch() *Node {
	child := NewNode(n.resolver, n.iface, n.arena)
	child.parent = n
	child.depth = n.depth + 1
	child.scope = n.scope
	child.maxClearance = n.maxClearance
	return child
}

// Parent returns the node n was branched from, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Depth returns the number of branches between n and the root.
func (n *Node) Depth() int { return n.depth }

func (n *Node) GetRuleResolver() RuleResolver { return n.resolver }
func (n *Node) GetIface() RouterIface         { return n.iface }
func (n *Node) GetArena() *Arena              { return n.arena }

// GetCollisionQueryScope returns the scope used when a query does not set
// its own.
func (n *Node) GetCollisionQueryScope() QueryScope { return n.scope }

// SetCollisionQueryScope sets the default query scope. ScopeFromNode is
// ignored.
func (n *Node) SetCollisionQueryScope(s QueryScope) {
	if s != ScopeFromNode {
		n.scope = s
	}
}

// SetMaxClearance sets the largest clearance any rule can return.
func (n *Node) SetMaxClearance(c int64) { n.maxClearance = c }

// GetMaxClearance returns the broad phase search radius.
func (n *Node) GetMaxClearance() int64 { return n.maxClearance }

// GetClearance returns the copper clearance between a and b, negative when
// unconstrained.
func (n *Node) GetClearance(a, b *Item) int64 {
	if n.resolver == nil {
		return -1
	}
	return n.resolver.Clearance(a, b)
}

func (n *Node) GetHoleClearance(a, b *Item) int64 {
	if n.resolver == nil {
		return -1
	}
	return n.resolver.HoleClearance(a, b)
}

func (n *Node) GetHoleToHoleClearance(a, b *Item) int64 {
	if n.resolver == nil {
		return -1
	}
	return n.resolver.HoleToHoleClearance(a, b)
}

// AddEdgeExclusion registers an area near the board edge where clearance
// to the outline is not enforced, such as a castellated pad.
func (n *Node) AddEdgeExclusion(s geom.Shape) {
	n.edgeExclusions = append(n.edgeExclusions, s)
}

// QueryEdgeExclusions reports whether p lies in an edge exclusion of n or
// any of its ancestors.
func (n *Node) QueryEdgeExclusions(p geom.Vec) bool {
	for cur := n; cur != nil; cur = cur.parent {
		for _, s := range cur.edgeExclusions {
			if geom.Contains(s, p) {
				return true
			}
		}
	}
	return false
}

// Add inserts it into the node.
func (n *Node) Add(it *Item) error {
	if n.Contains(it) {
		return ErrDuplicateItem
	}
	if _, ok := n.removed[it]; ok {
		delete(n.removed, it)
		return nil
	}
	n.items[it] = struct{}{}
	n.index.add(it)
	return nil
}

// Remove takes it out of the node. Items owned by an ancestor are hidden
// in this branch only.
func (n *Node) Remove(it *Item) error {
	if _, ok := n.items[it]; ok {
		delete(n.items, it)
		n.index.remove(it)
		return nil
	}
	if n.parent != nil && n.parent.Contains(it) {
		n.removed[it] = struct{}{}
		return nil
	}
	return ErrItemNotFound
}

// Contains reports whether it is visible in n.
func (n *Node) Contains(it *Item) bool {
	for cur := n; cur != nil; cur = cur.parent {
		if _, ok := cur.removed[it]; ok {
			return false
		}
		if _, ok := cur.items[it]; ok {
			return true
		}
	}
	return false
}

// Items returns every item visible in n, ordered by ID.
func (n *Node) Items() []*Item {
	return n.collect(func(cur *Node) []*Item {
		out := make([]*Item, 0, len(cur.items))
		for it := range cur.items {
			out = append(out, it)
		}
		return out
	})
}

// ItemCount returns the number of visible items.
func (n *Node) ItemCount() int {
	return len(n.Items())
}

// collect gathers items from n and its ancestors, dropping those hidden by
// a branch at or below the owner.
func (n *Node) collect(from func(*Node) []*Item) []*Item {
	var (
		out    []*Item
		hidden []map[*Item]struct{}
	)
	for cur := n; cur != nil; cur = cur.parent {
	next:
		for _, it := range from(cur) {
			for _, h := range hidden {
				if _, ok := h[it]; ok {
					continue next
				}
			}
			out = append(out, it)
		}
		hidden = append(hidden, cur.removed)
	}
	slices.SortFunc(out, func(a, b *Item) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})
	return out
}

// Obstacle is an item found colliding with a query item.
type Obstacle struct {
	Head   *Item
	Item   *Item
	Result CollisionResult
}

// QueryColliding returns up to limit items colliding with head, ordered by
// ID. A limit <= 0 returns all of them. The search reaches as far as the
// larger of the node's max clearance and opts.OverrideClearance.
func (n *Node) QueryColliding(head *Item, opts CollideOptions, limit int) []Obstacle {
	box := head.BBox(max(n.maxClearance, opts.OverrideClearance))
	candidates := n.collect(func(cur *Node) []*Item {
		return cur.index.query(box)
	})

	var out []Obstacle
	for _, it := range candidates {
		if it == head || it == head.Via() {
			continue
		}
		if r := head.CollideWith(it, n, opts); r.Collided {
			out = append(out, Obstacle{Head: head, Item: it, Result: r})
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// CheckColliding returns the first item colliding with head.
func (n *Node) CheckColliding(head *Item, opts CollideOptions) (Obstacle, bool) {
	obs := n.QueryColliding(head, opts, 1)
	if len(obs) == 0 {
		return Obstacle{}, false
	}
	return obs[0], true
}
