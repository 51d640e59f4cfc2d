package rules

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/router"
)

// DefaultNetClass is reported for nets that match no configured class.
const DefaultNetClass = "Default"

type optional struct {
	v  int64
	ok bool
}

func mmOpt(v *float64) optional {
	if v == nil {
		return optional{}
	}
	return optional{v: geom.FromMM(*v), ok: true}
}

type compiledRule struct {
	name       string
	cond       *Condition
	clearance  optional
	hole       optional
	holeToHole optional
}

type netClass struct {
	name      string
	clearance int64
	nets      []string
}

// Resolver answers clearance questions for items built on an Arena.
//
// Precedence for copper clearance: rule areas (always 0), board edge
// (edge clearance), the last matching custom rule, then the larger of the
// two net class clearances. Resolver is safe for concurrent use once
// construction and AddNetTiePad calls are done.
type Resolver struct {
	arena *router.Arena
	scope router.QueryScope

	clearance  int64
	hole       int64
	holeToHole int64
	edge       int64

	classes []netClass
	rules   []compiledRule

	mu      sync.RWMutex
	classOf map[int]*netClass

	tiePads map[router.ParentID][]*router.Item
}

// NewResolver compiles cfg for the objects in arena.
func NewResolver(cfg *Config, arena *router.Arena) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	scope, ok := router.ParseQueryScope(cfg.Scope)
	if !ok {
		return nil, fmt.Errorf("rules: invalid scope %q", cfg.Scope)
	}

	r := &Resolver{
		arena:      arena,
		scope:      scope,
		clearance:  geom.FromMM(cfg.Clearance),
		hole:       geom.FromMM(cfg.HoleClearance),
		holeToHole: geom.FromMM(cfg.HoleToHoleClearance),
		edge:       geom.FromMM(cfg.EdgeClearance),
		classOf:    make(map[int]*netClass),
		tiePads:    make(map[router.ParentID][]*router.Item),
	}
	for _, nc := range cfg.NetClasses {
		r.classes = append(r.classes, netClass{
			name:      nc.Name,
			clearance: geom.FromMM(nc.Clearance),
			nets:      nc.Nets,
		})
	}
	for _, rule := range cfg.Rules {
		if err := r.AddRule(rule); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// AddRule appends a custom rule. Later rules take precedence.
func (r *Resolver) AddRule(rule Rule) error {
	cond, err := ParseCondition(rule.Condition)
	if err != nil {
		return fmt.Errorf("rules: rule %q: %w", rule.Name, err)
	}
	r.rules = append(r.rules, compiledRule{
		name:       rule.Name,
		cond:       cond,
		clearance:  mmOpt(rule.Clearance),
		hole:       mmOpt(rule.HoleClearance),
		holeToHole: mmOpt(rule.HoleToHoleClearance),
	})
	return nil
}

// AddNetTiePad registers a pad of a net-tie footprint. Pads whose number
// is not in one of the footprint's net-tie groups are ignored.
func (r *Resolver) AddNetTiePad(pad *router.Item) {
	obj := r.arena.Get(pad.Parent())
	if obj == nil || obj.Kind != router.ObjectPad {
		return
	}
	fp := r.arena.Get(obj.Footprint)
	if fp == nil {
		return
	}
	for _, group := range fp.NetTiePadGroups {
		if slices.Contains(group, obj.Name) {
			r.tiePads[obj.Footprint] = append(r.tiePads[obj.Footprint], pad)
			return
		}
	}
}

// Scope returns the configured collision query scope.
func (r *Resolver) Scope() router.QueryScope {
	return r.scope
}

// MaxClearance returns the largest clearance any pair can get. Nodes use
// it to size spatial queries.
func (r *Resolver) MaxClearance() int64 {
	m := max(r.clearance, r.hole, r.holeToHole, r.edge)
	for _, nc := range r.classes {
		m = max(m, nc.clearance)
	}
	for _, rule := range r.rules {
		m = max(m, rule.clearance.v, rule.hole.v, rule.holeToHole.v)
	}
	return m
}

// NetClassOf returns the name of the class of net, or DefaultNetClass.
func (r *Resolver) NetClassOf(net int) string {
	if nc := r.class(net); nc != nil {
		return nc.name
	}
	return DefaultNetClass
}

func (r *Resolver) class(net int) *netClass {
	r.mu.RLock()
	nc, ok := r.classOf[net]
	r.mu.RUnlock()
	if ok {
		return nc
	}

	name := r.arena.NetName(net)
	if name != "" {
	search:
		for i := range r.classes {
			for _, pattern := range r.classes[i].nets {
				if matchWildcard(pattern, name) {
					nc = &r.classes[i]
					break search
				}
			}
		}
	}

	r.mu.Lock()
	r.classOf[net] = nc
	r.mu.Unlock()
	return nc
}

func (r *Resolver) classClearance(net int) int64 {
	if nc := r.class(net); nc != nil {
		return nc.clearance
	}
	return r.clearance
}

// ruleValue returns the value of the last rule that sets the constraint
// and matches a and b in either order.
func (r *Resolver) ruleValue(a, b *router.Item, get func(*compiledRule) optional) (int64, bool) {
	if len(r.rules) == 0 {
		return 0, false
	}
	sa, sb := r.Subject(a), r.Subject(b)
	for i := len(r.rules) - 1; i >= 0; i-- {
		rule := &r.rules[i]
		v := get(rule)
		if !v.ok {
			continue
		}
		if rule.cond.Match(sa, sb) || rule.cond.Match(sb, sa) {
			return v.v, true
		}
	}
	return 0, false
}

// Subject describes it for condition matching.
func (r *Resolver) Subject(it *router.Item) *Subject {
	s := &Subject{NetName: r.arena.NetName(it.Net())}
	if it.Net() > 0 {
		s.NetClass = r.NetClassOf(it.Net())
	}

	obj := r.arena.Get(it.Parent())
	if obj != nil {
		s.Type = typeName(obj.Kind)
		if fp := r.arena.Get(r.arena.FootprintOf(it.Parent())); fp != nil {
			s.Reference = fp.Name
		}
	} else {
		switch it.Kind() {
		case router.KindArc:
			s.Type = "Arc"
		case router.KindVia:
			s.Type = "Via"
		case router.KindSolid:
			s.Type = "Pad"
		default:
			s.Type = "Track"
		}
	}

	lr := it.Layers()
	for l := lr.Start; l <= lr.End; l++ {
		if it.IsFlashedOn(l) {
			s.Layers = append(s.Layers, router.LayerName(l))
		}
	}
	return s
}

func typeName(k router.ObjectKind) string {
	s := k.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

func parents(r *Resolver, a, b *router.Item) (*router.BoardObject, *router.BoardObject) {
	return r.arena.Get(a.Parent()), r.arena.Get(b.Parent())
}

func isEdge(o *router.BoardObject) bool {
	return o != nil && o.OnEdgeCuts
}

// Clearance implements router.RuleResolver.
func (r *Resolver) Clearance(a, b *router.Item) int64 {
	pa, pb := parents(r, a, b)
	if pa.IsKeepout() || pb.IsKeepout() {
		return 0
	}
	if isEdge(pa) || isEdge(pb) {
		return r.edge
	}
	if v, ok := r.ruleValue(a, b, func(c *compiledRule) optional { return c.clearance }); ok {
		return v
	}
	return max(r.classClearance(a.Net()), r.classClearance(b.Net()))
}

// HoleClearance implements router.RuleResolver. Rule areas and the board
// edge are checked through copper clearance only.
func (r *Resolver) HoleClearance(a, b *router.Item) int64 {
	pa, pb := parents(r, a, b)
	if pa.IsKeepout() || pb.IsKeepout() || isEdge(pa) || isEdge(pb) {
		return -1
	}
	if v, ok := r.ruleValue(a, b, func(c *compiledRule) optional { return c.hole }); ok {
		return v
	}
	return r.hole
}

// HoleToHoleClearance implements router.RuleResolver.
func (r *Resolver) HoleToHoleClearance(a, b *router.Item) int64 {
	pa, pb := parents(r, a, b)
	if pa.IsKeepout() || pb.IsKeepout() || isEdge(pa) || isEdge(pb) {
		return -1
	}
	if v, ok := r.ruleValue(a, b, func(c *compiledRule) optional { return c.holeToHole }); ok {
		return v
	}
	return r.holeToHole
}

// IsInNetTie implements router.RuleResolver. Every item of a net-tie
// footprint is a member.
func (r *Resolver) IsInNetTie(item *router.Item) bool {
	fp := r.arena.Get(r.arena.FootprintOf(item.Parent()))
	return fp != nil && len(fp.NetTiePadGroups) > 0
}

// IsNetTieExclusion implements router.RuleResolver. The collision is the
// designed short when point lies on a net-tie pad of self's footprint that
// carries other's net.
func (r *Resolver) IsNetTieExclusion(other *router.Item, point geom.Vec, self *router.Item) bool {
	fp := r.arena.FootprintOf(self.Parent())
	if fp == router.NoParent {
		return false
	}
	for _, pad := range r.tiePads[fp] {
		if pad.Net() == other.Net() && geom.Contains(pad.Shape(), point) {
			return true
		}
	}
	return false
}

var _ router.RuleResolver = (*Resolver)(nil)
