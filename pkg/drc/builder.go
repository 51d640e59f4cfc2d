package drc

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/router"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/rules"
)

// Design is a board loaded into a collision world.
type Design struct {
	Board    *pcb.Board
	Arena    *router.Arena
	Node     *router.Node
	Resolver *rules.Resolver
}

type builder struct {
	board    *pcb.Board
	arena    *router.Arena
	node     *router.Node
	resolver *rules.Resolver
	logger   *slog.Logger

	copper []int // copper ordinals present on the board, front to back

	// Vias and pads that drop annular rings on unconnected layers. They
	// are resolved once every track is in the node.
	pending []pendingFlash
}

type pendingFlash struct {
	item     *router.Item
	keepEnds bool
}

// Build converts board into items on a fresh node governed by cfg. The
// optional dru rules take precedence over the ones in cfg.
func Build(board *pcb.Board, cfg *rules.Config, dru *rules.DRU, logger *slog.Logger) (*Design, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	arena := router.NewArena()
	for _, n := range board.Nets {
		if n.Number > 0 {
			arena.SetNetName(n.Number, n.Name)
		}
	}

	resolver, err := rules.NewResolver(cfg, arena)
	if err != nil {
		return nil, err
	}
	if dru != nil {
		if err := resolver.LoadDRU(dru); err != nil {
			return nil, err
		}
		for _, s := range dru.Skipped {
			logger.Warn("skipped custom rule", "rule", s)
		}
	}

	node := router.NewNode(resolver, nil, arena)
	node.SetCollisionQueryScope(resolver.Scope())
	node.SetMaxClearance(resolver.MaxClearance())

	b := &builder{
		board:    board,
		arena:    arena,
		node:     node,
		resolver: resolver,
		logger:   logger,
		copper:   board.GetLayerMap().CopperLayers(),
	}
	if len(b.copper) == 0 {
		b.copper = []int{pcb.FrontCopper, pcb.BackCopper}
	}

	steps := []func() error{b.addTracks, b.addVias, b.addFootprints, b.addGraphics, b.addZones, b.resolveFlashing}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	logger.Debug("built collision world",
		"items", node.ItemCount(),
		"objects", arena.Len(),
		"max_clearance_nm", node.GetMaxClearance())

	return &Design{Board: board, Arena: arena, Node: node, Resolver: resolver}, nil
}

// net maps KiCad's "no net" code 0 to the router's unassigned net.
func net(code int) int {
	if code <= 0 {
		return -1
	}
	return code
}

func uuidString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// layers expands KiCad layer names, including "*.Cu" and "F&B.Cu", to the
// copper ordinals present on the board.
func (b *builder) layers(names []string) []int {
	var out []int
	add := func(ord int) {
		if slices.Contains(b.copper, ord) && !slices.Contains(out, ord) {
			out = append(out, ord)
		}
	}
	for _, name := range names {
		switch name {
		case "*.Cu":
			for _, ord := range b.copper {
				add(ord)
			}
		case "F&B.Cu":
			add(pcb.FrontCopper)
			add(pcb.BackCopper)
		default:
			if ord, ok := pcb.CopperOrdinal(name); ok {
				add(ord)
			}
		}
	}
	slices.Sort(out)
	return out
}

// span returns the range covering ords and marks the board layers inside
// it that are not in ords as unflashed on it.
func (b *builder) span(it *router.Item, ords []int) {
	for _, ord := range b.copper {
		if it.Layers().Contains(ord) && !slices.Contains(ords, ord) {
			it.SetUnflashed(ord)
		}
	}
}

func rangeOf(ords []int) router.LayerRange {
	return router.NewLayerRange(ords[0], ords[len(ords)-1])
}

func (b *builder) add(it *router.Item, obj router.BoardObject) error {
	it.SetParent(b.arena.Add(obj))
	if err := b.node.Add(it); err != nil {
		return fmt.Errorf("drc: add %s: %w", it, err)
	}
	return nil
}

func (b *builder) addTracks() error {
	for _, t := range b.board.Tracks {
		ord, ok := pcb.CopperOrdinal(t.Layer)
		if !ok {
			b.logger.Warn("track on non-copper layer", "uuid", t.UUID, "layer", t.Layer)
			continue
		}
		it := router.NewSegment(t.Start, t.End, t.Width, ord, net(t.Net))
		obj := router.BoardObject{Kind: router.ObjectTrack, UUID: uuidString(t.UUID), Layer: t.Layer, Net: t.Net}
		if err := b.add(it, obj); err != nil {
			return err
		}
	}
	for _, a := range b.board.Arcs {
		ord, ok := pcb.CopperOrdinal(a.Layer)
		if !ok {
			b.logger.Warn("arc on non-copper layer", "uuid", a.UUID, "layer", a.Layer)
			continue
		}
		it := router.NewArc(a.Start, a.Mid, a.End, a.Width, ord, net(a.Net))
		obj := router.BoardObject{Kind: router.ObjectArc, UUID: uuidString(a.UUID), Layer: a.Layer, Net: a.Net}
		if err := b.add(it, obj); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addVias() error {
	for _, v := range b.board.Vias {
		ords := b.layers(v.Layers)
		if len(ords) == 0 {
			b.logger.Warn("via without copper layers", "uuid", v.UUID)
			continue
		}
		// A via spans every layer between its end layers.
		lr := rangeOf(ords)
		it := router.NewVia(v.Position, v.Size, v.Drill, lr, net(v.Net))
		obj := router.BoardObject{Kind: router.ObjectVia, UUID: uuidString(v.UUID), Net: v.Net}
		if err := b.add(it, obj); err != nil {
			return err
		}
		if v.RemoveUnusedLayers {
			b.pending = append(b.pending, pendingFlash{item: it, keepEnds: v.KeepEndLayers})
		}
	}
	return nil
}

func (b *builder) addFootprints() error {
	for i := range b.board.Footprints {
		fp := &b.board.Footprints[i]
		fpID := b.arena.Add(router.BoardObject{
			Kind:            router.ObjectFootprint,
			UUID:            uuidString(fp.UUID),
			Name:            fp.Reference,
			Layer:           fp.Layer,
			NetTiePadGroups: fp.NetTiePadGroups,
		})

		for j := range fp.Pads {
			if err := b.addPad(&fp.Pads[j], fpID); err != nil {
				return err
			}
		}
		for _, g := range fp.Graphics {
			if err := b.addGraphic(g, fpID); err != nil {
				return err
			}
		}
		for _, z := range fp.Zones {
			if err := b.addZone(z, fpID); err != nil {
				return err
			}
		}
	}
	return nil
}

// padShape returns the copper outline of a pad. Rounded and chamfered
// rectangles, trapezoids and custom pads use their bounding rectangle.
func padShape(p *pcb.Pad) geom.Shape {
	switch p.Shape {
	case "circle":
		return geom.NewCircle(p.Position, p.Width/2)
	case "oval":
		return geom.NewOval(p.Position, p.Width, p.Height, p.Angle)
	default:
		return geom.NewRect(p.Position, p.Width, p.Height, p.Angle)
	}
}

func holeShape(p *pcb.Pad) geom.Shape {
	c := p.Position.Add(p.Drill.Offset.Rotate(p.Angle))
	if p.Drill.Oval {
		return geom.NewOval(c, p.Drill.Width, p.Drill.Height, p.Angle)
	}
	return geom.NewCircle(c, p.Drill.Width/2)
}

func (b *builder) addPad(p *pcb.Pad, fpID router.ParentID) error {
	ords := b.layers(p.Layers)
	var shape, hole geom.Shape
	if p.HasHole() {
		hole = holeShape(p)
	}

	switch {
	case len(ords) > 0:
		shape = padShape(p)
	case hole != nil:
		// Unplated hole: the drill itself is the obstacle on every layer.
		shape, ords = hole, b.copper
	default:
		return nil
	}

	lr := rangeOf(ords)
	if hole != nil {
		lr = rangeOf(b.copper)
	}
	it := router.NewSolid(p.Position, shape, lr, net(p.Net))
	it.SetHole(hole)
	it.SetFreePad(p.IsFree())
	b.span(it, ords)

	obj := router.BoardObject{
		Kind:        router.ObjectPad,
		UUID:        uuidString(p.UUID),
		Name:        p.Number,
		Footprint:   fpID,
		Net:         p.Net,
		Castellated: p.Castellated,
	}
	if err := b.add(it, obj); err != nil {
		return err
	}

	if p.Castellated {
		b.node.AddEdgeExclusion(shape)
	}
	if fp := b.arena.Get(fpID); len(fp.NetTiePadGroups) > 0 {
		b.resolver.AddNetTiePad(it)
	}
	if p.RemoveUnusedLayers && hole != nil {
		b.pending = append(b.pending, pendingFlash{item: it, keepEnds: p.KeepEndLayers})
	}
	return nil
}

func (b *builder) addGraphics() error {
	for _, g := range b.board.Graphics {
		if err := b.addGraphic(g, router.NoParent); err != nil {
			return err
		}
	}
	return nil
}

// graphicShapes converts a graphic to outlines. Filled shapes become areas;
// outlined ones become strokes, one per side. Board edges are measured
// from their centerline.
func graphicShapes(g pcb.Graphic, width int64) []geom.Shape {
	stroke := func(pts []geom.Vec) []geom.Shape {
		var out []geom.Shape
		for i := range pts {
			out = append(out, geom.NewSegment(pts[i], pts[(i+1)%len(pts)], width))
		}
		return out
	}

	switch g.Kind {
	case pcb.GraphicLine:
		return []geom.Shape{geom.NewSegment(g.Start, g.End, width)}
	case pcb.GraphicArc:
		return []geom.Shape{geom.NewArc(g.Start, g.Mid, g.End, width)}
	case pcb.GraphicCircle:
		r := int64(g.End.Sub(g.Start).Norm())
		if g.Filled {
			return []geom.Shape{geom.NewCircle(g.Start, r+width/2)}
		}
		rim := g.Start.Add(geom.V(r, 0))
		return []geom.Shape{geom.NewArc(rim, g.Start.Sub(geom.V(r, 0)), rim, width)}
	case pcb.GraphicRect:
		corners := []geom.Vec{g.Start, geom.V(g.End.X, g.Start.Y), g.End, geom.V(g.Start.X, g.End.Y)}
		if g.Filled {
			return []geom.Shape{geom.NewPolygon(corners...)}
		}
		return stroke(corners)
	case pcb.GraphicPoly:
		if g.Filled && len(g.Points) >= 3 {
			return []geom.Shape{geom.NewPolygon(g.Points...)}
		}
		return stroke(g.Points)
	}
	return nil
}

func (b *builder) addGraphic(g pcb.Graphic, fpID router.ParentID) error {
	obj := router.BoardObject{
		Kind:      router.ObjectGraphic,
		UUID:      uuidString(g.UUID),
		Layer:     g.Layer,
		Footprint: fpID,
		Net:       g.Net,
	}

	var (
		lr    router.LayerRange
		width = g.Width
		n     = net(g.Net)
	)
	if g.Layer == "Edge.Cuts" {
		obj.OnEdgeCuts = true
		lr = rangeOf(b.copper)
		width, n = 0, -1
	} else {
		ord, ok := pcb.CopperOrdinal(g.Layer)
		if !ok {
			return nil
		}
		lr = router.SingleLayer(ord)
	}

	id := b.arena.Add(obj)
	for _, s := range graphicShapes(g, width) {
		it := router.NewSolid(s.BBox(0).Centre(), s, lr, n)
		it.SetParent(id)
		if err := b.node.Add(it); err != nil {
			return fmt.Errorf("drc: add graphic: %w", err)
		}
	}
	return nil
}

func (b *builder) addZones() error {
	for _, z := range b.board.Zones {
		if err := b.addZone(z, router.NoParent); err != nil {
			return err
		}
	}
	return nil
}

// addZone adds a rule area as one polygon per copper layer. Copper zones
// are skipped: their fills are not read.
func (b *builder) addZone(z pcb.Zone, fpID router.ParentID) error {
	if !z.IsRuleArea() {
		return nil
	}
	k := router.Keepout{
		Tracks:     z.Keepout.Tracks,
		Vias:       z.Keepout.Vias,
		Pads:       z.Keepout.Pads,
		Footprints: z.Keepout.Footprints,
	}
	if !k.Any() {
		return nil
	}

	id := b.arena.Add(router.BoardObject{
		Kind:      router.ObjectZone,
		UUID:      uuidString(z.UUID),
		Name:      z.Name,
		Keepout:   &k,
		Footprint: fpID,
	})
	outline := geom.NewPolygon(z.Outline...)
	for _, ord := range b.layers(z.Layers) {
		it := router.NewSolid(outline.BBox(0).Centre(), outline, router.SingleLayer(ord), -1)
		it.SetParent(id)
		if err := b.node.Add(it); err != nil {
			return fmt.Errorf("drc: add zone %q: %w", z.Name, err)
		}
	}
	return nil
}

// resolveFlashing drops the annular ring of pending vias and pads on every
// layer where nothing of the same net touches them.
func (b *builder) resolveFlashing() error {
	opts := router.CollideOptions{OverrideClearance: 0, Scope: router.ScopeQuick}
	for _, p := range b.pending {
		it := p.item
		probe := router.NewSolid(it.Pos(), it.Shape(), it.Layers(), it.Net())

		connected := make(map[int]bool)
		for _, obs := range b.node.QueryColliding(probe, opts, 0) {
			other := obs.Item
			if other == it || other.Net() != it.Net() || other.Net() < 0 {
				continue
			}
			if other.Kind() == router.KindSegment || other.Kind() == router.KindArc {
				connected[other.Layer()] = true
			}
		}

		lr := it.Layers()
		for _, ord := range b.copper {
			if !lr.Contains(ord) || connected[ord] {
				continue
			}
			if p.keepEnds && (ord == lr.Start || ord == lr.End) {
				continue
			}
			it.SetUnflashed(ord)
		}
	}
	return nil
}
