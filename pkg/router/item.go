package router

import (
	"fmt"
	"sync/atomic"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
)

var lastItemID atomic.Uint64

// Item is a board entity taking part in collision tests.
//
// The fields shared by all variants live here; variant data sits in the
// payload. Items are not modified while a Node holding them is queried.
type Item struct {
	id        uint64
	kind      Kind
	net       int
	layers    LayerRange
	parent    ParentID
	shape     geom.Shape
	hole      geom.Shape
	freePad   bool
	unflashed uint32 // layers inside the range without copper
	payload   payload
}

type payload interface {
	isPayload()
}

type segmentData struct {
	width int64
}

type arcData struct {
	width int64
}

type lineData struct {
	width int64
	via   *Item
}

type viaData struct {
	pos      geom.Vec
	diameter int64
	drill    int64
}

type solidData struct {
	pos geom.Vec
}

type jointData struct {
	pos geom.Vec
}

type diffPairData struct {
	p, n *Item
}

func (segmentData) isPayload()  {}
func (arcData) isPayload()      {}
func (*lineData) isPayload()    {}
func (viaData) isPayload()      {}
func (solidData) isPayload()    {}
func (jointData) isPayload()    {}
func (diffPairData) isPayload() {}

func newItem(kind Kind, net int, layers LayerRange, p payload) *Item {
	if !layers.Valid() {
		panic(fmt.Sprintf("router: invalid layer range %d-%d", layers.Start, layers.End))
	}
	return &Item{
		id:      lastItemID.Add(1),
		kind:    kind,
		net:     net,
		layers:  layers,
		payload: p,
	}
}

// NewSegment returns a straight track from a to b.
func NewSegment(a, b geom.Vec, width int64, layer, net int) *Item {
	it := newItem(KindSegment, net, SingleLayer(layer), segmentData{width: width})
	it.shape = geom.NewSegment(a, b, width)
	return it
}

// NewArc returns an arc track through start, mid and end.
func NewArc(start, mid, end geom.Vec, width int64, layer, net int) *Item {
	it := newItem(KindArc, net, SingleLayer(layer), arcData{width: width})
	it.shape = geom.NewArc(start, mid, end, width)
	return it
}

// NewLine returns a track being routed. Its shape is the bare centerline;
// the pen width is added back during clearance tests.
func NewLine(points []geom.Vec, width int64, layer, net int) *Item {
	it := newItem(KindLine, net, SingleLayer(layer), &lineData{width: width})
	it.shape = geom.NewLineChain(points...)
	return it
}

// NewVia returns a plated via spanning layers.
func NewVia(pos geom.Vec, diameter, drill int64, layers LayerRange, net int) *Item {
	it := newItem(KindVia, net, layers, viaData{pos: pos, diameter: diameter, drill: drill})
	it.shape = geom.NewCircle(pos, diameter/2)
	if drill > 0 {
		it.hole = geom.NewCircle(pos, drill/2)
	}
	return it
}

// NewSolid returns a pad or other fixed copper (or keepout, or board edge)
// with an arbitrary outline anchored at pos.
func NewSolid(pos geom.Vec, shape geom.Shape, layers LayerRange, net int) *Item {
	it := newItem(KindSolid, net, layers, solidData{pos: pos})
	it.shape = shape
	return it
}

// NewJoint returns a connection point. Joints have no shape.
func NewJoint(pos geom.Vec, layers LayerRange, net int) *Item {
	return newItem(KindJoint, net, layers, jointData{pos: pos})
}

// NewDiffPair groups two lines routed as a differential pair. The pair
// takes the net of p.
func NewDiffPair(p, n *Item) (*Item, error) {
	if p == nil || n == nil || p.kind != KindLine || n.kind != KindLine {
		return nil, fmt.Errorf("router: diff pair needs two lines")
	}
	layers := LayerRange{Start: min(p.layers.Start, n.layers.Start), End: max(p.layers.End, n.layers.End)}
	return newItem(KindDiffPair, p.net, layers, diffPairData{p: p, n: n}), nil
}

// ID returns the process-unique serial number of the item.
func (it *Item) ID() uint64 { return it.id }

// Kind returns the item variant.
func (it *Item) Kind() Kind { return it.kind }

// KindStr returns a human readable kind name.
func (it *Item) KindStr() string { return it.kind.String() }

// Net returns the net code, or -1 when unassigned.
func (it *Item) Net() int { return it.net }

// Layers returns the copper layers the item occupies.
func (it *Item) Layers() LayerRange { return it.layers }

// Layer returns the first layer of the item.
func (it *Item) Layer() int { return it.layers.Start }

// IsMultilayer reports whether the item spans several layers.
func (it *Item) IsMultilayer() bool { return it.layers.IsMultilayer() }

// Parent returns the handle of the board object the item was built from.
func (it *Item) Parent() ParentID { return it.parent }

// SetParent sets the board object handle.
func (it *Item) SetParent(id ParentID) { it.parent = id }

// Shape returns the outline, or nil for joints and diff pairs.
func (it *Item) Shape() geom.Shape { return it.shape }

// Hole returns the drilled hole, or nil.
func (it *Item) Hole() geom.Shape { return it.hole }

// SetHole sets the drilled hole outline.
func (it *Item) SetHole(hole geom.Shape) { it.hole = hole }

// IsFreePad reports whether the item is an unconnected pad that accepts any
// net.
func (it *Item) IsFreePad() bool { return it.freePad }

// SetFreePad marks the item as a free pad.
func (it *Item) SetFreePad(free bool) { it.freePad = free }

// SetUnflashed marks layer as having no copper for this item. Layers outside
// the item's range are never flashed.
func (it *Item) SetUnflashed(layer int) {
	if layer >= 0 && layer < LayerCount {
		it.unflashed |= 1 << uint(layer)
	}
}

// IsFlashedOn reports whether the item has copper on layer.
func (it *Item) IsFlashedOn(layer int) bool {
	if !it.layers.Contains(layer) {
		return false
	}
	return it.unflashed&(1<<uint(layer)) == 0
}

// Width returns the stroke width of tracks and lines, the diameter of vias
// and 0 otherwise.
func (it *Item) Width() int64 {
	switch p := it.payload.(type) {
	case segmentData:
		return p.width
	case arcData:
		return p.width
	case *lineData:
		return p.width
	case viaData:
		return p.diameter
	}
	return 0
}

// CenterlineWidth returns the pen width that is not part of the item's
// shape. Lines are stored as centerlines so this is their width; every
// other item carries its full extent in its shape and reports 0.
func (it *Item) CenterlineWidth() int64 {
	if p, ok := it.payload.(*lineData); ok {
		return p.width
	}
	return 0
}

// Pos returns the anchor of vias, solids and joints, and the first point
// of tracks.
func (it *Item) Pos() geom.Vec {
	switch p := it.payload.(type) {
	case viaData:
		return p.pos
	case solidData:
		return p.pos
	case jointData:
		return p.pos
	}
	switch s := it.shape.(type) {
	case *geom.Segment:
		return s.A
	case *geom.Arc:
		return s.Start
	case *geom.LineChain:
		if len(s.Points) > 0 {
			return s.Points[0]
		}
	}
	return geom.Vec{}
}

// Drill returns the drill diameter of a via, or 0.
func (it *Item) Drill() int64 {
	if p, ok := it.payload.(viaData); ok {
		return p.drill
	}
	return 0
}

// CLine returns the centerline of a line, or nil.
func (it *Item) CLine() *geom.LineChain {
	if it.kind != KindLine {
		return nil
	}
	return it.shape.(*geom.LineChain)
}

// AppendVia attaches a via to the end of a line. The line owns the via.
func (it *Item) AppendVia(via *Item) {
	p, ok := it.payload.(*lineData)
	if !ok || via == nil || via.kind != KindVia {
		return
	}
	p.via = via
}

// RemoveVia detaches the trailing via of a line.
func (it *Item) RemoveVia() {
	if p, ok := it.payload.(*lineData); ok {
		p.via = nil
	}
}

// EndsWithVia reports whether the line carries a trailing via.
func (it *Item) EndsWithVia() bool {
	return it.Via() != nil
}

// Via returns the trailing via of a line, or nil.
func (it *Item) Via() *Item {
	if p, ok := it.payload.(*lineData); ok {
		return p.via
	}
	return nil
}

// PLine and NLine return the members of a diff pair.
func (it *Item) PLine() *Item {
	if p, ok := it.payload.(diffPairData); ok {
		return p.p
	}
	return nil
}

func (it *Item) NLine() *Item {
	if p, ok := it.payload.(diffPairData); ok {
		return p.n
	}
	return nil
}

// BBox returns the extent of the item, including line width and trailing
// via, inflated by clearance.
func (it *Item) BBox(clearance int64) geom.Box {
	switch it.kind {
	case KindJoint:
		return geom.NewBox(it.Pos()).Inflate(clearance)
	case KindDiffPair:
		return it.PLine().BBox(clearance).Merge(it.NLine().BBox(clearance))
	}
	if it.shape == nil {
		return geom.NewBox(it.Pos()).Inflate(clearance)
	}
	b := it.shape.BBox(clearance + (it.CenterlineWidth()+1)/2)
	if it.hole != nil {
		b = b.Merge(it.hole.BBox(clearance))
	}
	if via := it.Via(); via != nil {
		b = b.Merge(via.BBox(clearance))
	}
	return b
}

// Format returns a one line description for logs.
func (it *Item) Format() string {
	return fmt.Sprintf("%s #%d net %d layers %s at %s", it.KindStr(), it.id, it.net, it.layers, it.Pos())
}

func (it *Item) String() string {
	return it.Format()
}
