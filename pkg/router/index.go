package router

import (
	"github.com/dhconnelly/rtreego"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
)

// indexEntry implements rtreego.Spatial for an item.
type indexEntry struct {
	item *Item
	rect rtreego.Rect
}

func (e *indexEntry) Bounds() rtreego.Rect {
	return e.rect
}

// index is the per-node spatial index over item bounding boxes.
type index struct {
	tree    *rtreego.Rtree
	entries map[*Item]*indexEntry
}

func newIndex() *index {
	return &index{
		tree:    rtreego.NewTree(2, 25, 50),
		entries: make(map[*Item]*indexEntry),
	}
}

// boxRect converts an inclusive integer box into an R-tree rectangle. Each
// side is one unit longer so that boxes touching at an edge still overlap.
func boxRect(b geom.Box) rtreego.Rect {
	r, err := rtreego.NewRect(
		rtreego.Point{float64(b.Min.X), float64(b.Min.Y)},
		[]float64{float64(b.Width() + 1), float64(b.Height() + 1)},
	)
	if err != nil {
		// Lengths are always positive for a well-formed box.
		panic("router: " + err.Error())
	}
	return r
}

func (ix *index) add(it *Item) {
	e := &indexEntry{item: it, rect: boxRect(it.BBox(0))}
	ix.entries[it] = e
	ix.tree.Insert(e)
}

func (ix *index) remove(it *Item) bool {
	e, ok := ix.entries[it]
	if !ok {
		return false
	}
	delete(ix.entries, it)
	return ix.tree.Delete(e)
}

func (ix *index) query(b geom.Box) []*Item {
	hits := ix.tree.SearchIntersect(boxRect(b))
	out := make([]*Item, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*indexEntry).item)
	}
	return out
}
