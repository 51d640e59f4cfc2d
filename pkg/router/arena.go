package router

import "fmt"

// ParentID is a handle to a BoardObject in an Arena. Items never own their
// parent; they only carry the handle.
type ParentID int

// NoParent marks an item that is not backed by a board object, such as a
// line being routed. It is the zero value.
const NoParent ParentID = 0

// ObjectKind is the type of the board object an item was derived from.
type ObjectKind uint8

const (
	ObjectTrack ObjectKind = iota
	ObjectArc
	ObjectVia
	ObjectPad
	ObjectFootprint
	ObjectZone
	ObjectGraphic
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectTrack:
		return "track"
	case ObjectArc:
		return "arc"
	case ObjectVia:
		return "via"
	case ObjectPad:
		return "pad"
	case ObjectFootprint:
		return "footprint"
	case ObjectZone:
		return "zone"
	case ObjectGraphic:
		return "graphic"
	default:
		return fmt.Sprintf("object(%d)", k)
	}
}

// Keepout holds the "do not allow" flags of a rule area.
type Keepout struct {
	Tracks     bool
	Vias       bool
	Pads       bool
	Footprints bool
}

// Any reports whether the rule area disallows anything.
func (k Keepout) Any() bool {
	return k.Tracks || k.Vias || k.Pads || k.Footprints
}

// BoardObject is the long-lived board entity an Item is a view of.
type BoardObject struct {
	Kind ObjectKind

	// UUID of the object in the source file, if any.
	UUID string

	// Reference designator for footprints, pad number for pads, zone name
	// for rule areas.
	Name string

	// Layer is the source layer name (e.g. "F.Cu", "Edge.Cuts").
	Layer string

	// OnEdgeCuts is set for board outline graphics.
	OnEdgeCuts bool

	// Keepout is non-nil for rule areas.
	Keepout *Keepout

	// Footprint is the owning footprint of pads, footprint graphics and
	// footprint-level rule areas.
	Footprint ParentID

	// Net code of pads and tracks.
	Net int

	// Castellated pads are cut by the board edge.
	Castellated bool

	// NetTiePadGroups lists groups of pad numbers that a net-tie footprint
	// shorts together.
	NetTiePadGroups [][]string
}

// IsKeepout reports whether the object is a rule area.
func (o *BoardObject) IsKeepout() bool {
	return o != nil && o.Kind == ObjectZone && o.Keepout != nil
}

// Arena owns the board objects referenced by items.
type Arena struct {
	objects []BoardObject
	nets    map[int]string
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{nets: make(map[int]string)}
}

// Add stores obj and returns its handle.
func (a *Arena) Add(obj BoardObject) ParentID {
	a.objects = append(a.objects, obj)
	return ParentID(len(a.objects))
}

// Get returns the object behind id, or nil for NoParent and unknown handles.
func (a *Arena) Get(id ParentID) *BoardObject {
	if a == nil || id <= NoParent || int(id) > len(a.objects) {
		return nil
	}
	return &a.objects[id-1]
}

// Len returns the number of stored objects.
func (a *Arena) Len() int {
	return len(a.objects)
}

// SetNetName records the name of a net code.
func (a *Arena) SetNetName(net int, name string) {
	a.nets[net] = name
}

// NetName returns the name of a net code, or "" when unknown.
func (a *Arena) NetName(net int) string {
	if a == nil {
		return ""
	}
	return a.nets[net]
}

// FootprintOf returns the footprint owning the object behind id, or
// NoParent.
func (a *Arena) FootprintOf(id ParentID) ParentID {
	obj := a.Get(id)
	if obj == nil {
		return NoParent
	}
	if obj.Kind == ObjectFootprint {
		return id
	}
	if obj.Kind == ObjectPad || obj.Kind == ObjectGraphic || obj.Kind == ObjectZone {
		return obj.Footprint
	}
	return NoParent
}
