package drc

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/router"
)

// ViolationKind names the rule a violation breaks.
type ViolationKind string

const (
	KindClearance  ViolationKind = "clearance"
	KindHole       ViolationKind = "hole_clearance"
	KindHoleToHole ViolationKind = "hole_to_hole"
	KindKeepout    ViolationKind = "keepout"
	KindEdge       ViolationKind = "edge_clearance"
)

func kindOf(f router.CollisionFlags) ViolationKind {
	switch {
	case f.Has(router.FlagHoleToHole):
		return KindHoleToHole
	case f.Has(router.FlagHole):
		return KindHole
	case f.Has(router.FlagKeepout):
		return KindKeepout
	case f.Has(router.FlagEdge):
		return KindEdge
	default:
		return KindClearance
	}
}

// ItemRef identifies one side of a violation.
type ItemRef struct {
	Type      string `json:"type"`
	UUID      string `json:"uuid,omitempty"`
	Reference string `json:"reference,omitempty"`
	Net       string `json:"net,omitempty"`
	Layers    string `json:"layers"`
}

func (r ItemRef) String() string {
	s := r.Type
	if r.Reference != "" {
		s += " " + r.Reference
	}
	if r.Net != "" {
		s += " [" + r.Net + "]"
	}
	s += " on " + r.Layers
	if r.UUID != "" {
		s += " (" + r.UUID + ")"
	}
	return s
}

// Violation is one colliding pair. Distances are nanometres.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	A        ItemRef       `json:"a"`
	B        ItemRef       `json:"b"`
	Location geom.Vec      `json:"location"`
	Required int64         `json:"required_nm"`
	Actual   int64         `json:"actual_nm"`

	ids [2]uint64
}

// Report is the result of a board check.
type Report struct {
	RunID      string        `json:"run_id"`
	Items      int           `json:"items"`
	Duration   time.Duration `json:"duration_ns"`
	Truncated  bool          `json:"truncated,omitempty"`
	Violations []Violation   `json:"violations"`
}

// Counts returns the number of violations per kind.
func (r *Report) Counts() map[ViolationKind]int {
	out := make(map[ViolationKind]int)
	for _, v := range r.Violations {
		out[v.Kind]++
	}
	return out
}

func (r *Report) sort() {
	sort.Slice(r.Violations, func(i, j int) bool {
		a, b := r.Violations[i].ids, r.Violations[j].ids
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})
}

// WriteText writes a human readable listing, one violation per line.
func (r *Report) WriteText(w io.Writer) error {
	for i, v := range r.Violations {
		_, err := fmt.Fprintf(w, "%4d  %-14s %.4fmm < %.4fmm at (%.4f, %.4f)\n      %s\n      %s\n",
			i+1, v.Kind, geom.ToMM(v.Actual), geom.ToMM(v.Required),
			geom.ToMM(v.Location.X), geom.ToMM(v.Location.Y), v.A, v.B)
		if err != nil {
			return err
		}
	}
	suffix := ""
	if r.Truncated {
		suffix = " (truncated)"
	}
	_, err := fmt.Fprintf(w, "%d violations in %d items, %s%s\n", len(r.Violations), r.Items, r.Duration.Round(time.Millisecond), suffix)
	return err
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
