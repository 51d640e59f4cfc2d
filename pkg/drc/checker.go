package drc

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/router"
)

// Options configures a check run.
type Options struct {
	// Workers bounds the number of concurrent queries. 0 uses GOMAXPROCS.
	Workers int
	// Limit stops reporting after that many violations. 0 means no limit.
	Limit int
	// Scope overrides the node's query scope when not ScopeFromNode.
	Scope router.QueryScope

	Logger  *slog.Logger
	Metrics *Metrics
}

// Check tests every pair of items on the design once and reports the
// colliding pairs, ordered by item.
func (d *Design) Check(ctx context.Context, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	items := d.Node.Items()
	report := &Report{RunID: uuid.NewString(), Items: len(items)}
	logger.Info("checking board", "run", report.RunID, "items", len(items), "workers", workers)

	copts := router.DefaultCollideOptions()
	copts.Scope = opts.Scope

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, head := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var found []Violation
			for _, obs := range d.Node.QueryColliding(head, copts, 0) {
				// Each pair is reported from its lower id side only.
				if obs.Item.ID() < head.ID() || d.skipPair(head, obs.Item) {
					continue
				}
				found = append(found, d.violation(obs))
			}
			if len(found) > 0 {
				mu.Lock()
				report.Violations = append(report.Violations, found...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.sort()
	if opts.Limit > 0 && len(report.Violations) > opts.Limit {
		report.Violations = report.Violations[:opts.Limit]
		report.Truncated = true
	}
	report.Duration = time.Since(start)
	opts.Metrics.record(report)

	logger.Info("check complete",
		"run", report.RunID,
		"violations", len(report.Violations),
		"duration", report.Duration)
	return report, nil
}

// skipPair filters pairs that are not violations on a real board: pieces of
// the outline touching each other and graphics split into several items.
func (d *Design) skipPair(a, b *router.Item) bool {
	if a.Parent() != router.NoParent && a.Parent() == b.Parent() {
		return true
	}
	pa, pb := d.Arena.Get(a.Parent()), d.Arena.Get(b.Parent())
	return pa != nil && pb != nil && pa.OnEdgeCuts && pb.OnEdgeCuts
}

func (d *Design) violation(obs router.Obstacle) Violation {
	a, b := obs.Head, obs.Item
	if a.ID() > b.ID() {
		a, b = b, a
	}
	r := obs.Result
	v := Violation{
		Kind: kindOf(r.Flags),
		A:    d.ref(a),
		B:    d.ref(b),
		ids:  [2]uint64{a.ID(), b.ID()},
	}

	// Measure between the features that actually collided.
	var sa, sb geom.Shape
	var pen int64
	switch v.Kind {
	case KindHoleToHole:
		sa, sb = a.Hole(), b.Hole()
		v.Required = d.Node.GetHoleToHoleClearance(a, b)
	case KindHole:
		owner, other := a, b
		if len(r.Marked) > 0 && r.Marked[0] == b {
			owner, other = b, a
		}
		sa, sb = owner.Hole(), other.Shape()
		pen = other.CenterlineWidth() / 2
		v.Required = d.Node.GetHoleClearance(a, b)
	default:
		sa, sb = a.Shape(), b.Shape()
		pen = a.CenterlineWidth()/2 + b.CenterlineWidth()/2
		v.Required = d.Node.GetClearance(a, b)
	}

	gap := geom.Distance(sa, sb) - float64(pen)
	v.Actual = int64(math.Round(math.Max(gap, 0)))
	if r.HasLocation {
		v.Location = r.Location
	} else {
		v.Location = geom.Closest(sa, sb)
	}
	return v
}

func (d *Design) ref(it *router.Item) ItemRef {
	ref := ItemRef{
		Type:   it.KindStr(),
		Net:    d.Arena.NetName(it.Net()),
		Layers: it.Layers().String(),
	}
	obj := d.Arena.Get(it.Parent())
	if obj == nil {
		return ref
	}
	ref.Type = obj.Kind.String()
	if obj.OnEdgeCuts {
		ref.Type = "edge"
	}
	ref.UUID = obj.UUID
	switch obj.Kind {
	case router.ObjectPad:
		if fp := d.Arena.Get(obj.Footprint); fp != nil {
			ref.Reference = fp.Name + "." + obj.Name
		}
	case router.ObjectZone:
		ref.Reference = obj.Name
	}
	return ref
}
