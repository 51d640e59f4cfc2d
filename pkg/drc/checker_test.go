package drc

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/router"
)

func mustBuild(t *testing.T, board *pcb.Board) *Design {
	t.Helper()
	d, err := Build(board, testConfig(), nil, nil)
	require.NoError(t, err)
	return d
}

func TestCheckAllRules(t *testing.T) {
	d := mustBuild(t, testBoard())
	require.Equal(t, 22, d.Node.ItemCount())

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	report, err := d.Check(context.Background(), Options{Workers: 4, Metrics: metrics})
	require.NoError(t, err)

	assert.Equal(t, map[ViolationKind]int{
		KindClearance:  2,
		KindEdge:       2,
		KindHoleToHole: 1,
		KindKeepout:    1,
	}, report.Counts())
	assert.Equal(t, 22, report.Items)
	assert.NotEmpty(t, report.RunID)
	assert.False(t, report.Truncated)

	first := report.Violations[0]
	assert.Equal(t, KindClearance, first.Kind)
	assert.Equal(t, uuidT1.String(), first.A.UUID)
	assert.Equal(t, uuidT2.String(), first.B.UUID)
	assert.Equal(t, "GND", first.A.Net)
	assert.Equal(t, mm(0.15), first.Actual)
	assert.Equal(t, mm(0.2), first.Required)

	byKind := func(k ViolationKind) []Violation {
		var out []Violation
		for _, v := range report.Violations {
			if v.Kind == k {
				out = append(out, v)
			}
		}
		return out
	}

	h2h := byKind(KindHoleToHole)[0]
	assert.Equal(t, mm(0.2), h2h.Actual)
	assert.Equal(t, mm(0.25), h2h.Required)
	assert.Equal(t, pt(30.25, 10), h2h.Location)

	ko := byKind(KindKeepout)[0]
	assert.Equal(t, "zone", ko.B.Type)
	assert.Equal(t, "no tracks", ko.B.Reference)
	assert.Equal(t, int64(0), ko.Actual)

	var edgeActual []int64
	for _, v := range byKind(KindEdge) {
		assert.Equal(t, "edge", v.B.Type)
		assert.Equal(t, mm(0.5), v.Required)
		edgeActual = append(edgeActual, v.Actual)
	}
	assert.ElementsMatch(t, []int64{mm(0.075), 0}, edgeActual)

	pads := byKind(KindClearance)[1]
	assert.Equal(t, "U1.1", pads.A.Reference)
	assert.Equal(t, "U1.2", pads.B.Reference)
	assert.Equal(t, mm(0.1), pads.Actual)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ChecksTotal))
	assert.Equal(t, 22.0, testutil.ToFloat64(metrics.ItemsChecked))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ViolationsTotal.WithLabelValues("edge_clearance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ViolationsTotal.WithLabelValues("hole_to_hole")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.CheckDuration))
}

func TestCheckQuickScope(t *testing.T) {
	d := mustBuild(t, testBoard())
	report, err := d.Check(context.Background(), Options{Scope: router.ScopeQuick})
	require.NoError(t, err)

	// Quick skips net-tie and castellation exceptions and the hole tests of
	// flashed pairs.
	assert.Equal(t, map[ViolationKind]int{
		KindClearance: 4,
		KindEdge:      3,
		KindKeepout:   1,
	}, report.Counts())
}

func TestCheckDeterministic(t *testing.T) {
	d := mustBuild(t, testBoard())
	serial, err := d.Check(context.Background(), Options{Workers: 1})
	require.NoError(t, err)
	parallel, err := d.Check(context.Background(), Options{Workers: 8})
	require.NoError(t, err)
	assert.Equal(t, serial.Violations, parallel.Violations)
}

func TestCheckLimit(t *testing.T) {
	d := mustBuild(t, testBoard())
	report, err := d.Check(context.Background(), Options{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, report.Violations, 2)
	assert.True(t, report.Truncated)
}

func TestCheckCancelled(t *testing.T) {
	d := mustBuild(t, testBoard())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Check(ctx, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckUnusedLayers(t *testing.T) {
	board := testBoard()
	board.Vias[2].RemoveUnusedLayers = false
	d := mustBuild(t, board)

	report, err := d.Check(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Counts()[KindClearance], "T6 now passes too close to the ring of V3")
}

func TestReportOutput(t *testing.T) {
	d := mustBuild(t, testBoard())
	report, err := d.Check(context.Background(), Options{})
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, report.WriteText(&text))
	out := text.String()
	assert.Contains(t, out, "hole_to_hole")
	assert.Contains(t, out, "0.2000mm < 0.2500mm at (30.2500, 10.0000)")
	assert.Contains(t, out, "pad U1.1 [GND] on F.Cu")
	assert.True(t, strings.HasPrefix(strings.Split(out, "\n")[len(strings.Split(out, "\n"))-2], "6 violations in 22 items"))

	var buf bytes.Buffer
	require.NoError(t, report.WriteJSON(&buf))
	var decoded struct {
		RunID      string `json:"run_id"`
		Violations []struct {
			Kind string `json:"kind"`
		} `json:"violations"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report.RunID, decoded.RunID)
	assert.Len(t, decoded.Violations, 6)
}
