package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDRU = `(version 1)
# comment
(rule "HV"
	(constraint clearance (min 1.5mm))
	(condition "A.NetClass == 'HV'"))
(rule "Via holes"
	(constraint hole_to_hole (min 10mil))
	(constraint hole_clearance (min 0.3))
	(layer outer)
	(condition "A.Type == 'Via'"))
(rule "Widths"
	(constraint track_width (min 0.2mm)))
(rule "Courtyard"
	(constraint clearance (min 0.5mm))
	(condition "A.insideCourtyard('U1')"))
`

func TestParseDRU(t *testing.T) {
	dru, err := ParseDRU(strings.NewReader(testDRU))
	require.NoError(t, err)

	assert.Equal(t, 1, dru.Version)
	require.Len(t, dru.Rules, 2)
	assert.Len(t, dru.Skipped, 2)

	hv := dru.Rules[0]
	assert.Equal(t, "HV", hv.Name)
	require.NotNil(t, hv.Clearance)
	assert.Equal(t, 1.5, *hv.Clearance)
	assert.Equal(t, "(A.NetClass == 'HV')", hv.Condition)

	vias := dru.Rules[1]
	require.NotNil(t, vias.HoleToHoleClearance)
	assert.InDelta(t, 0.254, *vias.HoleToHoleClearance, 1e-9)
	require.NotNil(t, vias.HoleClearance)
	assert.Equal(t, 0.3, *vias.HoleClearance)
	assert.Nil(t, vias.Clearance)
	assert.Equal(t, "(A.Type == 'Via') && (A.Layer == 'F.Cu' || A.Layer == 'B.Cu')", vias.Condition)
}

func TestParseDRULength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0.2mm", 0.2},
		{"0.2", 0.2},
		{"8mil", 0.2032},
		{"0.01in", 0.254},
	}
	for _, tt := range tests {
		got, err := parseDRULength(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}

	_, err := parseDRULength("wide")
	assert.Error(t, err)
}

func TestParseDRUInvalid(t *testing.T) {
	_, err := ParseDRU(strings.NewReader(`(rule "x" (constraint clearance (min 1mm))`))
	assert.Error(t, err)
}
