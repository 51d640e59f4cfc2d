package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionMatch(t *testing.T) {
	via := &Subject{Type: "Via", NetName: "GND", NetClass: "Power", Layers: []string{"F.Cu", "In1.Cu", "B.Cu"}}
	track := &Subject{Type: "Track", NetName: "USB_D+", NetClass: "USB", Layers: []string{"F.Cu"}}

	tests := []struct {
		name string
		cond string
		a, b *Subject
		want bool
	}{
		{"empty matches all", "", via, track, true},
		{"type", "A.Type == 'Via'", via, track, true},
		{"type case insensitive", "A.Type == 'via'", via, track, true},
		{"type other side", "B.Type == 'Via'", via, track, false},
		{"not equal", "A.NetClass != 'USB'", via, track, true},
		{"wildcard", "B.NetName == 'USB_*'", via, track, true},
		{"single char wildcard", "B.NetName == 'USB_D?'", via, track, true},
		{"literal dot", "B.NetName == 'USB.D+'", via, track, false},
		{"double quotes", `A.NetName == "GND"`, via, track, true},
		{"and", "A.Type == 'Via' && B.NetClass == 'USB'", via, track, true},
		{"and false", "A.Type == 'Via' && B.NetClass == 'Power'", via, track, false},
		{"or", "A.Type == 'Pad' || B.Type == 'Track'", via, track, true},
		{"negation", "!(A.Type == 'Via')", via, track, false},
		{"negated comparison", "!B.Type == 'Via'", via, track, true},
		{"precedence", "A.Type == 'Pad' && B.Type == 'Pad' || A.NetName == 'GND'", via, track, true},
		{"any layer", "A.Layer == 'In*.Cu'", via, track, true},
		{"no layer", "B.Layer != 'B.Cu'", via, track, true},
		{"field case insensitive", "A.netclass == 'Power'", via, track, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCondition(tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Match(tt.a, tt.b))
		})
	}
}

func TestConditionErrors(t *testing.T) {
	_, err := ParseCondition("A.Colour == 'red'")
	assert.ErrorIs(t, err, ErrUnknownField)

	for _, src := range []string{
		"A.NetName = 'GND'",
		"C.NetName == 'GND'",
		"A.NetName == GND",
		"(A.Type == 'Via'",
		"A.Type == 'Via' &&",
		"A.insideCourtyard('U1')",
	} {
		_, err := ParseCondition(src)
		assert.Error(t, err, src)
	}
}

func TestMatchWildcard(t *testing.T) {
	assert.True(t, matchWildcard("HV_*", "hv_in"))
	assert.True(t, matchWildcard("*", ""))
	assert.False(t, matchWildcard("HV_*", "LV_IN"))
	assert.True(t, matchWildcard("/sheet/NET(1)", "/sheet/NET(1)"))
}
