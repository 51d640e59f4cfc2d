package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "all_rules", cfg.Scope)
	assert.Equal(t, 0.2, cfg.Clearance)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules.yaml", `
clearance: 0.15
net_classes:
  - name: HV
    clearance: 1.5
    nets: ["HV_*", "MAINS"]
rules:
  - name: via to gnd
    condition: "A.Type == 'Via' && B.NetName == 'GND'"
    clearance: 0.3
dru: board.kicad_dru
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.15, cfg.Clearance)
	assert.Equal(t, 0.25, cfg.HoleClearance, "missing keys keep defaults")
	assert.Equal(t, "all_rules", cfg.Scope)
	require.Len(t, cfg.NetClasses, 1)
	assert.Equal(t, []string{"HV_*", "MAINS"}, cfg.NetClasses[0].Nets)
	require.Len(t, cfg.Rules, 1)
	require.NotNil(t, cfg.Rules[0].Clearance)
	assert.Equal(t, 0.3, *cfg.Rules[0].Clearance)
	assert.Nil(t, cfg.Rules[0].HoleClearance)
	assert.Equal(t, filepath.Join(dir, "board.kicad_dru"), cfg.DRU)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad scope", "scope: thorough\n"},
		{"negative clearance", "clearance: -0.1\n"},
		{"class without name", "net_classes:\n  - clearance: 0.3\n"},
		{"class without clearance", "net_classes:\n  - name: X\n"},
		{"duplicate class", "net_classes:\n  - {name: X, clearance: 1}\n  - {name: X, clearance: 2}\n"},
		{"bad condition", "rules:\n  - name: r\n    condition: \"A.Colour == 'red'\"\n"},
		{"rule without name", "rules:\n  - condition: \"\"\n"},
		{"not yaml", "clearance: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "rules.yaml", tt.content)
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
