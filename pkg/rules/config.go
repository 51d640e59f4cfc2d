package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the design rules of a board. All lengths are millimetres.
type Config struct {
	// Scope is the collision query scope: "quick" or "all_rules".
	Scope string `yaml:"scope" validate:"oneof=quick all_rules"`

	Clearance           float64 `yaml:"clearance" validate:"gte=0"`
	HoleClearance       float64 `yaml:"hole_clearance" validate:"gte=0"`
	HoleToHoleClearance float64 `yaml:"hole_to_hole_clearance" validate:"gte=0"`
	EdgeClearance       float64 `yaml:"edge_clearance" validate:"gte=0"`

	NetClasses []NetClass `yaml:"net_classes" validate:"dive"`
	Rules      []Rule     `yaml:"rules" validate:"dive"`

	// DRU optionally names a KiCad .kicad_dru file whose rules are appended
	// after Rules. Relative paths are resolved against the config file.
	DRU string `yaml:"dru,omitempty"`
}

// NetClass assigns a clearance to nets whose names match one of Nets.
// Patterns may use * and ?.
type NetClass struct {
	Name      string   `yaml:"name" validate:"required"`
	Clearance float64  `yaml:"clearance" validate:"gt=0"`
	Nets      []string `yaml:"nets"`
}

// Rule is a custom constraint applied when Condition matches a pair of
// items. Unset values leave the constraint to lower precedence rules.
type Rule struct {
	Name                string   `yaml:"name" validate:"required"`
	Condition           string   `yaml:"condition" validate:"condition"`
	Clearance           *float64 `yaml:"clearance,omitempty"`
	HoleClearance       *float64 `yaml:"hole_clearance,omitempty"`
	HoleToHoleClearance *float64 `yaml:"hole_to_hole_clearance,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("condition", validateCondition)
}

func validateCondition(fl validator.FieldLevel) bool {
	_, err := ParseCondition(fl.Field().String())
	return err == nil
}

// DefaultConfig returns the rules used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Scope:               "all_rules",
		Clearance:           0.2,
		HoleClearance:       0.25,
		HoleToHoleClearance: 0.25,
		EdgeClearance:       0.5,
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	seen := make(map[string]bool)
	for _, nc := range c.NetClasses {
		if seen[nc.Name] {
			return fmt.Errorf("rules: duplicate net class %q", nc.Name)
		}
		seen[nc.Name] = true
	}
	return nil
}

// LoadConfig reads a YAML rules file. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("rules: parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.DRU != "" && !filepath.IsAbs(cfg.DRU) {
		cfg.DRU = filepath.Join(filepath.Dir(path), cfg.DRU)
	}
	return cfg, nil
}
