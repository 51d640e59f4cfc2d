package rules

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp/kicadsexp"
)

// DRU is the part of a KiCad custom rules file this package understands.
type DRU struct {
	Version int
	Rules   []Rule

	// Skipped lists rules that were not loaded, as "name: reason".
	Skipped []string
}

// ParseDRUFile reads a .kicad_dru file.
func ParseDRUFile(path string) (*DRU, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rules: open dru: %w", err)
	}
	defer f.Close()
	return ParseDRU(f)
}

// ParseDRU reads KiCad custom design rules
// Expected format:
//
//	(version 1)
//	(rule "HV" (constraint clearance (min 1.5mm)) (layer outer) (condition "A.NetClass == 'HV'"))
//
// Only clearance, hole_clearance and hole_to_hole constraints are kept.
func ParseDRU(r io.Reader) (*DRU, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("rules: parse dru: %w", err)
	}

	dru := &DRU{}
	for _, s := range sexps {
		node, ok := s.(*kicadsexp.List)
		if !ok {
			continue
		}
		switch node.Key() {
		case "version":
			dru.Version, _ = node.IntAt(1)
		case "rule":
			rule, err := parseDRURule(node)
			if err != nil {
				name, _ := node.StringAt(1)
				dru.Skipped = append(dru.Skipped, fmt.Sprintf("%s: %v", name, err))
				continue
			}
			dru.Rules = append(dru.Rules, rule)
		}
	}
	return dru, nil
}

func parseDRURule(node *kicadsexp.List) (Rule, error) {
	var rule Rule
	var ok bool
	if rule.Name, ok = node.StringAt(1); !ok {
		return rule, fmt.Errorf("line %d: rule without name", node.Line())
	}

	found := false
	for _, c := range node.FindAll("constraint") {
		kind, _ := c.StringAt(1)
		var dst **float64
		switch kind {
		case "clearance":
			dst = &rule.Clearance
		case "hole_clearance":
			dst = &rule.HoleClearance
		case "hole_to_hole":
			dst = &rule.HoleToHoleClearance
		default:
			continue
		}
		minNode := c.Find("min")
		if minNode == nil {
			continue
		}
		s, _ := minNode.StringAt(1)
		v, err := parseDRULength(s)
		if err != nil {
			return rule, fmt.Errorf("line %d: %w", minNode.Line(), err)
		}
		*dst = &v
		found = true
	}
	if !found {
		return rule, fmt.Errorf("no supported constraint")
	}

	var parts []string
	if cond, ok := node.Value("condition"); ok && strings.TrimSpace(cond) != "" {
		parts = append(parts, "("+cond+")")
	}
	if layer, ok := node.Value("layer"); ok {
		switch layer {
		case "outer":
			parts = append(parts, "(A.Layer == 'F.Cu' || A.Layer == 'B.Cu')")
		case "inner":
			parts = append(parts, "A.Layer == 'In*.Cu'")
		default:
			parts = append(parts, fmt.Sprintf("A.Layer == '%s'", layer))
		}
	}
	rule.Condition = strings.Join(parts, " && ")

	if _, err := ParseCondition(rule.Condition); err != nil {
		return rule, err
	}
	return rule, nil
}

// parseDRULength converts "0.2mm", "8mil", "0.01in" or a bare number
// (millimetres) to millimetres.
func parseDRULength(s string) (float64, error) {
	scale := 1.0
	switch {
	case strings.HasSuffix(s, "mm"):
		s = strings.TrimSuffix(s, "mm")
	case strings.HasSuffix(s, "mil"):
		s, scale = strings.TrimSuffix(s, "mil"), 0.0254
	case strings.HasSuffix(s, "in"):
		s, scale = strings.TrimSuffix(s, "in"), 25.4
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return v * scale, nil
}

// LoadDRU appends the rules of a DRU file to the resolver. They take
// precedence over the rules from the config.
func (r *Resolver) LoadDRU(dru *DRU) error {
	for _, rule := range dru.Rules {
		if err := r.AddRule(rule); err != nil {
			return err
		}
	}
	return nil
}
