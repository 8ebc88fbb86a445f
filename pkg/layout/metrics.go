package layout

import (
	"fmt"
	"math"
)

// Metrics holds the fixed distances used by every layout, in pixels.
type Metrics struct {
	SubtreeMargin  float64 `json:"subtree_margin" toml:"subtree_margin" yaml:"subtree_margin"`    // between sibling AST subtrees
	PremiseMargin  float64 `json:"premise_margin" toml:"premise_margin" yaml:"premise_margin"`    // between sibling premises
	SceneGap       float64 `json:"scene_gap" toml:"scene_gap" yaml:"scene_gap"`                   // between a proof and its equations
	EdgeGap        float64 `json:"edge_gap" toml:"edge_gap" yaml:"edge_gap"`                      // vertical length of AST edges
	LineThickness  float64 `json:"line_thickness" toml:"line_thickness" yaml:"line_thickness"`    // inference bar stroke
	CanvasMargin   float64 `json:"canvas_margin" toml:"canvas_margin" yaml:"canvas_margin"`       // border around every drawing
	TextPadding    float64 `json:"text_padding" toml:"text_padding" yaml:"text_padding"`          // above and below node labels
	RuleGap        float64 `json:"rule_gap" toml:"rule_gap" yaml:"rule_gap"`                      // between a bar and its rule name
	EquationMargin float64 `json:"equation_margin" toml:"equation_margin" yaml:"equation_margin"` // around a relation symbol
}

// DefaultMetrics returns the standard spacing.
func DefaultMetrics() Metrics {
	return Metrics{
		SubtreeMargin:  10,
		PremiseMargin:  30,
		SceneGap:       20,
		EdgeGap:        20,
		LineThickness:  2,
		CanvasMargin:   10,
		TextPadding:    5,
		RuleGap:        5,
		EquationMargin: 5,
	}
}

// Validate rejects negative or non-finite distances.
func (m Metrics) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"subtree_margin", m.SubtreeMargin},
		{"premise_margin", m.PremiseMargin},
		{"scene_gap", m.SceneGap},
		{"edge_gap", m.EdgeGap},
		{"line_thickness", m.LineThickness},
		{"canvas_margin", m.CanvasMargin},
		{"text_padding", m.TextPadding},
		{"rule_gap", m.RuleGap},
		{"equation_margin", m.EquationMargin},
	}
	for _, f := range fields {
		if f.v < 0 || math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("metrics: %s must be a finite non-negative number, got %v", f.name, f.v)
		}
	}
	return nil
}
