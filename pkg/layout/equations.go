package layout

import (
	"github.com/matzehuels/typediagram/pkg/diagram"
	"github.com/matzehuels/typediagram/pkg/measure"
)

// SizedEquation carries the measured parts of one equation.
type SizedEquation struct {
	Equation     diagram.Equation
	LHSSize      measure.Size
	RelationSize measure.Size
	RHSSize      measure.Size
	RelationGap  float64 // relation width plus the equation margin on both sides
	Width        float64 // lhs and relation gap; the rhs is not counted
	Height       float64
}

// CenterOffset returns the distance from the left of the equation to the
// center of its relation.
func (s SizedEquation) CenterOffset() float64 { return s.LHSSize.Width + s.RelationGap/2 }

// SizedEquations is a sized unification report.
type SizedEquations struct {
	Equations []SizedEquation
	Width     float64 // widest declared equation width
	Height    float64 // sum of equation heights
}

// CenterOffset returns the relation column needed so that no lhs crosses
// the left edge.
func (s *SizedEquations) CenterOffset() float64 {
	var off float64
	for _, eq := range s.Equations {
		off = max(off, eq.CenterOffset())
	}
	return off
}

// SizeEquations measures every equation in order.
func (e *Engine) SizeEquations(eqs []diagram.Equation) (*SizedEquations, error) {
	out := &SizedEquations{Equations: make([]SizedEquation, len(eqs))}
	for i, eq := range eqs {
		ls, err := e.measure(eq.LHS)
		if err != nil {
			return nil, err
		}
		rs, err := e.measure(eq.Relation)
		if err != nil {
			return nil, err
		}
		hs, err := e.measure(eq.RHS)
		if err != nil {
			return nil, err
		}
		se := SizedEquation{
			Equation:     eq,
			LHSSize:      ls,
			RelationSize: rs,
			RHSSize:      hs,
			RelationGap:  rs.Width + 2*e.metrics.EquationMargin,
			Height:       max(ls.Height, rs.Height, hs.Height),
		}
		se.Width = ls.Width + se.RelationGap
		out.Equations[i] = se
		out.Width = max(out.Width, se.Width)
		out.Height += se.Height
	}
	return out, nil
}

// PlacedEquation is one equation at its final position.
type PlacedEquation struct {
	Y        float64 // top of the equation
	LHS      TextItem
	Relation TextItem
	RHS      TextItem
}

// PlaceEquations stacks the equations downward from y with every relation
// centered at centerX.
func (e *Engine) PlaceEquations(s *SizedEquations, centerX, y float64) []PlacedEquation {
	out := make([]PlacedEquation, len(s.Equations))
	for i, eq := range s.Equations {
		offset := eq.RelationSize.Width/2 + e.metrics.EquationMargin
		out[i] = PlacedEquation{
			Y: y,
			LHS: TextItem{
				Run: eq.Equation.LHS, Anchor: AnchorEnd, X: centerX - offset, Y: y,
				Width: eq.LHSSize.Width, Height: eq.LHSSize.Height,
			},
			Relation: TextItem{
				Run: eq.Equation.Relation, Anchor: AnchorMiddle, X: centerX, Y: y,
				Width: eq.RelationSize.Width, Height: eq.RelationSize.Height,
			},
			RHS: TextItem{
				Run: eq.Equation.RHS, Anchor: AnchorStart, X: centerX + offset, Y: y,
				Width: eq.RHSSize.Width, Height: eq.RHSSize.Height,
			},
		}
		y += eq.Height
	}
	return out
}

func drawEquations(d *Drawing, eqs []PlacedEquation) {
	for _, eq := range eqs {
		d.Texts = append(d.Texts, eq.LHS, eq.Relation, eq.RHS)
	}
}

// LayoutEquations sizes and places a unification report on its own canvas.
func (e *Engine) LayoutEquations(eqs []diagram.Equation) (*Drawing, error) {
	s, err := e.SizeEquations(eqs)
	if err != nil {
		return nil, err
	}
	m := e.metrics.CanvasMargin
	d := &Drawing{
		Kind:   diagram.KindUnification,
		Width:  s.Width + 2*m,
		Height: s.Height + 2*m,
	}
	drawEquations(d, e.PlaceEquations(s, max(m, m+s.CenterOffset()), m))
	return d, nil
}
