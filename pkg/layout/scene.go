package layout

import "github.com/matzehuels/typediagram/pkg/diagram"

// SceneGeometry is a proof and its equations placed on one canvas.
type SceneGeometry struct {
	Width     float64 // content width, margin excluded
	Height    float64 // content height, margin excluded
	Proof     *PlacedProof
	Equations []PlacedEquation
	CenterX   float64 // relation column of the equations
}

// PlaceScene positions a sized proof above its sized equations. The
// content area starts at (m, m).
func (e *Engine) PlaceScene(sp *SizedProof, se *SizedEquations, m float64) *SceneGeometry {
	g := &SceneGeometry{
		Width:  max(sp.Width, se.Width),
		Height: sp.Height + e.metrics.SceneGap + se.Height,
	}
	// The proof's conclusion bottom rests at the proof's height.
	g.Proof = e.PlaceProof(sp, m+g.Width/2, m+sp.Height-sp.NodeHeight)
	g.CenterX = max(m, m+se.CenterOffset())
	g.Equations = e.PlaceEquations(se, g.CenterX, m+sp.Height+e.metrics.SceneGap)
	return g
}

// Scene lays out a proof with the equations solved for it below.
func (e *Engine) Scene(p *diagram.ProofNode, eqs []diagram.Equation) (*Drawing, error) {
	sp, err := e.SizeProof(p)
	if err != nil {
		return nil, err
	}
	se, err := e.SizeEquations(eqs)
	if err != nil {
		return nil, err
	}
	m := e.metrics.CanvasMargin
	g := e.PlaceScene(sp, se, m)
	d := &Drawing{
		Kind:   diagram.KindInference,
		Width:  g.Width + 2*m,
		Height: g.Height + 2*m,
	}
	g.Proof.draw(d)
	drawEquations(d, g.Equations)
	return d, nil
}
