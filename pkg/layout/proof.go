package layout

import (
	"math"

	"github.com/matzehuels/typediagram/pkg/diagram"
	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// SizedProof carries the sizes computed for one inference step and the
// proof above it.
type SizedProof struct {
	Conclusion     richtext.Run
	Rule           richtext.Run
	ConclusionSize measure.Size
	RuleSize       measure.Size
	NodeHeight     float64 // conclusion height plus padding above and below
	HeadWidth      float64 // conclusion, rule gap and rule side by side
	PremisesWidth  float64 // zero for axioms
	Width          float64
	Height         float64
	Premises       []SizedPremise
}

// SizedPremise is a premise with the x of its left edge relative to the
// conclusion's center.
type SizedPremise struct {
	RelativeX float64
	Proof     *SizedProof
}

// SizeProof measures the proof rooted at p and computes the space each
// step reserves.
func (e *Engine) SizeProof(p *diagram.ProofNode) (*SizedProof, error) {
	cs, err := e.measure(p.Conclusion)
	if err != nil {
		return nil, err
	}
	rs, err := e.measure(p.Rule)
	if err != nil {
		return nil, err
	}
	s := &SizedProof{
		Conclusion:     p.Conclusion,
		Rule:           p.Rule,
		ConclusionSize: cs,
		RuleSize:       rs,
		NodeHeight:     cs.Height + 2*e.metrics.TextPadding,
		HeadWidth:      cs.Width + e.metrics.RuleGap + rs.Width,
	}
	if p.IsAxiom() {
		s.Width = s.HeadWidth
		s.Height = s.NodeHeight + rs.Height/2
		return s, nil
	}

	s.Premises = make([]SizedPremise, len(p.Premises))
	var premisesHeight float64
	for i, pr := range p.Premises {
		ps, err := e.SizeProof(pr)
		if err != nil {
			return nil, err
		}
		s.Premises[i].Proof = ps
		s.PremisesWidth += ps.Width
		premisesHeight = max(premisesHeight, ps.Height)
	}
	s.PremisesWidth += e.metrics.PremiseMargin * float64(len(p.Premises)-1)

	x := -s.PremisesWidth / 2
	for i := range s.Premises {
		s.Premises[i].RelativeX = x
		x += s.Premises[i].Proof.Width + e.metrics.PremiseMargin
	}

	s.Width = max(s.HeadWidth, s.PremisesWidth)
	s.Height = s.NodeHeight + e.metrics.LineThickness + premisesHeight
	return s, nil
}

// PlacedProof is an inference step at its final position.
type PlacedProof struct {
	X          float64 // center of the step's head
	Y          float64 // top of the conclusion, padding included
	Conclusion TextItem
	Rule       TextItem
	Bar        Line // X1 <= X2; covers the conclusion and every premise bar
	Premises   []*PlacedProof
}

// PlaceProof positions a sized proof with its head centered at x and the
// top of its conclusion at y. Premises are placed above y.
func (e *Engine) PlaceProof(s *SizedProof, x, y float64) *PlacedProof {
	left := x - s.HeadWidth/2
	p := &PlacedProof{
		X: x,
		Y: y,
		Conclusion: TextItem{
			Run: s.Conclusion, Anchor: AnchorStart, X: left, Y: y + e.metrics.TextPadding,
			Width: s.ConclusionSize.Width, Height: s.ConclusionSize.Height,
		},
	}
	right := left + s.ConclusionSize.Width

	if len(s.Premises) > 0 {
		p.Premises = make([]*PlacedProof, len(s.Premises))
	}
	for i, pr := range s.Premises {
		premiseX := x + pr.RelativeX + pr.Proof.Width/2
		premiseY := y - e.metrics.LineThickness - pr.Proof.NodeHeight
		placed := e.PlaceProof(pr.Proof, premiseX, premiseY)
		p.Premises[i] = placed

		// A premise's bar already spans everything above it, so widening to
		// it covers the whole subtree.
		left = math.Min(left, placed.Bar.X1)
		right = math.Max(right, placed.Bar.X2)
	}

	barY := y - e.metrics.LineThickness/2
	p.Bar = Line{X1: left, Y1: barY, X2: right, Y2: barY}
	p.Rule = TextItem{
		Run: s.Rule, Anchor: AnchorStart, X: right + e.metrics.RuleGap, Y: barY,
		Width: s.RuleSize.Width, Height: s.RuleSize.Height,
	}
	return p
}

// draw appends the step's commands: premises first, then the conclusion,
// the bar and the rule name.
func (p *PlacedProof) draw(d *Drawing) {
	for _, pr := range p.Premises {
		pr.draw(d)
	}
	d.Texts = append(d.Texts, p.Conclusion)
	d.addLine(p.Bar)
	d.Texts = append(d.Texts, p.Rule)
}

// Walk calls fn for p and every premise above it, depth first.
func (p *PlacedProof) Walk(fn func(*PlacedProof)) {
	fn(p)
	for _, pr := range p.Premises {
		pr.Walk(fn)
	}
}

// LayoutProof sizes and places a proof on its own canvas. The head of the
// proof sits at the bottom of the canvas.
func (e *Engine) LayoutProof(p *diagram.ProofNode) (*Drawing, error) {
	s, err := e.SizeProof(p)
	if err != nil {
		return nil, err
	}
	m := e.metrics.CanvasMargin
	d := &Drawing{
		Kind:   diagram.KindProof,
		Width:  s.Width + 2*m,
		Height: s.Height + 2*m,
	}
	e.PlaceProof(s, m+s.Width/2, m+s.Height-s.NodeHeight).draw(d)
	return d, nil
}
