package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/typediagram/pkg/diagram"
	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

func TestAxiom(t *testing.T) {
	eng := New(newFake(map[string]measure.Size{
		"⊢ 1 : int": w(20),
		"Int":       {Width: 8, Height: 16},
	}))
	m := eng.Metrics()

	s, err := eng.SizeProof(diagram.Axiom(txt("⊢ 1 : int"), txt("Int")))
	if err != nil {
		t.Fatalf("SizeProof() error: %v", err)
	}
	if s.Width != 33 {
		t.Errorf("Width = %v, want 33", s.Width)
	}
	if want := 20 + 2*m.TextPadding + 16.0/2; s.Height != want {
		t.Errorf("Height = %v, want %v", s.Height, want)
	}

	const cx, y = 100.0, 50.0
	p := eng.PlaceProof(s, cx, y)
	if p.Bar.X1 != cx-16.5 || p.Bar.X2 != cx+3.5 {
		t.Errorf("bar span = [%v, %v], want [%v, %v]", p.Bar.X1, p.Bar.X2, cx-16.5, cx+3.5)
	}
	if want := y - m.LineThickness/2; p.Bar.Y1 != want || p.Bar.Y2 != want {
		t.Errorf("bar y = %v, want %v", p.Bar.Y1, want)
	}
	if p.Conclusion.Anchor != AnchorStart || p.Conclusion.X != cx-16.5 || p.Conclusion.Y != y+m.TextPadding {
		t.Errorf("conclusion = %+v", p.Conclusion)
	}
	if p.Rule.X != cx+3.5+m.RuleGap || p.Rule.Y != p.Bar.Y1 {
		t.Errorf("rule at (%v, %v), want (%v, %v)", p.Rule.X, p.Rule.Y, cx+3.5+m.RuleGap, p.Bar.Y1)
	}
}

func TestSizeProofWithPremises(t *testing.T) {
	eng := New(newFake(nil))
	m := eng.Metrics()
	proof := diagram.Infer(txt("abc"), txt("R"),
		diagram.Axiom(txt("a"), txt("A")),
		diagram.Infer(txt("bb"), txt("B"), diagram.Axiom(txt("c"), txt("C"))),
	)
	s, err := eng.SizeProof(proof)
	if err != nil {
		t.Fatalf("SizeProof() error: %v", err)
	}

	// heads: abc+R = 30+5+10 = 45, a+A = 25, bb+B = 35, c+C = 25
	if s.HeadWidth != 45 {
		t.Errorf("HeadWidth = %v, want 45", s.HeadWidth)
	}
	if want := 25 + m.PremiseMargin + 35; s.PremisesWidth != want {
		t.Errorf("PremisesWidth = %v, want %v", s.PremisesWidth, want)
	}
	if s.Width != max(s.HeadWidth, s.PremisesWidth) {
		t.Errorf("Width = %v, want %v", s.Width, max(s.HeadWidth, s.PremisesWidth))
	}
	nodeHeight := 20 + 2*m.TextPadding
	axiomHeight := nodeHeight + 10
	tallest := nodeHeight + m.LineThickness + axiomHeight
	if want := nodeHeight + m.LineThickness + tallest; s.Height != want {
		t.Errorf("Height = %v, want %v", s.Height, want)
	}
	if want := -s.PremisesWidth / 2; s.Premises[0].RelativeX != want {
		t.Errorf("first RelativeX = %v, want %v", s.Premises[0].RelativeX, want)
	}
	if want := s.Premises[0].RelativeX + 25 + m.PremiseMargin; s.Premises[1].RelativeX != want {
		t.Errorf("second RelativeX = %v, want %v", s.Premises[1].RelativeX, want)
	}
}

func TestPlaceProofTransitiveExtent(t *testing.T) {
	eng := New(newFake(map[string]measure.Size{
		"root": w(20), "mid": w(20), "top": w(100),
		"R": w(8), "M": w(8), "T": w(8),
	}))
	m := eng.Metrics()
	proof := diagram.Infer(txt("root"), txt("R"),
		diagram.Infer(txt("mid"), txt("M"),
			diagram.Axiom(txt("top"), txt("T"))))

	s, err := eng.SizeProof(proof)
	if err != nil {
		t.Fatalf("SizeProof() error: %v", err)
	}
	if s.Width != 113 {
		t.Fatalf("Width = %v, want 113", s.Width)
	}

	root := eng.PlaceProof(s, 0, 0)
	mid := root.Premises[0]
	top := mid.Premises[0]

	if top.Bar.X1 != -56.5 || top.Bar.X2 != 43.5 {
		t.Errorf("top bar = [%v, %v], want [-56.5, 43.5]", top.Bar.X1, top.Bar.X2)
	}
	// mid's own head spans [-16.5, 3.5]; its bar must reach top's bar.
	if mid.Bar.X1 != top.Bar.X1 || mid.Bar.X2 != top.Bar.X2 {
		t.Errorf("mid bar = [%v, %v], want top's [%v, %v]", mid.Bar.X1, mid.Bar.X2, top.Bar.X1, top.Bar.X2)
	}
	if root.Bar.X1 != top.Bar.X1 || root.Bar.X2 != top.Bar.X2 {
		t.Errorf("root bar = [%v, %v], want top's [%v, %v]", root.Bar.X1, root.Bar.X2, top.Bar.X1, top.Bar.X2)
	}
	if root.Rule.X != 43.5+m.RuleGap {
		t.Errorf("root rule x = %v, want %v", root.Rule.X, 43.5+m.RuleGap)
	}

	nodeHeight := 20 + 2*m.TextPadding
	if want := -m.LineThickness - nodeHeight; mid.Y != want {
		t.Errorf("mid y = %v, want %v", mid.Y, want)
	}
	if want := 2 * (-m.LineThickness - nodeHeight); top.Y != want {
		t.Errorf("top y = %v, want %v", top.Y, want)
	}
}

func TestPlaceProofWideRuleWidensParentBar(t *testing.T) {
	eng := New(newFake(map[string]measure.Size{
		"C": w(20), "R": w(8),
		"P": w(10), "a very wide rule name": w(200),
		"Q": w(10), "S": w(8),
	}))
	proof := diagram.Infer(txt("C"), txt("R"),
		diagram.Axiom(txt("P"), txt("a very wide rule name")),
		diagram.Axiom(txt("Q"), txt("S")),
	)
	s, err := eng.SizeProof(proof)
	if err != nil {
		t.Fatalf("SizeProof() error: %v", err)
	}
	root := eng.PlaceProof(s, 0, 0)
	left := root.Premises[0]

	if root.Bar.X1 != left.Bar.X1 {
		t.Errorf("root bar starts at %v, want left premise bar start %v", root.Bar.X1, left.Bar.X1)
	}
	if root.Bar.X1 >= root.Conclusion.Left() {
		t.Errorf("root bar start %v not left of the conclusion %v", root.Bar.X1, root.Conclusion.Left())
	}
}

func TestProofBarContainsDescendants(t *testing.T) {
	eng := New(newFake(map[string]measure.Size{"Long rule": w(120)}))
	proof := diagram.Infer(txt("⊢ (λf.λx.f x) succ 1 : int"), txt("App"),
		diagram.Infer(txt("⊢ λf.λx.f x"), txt("Abs"),
			diagram.Infer(txt("f ⊢ λx.f x"), txt("Long rule"),
				diagram.Infer(txt("f, x ⊢ f x"), txt("App"),
					diagram.Axiom(txt("f"), txt("Var")),
					diagram.Axiom(txt("x"), txt("Long rule")),
				),
			),
		),
		diagram.Axiom(txt("succ"), txt("Const")),
		diagram.Axiom(txt("1"), txt("Int")),
	)
	s, err := eng.SizeProof(proof)
	if err != nil {
		t.Fatalf("SizeProof() error: %v", err)
	}
	root := eng.PlaceProof(s, 300, 400)

	root.Walk(func(p *PlacedProof) {
		if p.Bar.X1 > p.Conclusion.Left()+eps || p.Bar.X2 < p.Conclusion.Right()-eps {
			t.Errorf("%q: bar [%v, %v] does not cover conclusion [%v, %v]",
				p.Conclusion.Run.String(), p.Bar.X1, p.Bar.X2, p.Conclusion.Left(), p.Conclusion.Right())
		}
		minLeft, maxRight := math.Inf(1), math.Inf(-1)
		for _, pr := range p.Premises {
			pr.Walk(func(q *PlacedProof) {
				minLeft = math.Min(minLeft, q.Bar.X1)
				maxRight = math.Max(maxRight, q.Bar.X2)
			})
		}
		if p.Bar.X1 > minLeft+eps || p.Bar.X2 < maxRight-eps {
			t.Errorf("%q: bar [%v, %v] does not cover descendant bars [%v, %v]",
				p.Conclusion.Run.String(), p.Bar.X1, p.Bar.X2, minLeft, maxRight)
		}
	})
}

func TestLayoutProof(t *testing.T) {
	eng := New(newFake(nil))
	m := eng.Metrics()
	proof := diagram.Infer(txt("ab"), txt("R"), diagram.Axiom(txt("c"), txt("A")))

	d, err := eng.LayoutProof(proof)
	if err != nil {
		t.Fatalf("LayoutProof() error: %v", err)
	}
	s, _ := eng.SizeProof(proof)
	if d.Width != s.Width+2*m.CanvasMargin || d.Height != s.Height+2*m.CanvasMargin {
		t.Errorf("canvas = %vx%v, want %vx%v", d.Width, d.Height, s.Width+2*m.CanvasMargin, s.Height+2*m.CanvasMargin)
	}
	// premise: conclusion, bar, rule; then root: conclusion, bar, rule
	if len(d.Texts) != 4 || len(d.Lines) != 2 {
		t.Fatalf("got %d texts, %d lines, want 4, 2", len(d.Texts), len(d.Lines))
	}
	root := d.Texts[2]
	if want := m.CanvasMargin + s.Height - s.NodeHeight + m.TextPadding; root.Y != want {
		t.Errorf("root conclusion y = %v, want %v", root.Y, want)
	}
	// The conclusion's bottom rests on the content bottom.
	if got, want := root.Y+root.Height+m.TextPadding, d.Height-m.CanvasMargin; got != want {
		t.Errorf("conclusion bottom = %v, want %v", got, want)
	}
}

func TestProofMeasureError(t *testing.T) {
	boom := errors.New("missing glyph")
	eng := New(measure.Func(func(r richtext.Run) (measure.Size, error) {
		if r.String() == "bad" {
			return measure.Size{}, boom
		}
		return w(10), nil
	}))
	proof := diagram.Infer(txt("ok"), txt("R"), diagram.Axiom(txt("ok"), txt("bad")))

	s, err := eng.SizeProof(proof)
	if !errors.Is(err, boom) {
		t.Fatalf("SizeProof() error = %v, want %v", err, boom)
	}
	if s != nil {
		t.Errorf("SizeProof() returned a partial result: %+v", s)
	}
	if d, err := eng.LayoutDocument(diagram.InferenceDocument(proof, nil)); d != nil || !errors.Is(err, boom) {
		t.Errorf("LayoutDocument() = %v, %v; want nil, %v", d, err, boom)
	}
}

func TestLayoutProofDeterministic(t *testing.T) {
	eng := New(newFake(nil))
	proof := diagram.Infer(txt("abc"), txt("R"),
		diagram.Axiom(txt("a"), txt("A")),
		diagram.Axiom(txt("b"), txt("B")),
	)
	first, err := eng.LayoutProof(proof)
	if err != nil {
		t.Fatalf("LayoutProof() error: %v", err)
	}
	second, err := eng.LayoutProof(proof)
	if err != nil {
		t.Fatalf("LayoutProof() error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second layout differs (-first +second):\n%s", diff)
	}
}
