package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/typediagram/pkg/diagram"
	"github.com/matzehuels/typediagram/pkg/measure"
)

func TestSizeTreeLeaf(t *testing.T) {
	eng := New(newFake(map[string]measure.Size{"x": {Width: 17, Height: 30}}))
	s, err := eng.SizeTree(diagram.Leaf(txt("x")))
	if err != nil {
		t.Fatalf("SizeTree() error: %v", err)
	}
	if s.Width != 17 {
		t.Errorf("Width = %v, want measured width 17", s.Width)
	}
	if want := 30 + 2*eng.Metrics().TextPadding; s.Height != want || s.NodeHeight != want {
		t.Errorf("Height, NodeHeight = %v, %v, want %v", s.Height, s.NodeHeight, want)
	}
	if s.ChildrenWidth != 0 {
		t.Errorf("ChildrenWidth = %v, want 0 for a leaf", s.ChildrenWidth)
	}
}

func TestSizeTreeThreeLeaves(t *testing.T) {
	metrics := DefaultMetrics()
	metrics.SubtreeMargin = 2
	eng := New(newFake(map[string]measure.Size{
		"":  w(5),
		"a": w(10), "b": w(10), "c": w(10),
	}), WithMetrics(metrics))

	tree := diagram.Tree(txt(""),
		diagram.Leaf(txt("a")), diagram.Leaf(txt("b")), diagram.Leaf(txt("c")))
	s, err := eng.SizeTree(tree)
	if err != nil {
		t.Fatalf("SizeTree() error: %v", err)
	}

	if s.ChildrenWidth != 34 {
		t.Errorf("ChildrenWidth = %v, want 34", s.ChildrenWidth)
	}
	if s.Width != 34 {
		t.Errorf("Width = %v, want 34", s.Width)
	}
	var offsets []float64
	for _, ch := range s.Children {
		offsets = append(offsets, ch.RelativeX)
	}
	if diff := cmp.Diff([]float64{-17, -5, 7}, offsets); diff != "" {
		t.Errorf("RelativeX mismatch (-want +got):\n%s", diff)
	}
	nodeHeight := 20 + 2*metrics.TextPadding
	if want := nodeHeight + metrics.EdgeGap + nodeHeight; s.Height != want {
		t.Errorf("Height = %v, want %v", s.Height, want)
	}
}

func TestSizeTreeInvariants(t *testing.T) {
	eng := New(newFake(map[string]measure.Size{
		"a very wide label": w(400),
		"deep":              {Width: 10, Height: 44},
	}))
	m := eng.Metrics()
	tree := diagram.Tree(txt("app"),
		diagram.Tree(txt("a very wide label"), diagram.Leaf(txt("x"))),
		diagram.Leaf(txt("y")),
		diagram.Tree(txt("λ"), diagram.Tree(txt("deep"), diagram.Leaf(txt("z")), diagram.Leaf(txt("zz")))),
	)
	s, err := eng.SizeTree(tree)
	if err != nil {
		t.Fatalf("SizeTree() error: %v", err)
	}

	var check func(*SizedTree)
	check = func(n *SizedTree) {
		if len(n.Children) == 0 {
			if n.Width != n.LabelSize.Width {
				t.Errorf("leaf %q: Width = %v, want %v", n.Label.String(), n.Width, n.LabelSize.Width)
			}
			return
		}
		var sum, tallest float64
		for _, ch := range n.Children {
			sum += ch.Tree.Width
			tallest = max(tallest, ch.Tree.Height)
			check(ch.Tree)
		}
		childrenWidth := sum + m.SubtreeMargin*float64(len(n.Children)-1)
		if want := max(n.LabelSize.Width, childrenWidth); !near(n.Width, want) {
			t.Errorf("%q: Width = %v, want %v", n.Label.String(), n.Width, want)
		}
		if want := n.NodeHeight + m.EdgeGap + tallest; !near(n.Height, want) {
			t.Errorf("%q: Height = %v, want %v", n.Label.String(), n.Height, want)
		}
		if !near(n.Children[0].RelativeX, -childrenWidth/2) {
			t.Errorf("%q: first RelativeX = %v, want %v", n.Label.String(), n.Children[0].RelativeX, -childrenWidth/2)
		}
		for i := 1; i < len(n.Children); i++ {
			prev := n.Children[i-1]
			if want := prev.RelativeX + prev.Tree.Width + m.SubtreeMargin; !near(n.Children[i].RelativeX, want) {
				t.Errorf("%q: child %d RelativeX = %v, want %v", n.Label.String(), i, n.Children[i].RelativeX, want)
			}
		}
	}
	check(s)
}

func TestPlaceTree(t *testing.T) {
	eng := New(newFake(map[string]measure.Size{
		"f": w(10), "x": w(30), "app": w(20),
	}))
	m := eng.Metrics()
	s, err := eng.SizeTree(diagram.Tree(txt("app"), diagram.Leaf(txt("f")), diagram.Leaf(txt("x"))))
	if err != nil {
		t.Fatalf("SizeTree() error: %v", err)
	}
	p := eng.PlaceTree(s, 100, 50)

	if p.Text.Anchor != AnchorMiddle || p.Text.X != 100 || p.Text.Y != 50+m.TextPadding {
		t.Errorf("root text = %+v", p.Text)
	}

	// childrenWidth = 10 + 10 + 30 = 50, so children start at 75.
	bottom := 50 + s.NodeHeight
	childY := bottom + m.EdgeGap
	wantX := []float64{80, 110}
	for i, ch := range p.Children {
		if ch.X != wantX[i] || ch.Y != childY {
			t.Errorf("child %d at (%v, %v), want (%v, %v)", i, ch.X, ch.Y, wantX[i], childY)
		}
		want := Line{X1: 100, Y1: bottom, X2: wantX[i], Y2: childY}
		if p.Edges[i] != want {
			t.Errorf("edge %d = %+v, want %+v", i, p.Edges[i], want)
		}
	}
}

func TestLayoutTree(t *testing.T) {
	eng := New(newFake(nil))
	m := eng.Metrics()
	tree := diagram.Tree(txt("ab"), diagram.Leaf(txt("c")), diagram.Leaf(txt("d")))

	d, err := eng.LayoutTree(tree)
	if err != nil {
		t.Fatalf("LayoutTree() error: %v", err)
	}
	// children: 10 + 10 + margin 10 = 30, wider than the 20 label
	if want := 30 + 2*m.CanvasMargin; d.Width != want {
		t.Errorf("Width = %v, want %v", d.Width, want)
	}
	if len(d.Texts) != 3 || len(d.Lines) != 2 {
		t.Fatalf("got %d texts, %d lines, want 3, 2", len(d.Texts), len(d.Lines))
	}
	if d.Texts[0].X != m.CanvasMargin+15 || d.Texts[0].Y != m.CanvasMargin+m.TextPadding {
		t.Errorf("root text at (%v, %v)", d.Texts[0].X, d.Texts[0].Y)
	}
	b := d.Bounds()
	if b.MinX < m.CanvasMargin-eps || b.MaxX > d.Width-m.CanvasMargin+eps || b.MaxY > d.Height-m.CanvasMargin+eps {
		t.Errorf("Bounds() = %+v exceeds the content area of %vx%v", b, d.Width, d.Height)
	}
}

func TestLayoutTreeDeterministic(t *testing.T) {
	eng := New(newFake(nil))
	tree := diagram.Tree(txt("app"),
		diagram.Tree(txt("λx"), diagram.Leaf(txt("x"))),
		diagram.Leaf(txt("1")),
	)
	pristine := diagram.Tree(txt("app"),
		diagram.Tree(txt("λx"), diagram.Leaf(txt("x"))),
		diagram.Leaf(txt("1")),
	)

	first, err := eng.LayoutTree(tree)
	if err != nil {
		t.Fatalf("LayoutTree() error: %v", err)
	}
	second, err := eng.LayoutTree(tree)
	if err != nil {
		t.Fatalf("LayoutTree() error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second layout differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(pristine, tree); diff != "" {
		t.Errorf("input tree was modified (-want +got):\n%s", diff)
	}
}
