package layout

import (
	"github.com/matzehuels/typediagram/pkg/diagram"
	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// SizedTree carries the sizes computed for one AST node and its subtree.
type SizedTree struct {
	Label         richtext.Run
	LabelSize     measure.Size // as measured, without padding
	NodeHeight    float64      // label height plus padding above and below
	ChildrenWidth float64      // zero for leaves
	Width         float64
	Height        float64
	Children      []SizedChild
}

// SizedChild is a child subtree with the x of its left edge relative to
// the parent's center.
type SizedChild struct {
	RelativeX float64
	Tree      *SizedTree
}

// SizeTree measures every label of the tree rooted at n and computes the
// space each subtree reserves.
func (e *Engine) SizeTree(n *diagram.TreeNode) (*SizedTree, error) {
	ls, err := e.measure(n.Label)
	if err != nil {
		return nil, err
	}
	s := &SizedTree{
		Label:      n.Label,
		LabelSize:  ls,
		NodeHeight: ls.Height + 2*e.metrics.TextPadding,
	}
	if n.IsLeaf() {
		s.Width = ls.Width
		s.Height = s.NodeHeight
		return s, nil
	}

	s.Children = make([]SizedChild, len(n.Children))
	var childrenHeight float64
	for i, ch := range n.Children {
		cs, err := e.SizeTree(ch)
		if err != nil {
			return nil, err
		}
		s.Children[i].Tree = cs
		s.ChildrenWidth += cs.Width
		childrenHeight = max(childrenHeight, cs.Height)
	}
	s.ChildrenWidth += e.metrics.SubtreeMargin * float64(len(n.Children)-1)

	x := -s.ChildrenWidth / 2
	for i := range s.Children {
		s.Children[i].RelativeX = x
		x += s.Children[i].Tree.Width + e.metrics.SubtreeMargin
	}

	s.Width = max(ls.Width, s.ChildrenWidth)
	s.Height = s.NodeHeight + e.metrics.EdgeGap + childrenHeight
	return s, nil
}

// PlacedTree is an AST node at its final position.
type PlacedTree struct {
	Label    richtext.Run
	X        float64 // center of the label
	Y        float64 // top of the node, padding included
	Size     measure.Size
	Text     TextItem
	Edges    []Line // one per child, from this label's bottom to the child's top
	Children []*PlacedTree
}

// PlaceTree positions a sized tree with its root label centered at x and
// its top at y.
func (e *Engine) PlaceTree(s *SizedTree, x, y float64) *PlacedTree {
	p := &PlacedTree{
		Label: s.Label,
		X:     x,
		Y:     y,
		Size:  s.LabelSize,
		Text: TextItem{
			Run: s.Label, Anchor: AnchorMiddle, X: x, Y: y + e.metrics.TextPadding,
			Width: s.LabelSize.Width, Height: s.LabelSize.Height,
		},
	}
	if len(s.Children) == 0 {
		return p
	}

	bottom := y + s.NodeHeight
	childY := bottom + e.metrics.EdgeGap
	p.Children = make([]*PlacedTree, len(s.Children))
	p.Edges = make([]Line, len(s.Children))
	for i, ch := range s.Children {
		childX := x + ch.RelativeX + ch.Tree.Width/2
		p.Children[i] = e.PlaceTree(ch.Tree, childX, childY)
		p.Edges[i] = Line{X1: x, Y1: bottom, X2: childX, Y2: childY}
	}
	return p
}

// draw appends the node's commands in pre-order: label, then each child
// subtree followed by the edge leading to it.
func (p *PlacedTree) draw(d *Drawing) {
	d.Texts = append(d.Texts, p.Text)
	for i, ch := range p.Children {
		ch.draw(d)
		d.addLine(p.Edges[i])
	}
}

// LayoutTree sizes and places the tree on a canvas, centered inside the
// margin.
func (e *Engine) LayoutTree(n *diagram.TreeNode) (*Drawing, error) {
	s, err := e.SizeTree(n)
	if err != nil {
		return nil, err
	}
	m := e.metrics.CanvasMargin
	d := &Drawing{
		Kind:   diagram.KindAST,
		Width:  s.Width + 2*m,
		Height: s.Height + 2*m,
	}
	e.PlaceTree(s, m+s.Width/2, m).draw(d)
	return d, nil
}
