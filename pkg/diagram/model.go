package diagram

import (
	"fmt"

	"github.com/matzehuels/typediagram/pkg/richtext"
)

// Kind tags the shape held by a Document.
type Kind string

const (
	KindText        Kind = "text"
	KindAST         Kind = "ast"
	KindProof       Kind = "proof"
	KindUnification Kind = "unification"
	KindInference   Kind = "inference"
)

// Kinds lists every document kind.
var Kinds = []Kind{KindText, KindAST, KindProof, KindUnification, KindInference}

// ParseKind validates a document kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document kind %q (must be one of: text, ast, proof, unification, inference)", s)
}

// TreeNode is a labelled n-ary tree node. A node without children is a leaf.
type TreeNode struct {
	Label    richtext.Run
	Children []*TreeNode
}

// Leaf returns a childless node.
func Leaf(label richtext.Run) *TreeNode { return &TreeNode{Label: label} }

// Tree returns a node with the given children.
func Tree(label richtext.Run, children ...*TreeNode) *TreeNode {
	return &TreeNode{Label: label, Children: children}
}

// IsLeaf reports whether n has no children.
func (n *TreeNode) IsLeaf() bool { return len(n.Children) == 0 }

// Count returns the number of nodes in the subtree rooted at n.
func (n *TreeNode) Count() int {
	c := 1
	for _, ch := range n.Children {
		c += ch.Count()
	}
	return c
}

// Depth returns the number of levels in the subtree rooted at n.
func (n *TreeNode) Depth() int {
	d := 0
	for _, ch := range n.Children {
		d = max(d, ch.Depth())
	}
	return d + 1
}

// ProofNode is one inference step. A node without premises is an axiom.
type ProofNode struct {
	Conclusion richtext.Run
	Rule       richtext.Run
	Premises   []*ProofNode
}

// Axiom returns a proof node without premises.
func Axiom(conclusion, rule richtext.Run) *ProofNode {
	return &ProofNode{Conclusion: conclusion, Rule: rule}
}

// Infer returns a proof node concluding from the given premises.
func Infer(conclusion, rule richtext.Run, premises ...*ProofNode) *ProofNode {
	return &ProofNode{Conclusion: conclusion, Rule: rule, Premises: premises}
}

// IsAxiom reports whether p has no premises.
func (p *ProofNode) IsAxiom() bool { return len(p.Premises) == 0 }

// Count returns the number of inference steps in the proof rooted at p.
func (p *ProofNode) Count() int {
	c := 1
	for _, pr := range p.Premises {
		c += pr.Count()
	}
	return c
}

// Depth returns the height of the proof rooted at p in inference steps.
func (p *ProofNode) Depth() int {
	d := 0
	for _, pr := range p.Premises {
		d = max(d, pr.Depth())
	}
	return d + 1
}

// Equation is one line of a unification report.
type Equation struct {
	LHS      richtext.Run
	Relation richtext.Run
	RHS      richtext.Run
}

// Document is a tagged union over the shapes typediagram can lay out.
// Exactly the fields selected by Kind are meaningful:
//
//	KindText         Text
//	KindAST          Tree
//	KindProof        Proof
//	KindUnification  Equations
//	KindInference    Proof and Equations
type Document struct {
	Kind      Kind
	Text      richtext.Run
	Tree      *TreeNode
	Proof     *ProofNode
	Equations []Equation
}

// TextDocument wraps a single run.
func TextDocument(run richtext.Run) Document { return Document{Kind: KindText, Text: run} }

// ASTDocument wraps a tree.
func ASTDocument(tree *TreeNode) Document { return Document{Kind: KindAST, Tree: tree} }

// ProofDocument wraps a proof on its own.
func ProofDocument(proof *ProofNode) Document { return Document{Kind: KindProof, Proof: proof} }

// UnificationDocument wraps an equation list.
func UnificationDocument(eqs []Equation) Document {
	return Document{Kind: KindUnification, Equations: eqs}
}

// InferenceDocument wraps a proof together with the equations solved for it.
func InferenceDocument(proof *ProofNode, eqs []Equation) Document {
	return Document{Kind: KindInference, Proof: proof, Equations: eqs}
}

// Validate checks that the fields required by the document's kind are set
// and that every run uses known styles.
func (d Document) Validate() error {
	switch d.Kind {
	case KindText:
		return validateRun("$.text", d.Text)
	case KindAST:
		if d.Tree == nil {
			return structural("$.ast", "missing tree")
		}
		return validateTree("$.ast", d.Tree)
	case KindProof:
		if d.Proof == nil {
			return structural("$.proof", "missing proof")
		}
		return validateProof("$.proof", d.Proof)
	case KindUnification:
		return validateEquations("$.unification", d.Equations)
	case KindInference:
		if d.Proof == nil {
			return structural("$.proof", "missing proof")
		}
		if err := validateProof("$.proof", d.Proof); err != nil {
			return err
		}
		return validateEquations("$.unification", d.Equations)
	default:
		return structural("$.kind", fmt.Sprintf("unknown document kind %q", d.Kind))
	}
}

func validateRun(path string, r richtext.Run) error {
	if r == nil {
		return structural(path, "null run")
	}
	for i, s := range r {
		if _, err := richtext.ParseStyle(string(s.Style)); err != nil {
			return invalidStyle(fmt.Sprintf("%s[%d].style", path, i), err)
		}
	}
	return nil
}

func validateTree(path string, n *TreeNode) error {
	if err := validateRun(path+".node", n.Label); err != nil {
		return err
	}
	for i, ch := range n.Children {
		p := fmt.Sprintf("%s.children[%d]", path, i)
		if ch == nil {
			return structural(p, "null node")
		}
		if err := validateTree(p, ch); err != nil {
			return err
		}
	}
	return nil
}

func validateProof(path string, p *ProofNode) error {
	if err := validateRun(path+".conclusion", p.Conclusion); err != nil {
		return err
	}
	if err := validateRun(path+".rule", p.Rule); err != nil {
		return err
	}
	for i, pr := range p.Premises {
		pp := fmt.Sprintf("%s.parents[%d]", path, i)
		if pr == nil {
			return structural(pp, "null node")
		}
		if err := validateProof(pp, pr); err != nil {
			return err
		}
	}
	return nil
}

func validateEquations(path string, eqs []Equation) error {
	for i, eq := range eqs {
		p := fmt.Sprintf("%s[%d]", path, i)
		if err := validateRun(p+".lhs", eq.LHS); err != nil {
			return err
		}
		if err := validateRun(p+".relation", eq.Relation); err != nil {
			return err
		}
		if err := validateRun(p+".rhs", eq.RHS); err != nil {
			return err
		}
	}
	return nil
}

// TypingResult is the inference engine's answer for one expression.
// When Parsed is false only Error is meaningful.
type TypingResult struct {
	Parsed      bool
	Error       string
	Expr        richtext.Run
	Type        richtext.Run
	AST         *TreeNode
	Proof       *ProofNode
	Unification []Equation
}

// Panels returns the documents shown for a successfully typed expression,
// keyed by panel name: expr, type, ast and inference.
func (r *TypingResult) Panels() map[string]Document {
	return map[string]Document{
		PanelExpr:      TextDocument(r.Expr),
		PanelType:      TextDocument(r.Type),
		PanelAST:       ASTDocument(r.AST),
		PanelInference: InferenceDocument(r.Proof, r.Unification),
	}
}

// Panel names of a typing result, in display order.
const (
	PanelExpr      = "expr"
	PanelType      = "type"
	PanelAST       = "ast"
	PanelInference = "inference"
)

// PanelNames lists the panels of a typing result in display order.
var PanelNames = []string{PanelExpr, PanelType, PanelAST, PanelInference}
