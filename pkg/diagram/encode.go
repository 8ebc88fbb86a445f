package diagram

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/typediagram/pkg/richtext"
)

type wireTree struct {
	Kind     string       `json:"kind"`
	Node     richtext.Run `json:"node"`
	Children []*wireTree  `json:"children,omitempty"`
}

type wireProof struct {
	Conclusion richtext.Run `json:"conclusion"`
	Rule       richtext.Run `json:"rule"`
	Parents    []*wireProof `json:"parents"`
}

type wireEquation struct {
	LHS      richtext.Run `json:"lhs"`
	Relation richtext.Run `json:"relation"`
	RHS      richtext.Run `json:"rhs"`
}

type wireDocument struct {
	Kind        Kind            `json:"kind"`
	Text        *richtext.Run   `json:"text,omitempty"`
	AST         *wireTree       `json:"ast,omitempty"`
	Proof       *wireProof      `json:"proof,omitempty"`
	Unification *[]wireEquation `json:"unification,omitempty"`
}

type wireTyping struct {
	Parsed      bool           `json:"parsed"`
	Error       string         `json:"error,omitempty"`
	Expr        richtext.Run   `json:"expr"`
	Type        richtext.Run   `json:"type"`
	AST         *wireTree      `json:"ast"`
	Proof       *wireProof     `json:"proof"`
	Unification []wireEquation `json:"unification"`
}

type wireTypingFailure struct {
	Parsed bool   `json:"parsed"`
	Error  string `json:"error"`
}

// nonNil keeps empty runs encoded as [] rather than null, which Decode rejects.
func nonNil(r richtext.Run) richtext.Run {
	if r == nil {
		return richtext.Run{}
	}
	return r
}

func toWireTree(n *TreeNode) *wireTree {
	if n == nil {
		return nil
	}
	w := &wireTree{Kind: "leaf", Node: nonNil(n.Label)}
	if !n.IsLeaf() {
		w.Kind = "tree"
		w.Children = make([]*wireTree, len(n.Children))
		for i, ch := range n.Children {
			w.Children[i] = toWireTree(ch)
		}
	}
	return w
}

func toWireProof(p *ProofNode) *wireProof {
	if p == nil {
		return nil
	}
	w := &wireProof{
		Conclusion: nonNil(p.Conclusion),
		Rule:       nonNil(p.Rule),
		Parents:    make([]*wireProof, len(p.Premises)),
	}
	for i, pr := range p.Premises {
		w.Parents[i] = toWireProof(pr)
	}
	return w
}

func toWireEquations(eqs []Equation) []wireEquation {
	out := make([]wireEquation, len(eqs))
	for i, eq := range eqs {
		out[i] = wireEquation{LHS: nonNil(eq.LHS), Relation: nonNil(eq.Relation), RHS: nonNil(eq.RHS)}
	}
	return out
}

// Encode writes doc in canonical wire form.
func Encode(doc Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	w := wireDocument{Kind: doc.Kind}
	switch doc.Kind {
	case KindText:
		text := nonNil(doc.Text)
		w.Text = &text
	case KindAST:
		w.AST = toWireTree(doc.Tree)
	case KindProof:
		w.Proof = toWireProof(doc.Proof)
	case KindUnification:
		eqs := toWireEquations(doc.Equations)
		w.Unification = &eqs
	case KindInference:
		eqs := toWireEquations(doc.Equations)
		w.Proof = toWireProof(doc.Proof)
		w.Unification = &eqs
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// EncodeTypingResult writes r in the inference engine's wire form.
func EncodeTypingResult(r *TypingResult) ([]byte, error) {
	var w any = wireTypingFailure{Parsed: false, Error: r.Error}
	if r.Parsed {
		w = wireTyping{
			Parsed:      true,
			Error:       r.Error,
			Expr:        nonNil(r.Expr),
			Type:        nonNil(r.Type),
			AST:         toWireTree(r.AST),
			Proof:       toWireProof(r.Proof),
			Unification: toWireEquations(r.Unification),
		}
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode typing result: %w", err)
	}
	return data, nil
}
