package diagram

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

func sampleProof() *ProofNode {
	return Infer(richtext.Plain("⊢ (λx.x) 1 : int"), richtext.Plain("App"),
		Infer(richtext.Plain("⊢ λx.x : int→int"), richtext.Plain("Abs"),
			Axiom(richtext.Plain("x:int ⊢ x : int"), richtext.Plain("Var")),
		),
		Axiom(richtext.Plain("⊢ 1 : int"), richtext.Plain("Int")),
	)
}

func TestEncodeDecode(t *testing.T) {
	eqs := []Equation{
		{LHS: richtext.Italic("α"), Relation: richtext.Plain("="), RHS: richtext.Plain("int")},
	}
	docs := map[string]Document{
		"text": TextDocument(richtext.Concat(richtext.Italic("t"), richtext.Sub("1"))),
		"ast": ASTDocument(Tree(richtext.Plain("app"),
			Leaf(richtext.Plain("f")),
			Tree(richtext.Plain("λx"), Leaf(richtext.Plain("x"))),
		)),
		"proof":             ProofDocument(sampleProof()),
		"unification":       UnificationDocument(eqs),
		"empty unification": UnificationDocument([]Equation{}),
		"inference":         InferenceDocument(sampleProof(), eqs),
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(doc)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error: %v\n%s", err, data)
			}
			if diff := cmp.Diff(doc, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"missing tree", Document{Kind: KindAST}},
		{"null label", ASTDocument(Tree(richtext.Plain("a"), &TreeNode{}))},
		{"bad style", TextDocument(richtext.Run{{Text: "x", Style: "bold"}})},
		{"unknown kind", Document{Kind: "graph"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.doc); err == nil {
				t.Error("Encode() succeeded, want error")
			}
		})
	}
}

func TestEncodeTypingResult(t *testing.T) {
	res := &TypingResult{
		Parsed: true,
		Expr:   richtext.Plain("1"),
		Type:   richtext.Plain("int"),
		AST:    Leaf(richtext.Plain("1")),
		Proof:  Axiom(richtext.Plain("⊢ 1 : int"), richtext.Plain("Int")),
	}
	data, err := EncodeTypingResult(res)
	if err != nil {
		t.Fatalf("EncodeTypingResult() error: %v", err)
	}
	got, err := DecodeTypingResult(data)
	if err != nil {
		t.Fatalf("DecodeTypingResult() error: %v\n%s", err, data)
	}
	if diff := cmp.Diff(res, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proof.json")
	doc := ProofDocument(sampleProof())
	if err := WriteFile(path, doc); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if diff := cmp.Diff(doc, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("ReadFile() mismatch (-want +got):\n%s", diff)
	}

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("ReadFile(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}
