package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// object is a JSON object whose values are decoded lazily so that every
// error can name the path it occurred at.
type object map[string]json.RawMessage

func structural(path, msg string) error {
	return errs.New(errs.ErrCodeInvalidDocument, "%s: %s", path, msg)
}

func invalidStyle(path string, err error) error {
	return errs.Wrap(errs.ErrCodeInvalidStyle, err, "%s", path)
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeObject(path string, raw json.RawMessage) (object, error) {
	if isNull(raw) {
		return nil, structural(path, "null object")
	}
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, structural(path, "expected object")
	}
	return o, nil
}

func decodeArray(path string, raw json.RawMessage) ([]json.RawMessage, error) {
	if isNull(raw) {
		return nil, structural(path, "null array")
	}
	var a []json.RawMessage
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, structural(path, "expected array")
	}
	return a, nil
}

func decodeString(path string, raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", structural(path, "expected string")
	}
	return s, nil
}

// field returns the first present key among names.
func (o object) field(names ...string) (string, json.RawMessage, bool) {
	for _, n := range names {
		if raw, ok := o[n]; ok {
			return n, raw, true
		}
	}
	return "", nil, false
}

// DecodeRun parses a styled run: an array of {text, style} segments.
func DecodeRun(data []byte) (richtext.Run, error) {
	return decodeRun("$", data)
}

func decodeRun(path string, raw json.RawMessage) (richtext.Run, error) {
	if isNull(raw) {
		return nil, structural(path, "null run")
	}
	items, err := decodeArray(path, raw)
	if err != nil {
		return nil, err
	}
	run := make(richtext.Run, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		o, err := decodeObject(p, item)
		if err != nil {
			return nil, err
		}
		textRaw, ok := o["text"]
		if !ok {
			return nil, structural(p, "missing text")
		}
		text, err := decodeString(p+".text", textRaw)
		if err != nil {
			return nil, err
		}
		style := richtext.StyleNormal
		if styleRaw, ok := o["style"]; ok && !isNull(styleRaw) {
			s, err := decodeString(p+".style", styleRaw)
			if err != nil {
				return nil, err
			}
			if style, err = richtext.ParseStyle(s); err != nil {
				return nil, invalidStyle(p+".style", err)
			}
		}
		run = append(run, richtext.Segment{Text: text, Style: style})
	}
	return run, nil
}

func requireRun(path string, o object, names ...string) (richtext.Run, error) {
	name, raw, ok := o.field(names...)
	if !ok {
		return nil, structural(path, fmt.Sprintf("missing %s", names[0]))
	}
	return decodeRun(path+"."+name, raw)
}

// DecodeTree parses an AST node and its descendants.
func DecodeTree(data []byte) (*TreeNode, error) {
	return decodeTree("$", data)
}

func decodeTree(path string, raw json.RawMessage) (*TreeNode, error) {
	o, err := decodeObject(path, raw)
	if err != nil {
		return nil, err
	}
	label, err := requireRun(path, o, "node")
	if err != nil {
		return nil, err
	}

	kind := ""
	if kindRaw, ok := o["kind"]; ok {
		if kind, err = decodeString(path+".kind", kindRaw); err != nil {
			return nil, err
		}
	}
	childrenRaw, hasChildren := o["children"]

	switch kind {
	case "leaf":
		if hasChildren && !isNull(childrenRaw) {
			items, err := decodeArray(path+".children", childrenRaw)
			if err != nil {
				return nil, err
			}
			if len(items) > 0 {
				return nil, structural(path+".children", "leaf node has children")
			}
		}
		return &TreeNode{Label: label}, nil
	case "tree", "":
		if !hasChildren {
			return nil, structural(path, "missing children")
		}
	default:
		return nil, structural(path+".kind", fmt.Sprintf("unknown node kind %q (must be tree or leaf)", kind))
	}

	items, err := decodeArray(path+".children", childrenRaw)
	if err != nil {
		return nil, err
	}
	node := &TreeNode{Label: label}
	if len(items) > 0 {
		node.Children = make([]*TreeNode, len(items))
	}
	for i, item := range items {
		if node.Children[i], err = decodeTree(fmt.Sprintf("%s.children[%d]", path, i), item); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// DecodeProof parses a proof node and its premises.
func DecodeProof(data []byte) (*ProofNode, error) {
	return decodeProof("$", data)
}

func decodeProof(path string, raw json.RawMessage) (*ProofNode, error) {
	o, err := decodeObject(path, raw)
	if err != nil {
		return nil, err
	}
	conclusion, err := requireRun(path, o, "conclusion", "typedExpr")
	if err != nil {
		return nil, err
	}
	rule, err := requireRun(path, o, "rule")
	if err != nil {
		return nil, err
	}
	name, parentsRaw, ok := o.field("parents", "premises")
	if !ok {
		return nil, structural(path, "missing parents")
	}
	items, err := decodeArray(path+"."+name, parentsRaw)
	if err != nil {
		return nil, err
	}
	node := &ProofNode{Conclusion: conclusion, Rule: rule}
	if len(items) > 0 {
		node.Premises = make([]*ProofNode, len(items))
	}
	for i, item := range items {
		if node.Premises[i], err = decodeProof(fmt.Sprintf("%s.%s[%d]", path, name, i), item); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// DecodeEquations parses a unification report.
func DecodeEquations(data []byte) ([]Equation, error) {
	return decodeEquations("$", data)
}

func decodeEquations(path string, raw json.RawMessage) ([]Equation, error) {
	items, err := decodeArray(path, raw)
	if err != nil {
		return nil, err
	}
	eqs := make([]Equation, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		o, err := decodeObject(p, item)
		if err != nil {
			return nil, err
		}
		if eqs[i].LHS, err = requireRun(p, o, "lhs"); err != nil {
			return nil, err
		}
		if eqs[i].Relation, err = requireRun(p, o, "relation", "eq"); err != nil {
			return nil, err
		}
		if eqs[i].RHS, err = requireRun(p, o, "rhs"); err != nil {
			return nil, err
		}
	}
	return eqs, nil
}

// DecodeTypingResult parses the inference engine's response. A result with
// parsed=false needs only the error message.
func DecodeTypingResult(data []byte) (*TypingResult, error) {
	o, err := decodeObject("$", data)
	if err != nil {
		return nil, err
	}
	parsedRaw, ok := o["parsed"]
	if !ok {
		return nil, structural("$", "missing parsed")
	}
	var res TypingResult
	if err := json.Unmarshal(parsedRaw, &res.Parsed); err != nil {
		return nil, structural("$.parsed", "expected boolean")
	}
	if errRaw, ok := o["error"]; ok && !isNull(errRaw) {
		if res.Error, err = decodeString("$.error", errRaw); err != nil {
			return nil, err
		}
	}
	if !res.Parsed {
		return &res, nil
	}

	if res.Expr, err = requireRun("$", o, "expr"); err != nil {
		return nil, err
	}
	if res.Type, err = requireRun("$", o, "type"); err != nil {
		return nil, err
	}
	astRaw, ok := o["ast"]
	if !ok {
		return nil, structural("$", "missing ast")
	}
	if res.AST, err = decodeTree("$.ast", astRaw); err != nil {
		return nil, err
	}
	proofRaw, ok := o["proof"]
	if !ok {
		return nil, structural("$", "missing proof")
	}
	if res.Proof, err = decodeProof("$.proof", proofRaw); err != nil {
		return nil, err
	}
	unifRaw, ok := o["unification"]
	if !ok {
		return nil, structural("$", "missing unification")
	}
	if res.Unification, err = decodeEquations("$.unification", unifRaw); err != nil {
		return nil, err
	}
	return &res, nil
}

// Decode parses a document envelope:
//
//	{"kind": "text",        "text": run}
//	{"kind": "ast",         "ast": node}
//	{"kind": "proof",       "proof": node}
//	{"kind": "unification", "unification": [equation...]}
//	{"kind": "inference",   "proof": node, "unification": [equation...]}
//
// A bare AST node ("kind": "tree" or "leaf") is accepted as an ast document.
func Decode(data []byte) (Document, error) {
	o, err := decodeObject("$", data)
	if err != nil {
		return Document{}, err
	}
	kindRaw, ok := o["kind"]
	if !ok {
		return Document{}, structural("$", "missing kind")
	}
	name, err := decodeString("$.kind", kindRaw)
	if err != nil {
		return Document{}, err
	}
	if name == "tree" || name == "leaf" {
		tree, err := decodeTree("$", data)
		if err != nil {
			return Document{}, err
		}
		return ASTDocument(tree), nil
	}
	kind, err := ParseKind(name)
	if err != nil {
		return Document{}, errs.Wrap(errs.ErrCodeInvalidDocument, err, "$.kind")
	}

	doc := Document{Kind: kind}
	member := func(key string) (json.RawMessage, error) {
		raw, ok := o[key]
		if !ok {
			return nil, structural("$", "missing "+key)
		}
		return raw, nil
	}

	switch kind {
	case KindText:
		raw, err := member("text")
		if err != nil {
			return Document{}, err
		}
		doc.Text, err = decodeRun("$.text", raw)
		if err != nil {
			return Document{}, err
		}
	case KindAST:
		raw, err := member("ast")
		if err != nil {
			return Document{}, err
		}
		if doc.Tree, err = decodeTree("$.ast", raw); err != nil {
			return Document{}, err
		}
	case KindProof:
		raw, err := member("proof")
		if err != nil {
			return Document{}, err
		}
		if doc.Proof, err = decodeProof("$.proof", raw); err != nil {
			return Document{}, err
		}
	case KindUnification:
		raw, err := member("unification")
		if err != nil {
			return Document{}, err
		}
		if doc.Equations, err = decodeEquations("$.unification", raw); err != nil {
			return Document{}, err
		}
	case KindInference:
		raw, err := member("proof")
		if err != nil {
			return Document{}, err
		}
		if doc.Proof, err = decodeProof("$.proof", raw); err != nil {
			return Document{}, err
		}
		if raw, err = member("unification"); err != nil {
			return Document{}, err
		}
		if doc.Equations, err = decodeEquations("$.unification", raw); err != nil {
			return Document{}, err
		}
	}
	return doc, nil
}

// ReadDocument decodes a document from r.
func ReadDocument(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	return Decode(data)
}
