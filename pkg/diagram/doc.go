// Package diagram defines the documents typediagram lays out and the JSON
// boundary they arrive through.
//
// # Model
//
// Three shapes are supported, all labelled with [richtext.Run] values:
//
//   - [TreeNode]: an abstract syntax tree growing downward
//   - [ProofNode]: a natural-deduction proof growing upward, each node
//     carrying the name of the rule that concludes it
//   - [Equation]: one "lhs relation rhs" line of a unification report
//
// A [Document] wraps exactly one of these (or a proof plus its equations, or
// a single run) and is tagged by [Kind]. Model values are never mutated by
// layout, so a parsed document can be laid out any number of times.
//
// # Wire Format
//
// The inference engine emits loosely tagged JSON: AST nodes carry
// "kind":"tree" or "kind":"leaf" in some places and are discriminated only
// by the presence of "children" in others; proof nodes use "typedExpr" for
// the conclusion and "parents" for premises; equations name the relation
// "eq". [Decode] and friends normalize all of these once, here, and reject
// anything malformed with an INVALID_DOCUMENT error naming the JSON path:
//
//	$.ast.children[1].node: missing label
//
// No field is defaulted: an untagged tree node without "children" or a
// proof node without "parents" is an error, not a leaf.
//
// [Encode] writes the canonical form (explicit kinds, "conclusion",
// "relation"), which [Decode] reads back unchanged.
package diagram
