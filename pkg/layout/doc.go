// Package layout computes the geometry of typediagram documents.
//
// # Overview
//
// Every shape is laid out in two passes over an immutable input:
//
//  1. Size (bottom-up): measure every label through the injected
//     [measure.Measurer] and compute the width and height each subtree
//     reserves. The result is a parallel Sized* structure.
//  2. Place (top-down): given an anchor, position every label and emit the
//     connecting lines. The result is a Placed* structure.
//
// Neither pass touches the input, so the same [diagram.TreeNode] or
// [diagram.ProofNode] can be laid out repeatedly and concurrently.
//
// # Shapes
//
//   - Trees grow downward. A parent is centered over its children, which
//     are packed left to right with [Metrics.SubtreeMargin] between them.
//   - Proofs grow upward. Each step draws an inference bar with its rule
//     name to the right. The bar covers the conclusion and the bars of all
//     premises placed above it, so a premise whose rule name sticks out of
//     its reserved box still sits on a bar that reaches it.
//   - Equation lists stack lhs, relation and rhs triples, aligned on the
//     relation column.
//   - A scene puts a proof above its equation list.
//
// # Output
//
// The Layout* entry points and [Engine.LayoutDocument] return a [Drawing]:
// a display list of text and line commands plus the canvas size, including
// a [Metrics.CanvasMargin] border. Renderers in pkg/render consume it.
//
//	eng := layout.New(measure.Memo(measurer))
//	d, err := eng.LayoutDocument(doc)
//	svg, err := sink.RenderSVG(d)
//
// The engine never picks fonts or colours; runs carry their styles through
// to the renderer untouched.
package layout
