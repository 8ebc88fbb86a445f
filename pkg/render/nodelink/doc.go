// Package nodelink renders abstract syntax trees as Graphviz node-link
// diagrams.
//
// # Overview
//
// The tidy tree layout in [layout] is the primary way to draw an AST. This
// package is an alternative that hands the tree to Graphviz, which is useful
// for very wide trees and for feeding the DOT source into other tools.
//
// # Usage
//
// Convert a tree to DOT, then render it:
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Labels
//
// Rich-text labels become Graphviz HTML-like labels: italic segments are
// wrapped in <I>, subscripts in <SUB>, and middle segments are set at a
// smaller point size. Children keep their left-to-right order.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
