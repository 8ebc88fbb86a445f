// Package pkg provides the core libraries for typediagram.
//
// # Overview
//
// typediagram draws the diagrams of a typed lambda calculus: abstract syntax
// trees, natural-deduction typing derivations and unification constraints.
// The pkg directory is organized into four main areas:
//
//  1. Content - [richtext] styled runs and [diagram] documents
//  2. Geometry - [measure] text measurement and [layout] placement
//  3. Output - [render] and its sink, raster and nodelink subpackages
//  4. Plumbing - [pipeline], [cache], [infer], [config], [errors]
//
// # Architecture
//
// The typical data flow:
//
//	Expression
//	     ↓
//	[infer] package (typing from the inference engine)
//	     ↓
//	[diagram] package (text, ast, proof, unification, inference documents)
//	     ↓
//	[layout] package (measured drawing: texts and lines)
//	     ↓
//	[render/sink] package (SVG/PNG/PDF/JSON output)
//
// # Quick Start
//
// Lay out and render a syntax tree:
//
//	import (
//	    "github.com/matzehuels/typediagram/pkg/diagram"
//	    "github.com/matzehuels/typediagram/pkg/layout"
//	    "github.com/matzehuels/typediagram/pkg/measure"
//	    "github.com/matzehuels/typediagram/pkg/render/sink"
//	    "github.com/matzehuels/typediagram/pkg/richtext"
//	)
//
//	tree := diagram.Tree(richtext.Plain("App"),
//	    diagram.Leaf(richtext.Italic("f")),
//	    diagram.Leaf(richtext.Italic("x")),
//	)
//	m := measure.Approximate{Typography: measure.DefaultTypography()}
//	d, _ := layout.New(m).LayoutDocument(diagram.ASTDocument(tree))
//	svg := sink.RenderSVG(d)
//
// # Main Packages
//
// [richtext] - Runs of styled segments (normal, italic, subscript, middle),
// the unit every label is made of.
//
// [diagram] - The five document kinds, their JSON wire format and
// validation, and the typing result returned by the inference engine.
//
// [measure] - Text measurement. The font-backed measurer uses the embedded
// Go fonts from [fonts]; the approximate measurer needs no fonts at all.
//
// [layout] - Tree, proof, equation and scene layout producing a
// [layout.Drawing] display list.
//
// [render] - SVG to PDF/PNG conversion through rsvg-convert, plus the sink
// (SVG, PNG, PDF, JSON), raster (native PNG) and nodelink (Graphviz)
// subpackages.
//
// [pipeline] - Complete layout and render pipeline used by the CLI and the
// HTTP API. Ensures consistent behavior across all entry points.
//
// [infer] - Client for the type inference engine and the built-in sample
// programs.
//
// [cache] - Cache backends (file, bolt, redis, mongo) and key derivation.
//
// [config], [errors], [httputil], [observability], [buildinfo] - Shared
// configuration, coded errors, HTTP helpers, hooks and version information.
//
// # Testing
//
// Run tests:
//
//	go test ./...                       # All tests
//	go test ./pkg/layout/...            # Specific package
//	go test -run Example ./pkg/...      # Examples only
package pkg
