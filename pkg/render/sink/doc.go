// Package sink provides output format renderers for laid-out drawings.
//
// # Overview
//
// A "sink" transforms a computed [layout.Drawing] into a final output format.
// This package provides renderers for:
//
//   - SVG: Scalable vector graphics, one <tspan> per styled segment
//   - PNG: Raster image output, drawn natively or through rsvg-convert
//   - PDF: Print-ready output (requires rsvg-convert)
//   - JSON: The drawing itself, for caching and round-trip rendering
//
// # SVG Output
//
// [RenderSVG] writes each text item as a <text> element positioned at the
// item's anchor. Segments become tspans: italic segments get
// font-style="italic", subscripts are drawn smaller below the baseline, and
// middle segments are drawn smaller and centered on the item's top line.
//
//	svg := sink.RenderSVG(d,
//	    sink.WithEmbeddedFonts(),
//	    sink.WithBackground("white"),
//	)
//
// # SVG Options
//
//   - [WithFontFamily]: CSS font-family for all text
//   - [WithEmbeddedFonts]: Inline the Go faces the layout was measured with
//   - [WithStroke]: Line colour and width
//   - [WithTextColor]: Fill colour for text
//   - [WithBackground]: Fill the canvas before drawing
//   - [WithTypography]: Font sizes and offsets (must match the measurer)
//
// Rendering never changes geometry. Fonts and colours are pure styling; the
// positions come from the drawing.
package sink
