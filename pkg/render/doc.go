// Package render turns laid-out drawings into files.
//
// # Overview
//
// Layout (pkg/layout) produces a [layout.Drawing]: a display list of styled
// text runs and line segments. This package and its subpackages serialize
// that display list:
//
//   - Format conversion from SVG to PDF/PNG (this package)
//   - SVG, PNG, PDF and JSON sinks (in [sink] subpackage)
//   - Native rasterization without external tools (in [raster] subpackage)
//   - Node-link views of ASTs through Graphviz (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(d, sink.WithEmbeddedFonts())
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// When rsvg-convert is missing the functions return an UNSUPPORTED error;
// PNG output can fall back to [raster], which needs no external tools.
//
// [sink]: github.com/matzehuels/typediagram/pkg/render/sink
// [raster]: github.com/matzehuels/typediagram/pkg/render/raster
// [nodelink]: github.com/matzehuels/typediagram/pkg/render/nodelink
package render
