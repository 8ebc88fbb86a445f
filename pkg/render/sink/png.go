package sink

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/render"
	"github.com/matzehuels/typediagram/pkg/render/raster"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts    []SVGOption
	viaSVG     bool
	scale      float64
	typo       measure.Typography
	lineWidth  float64
	background color.Color
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer
// when the PNG is produced with rsvg-convert.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithRSVG renders the PNG by converting SVG output with rsvg-convert
// instead of rasterizing natively.
func WithRSVG() PNGOption { return func(r *pngRenderer) { r.viaSVG = true } }

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGTypography sets the font sizes used by the native rasterizer.
func WithPNGTypography(t measure.Typography) PNGOption {
	return func(r *pngRenderer) { r.typo = t }
}

// WithLineWidth sets the stroke width used by the native rasterizer.
func WithLineWidth(w float64) PNGOption { return func(r *pngRenderer) { r.lineWidth = w } }

// WithPNGBackground sets the native raster background.
func WithPNGBackground(c color.Color) PNGOption { return func(r *pngRenderer) { r.background = c } }

// WithTransparent leaves the native raster background transparent.
func WithTransparent() PNGOption { return func(r *pngRenderer) { r.background = nil } }

// RenderPNG renders the drawing as PNG. By default the drawing is rasterized
// in-process; [WithRSVG] converts SVG output with rsvg-convert instead.
func RenderPNG(ctx context.Context, d *layout.Drawing, opts ...PNGOption) ([]byte, error) {
	def := raster.DefaultOptions()
	r := pngRenderer{
		scale:      def.Scale,
		typo:       def.Typography,
		lineWidth:  def.LineWidth,
		background: def.Background,
	}
	for _, opt := range opts {
		opt(&r)
	}

	if r.viaSVG {
		svg := RenderSVG(d, r.svgOpts...)
		return render.ToPNG(ctx, svg, r.scale)
	}

	var buf bytes.Buffer
	err := raster.EncodePNG(&buf, d, raster.Options{
		Scale:      r.scale,
		LineWidth:  r.lineWidth,
		Typography: r.typo,
		Foreground: def.Foreground,
		Background: r.background,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var namedColors = map[string]color.Color{
	"black":       color.Black,
	"white":       color.White,
	"transparent": color.Transparent,
}

// ParseColor converts a CSS-style colour ("#rgb", "#rrggbb", "black",
// "white" or "transparent") for the native rasterizer.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 3 && len(hex) != 6) {
		return nil, fmt.Errorf("unsupported colour %q (use #rgb, #rrggbb, black, white or transparent)", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("unsupported colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
