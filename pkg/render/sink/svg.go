package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/typediagram/pkg/fonts"
	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	fontFamily  string
	embedFonts  bool
	stroke      string
	strokeWidth float64
	textColor   string
	background  string
	typo        measure.Typography
}

// WithFontFamily sets the CSS font-family of every text element.
func WithFontFamily(family string) SVGOption { return func(r *svgRenderer) { r.fontFamily = family } }

// WithEmbeddedFonts inlines the embedded Go faces as @font-face rules so the
// output renders with the faces it was measured with.
func WithEmbeddedFonts() SVGOption { return func(r *svgRenderer) { r.embedFonts = true } }

// WithStroke sets the colour and width of lines.
func WithStroke(color string, width float64) SVGOption {
	return func(r *svgRenderer) { r.stroke, r.strokeWidth = color, width }
}

// WithTextColor sets the fill colour of text.
func WithTextColor(color string) SVGOption { return func(r *svgRenderer) { r.textColor = color } }

// WithBackground fills the canvas with color. Empty leaves it transparent.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithTypography sets font sizes and baseline offsets. Use the typography
// the drawing was measured with.
func WithTypography(t measure.Typography) SVGOption { return func(r *svgRenderer) { r.typo = t } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		fontFamily:  fonts.FallbackFontFamily,
		stroke:      "black",
		strokeWidth: 2,
		textColor:   "black",
		typo:        measure.DefaultTypography(),
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders the drawing as a standalone SVG document.
func RenderSVG(d *layout.Drawing, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%s" height="%s">`+"\n",
		num(d.Width), num(d.Height), num(d.Width), num(d.Height))

	if r.embedFonts {
		renderFontFaces(&buf)
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
			num(d.Width), num(d.Height), escapeXML(r.background))
	}

	if len(d.Texts) > 0 {
		fmt.Fprintf(&buf, `  <g font-family="%s" font-size="%s" fill="%s">`+"\n",
			escapeXML(r.fontFamily), num(r.typo.Size), escapeXML(r.textColor))
		for _, t := range d.Texts {
			r.renderText(&buf, t)
		}
		buf.WriteString("  </g>\n")
	}

	if len(d.Lines) > 0 {
		fmt.Fprintf(&buf, `  <g stroke="%s" stroke-width="%s" stroke-linecap="round">`+"\n",
			escapeXML(r.stroke), num(r.strokeWidth))
		for _, l := range d.Lines {
			fmt.Fprintf(&buf, `    <line x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n",
				num(l.X1), num(l.Y1), num(l.X2), num(l.Y2))
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderText writes one text item. Each tspan carries its own y, so a
// subscript or middle segment never shifts the segments after it.
func (r *svgRenderer) renderText(buf *bytes.Buffer, t layout.TextItem) {
	fmt.Fprintf(buf, `    <text text-anchor="%s" x="%s" y="%s" xml:space="preserve">`,
		t.Anchor, num(t.X), num(t.Y+r.typo.BaselineOffset))
	for _, seg := range t.Run {
		buf.WriteString("<tspan")
		switch seg.Style {
		case richtext.StyleItalic:
			buf.WriteString(` font-style="italic"`)
			fmt.Fprintf(buf, ` y="%s"`, num(t.Y+r.typo.BaselineOffset))
		case richtext.StyleSubscript:
			fmt.Fprintf(buf, ` font-size="%s" y="%s"`,
				num(r.typo.SubscriptSize), num(t.Y+r.typo.BaselineOffset+r.typo.SubscriptDrop))
		case richtext.StyleMiddle:
			fmt.Fprintf(buf, ` font-size="%s" dominant-baseline="middle" y="%s"`,
				num(r.typo.MiddleSize), num(t.Y))
		default:
			fmt.Fprintf(buf, ` y="%s"`, num(t.Y+r.typo.BaselineOffset))
		}
		buf.WriteByte('>')
		buf.WriteString(escapeXML(seg.Text))
		buf.WriteString("</tspan>")
	}
	buf.WriteString("</text>\n")
}

func renderFontFaces(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n    <style>\n")
	fmt.Fprintf(buf, "      @font-face { font-family: '%s'; font-style: normal; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
		fonts.FontFamily, fonts.RegularTTFBase64())
	fmt.Fprintf(buf, "      @font-face { font-family: '%s'; font-style: italic; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
		fonts.FontFamily, fonts.ItalicTTFBase64())
	buf.WriteString("    </style>\n  </defs>\n")
}

// num formats a coordinate with at most two decimals and no trailing zeros.
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
