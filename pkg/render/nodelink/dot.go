package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/render"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Boxed draws every node as a rounded box. When false, nodes are bare
	// labels which reads closer to the tidy tree drawing.
	Boxed bool

	// FontSize is the label size in points. Zero uses 24.
	FontSize float64
}

const defaultFontSize = 24

// ToDOT converts a tree to Graphviz DOT format. Node IDs are assigned in
// pre-order so the output is deterministic. A nil tree yields an empty graph.
func ToDOT(t *diagram.TreeNode, opts Options) string {
	size := opts.FontSize
	if size <= 0 {
		size = defaultFontSize
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  ordering=out;\n")
	if opts.Boxed {
		fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=%s, margin=\"0.2,0.1\"];\n", fmtNum(size))
	} else {
		fmt.Fprintf(&buf, "  node [shape=plaintext, fontsize=%s, margin=\"0.05,0.02\"];\n", fmtNum(size))
	}
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")

	if t != nil {
		buf.WriteString("\n")
		var next int
		writeNode(&buf, t, &next, size)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeNode emits t and its subtree and returns t's node ID.
func writeNode(buf *bytes.Buffer, t *diagram.TreeNode, next *int, size float64) string {
	id := "n" + strconv.Itoa(*next)
	*next++
	fmt.Fprintf(buf, "  %s [label=<%s>];\n", id, htmlLabel(t.Label, size))
	for _, c := range t.Children {
		cid := writeNode(buf, c, next, size)
		fmt.Fprintf(buf, "  %s -> %s;\n", id, cid)
	}
	return id
}

// htmlLabel converts a run to a Graphviz HTML-like label body.
func htmlLabel(run richtext.Run, size float64) string {
	if run.IsEmpty() {
		return " "
	}
	var b strings.Builder
	for _, seg := range run {
		text := escapeHTML(seg.Text)
		switch seg.Style {
		case richtext.StyleItalic:
			b.WriteString("<I>" + text + "</I>")
		case richtext.StyleSubscript:
			b.WriteString("<SUB>" + text + "</SUB>")
		case richtext.StyleMiddle:
			fmt.Fprintf(&b, `<FONT POINT-SIZE="%s">%s</FONT>`, fmtNum(size*2/3), text)
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeHTML(s string) string { return htmlEscaper.Replace(s) }

func fmtNum(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderFailed, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeRenderFailed, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the SVG scales like the sink renderer's output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
