package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/observability"
	"github.com/matzehuels/typediagram/pkg/render/nodelink"
	"github.com/matzehuels/typediagram/pkg/render/sink"
)

// Render generates output artifacts in the requested formats without
// consulting the cache. opts must have been validated for rendering.
func Render(ctx context.Context, d *layout.Drawing, opts Options) (artifacts map[string][]byte, err error) {
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	if err := d.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid drawing")
	}

	svgOpts := buildSVGOptions(opts)
	artifacts = make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(d, svgOpts...)
		case FormatPNG:
			var pngOpts []sink.PNGOption
			pngOpts, err = buildPNGOptions(opts, svgOpts)
			if err == nil {
				data, err = sink.RenderPNG(ctx, d, pngOpts...)
			}
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, d, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(d)
		default:
			return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported drawing format: %s", format)
		}

		if err != nil {
			return nil, renderErr(format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// RenderNodelink draws tree as a Graphviz node-link diagram.
// The "dot" format returns the Graphviz source itself.
func (r *Runner) RenderNodelink(ctx context.Context, tree *diagram.TreeNode, opts Options) (artifacts map[string][]byte, err error) {
	if tree == nil {
		return nil, errs.New(errs.ErrCodeInvalidDocument, "$.ast: missing tree")
	}
	opts.Nodelink = true
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	dot := nodelink.ToDOT(tree, nodelink.Options{FontSize: opts.Typography.Size})
	artifacts = make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		default:
			return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, renderErr(format, err)
		}
		artifacts[format] = data
	}

	opts.Logger.Debug("rendered node-link diagram", "nodes", tree.Count(), "formats", opts.Formats)
	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{
		sink.WithTypography(opts.Typography),
		sink.WithStroke(opts.Stroke, opts.Metrics.LineThickness),
	}
	if opts.EmbedFonts {
		svgOpts = append(svgOpts, sink.WithEmbeddedFonts())
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}
	return svgOpts
}

// buildPNGOptions builds PNG options. The native rasterizer needs a parsed
// background; rsvg takes the SVG options as they are.
func buildPNGOptions(opts Options, svgOpts []sink.SVGOption) ([]sink.PNGOption, error) {
	pngOpts := []sink.PNGOption{
		sink.WithScale(opts.Scale),
		sink.WithPNGTypography(opts.Typography),
		sink.WithLineWidth(opts.Metrics.LineThickness),
	}
	if opts.RSVG {
		return append(pngOpts, sink.WithRSVG(), sink.WithPNGSVGOptions(svgOpts...)), nil
	}
	if opts.Background != "" {
		c, err := sink.ParseColor(opts.Background)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "background")
		}
		pngOpts = append(pngOpts, sink.WithPNGBackground(c))
	}
	return pngOpts, nil
}

func renderErr(format string, err error) error {
	if errs.GetCode(err) != "" {
		return err
	}
	return errs.Wrap(errs.ErrCodeRenderFailed, err, "render %s", format)
}
