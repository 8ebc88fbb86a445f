package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/pipeline"
)

// Visualization types accepted by render --type.
const (
	vizDrawing  = "drawing"  // measured layout painted by the sink
	vizNodelink = "nodelink" // graphviz node-link view of an AST
)

// renderCommand creates the render command: layout and render in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags   renderFlags
		vizType string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "render [document.json]",
		Short: "Lay out and render a diagram document in one step",
		Long: `Lay out and render a diagram document in one step.

This is equivalent to running 'layout' followed by 'visualize'. Use -t nodelink
to draw an abstract syntax tree with Graphviz instead of the measured layout;
node-link output supports svg, png, pdf and dot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			flags.apply(&opts)
			switch vizType {
			case "", vizDrawing:
				if err := pipeline.ValidateFormats(opts.Formats); err != nil {
					return err
				}
			case vizNodelink:
				opts.Nodelink = true
				if err := pipeline.ValidateNodelinkFormats(opts.Formats); err != nil {
					return err
				}
			default:
				return errs.New(errs.ErrCodeInvalidInput, "invalid type: %s (must be 'drawing' or 'nodelink')", vizType)
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&vizType, "type", "t", vizDrawing, "visualization type: drawing (default), nodelink")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runRender loads the document and runs the full pipeline.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	doc, err := diagram.ReadFile(input)
	if err != nil {
		return wrapErr("load document "+input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return wrapErr("initialize runner", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, c.stderr(), "Rendering "+string(doc.Kind)+"...")
	spinner.Start()

	prog := newProgress(c.Logger, "render")
	result, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return wrapErr("render", err)
	}
	spinner.Stop()
	prog.done("kind", doc.Kind, "formats", opts.Formats, "layout_cached", result.CacheInfo.LayoutHit)

	ui := c.status(output)
	if err := writeArtifacts(ui, c.out, artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}
	if result.Drawing != nil {
		ui.stats(result.Stats.NodeCount, result.Stats.Width, result.Stats.Height, result.CacheInfo.LayoutHit)
	}
	return nil
}

// artifactWriteParams describes a set of rendered artifacts to write.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
}

// writeArtifacts writes every requested format and reports each file on ui.
// A single format goes to output verbatim (or stdout when output is "-");
// several formats share the base path derived from output or input.
func writeArtifacts(ui *printer, stdout io.Writer, p artifactWriteParams) error {
	if len(p.formats) == 1 {
		format := p.formats[0]
		path := p.output
		if path == "" {
			path = basePath("", p.input) + "." + format
		}
		if err := writeArtifact(path, stdout, p.artifacts[format]); err != nil {
			return err
		}
		ui.success("Rendered %s%s", format, cachedSuffix(p.cacheHit))
		if path != "-" {
			ui.file(path)
		}
		return nil
	}

	base := basePath(p.output, p.input)
	ui.success("Rendered %s%s", strings.Join(p.formats, ", "), cachedSuffix(p.cacheHit))
	for _, format := range p.formats {
		path := base + "." + format
		if err := writeArtifact(path, stdout, p.artifacts[format]); err != nil {
			return err
		}
		ui.file(path)
	}
	return nil
}

func cachedSuffix(hit bool) string {
	if hit {
		return " (cached)"
	}
	return ""
}

func writeArtifact(path string, stdout io.Writer, data []byte) error {
	if data == nil {
		return errs.New(errs.ErrCodeRenderFailed, "no output produced for %s", path)
	}
	out, err := openOutput(path, stdout)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// knownExt reports whether ext (with dot) names an output format.
func knownExt(ext string) bool {
	switch strings.TrimPrefix(ext, ".") {
	case pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON, pipeline.FormatDOT:
		return true
	}
	return false
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	if ext := filepath.Ext(output); knownExt(ext) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for path; "-" means stdout.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "-" {
		if stdout == nil {
			stdout = os.Stdout
		}
		return nopCloser{stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}
