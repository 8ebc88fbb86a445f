package cli

import (
	"context"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		flags   renderFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a computed drawing to SVG, PNG or PDF",
		Long: `Render a computed drawing to SVG, PNG or PDF.

The visualize command takes a layout.json file (produced by 'layout') and
renders it. The drawing already carries every position and measured size, so
this step only paints.

Results are cached locally for faster subsequent runs.

Use 'render' as a shortcut to go directly from a document to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			flags.apply(&opts)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runVisualize loads the drawing and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	in, err := pipeline.ReadInput(input)
	if err != nil {
		return wrapErr("load layout "+input, err)
	}
	if in.Drawing == nil {
		return errs.New(errs.ErrCodeInvalidDocument, "%s is a %s document, not a drawing (use 'render' instead)", input, in.Document.Kind)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return wrapErr("initialize runner", err)
	}
	defer runner.Close()

	what := "drawing"
	if in.Drawing.Kind != "" {
		what = string(in.Drawing.Kind)
	}
	spinner := newSpinner(ctx, c.stderr(), "Rendering "+what+"...")
	spinner.Start()

	prog := newProgress(c.Logger, "visualize")
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, in.Drawing, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return wrapErr("visualize", err)
	}
	spinner.Stop()
	prog.done("formats", opts.Formats, "cached", cacheHit)

	return writeArtifacts(c.status(output), c.out, artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
		cacheHit:  cacheHit,
	})
}
