package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typediagram/pkg/diagram"
	"github.com/matzehuels/typediagram/pkg/layout"
)

// layoutCommand creates the layout command for computing drawings.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [document.json]",
		Short: "Compute the drawing of a diagram document",
		Long: `Compute the drawing of a diagram document.

The layout command takes a document (text, ast, proof, unification or
inference) and measures and places every label. The output is a layout.json
drawing (same format as 'render -f json') that can be rendered to SVG/PNG/PDF
with the 'visualize' command.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout loads the document, computes the drawing, and writes output.
func (c *CLI) runLayout(ctx context.Context, input, output string, noCache bool) error {
	doc, err := diagram.ReadFile(input)
	if err != nil {
		return wrapErr("load document "+input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return wrapErr("initialize runner", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, c.stderr(), "Computing "+string(doc.Kind)+" layout...")
	spinner.Start()

	prog := newProgress(c.Logger, "layout")
	d, cacheHit, err := runner.LayoutWithCacheInfo(ctx, doc, c.baseOptions())
	if err != nil {
		spinner.StopWithError("Layout failed")
		return wrapErr("compute layout", err)
	}
	spinner.Stop()
	prog.done("kind", doc.Kind, "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := layout.WriteDrawingFile(d, outputPath); err != nil {
		return wrapErr("write output "+outputPath, err)
	}

	ui := newPrinter(c.out)
	ui.success("Layout complete")
	ui.file(outputPath)
	ui.stats(countNodes(doc), d.Width, d.Height, cacheHit)
	ui.nextStep("Render", appName+" visualize "+outputPath)

	return nil
}

// countNodes is the node count shown in stats.
func countNodes(doc diagram.Document) int {
	switch {
	case doc.Kind == diagram.KindText:
		return 1
	case doc.Tree != nil:
		return doc.Tree.Count()
	case doc.Proof != nil:
		return doc.Proof.Count()
	}
	return len(doc.Equations)
}
