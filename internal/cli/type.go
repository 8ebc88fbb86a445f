package cli

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/infer"
	"github.com/matzehuels/typediagram/pkg/pipeline"
)

// typingFile is the name of the raw engine answer written by --save-result.
const typingFile = "typing.json"

// typeOpts holds the command-line flags for the type command.
type typeOpts struct {
	sample     string
	panels     string
	outDir     string
	engine     string
	nodelink   bool
	saveResult bool
	pick       bool
	noCache    bool
}

// typeCommand creates the type command, which asks the inference engine for
// the typing of an expression and draws every panel of the answer.
func (c *CLI) typeCommand() *cobra.Command {
	var (
		flags renderFlags
		o     typeOpts
	)

	cmd := &cobra.Command{
		Use:   "type [expression]",
		Short: "Infer the type of an expression and draw its panels",
		Long: `Infer the type of an expression and draw its panels.

The expression is sent to the configured type inference engine. Its answer
is drawn as four panels: the expression itself (expr), the inferred type
(type), the abstract syntax tree (ast) and the typing derivation together
with its unification constraints (inference). Each panel is written as
<output>/<panel>.<format>.

A backslash or ¥ may be typed in place of λ. Use --sample to pick one of the
built-in example programs ('typediagram samples' lists them). Without an
expression on an interactive terminal, a picker opens.`,
		Example: `  typediagram type '\x.y.x'
  typediagram type --sample arithmetic-1 -f svg,png -o out
  typediagram type --sample fst --panels ast --nodelink`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, err := c.resolveExpression(args, o.sample)
			if err != nil {
				return err
			}
			if expr == "" {
				return nil
			}

			opts := c.baseOptions()
			flags.apply(&opts)
			opts.Nodelink = o.nodelink
			if o.panels != "" {
				opts.Panels = splitList(o.panels)
			} else if o.pick && isTerminal(os.Stdin) {
				panels, ok, err := pickPanels()
				if err != nil || !ok {
					return err
				}
				opts.Panels = panels
			}
			return c.runType(cmd.Context(), expr, opts, o)
		},
	}

	cmd.Flags().StringVar(&o.sample, "sample", "", "use a built-in example program by name")
	cmd.Flags().StringVar(&o.panels, "panels", "", "panels to draw: expr, type, ast, inference (comma-separated, default all)")
	cmd.Flags().BoolVar(&o.pick, "pick-panels", false, "choose panels interactively")
	cmd.Flags().StringVarP(&o.outDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&o.engine, "engine", "", "inference engine URL (default from config)")
	cmd.Flags().BoolVar(&o.nodelink, "nodelink", false, "draw the ast panel as a graphviz node-link diagram")
	cmd.Flags().BoolVar(&o.saveResult, "save-result", false, "also write the engine answer to <output>/"+typingFile)
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// resolveExpression picks the expression from the argument, --sample, or
// the interactive picker. An empty result without error means the user quit.
func (c *CLI) resolveExpression(args []string, sample string) (string, error) {
	switch {
	case len(args) == 1 && sample != "":
		return "", errs.New(errs.ErrCodeInvalidInput, "give either an expression or --sample, not both")
	case len(args) == 1:
		return args[0], nil
	case sample != "":
		s, ok := infer.LookupSample(sample)
		if !ok {
			return "", errs.New(errs.ErrCodeNotFound, "unknown sample %q (see '%s samples')", sample, appName)
		}
		return s.Expression, nil
	case !isTerminal(os.Stdin):
		return "", errs.New(errs.ErrCodeInvalidInput, "no expression given")
	}

	final, err := tea.NewProgram(NewSampleListModel(infer.Samples)).Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(SampleListModel)
	if !ok || m.Selected == nil {
		newPrinter(c.out).info("No sample selected")
		return "", nil
	}
	return m.Selected.Expression, nil
}

// pickPanels runs the panel picker. ok is false when the user quit.
func pickPanels() ([]string, bool, error) {
	final, err := tea.NewProgram(NewPanelPickerModel()).Run()
	if err != nil {
		return nil, false, err
	}
	m, ok := final.(PanelPickerModel)
	if !ok || !m.Done {
		return nil, false, nil
	}
	return m.Selection(), true, nil
}

// runType types the expression and writes one file per panel and format.
func (c *CLI) runType(ctx context.Context, expr string, opts pipeline.Options, o typeOpts) error {
	if err := errs.ValidateExpression(infer.NormalizeExpression(expr)); err != nil {
		return err
	}

	typer, err := c.newTyper(o.engine)
	if err != nil {
		return wrapErr("initialize engine client", err)
	}
	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return wrapErr("initialize runner", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, c.stderr(), "Typing "+infer.NormalizeExpression(expr)+"...")
	spinner.Start()

	prog := newProgress(c.Logger, "typing")
	result, err := runner.Typing(ctx, typer, expr, opts)
	if err != nil {
		spinner.StopWithError("Typing failed")
		if errs.Is(err, errs.ErrCodeExpressionRejected) {
			return err
		}
		return wrapErr("type", err)
	}
	spinner.Stop()
	prog.done("expression", result.Expression, "panels", len(result.Panels), "cached", result.CacheInfo.TypingHit)

	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return wrapErr("create output directory", err)
	}

	var written []string
	for _, p := range result.Panels {
		for format, data := range p.Result.Artifacts {
			name := p.Name + "." + format
			if err := errs.ValidateOutputName(name); err != nil {
				return err
			}
			path := filepath.Join(o.outDir, name)
			if err := writeArtifact(path, nil, data); err != nil {
				return err
			}
			written = append(written, path)
		}
	}
	if o.saveResult {
		data, err := diagram.EncodeTypingResult(result.Typing)
		if err != nil {
			return wrapErr("encode typing result", err)
		}
		path := filepath.Join(o.outDir, typingFile)
		if err := writeArtifact(path, nil, append(data, '\n')); err != nil {
			return err
		}
		written = append(written, path)
	}

	cached := ""
	if result.CacheInfo.TypingHit {
		cached = " (cached)"
	}
	ui := newPrinter(c.out)
	ui.success("Typed %s%s", result.Expression, cached)
	ui.keyValue("Type", result.Typing.Type.String())
	ui.keyValue("Engine", formatDuration(result.TypingTime))
	slices.Sort(written)
	for _, path := range written {
		ui.file(path)
	}
	return nil
}

// splitList splits a comma-separated flag value.
func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
