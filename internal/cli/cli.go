package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/typediagram/pkg/buildinfo"
	"github.com/matzehuels/typediagram/pkg/cache"
	"github.com/matzehuels/typediagram/pkg/config"
	"github.com/matzehuels/typediagram/pkg/infer"
	"github.com/matzehuels/typediagram/pkg/observability"
	"github.com/matzehuels/typediagram/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "typediagram"

	// envConfig names a config file used when --config is not given.
	envConfig = "TYPEDIAGRAM_CONFIG"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        config.Config

	// out and errOut are the running command's writers, set in setup.
	out, errOut io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "typediagram draws syntax trees, typing derivations and unification constraints",
		Long: `typediagram lays out the diagrams of a typed lambda calculus (abstract syntax
trees, natural-deduction typing proofs and unification equations) and renders them
to SVG, PNG, PDF or a JSON drawing. It can also ask a type inference engine for the
typing of an expression and draw every panel of the answer.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (.toml, .yaml); default $"+envConfig)

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.typeCommand())
	root.AddCommand(c.samplesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it applies --verbose and loads the config.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.NewLogHooks(c.Logger).Install()
	}
	c.out, c.errOut = cmd.OutOrStdout(), cmd.ErrOrStderr()

	path := c.configPath
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path == "" {
		return nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// status returns the printer for status lines. When the artifact itself goes
// to stdout the status lines go to stderr instead.
func (c *CLI) status(output string) *printer {
	if output == "-" {
		return newPrinter(c.stderr())
	}
	return newPrinter(c.out)
}

func (c *CLI) stderr() io.Writer {
	if c.errOut == nil {
		return os.Stderr
	}
	return c.errOut
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	measurer, err := c.cfg.RunnerOption()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger, measurer), nil
}

// openCache opens the configured cache. A cache that cannot be opened is
// logged and replaced by no cache at all.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cfg := c.cfg.Cache
	if cfg.Dir == "" {
		if dir, err := cacheDir(); err == nil {
			cfg.Dir = dir
		}
	}
	store, err := cache.Open(ctx, cfg)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}

// newTyper creates the inference engine client.
func (c *CLI) newTyper(engineURL string) (*infer.Client, error) {
	if engineURL == "" {
		engineURL = c.cfg.Engine.URL
	}
	return infer.NewClient(engineURL,
		infer.WithTimeout(c.cfg.Engine.Timeout),
		infer.WithRetries(c.cfg.Engine.Retries, infer.DefaultRetryDelay),
		infer.WithLogger(c.Logger),
	)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/typediagram/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions returns the configured pipeline options with the CLI logger.
func (c *CLI) baseOptions() pipeline.Options {
	opts := c.cfg.PipelineOptions()
	opts.Logger = c.Logger
	return opts
}

// renderFlags are the artifact flags shared by render, visualize and type.
type renderFlags struct {
	formats    string
	scale      float64
	background string
	embedFonts bool
	rsvg       bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().Float64Var(&f.scale, "scale", 0, "PNG scale factor (default from config, 2)")
	cmd.Flags().StringVar(&f.background, "background", "", "background colour (default transparent SVG, white PNG)")
	cmd.Flags().BoolVar(&f.embedFonts, "embed-fonts", false, "embed the measuring fonts in SVG output")
	cmd.Flags().BoolVar(&f.rsvg, "rsvg", false, "rasterize PNG with rsvg-convert instead of natively")
}

// apply overrides opts with the flags that were set.
func (f *renderFlags) apply(opts *pipeline.Options) {
	if f.formats != "" {
		opts.Formats = parseFormats(f.formats)
	}
	if f.scale != 0 {
		opts.Scale = f.scale
	}
	if f.background != "" {
		opts.Background = f.background
	}
	opts.EmbedFonts = opts.EmbedFonts || f.embedFonts
	opts.RSVG = opts.RSVG || f.rsvg
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return splitList(s)
}

// wrapErr adds context for the user without hiding the error code.
func wrapErr(action string, err error) error {
	return fmt.Errorf("%s: %w", action, err)
}
