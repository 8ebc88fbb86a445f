package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typediagram/internal/server"
	"github.com/matzehuels/typediagram/pkg/config"
	"github.com/matzehuels/typediagram/pkg/infer"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		engine   string
		noEngine bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout and rendering HTTP API",
		Long: `Run the layout and rendering HTTP API.

Routes:
  GET  /healthz             liveness probe
  GET  /version             build information
  POST /v1/layout           document to JSON drawing
  POST /v1/render           document or drawing to svg, png, pdf or json
  POST /v1/nodelink         abstract syntax tree to a graphviz diagram
  GET  /v1/typing?expr=...  typing of an expression, every panel drawn

The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, engine, noEngine, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8000)")
	cmd.Flags().StringVar(&engine, "engine", "", "inference engine URL (default from config)")
	cmd.Flags().BoolVar(&noEngine, "no-engine", false, "serve without an inference engine; /v1/typing answers 502")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe builds the server and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, addr, engine string, noEngine, noCache bool) error {
	cfg := c.cfg.Server
	if addr != "" {
		cfg.Addr = addr
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultServerAddr
	}

	var typer infer.Typer
	if !noEngine {
		client, err := c.newTyper(engine)
		if err != nil {
			return wrapErr("initialize engine client", err)
		}
		typer = client
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return wrapErr("initialize runner", err)
	}
	defer runner.Close()

	srv := server.New(runner, typer, cfg,
		server.WithLogger(c.Logger),
		server.WithDefaults(c.baseOptions()),
	)

	ui := newPrinter(c.out)
	ui.success("Listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	ui.info("Server stopped")
	return nil
}
