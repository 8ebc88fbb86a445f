package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typediagram/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout, artifact and typing cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached entries of the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Cache
			if cfg.Dir == "" {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				cfg.Dir = dir
			}

			store, err := cache.Open(cmd.Context(), cfg)
			if err != nil {
				return wrapErr("open cache", err)
			}
			defer store.Close()

			ui := newPrinter(cmd.OutOrStdout())
			clearer, ok := store.(cache.Clearer)
			if !ok {
				ui.info("Cache backend %q cannot be cleared", cfg.Backend)
				return nil
			}
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				return wrapErr("clear cache", err)
			}

			if count == 0 {
				ui.info("Cache is empty")
				return nil
			}
			ui.success("Cleared %d cached entries", count)
			if cfg.Backend == "" || cfg.Backend == cache.BackendFile {
				ui.detail("Directory: %s", cfg.Dir)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cfg.Cache.Dir
			if dir == "" {
				var err error
				if dir, err = cacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
