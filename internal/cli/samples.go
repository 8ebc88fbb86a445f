package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/typediagram/pkg/infer"
)

// samplesCommand lists the built-in example programs.
func (c *CLI) samplesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "samples",
		Short: "List the built-in example programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infer.Samples)
			}

			nameStyle := lipgloss.NewStyle().Foreground(colorCyan)
			exprStyle := lipgloss.NewStyle().Foreground(colorWhite)
			width := 0
			for _, s := range infer.Samples {
				width = max(width, len(infer.SampleSlug(s.Name)))
			}
			for _, s := range infer.Samples {
				slug := fmt.Sprintf("%-*s", width, infer.SampleSlug(s.Name))
				fmt.Fprintf(out, "  %s  %s\n", nameStyle.Render(slug), exprStyle.Render(s.Expression))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, StyleDim.Render("  Use: "+appName+" type --sample <name>"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
