package cli

import (
	"fmt"
	"io"

	"github.com/platinummonkey/capsync/pkg/plugins"
	"github.com/spf13/cobra"
)

// newListCommand creates the list command
func newListCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed plugins and how they integrate",
		Long: `List the plugins installed in the project with their integration
category for the target platform. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.applyPlatform(cmd); err != nil {
				return err
			}
			discovery, err := g.discover(cmd.Context())
			if err != nil {
				return err
			}
			printPlugins(cmd.OutOrStdout(), g.cfg.Platform, discovery)
			return nil
		},
	}

	cmd.Flags().String("platform", "android", "Target platform")

	return cmd
}

// printPlugins writes the plugin table
func printPlugins(w io.Writer, platform string, d *plugins.Discovery) {
	if len(d.Plugins) == 0 && len(d.Skipped) == 0 {
		render(w, mutedStyle.Render("No plugins installed."))
		return
	}

	idWidth := len("PLUGIN")
	for _, m := range d.Plugins {
		idWidth = max(idWidth, len(m.ID))
	}
	for _, s := range d.Skipped {
		idWidth = max(idWidth, len(s.ID))
	}

	lines := []string{
		titleStyle.Render(fmt.Sprintf("Plugins for %s", platform)),
		"",
		headerStyle.Render(fmt.Sprintf("%-*s │ %-10s │ %s", idWidth, "PLUGIN", "VERSION", "CATEGORY")),
	}
	for _, m := range d.Plugins {
		category := plugins.Classify(m, platform)
		row := fmt.Sprintf("%-*s │ %-10s │ %s", idWidth, m.ID, m.Version, category)
		if category == plugins.CategoryUnsupported {
			row = mutedStyle.Render(row)
		}
		lines = append(lines, row)
	}
	for _, s := range d.Skipped {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%-*s │ %-10s │ invalid: %v", idWidth, s.ID, "", s.Err)))
	}

	render(w, lines...)
}
