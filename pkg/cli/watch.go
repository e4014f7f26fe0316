package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/platinummonkey/capsync/pkg/watch"
	"github.com/spf13/cobra"
)

// newWatchCommand creates the watch command
func newWatchCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run update whenever the installed plugin set changes",
		Long: `Run an update, then watch package.json, the plugin install directory
and installed plugin manifests, re-running the update after each burst of
changes. Failed updates are reported and watching continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.applyPlatform(cmd); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			run := func(ctx context.Context) error {
				result, err := g.update(ctx)
				if err != nil {
					return err
				}
				printUpdate(out, result)
				return nil
			}

			w := watch.NewWatcher(g.cfg.ProjectRoot, g.cfg.ModulesPath(), run,
				&watch.Config{Debounce: g.cfg.Watch.Debounce}, g.log)
			return w.Run(ctx)
		},
	}

	cmd.Flags().String("platform", "android", "Target platform")

	return cmd
}
