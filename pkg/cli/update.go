package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/platinummonkey/capsync/pkg/fsutil"
	"github.com/platinummonkey/capsync/pkg/orchestrator"
	"github.com/platinummonkey/capsync/pkg/plugins"
	"github.com/spf13/cobra"
)

// newUpdateCommand creates the update command
func newUpdateCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Synchronize native plugin integration",
		Long: `Discover the plugins installed in the project and synthesize the native
build integration for them:

- copy bridge plugin sources, resources and libraries into the asset tree
- regenerate the module registration and dependency descriptors
- rewrite the generated regions of the shared plugin build script`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := g.applyPlatform(cmd); err != nil {
				return err
			}
			result, err := g.update(cmd.Context())
			if err != nil {
				return err
			}
			printUpdate(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().String("platform", "android", "Target platform")

	return cmd
}

// update discovers plugins and runs one synthesis pass
func (g *globals) update(ctx context.Context) (*orchestrator.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	discovery, err := g.discover(ctx)
	if err != nil {
		return nil, err
	}

	orch, err := orchestrator.NewOrchestrator(g.cfg.OrchestratorConfig(), fsutil.NewOSFS(), g.log)
	if err != nil {
		return nil, err
	}

	return orch.Update(ctx, discovery.Plugins)
}

func (g *globals) discover(ctx context.Context) (*plugins.Discovery, error) {
	loader := plugins.NewLoader(g.cfg.ProjectRoot, g.cfg.ModulesDir, g.log)
	discovery, err := loader.DiscoverPlugins(ctx)
	if err != nil {
		return nil, fmt.Errorf("plugin discovery failed: %w", err)
	}
	return discovery, nil
}

// printUpdate writes a summary of an update
func printUpdate(w io.Writer, r *orchestrator.Result) {
	c := r.Classification

	lines := []string{
		titleStyle.Render(fmt.Sprintf("Updated %s plugins", r.Platform)),
		"",
		fmt.Sprintf("%s %d", labelStyle.Render("Native modules:"), len(c.NativeModule)),
		fmt.Sprintf("%s %d", labelStyle.Render("Bridge plugins:"), len(c.BridgeCompat)),
	}
	if r.Assets != nil {
		lines = append(lines, fmt.Sprintf("%s %d", labelStyle.Render("Assets copied:"), r.Assets.FileCount()))
	}
	for _, f := range r.Descriptors {
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Wrote:"), f.Path))
	}
	lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render("Merged:"), r.BuildScript))

	if len(c.Unsupported) > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("Skipped %d plugin(s) without %s support", len(c.Unsupported), r.Platform)))
	}
	for _, name := range r.Unresolved {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("Unresolved preference $%s", name)))
	}

	render(w, lines...)
}
