package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/platinummonkey/capsync/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// globals holds the state shared by all subcommands once flags are parsed
type globals struct {
	configFile  string
	projectRoot string
	logLevel    string

	cfg *config.Config
	log *logrus.Logger
}

// NewRootCommand creates the capsync root command
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "capsync",
		Short: "capsync - native build integration for mobile plugin sets",
		Long: `capsync keeps a mobile app's native Android project in step with its
installed plugins.

Each update classifies the installed plugins, copies the native assets of
bridge plugins into the plugin asset tree, regenerates the module
registration and dependency descriptors, and rewrites the generated regions
of the shared plugin build script. Everything outside those regions is
left untouched.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.load(cmd)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nPlatform: %s/%s\n",
		BuildTime, runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().StringVar(&g.configFile, "config", "", "Config file path (default is ./"+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVar(&g.projectRoot, "project", "", "Host project root (overrides project_root)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newUpdateCommand(g))
	rootCmd.AddCommand(newListCommand(g))
	rootCmd.AddCommand(newWatchCommand(g))

	return rootCmd
}

// load resolves configuration and applies flag overrides
func (g *globals) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(g.configFile)
	if err != nil {
		return err
	}

	if g.projectRoot != "" {
		cfg.ProjectRoot = g.projectRoot
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	g.cfg = cfg
	g.log = newLogger(cmd.ErrOrStderr(), cfg.Level())
	return nil
}

// applyPlatform overrides the configured platform when the flag was set
func (g *globals) applyPlatform(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("platform") {
		return nil
	}
	name, _ := cmd.Flags().GetString("platform")
	g.cfg.Platform = name
	return g.cfg.Validate()
}

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return log
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
