package orchestrator

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/capsync/pkg/assets"
	"github.com/platinummonkey/capsync/pkg/buildscript"
	"github.com/platinummonkey/capsync/pkg/codegen"
	"github.com/platinummonkey/capsync/pkg/codegen/gradle"
	"github.com/platinummonkey/capsync/pkg/fsutil"
	"github.com/platinummonkey/capsync/pkg/platform"
	"github.com/platinummonkey/capsync/pkg/plugins"
	"github.com/sirupsen/logrus"
)

// Orchestrator sequences classification, asset synchronization, descriptor generation
// and build script merging for one platform.
//
// Update must not run concurrently for the same project; callers serialize invocations.
type Orchestrator struct {
	config *Config
	layout *platform.Layout
	fs     fsutil.FS
	sync   *assets.Synchronizer
	gen    codegen.Generator
	log    *logrus.Logger
}

var _ Updater = (*Orchestrator)(nil)

// NewOrchestrator creates an orchestrator for the configured project and platform
func NewOrchestrator(config *Config, fsys fsutil.FS, log *logrus.Logger) (*Orchestrator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.ProjectRoot == "" {
		return nil, ErrMissingProjectRoot
	}
	if fsys == nil {
		fsys = fsutil.NewOSFS()
	}
	if log == nil {
		log = logrus.New()
	}

	platformName := config.Platform
	if platformName == "" {
		platformName = DefaultConfig().Platform
	}
	base, err := platform.Get(platformName)
	if err != nil {
		return nil, err
	}
	layout := *base
	if config.AssetRoot != "" {
		layout.AssetRoot = filepath.ToSlash(filepath.Clean(config.AssetRoot))
	}

	o := &Orchestrator{
		config: config,
		layout: &layout,
		fs:     fsys,
		log:    log,
	}

	o.sync = assets.NewSynchronizer(o.abs(layout.AssetRoot), o.layout, fsys, &assets.Config{MaxWorkers: config.MaxWorkers}, log)
	o.gen = gradle.NewGenerator(o.layout, o.modulesRel())

	return o, nil
}

// Layout returns the effective platform layout
func (o *Orchestrator) Layout() *platform.Layout {
	return o.layout
}

// Update runs the full pipeline. The first failing stage aborts the update; the
// shared build script is only merged after the asset tree was fully synchronized.
func (o *Orchestrator) Update(ctx context.Context, manifests []*plugins.Manifest) (*Result, error) {
	c := plugins.Partition(manifests, o.layout.Name)
	result := &Result{
		Platform:       o.layout.Name,
		Classification: c,
		BuildScript:    path.Join(o.layout.AssetRoot, o.layout.BuildScript),
	}
	o.logClassification(c)

	if len(c.BridgeCompat) > 0 {
		report, err := o.sync.Synchronize(ctx, c.BridgeCompat)
		result.Assets = report
		if err != nil {
			return result, newStageError("synchronize native assets", err)
		}
	} else if err := o.sync.Prune(ctx); err != nil {
		return result, newStageError("prune native assets", err)
	}

	files, err := o.gen.Generate(c.NativeModule)
	if err != nil {
		return result, newStageError("generate descriptors", err)
	}
	for _, f := range files {
		if err := o.fs.WriteFile(o.abs(f.Path), f.Content); err != nil {
			return result, newStageError("write "+f.Path, err)
		}
		o.log.Debugf("Wrote %s (%d bytes)", f.Path, f.Size)
	}
	result.Descriptors = files

	unresolved, err := o.mergeBuildScript(result.BuildScript, c.BridgeCompat)
	if err != nil {
		return result, newStageError("merge "+result.BuildScript, err)
	}
	result.Unresolved = unresolved

	o.log.WithFields(logrus.Fields{
		"platform":       o.layout.Name,
		"native_modules": len(c.NativeModule),
		"bridge_plugins": len(c.BridgeCompat),
	}).Info("Native build integration updated")
	return result, nil
}

func (o *Orchestrator) mergeBuildScript(rel string, bridge []*plugins.Manifest) ([]string, error) {
	in := buildscript.Collect(bridge, o.layout.Name, o.layout.FragmentDir)
	in.Overrides = o.config.Preferences

	scriptPath := o.abs(rel)
	existing, err := o.fs.ReadFile(scriptPath)
	if err != nil {
		return nil, err
	}

	merged, err := buildscript.Merge(in, string(existing))
	if err != nil {
		return nil, err
	}
	if err := o.fs.WriteFile(scriptPath, []byte(merged)); err != nil {
		return nil, err
	}

	unresolved := in.Unresolved()
	for _, name := range unresolved {
		o.log.Warnf("Preference %s has no default and no override; $%s left unresolved", name, name)
	}
	return unresolved, nil
}

func (o *Orchestrator) logClassification(c *plugins.Classification) {
	o.log.Infof("Found %d native module plugin(s)%s", len(c.NativeModule), listing(c.NativeModule))
	o.log.Infof("Found %d bridge plugin(s)%s", len(c.BridgeCompat), listing(c.BridgeCompat))
	for _, m := range c.Unsupported {
		o.log.WithField("plugin", m.ID).Debugf("Plugin declares nothing for %s, skipping", o.layout.Name)
	}
}

func listing(manifests []*plugins.Manifest) string {
	if len(manifests) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(":")
	for _, m := range manifests {
		b.WriteString("\n  ")
		b.WriteString(m.DisplayName())
	}
	return b.String()
}

// modulesRel locates the modules dir relative to the registration descriptor's directory
func (o *Orchestrator) modulesRel() string {
	modules := o.config.ModulesDir
	if modules == "" {
		modules = DefaultConfig().ModulesDir
	}
	if !filepath.IsAbs(modules) {
		modules = filepath.Join(o.config.ProjectRoot, modules)
	}

	from := o.abs(path.Dir(o.layout.RegistrationFile))
	rel, err := filepath.Rel(from, modules)
	if err != nil {
		return filepath.ToSlash(modules)
	}
	return filepath.ToSlash(rel)
}

func (o *Orchestrator) abs(rel string) string {
	return filepath.Join(o.config.ProjectRoot, filepath.FromSlash(rel))
}
