package assets

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/platinummonkey/capsync/pkg/fsutil"
	"github.com/platinummonkey/capsync/pkg/platform"
	"github.com/platinummonkey/capsync/pkg/plugins"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Config holds synchronizer configuration
type Config struct {
	// MaxWorkers bounds how many plugins are copied concurrently (default: 5)
	MaxWorkers int
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxWorkers: 5,
	}
}

// Synchronizer owns the native asset tree of one platform.
//
// The tree is a process-wide resource without locking: callers must not run two
// synchronizations against the same project at the same time.
type Synchronizer struct {
	root   string
	layout *platform.Layout
	fs     fsutil.FS
	config *Config
	log    *logrus.Logger
}

// NewSynchronizer creates a synchronizer for the asset tree rooted at root
func NewSynchronizer(root string, layout *platform.Layout, fsys fsutil.FS, config *Config, log *logrus.Logger) *Synchronizer {
	if config == nil {
		config = DefaultConfig()
	}
	if fsys == nil {
		fsys = fsutil.NewOSFS()
	}
	if log == nil {
		log = logrus.New()
	}

	return &Synchronizer{
		root:   root,
		layout: layout,
		fs:     fsys,
		config: config,
		log:    log,
	}
}

// Root returns the absolute asset root
func (s *Synchronizer) Root() string {
	return s.root
}

// PluginReport lists the asset paths copied for one plugin, relative to the asset root
type PluginReport struct {
	PluginID string
	Files    []string
}

// Report describes the outcome of a synchronization
type Report struct {
	Plugins []PluginReport
}

// FileCount returns the number of copied files
func (r *Report) FileCount() int {
	n := 0
	for _, p := range r.Plugins {
		n += len(p.Files)
	}
	return n
}

// Synchronize makes the asset tree reflect exactly the given bridge plugins.
// The previous tree is pruned first; copies start only after the prune completed.
// Every plugin is attempted and every failure is returned, wrapped in ErrSyncFailed.
func (s *Synchronizer) Synchronize(ctx context.Context, active []*plugins.Manifest) (*Report, error) {
	if err := s.Prune(ctx); err != nil {
		return nil, err
	}

	report := &Report{}
	if len(active) == 0 {
		return report, nil
	}

	var errs error
	plans := make([]*Plan, 0, len(active))
	for _, m := range active {
		plan, err := PlanPlugin(s.layout, m)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("plugin %s: %w", m.ID, err))
			continue
		}
		plans = append(plans, plan)
	}

	if err := findConflicts(plans); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyncFailed, multierr.Append(errs, err))
	}

	reports, copyErr := s.copyPlans(ctx, plans)
	errs = multierr.Append(errs, copyErr)
	report.Plugins = reports

	if err := s.writeLedger(reports); err != nil {
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return report, fmt.Errorf("%w: %w", ErrSyncFailed, errs)
	}

	s.log.WithField("platform", s.layout.Name).Infof("Synchronized %d file(s) from %d plugin(s)", report.FileCount(), len(plans))
	return report, nil
}

// copyPlans runs the plans on a bounded worker pool.
// A failing plugin never cancels the others.
func (s *Synchronizer) copyPlans(ctx context.Context, plans []*Plan) ([]PluginReport, error) {
	maxWorkers := s.config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultConfig().MaxWorkers
	}

	var eg errgroup.Group
	eg.SetLimit(maxWorkers)

	reports := make([]PluginReport, len(plans))
	errs := make([]error, len(plans))
	var mu sync.Mutex

	for i, plan := range plans {
		eg.Go(func() error {
			files, err := s.copyPlan(ctx, plan)

			mu.Lock()
			reports[i] = PluginReport{PluginID: plan.PluginID, Files: files}
			errs[i] = err
			mu.Unlock()

			return nil
		})
	}
	_ = eg.Wait()

	return reports, multierr.Combine(errs...)
}

func (s *Synchronizer) copyPlan(ctx context.Context, plan *Plan) ([]string, error) {
	files := make([]string, 0, len(plan.Ops))
	for _, op := range plan.Ops {
		if err := ctx.Err(); err != nil {
			return files, fmt.Errorf("plugin %s: %w", plan.PluginID, err)
		}

		if err := s.fs.CopyFile(op.Src, s.abs(op.Dest)); err != nil {
			return files, fmt.Errorf("plugin %s: %s %s: %w", plan.PluginID, op.Kind, op.Dest, err)
		}
		s.log.Debugf("Copied %s -> %s", op.Src, op.Dest)
		files = append(files, op.Dest)
	}
	return files, nil
}

// Prune removes everything previous synchronizations put into the asset tree
func (s *Synchronizer) Prune(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ledger, err := s.readLedger()
	if err != nil {
		return err
	}
	for _, p := range ledger {
		if err := s.fs.RemoveAll(s.abs(p)); err != nil {
			return fmt.Errorf("failed to prune %s: %w", p, err)
		}
	}
	if err := s.fs.RemoveAll(s.abs(s.layout.LedgerFile)); err != nil {
		return fmt.Errorf("failed to prune ledger: %w", err)
	}

	for _, dir := range s.layout.ManagedDirs() {
		if err := s.fs.RemoveAll(s.abs(dir)); err != nil {
			return fmt.Errorf("failed to prune %s: %w", dir, err)
		}
	}

	s.log.WithField("platform", s.layout.Name).Debugf("Pruned native asset tree %s", s.root)
	return nil
}

const ledgerHeader = "# Generated by capsync. Asset paths outside the managed directories.\n"

// writeLedger records copied paths that a wholesale directory prune would miss
func (s *Synchronizer) writeLedger(reports []PluginReport) error {
	var unmanaged []string
	for _, r := range reports {
		for _, f := range r.Files {
			if !s.layout.IsManaged(f) {
				unmanaged = append(unmanaged, f)
			}
		}
	}
	if len(unmanaged) == 0 {
		return nil
	}
	sort.Strings(unmanaged)

	var b strings.Builder
	b.WriteString(ledgerHeader)
	for _, p := range unmanaged {
		b.WriteString(p)
		b.WriteByte('\n')
	}

	if err := s.fs.WriteFile(s.abs(s.layout.LedgerFile), []byte(b.String())); err != nil {
		return fmt.Errorf("failed to write asset ledger: %w", err)
	}
	return nil
}

func (s *Synchronizer) readLedger() ([]string, error) {
	ledgerPath := s.abs(s.layout.LedgerFile)
	exists, err := s.fs.Exists(ledgerPath)
	if err != nil || !exists {
		return nil, err
	}

	data, err := s.fs.ReadFile(ledgerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset ledger: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		clean := path.Clean(line)
		if path.IsAbs(clean) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
			s.log.Warnf("Ignoring asset ledger entry outside the asset tree: %q", line)
			continue
		}
		paths = append(paths, clean)
	}
	return paths, nil
}

func (s *Synchronizer) abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}
