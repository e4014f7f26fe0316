package assets

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/platinummonkey/capsync/pkg/platform"
	"github.com/platinummonkey/capsync/pkg/plugins"
)

// AssetKind names the manifest element an asset came from
type AssetKind string

const (
	KindSource   AssetKind = "source-file"
	KindResource AssetKind = "resource-file"
	KindFragment AssetKind = "framework"
	KindLibFile  AssetKind = "lib-file"
)

// CopyOp copies one declared asset into the asset tree
type CopyOp struct {
	Kind AssetKind
	Src  string // Absolute source path
	Dest string // Slash-separated path relative to the asset root
}

// Plan is the ordered list of copies for one plugin
type Plan struct {
	PluginID string
	Ops      []CopyOp
}

// PlanPlugin computes the copies a bridge plugin needs without touching the filesystem
func PlanPlugin(layout *platform.Layout, m *plugins.Manifest) (*Plan, error) {
	plan := &Plan{PluginID: m.ID}

	elements := m.Platform(layout.Name)
	if elements == nil {
		return plan, nil
	}
	if err := plugins.ValidatePlatform(m.ID, layout.Name, elements); err != nil {
		return nil, err
	}
	if m.RootDir == "" {
		return nil, plugins.NewManifestError(m.ID, layout.Name, "", "plugin has no root directory to resolve sources against")
	}

	src := func(p string) string {
		return filepath.Join(m.RootDir, filepath.FromSlash(p))
	}

	for _, sf := range elements.SourceFiles {
		plan.Ops = append(plan.Ops, CopyOp{
			Kind: KindSource,
			Src:  src(sf.Src),
			Dest: layout.SourceFilePath(sf.TargetDir, sf.Src),
		})
	}
	for _, rf := range elements.ResourceFiles {
		plan.Ops = append(plan.Ops, CopyOp{
			Kind: KindResource,
			Src:  src(rf.Src),
			Dest: layout.ResourceFilePath(rf.Src, rf.Target),
		})
	}
	for _, fw := range elements.Frameworks {
		if !fw.IsScriptFragment() {
			continue
		}
		plan.Ops = append(plan.Ops, CopyOp{
			Kind: KindFragment,
			Src:  src(fw.Src),
			Dest: layout.FragmentPath(m.ID, fw.Src),
		})
	}
	for _, lf := range elements.LibFiles {
		plan.Ops = append(plan.Ops, CopyOp{
			Kind: KindLibFile,
			Src:  src(lf.Src),
			Dest: layout.LibFilePath(lf.Src),
		})
	}

	for _, op := range plan.Ops {
		if !insideTree(op.Dest) {
			return nil, plugins.NewManifestError(m.ID, layout.Name, string(op.Kind),
				"destination %q is outside the asset tree", op.Dest)
		}
	}

	return plan, nil
}

// insideTree reports whether an asset path stays below the asset root
func insideTree(dest string) bool {
	clean := path.Clean(dest)
	return !path.IsAbs(clean) && clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}

// findConflicts reports destinations claimed by more than one plugin
func findConflicts(plans []*Plan) error {
	owners := make(map[string]string)
	var conflicts []string
	for _, plan := range plans {
		for _, op := range plan.Ops {
			owner, taken := owners[op.Dest]
			switch {
			case !taken:
				owners[op.Dest] = plan.PluginID
			case owner != plan.PluginID:
				conflicts = append(conflicts, fmt.Sprintf("%s (%s, %s)", op.Dest, owner, plan.PluginID))
			}
		}
	}
	if len(conflicts) == 0 {
		return nil
	}
	sort.Strings(conflicts)
	return fmt.Errorf("%w: %s", ErrDestinationConflict, strings.Join(conflicts, "; "))
}
