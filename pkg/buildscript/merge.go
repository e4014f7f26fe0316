package buildscript

import (
	"path"
	"sort"
	"strings"

	"github.com/platinummonkey/capsync/pkg/codegen"
	"github.com/platinummonkey/capsync/pkg/plugins"
)

// MergeInput is everything the bridge plugins contribute to the shared build script
type MergeInput struct {
	// Frameworks are plain library coordinates, in plugin then declaration order
	Frameworks []string

	// Preferences are the declared preferences of all bridge plugins
	Preferences []plugins.Preference

	// ApplyPaths are fragment paths relative to the build script directory
	ApplyPaths []string

	// Overrides replace preference defaults by name
	Overrides map[string]string
}

// Collect aggregates the merge input of the bridge plugins for a platform.
// fragmentRel is the fragment directory relative to the build script.
func Collect(bridge []*plugins.Manifest, platform, fragmentRel string) MergeInput {
	var in MergeInput
	for _, m := range bridge {
		elements := m.Platform(platform)
		if elements == nil {
			continue
		}
		for _, fw := range elements.Frameworks {
			switch {
			case fw.IsLibrary():
				in.Frameworks = append(in.Frameworks, fw.Src)
			case fw.IsScriptFragment():
				in.ApplyPaths = append(in.ApplyPaths, path.Join(fragmentRel, m.ID, plugins.BaseName(fw.Src)))
			}
		}
		in.Preferences = append(in.Preferences, elements.Preferences...)
	}
	return in
}

// Merge rewrites the dependency and extension regions of an existing build script.
// Text outside the regions is returned byte for byte; on error nothing is returned.
func Merge(in MergeInput, existing string) (string, error) {
	deps := in.DependencyBlock()
	apply := in.ApplyBlock()

	for _, r := range Regions() {
		for _, block := range []string{deps, apply} {
			if strings.Contains(block, r.Start) || strings.Contains(block, r.End) {
				return "", &StructuralError{Region: r.Name, Err: ErrMarkerInContent}
			}
		}
	}

	out, err := DependenciesRegion.Replace(existing, deps)
	if err != nil {
		return "", err
	}
	return ExtensionsRegion.Replace(out, apply)
}

// DependencyBlock renders the implementation lines with preference placeholders substituted
func (in MergeInput) DependencyBlock() string {
	b := codegen.NewBuilder("")
	for _, f := range in.Frameworks {
		b.Line(`    implementation "%s"`, f)
	}
	return in.substitute(b.String())
}

// ApplyBlock renders the apply lines for build-script fragments
func (in MergeInput) ApplyBlock() string {
	b := codegen.NewBuilder("")
	for _, p := range in.ApplyPaths {
		b.Line(`apply from: "%s"`, p)
	}
	return b.String()
}

// Values resolves every preference that has a value. Overrides win over defaults;
// among duplicate declarations the first one with a default wins.
func (in MergeInput) Values() map[string]string {
	values := make(map[string]string)
	for _, p := range in.Preferences {
		if p.Name == "" {
			continue
		}
		if v, ok := in.Overrides[p.Name]; ok {
			values[p.Name] = v
			continue
		}
		if _, seen := values[p.Name]; seen || !p.HasDefault {
			continue
		}
		values[p.Name] = p.Default
	}
	return values
}

// Unresolved returns the sorted names of declared preferences without any value
func (in MergeInput) Unresolved() []string {
	values := in.Values()
	seen := make(map[string]bool)
	var names []string
	for _, p := range in.Preferences {
		if p.Name == "" || seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		if _, ok := values[p.Name]; !ok {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

// substitute replaces every $NAME placeholder in a single pass.
// Longer names are tried first so $MAPS_VERSION is never clobbered by $MAPS.
func (in MergeInput) substitute(block string) string {
	values := in.Values()
	if len(values) == 0 || block == "" {
		return block
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "$"+name, values[name])
	}
	return strings.NewReplacer(pairs...).Replace(block)
}
