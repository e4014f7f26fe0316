package plugins

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// ValidateManifest checks every declared element of every platform.
// All problems are returned together; each one is a *ManifestError.
func ValidateManifest(m *Manifest) error {
	if m == nil {
		return NewManifestError("", "", "", "manifest is nil")
	}

	var errs error
	if err := ValidateID(m.ID); err != nil {
		errs = multierr.Append(errs, NewManifestError(m.ID, "", "id", "%v", err))
	}

	for _, platform := range sortedPlatforms(m.Native) {
		if err := checkRelative(m.Native[platform].SourceDir); err != nil {
			errs = multierr.Append(errs, NewManifestError(m.ID, platform, "native.src", "%v", err))
		}
	}

	platforms := make([]string, 0, len(m.Platforms))
	for name := range m.Platforms {
		platforms = append(platforms, name)
	}
	sort.Strings(platforms)

	for _, platform := range platforms {
		errs = multierr.Append(errs, ValidatePlatform(m.ID, platform, m.Platforms[platform]))
	}

	return errs
}

// ValidatePlatform checks the element set one plugin declares for one platform
func ValidatePlatform(pluginID, platform string, elements *PlatformElements) error {
	if elements == nil {
		return nil
	}

	var errs error
	fail := func(element string, format string, args ...interface{}) {
		errs = multierr.Append(errs, NewManifestError(pluginID, platform, element, format, args...))
	}

	for i, sf := range elements.SourceFiles {
		el := fmt.Sprintf("source-file[%d]", i)
		if sf.Src == "" {
			fail(el, "src is required")
		}
		if sf.TargetDir == "" {
			fail(el, "target-dir is required")
		} else if err := checkRelative(sf.TargetDir); err != nil {
			fail(el, "target-dir: %v", err)
		}
	}

	for i, rf := range elements.ResourceFiles {
		el := fmt.Sprintf("resource-file[%d]", i)
		if rf.Src == "" {
			fail(el, "src is required")
		}
		if rf.Target == "" {
			fail(el, "target is required")
		} else if err := checkRelative(rf.Target); err != nil {
			fail(el, "target: %v", err)
		} else if BaseName(rf.Target) == "" {
			fail(el, "target %q has no file name", rf.Target)
		}
	}

	for i, fw := range elements.Frameworks {
		el := fmt.Sprintf("framework[%d]", i)
		if fw.Src == "" {
			fail(el, "src is required")
			continue
		}
		if fw.IsScriptFragment() && BaseName(fw.Src) == "" {
			fail(el, "custom %s reference %q has no file name", fw.Type, fw.Src)
		}
	}

	for i, lf := range elements.LibFiles {
		if lf.Src == "" || BaseName(lf.Src) == "" {
			fail(fmt.Sprintf("lib-file[%d]", i), "src %q has no file name", lf.Src)
		}
	}

	for i, pref := range elements.Preferences {
		if pref.Name == "" {
			fail(fmt.Sprintf("preference[%d]", i), "name is required")
		}
	}

	return errs
}

// ValidateID checks that a plugin ID is a relative slash path such as
// "cordova-plugin-file" or "@capacitor/camera". IDs name directories inside the
// asset tree, so they must not be able to point outside it.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("plugin ID is required")
	}
	if strings.ContainsAny(id, "\\:") || strings.HasPrefix(id, "/") || filepath.IsAbs(id) {
		return fmt.Errorf("plugin ID %q must be a relative slash-separated name", id)
	}
	for _, segment := range strings.Split(id, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return fmt.Errorf("plugin ID %q has an empty, \".\" or \"..\" segment", id)
		}
	}
	return nil
}

// BaseName returns the last slash-separated segment of a manifest path
func BaseName(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasSuffix(p, "/") {
		return ""
	}
	return path.Base(p)
}

// checkRelative rejects absolute paths and paths escaping their root
func checkRelative(p string) error {
	if p == "" {
		return nil
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return fmt.Errorf("path %q must be relative", p)
	}
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path %q escapes its root", p)
	}
	return nil
}

func sortedPlatforms(m map[string]NativeModule) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
