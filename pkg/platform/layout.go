package platform

import (
	"path"
	"strings"
)

// Layout describes where a platform keeps synthesized build files inside the host project.
// Paths ending in Dir or File are relative to the project root; the rest are relative to
// AssetRoot. All paths are slash-separated.
type Layout struct {
	Name string

	// AssetRoot is the native asset tree owned by synthesis
	AssetRoot string

	// SourceRoot is the module source set inside AssetRoot
	SourceRoot string

	// SourceSegment is the generic target-dir segment that maps to LanguageSourceDir
	SourceSegment     string
	LanguageSourceDir string
	ResourceDir       string
	LibDir            string
	FragmentDir       string

	// LibArchiveExt marks resource files that are library archives
	LibArchiveExt string

	// BuildScript is the shared build script holding the marker regions
	BuildScript string

	// Generated descriptors
	RegistrationFile string
	DependencyFile   string

	// LedgerFile lists asset paths copied outside the managed directories
	LedgerFile string
}

// Android is the layout of a Gradle based Android host project
var Android = &Layout{
	Name:              "android",
	AssetRoot:         "android/capacitor-cordova-android-plugins",
	SourceRoot:        "src/main",
	SourceSegment:     "src",
	LanguageSourceDir: "java",
	ResourceDir:       "res",
	LibDir:            "libs",
	FragmentDir:       "gradle-files",
	LibArchiveExt:     ".aar",
	BuildScript:       "build.gradle",
	RegistrationFile:  "android/capacitor.settings.gradle",
	DependencyFile:    "android/app/capacitor.build.gradle",
	LedgerFile:        ".capsync-assets",
}

// ManagedDirs returns the directories pruned wholesale before every synchronization
func (l *Layout) ManagedDirs() []string {
	return []string{
		l.FragmentDir,
		path.Join(l.SourceRoot, l.LanguageSourceDir),
		path.Join(l.SourceRoot, l.ResourceDir),
		path.Join(l.SourceRoot, l.LibDir),
	}
}

// IsManaged reports whether an asset path falls under one of the managed directories
func (l *Layout) IsManaged(p string) bool {
	for _, dir := range l.ManagedDirs() {
		if p == dir || strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}

// SourceFilePath maps a declared source file to its destination.
// The first SourceSegment segment of targetDir becomes LanguageSourceDir
// ("src/org/example" -> "java/org/example"); the file keeps its base name.
func (l *Layout) SourceFilePath(targetDir, src string) string {
	segments := strings.Split(cleanSlash(targetDir), "/")
	for i, seg := range segments {
		if seg == l.SourceSegment {
			segments[i] = l.LanguageSourceDir
			break
		}
	}
	return path.Join(l.SourceRoot, path.Join(segments...), baseName(src))
}

// ResourceFilePath maps a declared resource to its destination.
// Library archives are redirected into LibDir under the target's base name.
func (l *Layout) ResourceFilePath(src, target string) string {
	if l.IsLibArchive(src) {
		return path.Join(l.SourceRoot, l.LibDir, baseName(target))
	}
	return path.Join(l.SourceRoot, cleanSlash(target))
}

// IsLibArchive reports whether a file is a library archive by extension
func (l *Layout) IsLibArchive(src string) bool {
	return strings.EqualFold(path.Ext(cleanSlash(src)), l.LibArchiveExt)
}

// FragmentPath returns where a plugin's build-script fragment is copied
func (l *Layout) FragmentPath(pluginID, src string) string {
	return path.Join(l.FragmentDir, pluginID, baseName(src))
}

// LibFilePath returns where a standalone library file is copied
func (l *Layout) LibFilePath(src string) string {
	return path.Join(l.SourceRoot, l.LibDir, baseName(src))
}

func cleanSlash(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func baseName(p string) string {
	return path.Base(cleanSlash(p))
}
