package plugins

// Manifest describes a plugin and the native integration points it declares per platform
type Manifest struct {
	ID      string `yaml:"id"`      // Package name (e.g., "cordova-plugin-camera")
	Name    string `yaml:"name"`    // Display name
	Version string `yaml:"version"` // Package version

	// RootDir is the on-disk plugin directory that declared src paths are relative to
	RootDir string `yaml:"-"`

	// Native holds first-class native module declarations keyed by platform
	Native map[string]NativeModule `yaml:"native,omitempty"`

	// Platforms holds legacy bridge declarations keyed by platform
	Platforms map[string]*PlatformElements `yaml:"platforms,omitempty"`
}

// NativeModule marks a plugin as shipping a native module for a platform
type NativeModule struct {
	SourceDir string `yaml:"src"` // Module directory relative to the plugin root
}

// PlatformElements are the typed element sets a plugin declares for one platform
type PlatformElements struct {
	SourceFiles   []SourceFile   `yaml:"source_files,omitempty"`
	ResourceFiles []ResourceFile `yaml:"resource_files,omitempty"`
	Frameworks    []Framework    `yaml:"frameworks,omitempty"`
	LibFiles      []LibFile      `yaml:"lib_files,omitempty"`
	Preferences   []Preference   `yaml:"preferences,omitempty"`
}

// SourceFile is a native source file copied into the platform source root
type SourceFile struct {
	Src       string `yaml:"src"`
	TargetDir string `yaml:"target_dir"`
}

// ResourceFile is a resource copied verbatim to its target path
type ResourceFile struct {
	Src    string `yaml:"src"`
	Target string `yaml:"target"`
}

// FrameworkType distinguishes library coordinates from build-script fragments
type FrameworkType string

const (
	// FrameworkLibrary is a plain dependency coordinate (e.g., "com.google.android.gms:play-services-maps:$MAPS_VERSION")
	FrameworkLibrary FrameworkType = ""
	// FrameworkGradleReference points at a build-script fragment shipped by the plugin
	FrameworkGradleReference FrameworkType = "gradleReference"
)

// Framework is a dependency reference declared by a plugin
type Framework struct {
	Src    string        `yaml:"src"`
	Custom bool          `yaml:"custom,omitempty"`
	Type   FrameworkType `yaml:"type,omitempty"`
}

// IsLibrary reports whether the framework is a plain dependency coordinate
func (f Framework) IsLibrary() bool {
	return !f.Custom && f.Type == FrameworkLibrary
}

// IsScriptFragment reports whether the framework is a custom build-script fragment
func (f Framework) IsScriptFragment() bool {
	return f.Custom && f.Type == FrameworkGradleReference
}

// LibFile is a prebuilt library binary
type LibFile struct {
	Src string `yaml:"src"`
}

// Preference is a configurable value substituted into framework coordinates
type Preference struct {
	Name       string `yaml:"name"`
	Default    string `yaml:"default,omitempty"`
	HasDefault bool   `yaml:"-"`
}

// Placeholder returns the token that framework coordinates use to reference the preference
func (p Preference) Placeholder() string {
	return "$" + p.Name
}

// Platform returns the legacy bridge elements for a platform, or nil
func (m *Manifest) Platform(platform string) *PlatformElements {
	if m == nil || m.Platforms == nil {
		return nil
	}
	return m.Platforms[platform]
}

// NativeModuleFor returns the native module declaration for a platform
func (m *Manifest) NativeModuleFor(platform string) (NativeModule, bool) {
	if m == nil || m.Native == nil {
		return NativeModule{}, false
	}
	nm, ok := m.Native[platform]
	return nm, ok
}

// DisplayName returns the manifest name, falling back to the ID
func (m *Manifest) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}
