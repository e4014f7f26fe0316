package plugins

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ManifestFile is the YAML manifest form
	ManifestFile = "plugin.yaml"
	// PackageFile is the npm package descriptor carrying native module markers
	PackageFile = "package.json"
	// BridgeManifestFile is the legacy XML manifest carrying per-platform elements
	BridgeManifestFile = "plugin.xml"
)

// LoadManifest loads and parses a YAML plugin manifest from a file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	manifest.RootDir = filepath.Dir(path)

	if err := ValidateManifest(&manifest); err != nil {
		return nil, err
	}

	return &manifest, nil
}

// SaveManifest saves a plugin manifest to a file in YAML form
func SaveManifest(manifest *Manifest, path string) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// LoadManifestFromDir loads a plugin manifest from a plugin directory.
// plugin.yaml wins when present; otherwise package.json and plugin.xml are combined.
func LoadManifestFromDir(dir string) (*Manifest, error) {
	yamlPath := filepath.Join(dir, ManifestFile)
	if _, err := os.Stat(yamlPath); err == nil {
		return LoadManifest(yamlPath)
	}

	pkg, err := readPackageJSON(filepath.Join(dir, PackageFile))
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		ID:      pkg.Name,
		Name:    pkg.Name,
		Version: pkg.Version,
		RootDir: dir,
	}

	for platform, decl := range pkg.Capacitor {
		if manifest.Native == nil {
			manifest.Native = make(map[string]NativeModule)
		}
		src := decl.Src
		if src == "" {
			src = platform
		}
		manifest.Native[platform] = NativeModule{SourceDir: src}
	}

	xmlPath := filepath.Join(dir, BridgeManifestFile)
	data, err := os.ReadFile(xmlPath)
	hasBridge := err == nil
	switch {
	case hasBridge:
		if err := mergeBridgeManifest(manifest, data); err != nil {
			return nil, err
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", BridgeManifestFile, err)
	}

	if manifest.Native == nil && !hasBridge {
		return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, dir)
	}

	if err := ValidateManifest(manifest); err != nil {
		return nil, err
	}

	return manifest, nil
}

type packageJSON struct {
	Name         string                     `json:"name"`
	Version      string                     `json:"version"`
	Capacitor    map[string]nativeModuleDef `json:"capacitor"`
	Dependencies map[string]string          `json:"dependencies"`
	DevDeps      map[string]string          `json:"devDependencies"`
}

type nativeModuleDef struct {
	Src string `json:"src"`
}

func readPackageJSON(path string) (*packageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &pkg, nil
}

// xmlPlugin mirrors the subset of plugin.xml that carries native integration points
type xmlPlugin struct {
	XMLName   xml.Name      `xml:"plugin"`
	ID        string        `xml:"id,attr"`
	Version   string        `xml:"version,attr"`
	Name      string        `xml:"name"`
	Platforms []xmlPlatform `xml:"platform"`
}

type xmlPlatform struct {
	Name          string            `xml:"name,attr"`
	SourceFiles   []xmlSourceFile   `xml:"source-file"`
	ResourceFiles []xmlResourceFile `xml:"resource-file"`
	Frameworks    []xmlFramework    `xml:"framework"`
	LibFiles      []xmlLibFile      `xml:"lib-file"`
	Preferences   []xmlPreference   `xml:"preference"`
}

type xmlSourceFile struct {
	Src       string `xml:"src,attr"`
	TargetDir string `xml:"target-dir,attr"`
}

type xmlResourceFile struct {
	Src    string `xml:"src,attr"`
	Target string `xml:"target,attr"`
}

type xmlFramework struct {
	Src    string `xml:"src,attr"`
	Custom string `xml:"custom,attr"`
	Type   string `xml:"type,attr"`
}

type xmlLibFile struct {
	Src string `xml:"src,attr"`
}

type xmlPreference struct {
	Name    string  `xml:"name,attr"`
	Default *string `xml:"default,attr"`
}

// mergeBridgeManifest parses plugin.xml into the manifest's per-platform element sets
func mergeBridgeManifest(manifest *Manifest, data []byte) error {
	var doc xmlPlugin
	if err := xml.Unmarshal(data, &doc); err != nil {
		return &ManifestError{
			PluginID: manifest.ID,
			Element:  BridgeManifestFile,
			Message:  fmt.Sprintf("failed to parse: %v", err),
		}
	}

	if manifest.ID == "" {
		manifest.ID = doc.ID
	}
	if doc.Name != "" {
		manifest.Name = doc.Name
	}
	if manifest.Version == "" {
		manifest.Version = doc.Version
	}

	for _, p := range doc.Platforms {
		if p.Name == "" {
			return NewManifestError(manifest.ID, "", "platform", "platform element without name")
		}
		elements, err := convertPlatform(manifest.ID, p)
		if err != nil {
			return err
		}
		if manifest.Platforms == nil {
			manifest.Platforms = make(map[string]*PlatformElements)
		}
		manifest.Platforms[p.Name] = elements
	}

	return nil
}

func convertPlatform(pluginID string, p xmlPlatform) (*PlatformElements, error) {
	elements := &PlatformElements{}

	for _, sf := range p.SourceFiles {
		elements.SourceFiles = append(elements.SourceFiles, SourceFile{Src: sf.Src, TargetDir: sf.TargetDir})
	}
	for _, rf := range p.ResourceFiles {
		elements.ResourceFiles = append(elements.ResourceFiles, ResourceFile{Src: rf.Src, Target: rf.Target})
	}
	for i, fw := range p.Frameworks {
		custom, err := parseBoolAttr(fw.Custom)
		if err != nil {
			return nil, NewManifestError(pluginID, p.Name, fmt.Sprintf("framework[%d]", i), "custom: %v", err)
		}
		elements.Frameworks = append(elements.Frameworks, Framework{
			Src:    fw.Src,
			Custom: custom,
			Type:   FrameworkType(fw.Type),
		})
	}
	for _, lf := range p.LibFiles {
		elements.LibFiles = append(elements.LibFiles, LibFile{Src: lf.Src})
	}
	for _, pref := range p.Preferences {
		preference := Preference{Name: pref.Name}
		if pref.Default != nil {
			preference.Default = *pref.Default
			preference.HasDefault = true
		}
		elements.Preferences = append(elements.Preferences, preference)
	}

	return elements, nil
}

func parseBoolAttr(value string) (bool, error) {
	switch value {
	case "", "false":
		return false, nil
	case "true":
		return true, nil
	default:
		return false, fmt.Errorf("expected \"true\" or \"false\", got %q", value)
	}
}

// UnmarshalYAML records whether a default was declared so an empty default can be told apart from none
func (p *Preference) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name    string  `yaml:"name"`
		Default *string `yaml:"default"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	p.Name = raw.Name
	p.Default = ""
	p.HasDefault = raw.Default != nil
	if raw.Default != nil {
		p.Default = *raw.Default
	}
	return nil
}

// MarshalYAML writes the default only when one was declared
func (p Preference) MarshalYAML() (interface{}, error) {
	out := map[string]string{"name": p.Name}
	if p.HasDefault {
		out["default"] = p.Default
	}
	return out, nil
}
