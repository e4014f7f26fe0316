package gradle

import (
	"path"
	"strings"

	"github.com/platinummonkey/capsync/pkg/codegen"
	"github.com/platinummonkey/capsync/pkg/platform"
	"github.com/platinummonkey/capsync/pkg/plugins"
)

// Header is the first line of every generated descriptor
const Header = `DO NOT EDIT THIS FILE! IT IS GENERATED EACH TIME "capsync update" IS RUN`

// DefaultModulesRel is the plugin install dir as seen from the Android project dir
const DefaultModulesRel = "../node_modules"

// Generator generates the Gradle module registration and dependency descriptors
type Generator struct {
	layout     *platform.Layout
	modulesRel string
}

// NewGenerator creates a new Gradle generator.
// modulesRel locates the plugin install dir relative to the directory holding the
// registration descriptor.
func NewGenerator(layout *platform.Layout, modulesRel string) *Generator {
	if layout == nil {
		layout = platform.Android
	}
	if modulesRel == "" {
		modulesRel = DefaultModulesRel
	}
	return &Generator{
		layout:     layout,
		modulesRel: strings.TrimSuffix(strings.ReplaceAll(modulesRel, "\\", "/"), "/"),
	}
}

// Generate creates the registration and dependency descriptors for native module plugins
func (g *Generator) Generate(nativeModules []*plugins.Manifest) ([]codegen.GeneratedFile, error) {
	for _, m := range nativeModules {
		if err := checkModuleID(m); err != nil {
			return nil, err
		}
	}

	return []codegen.GeneratedFile{
		g.registration(nativeModules),
		g.dependencies(nativeModules),
	}, nil
}

// GetName returns the name of the build system
func (g *Generator) GetName() string {
	return "gradle"
}

// GetConfigFiles returns the list of files this generator creates
func (g *Generator) GetConfigFiles() []string {
	return []string{g.layout.RegistrationFile, g.layout.DependencyFile}
}

func (g *Generator) registration(modules []*plugins.Manifest) codegen.GeneratedFile {
	b := codegen.NewBuilder(g.layout.RegistrationFile)
	b.Comment(Header)
	for _, m := range modules {
		b.Blank()
		b.Line("include ':%s'", m.ID)
		b.Line("project(':%s').projectDir = new File('%s')", m.ID, g.projectDir(m))
	}
	return b.File()
}

func (g *Generator) dependencies(modules []*plugins.Manifest) codegen.GeneratedFile {
	b := codegen.NewBuilder(g.layout.DependencyFile)
	b.Comment(Header)
	b.Blank()
	b.Line("dependencies {")
	for _, m := range modules {
		b.Line("    implementation project(':%s')", m.ID)
	}
	b.Line("}")
	return b.File()
}

// projectDir returns the native module dir, defaulting to a folder named after the platform
func (g *Generator) projectDir(m *plugins.Manifest) string {
	srcDir := g.layout.Name
	if nm, ok := m.NativeModuleFor(g.layout.Name); ok && nm.SourceDir != "" {
		srcDir = strings.ReplaceAll(nm.SourceDir, "\\", "/")
	}
	return path.Join(g.modulesRel, m.ID, srcDir)
}

// checkModuleID rejects IDs that would break out of the quoted Gradle strings
func checkModuleID(m *plugins.Manifest) error {
	if m == nil {
		return NewInvalidModuleError("", "nil manifest")
	}
	if m.ID == "" {
		return NewInvalidModuleError(m.ID, "id is required")
	}
	if strings.ContainsAny(m.ID, "'\"\\\n\r") {
		return NewInvalidModuleError(m.ID, "id contains quote, backslash or newline characters")
	}
	return nil
}
