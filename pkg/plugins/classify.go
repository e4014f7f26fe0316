package plugins

// Category describes how a plugin integrates with a target platform
type Category string

const (
	// CategoryNativeModule plugins are registered as build modules and need no file sync
	CategoryNativeModule Category = "native-module"
	// CategoryBridgeCompat plugins go through the legacy bridge layer and need file sync and script merging
	CategoryBridgeCompat Category = "bridge-compat"
	// CategoryUnsupported plugins declare nothing for the platform
	CategoryUnsupported Category = "unsupported"
)

// Classify returns the category of a plugin for a platform.
// A native module declaration wins over bridge elements for the same platform.
func Classify(m *Manifest, platform string) Category {
	if _, ok := m.NativeModuleFor(platform); ok {
		return CategoryNativeModule
	}
	if m.Platform(platform) != nil {
		return CategoryBridgeCompat
	}
	return CategoryUnsupported
}

// Classification is a plugin set partitioned by category, each list in input order
type Classification struct {
	Platform     string
	NativeModule []*Manifest
	BridgeCompat []*Manifest
	Unsupported  []*Manifest
}

// Partition classifies every manifest for a platform
func Partition(manifests []*Manifest, platform string) *Classification {
	c := &Classification{Platform: platform}
	for _, m := range manifests {
		if m == nil {
			continue
		}
		switch Classify(m, platform) {
		case CategoryNativeModule:
			c.NativeModule = append(c.NativeModule, m)
		case CategoryBridgeCompat:
			c.BridgeCompat = append(c.BridgeCompat, m)
		default:
			c.Unsupported = append(c.Unsupported, m)
		}
	}
	return c
}

// IDs returns the plugin IDs of a manifest list
func IDs(manifests []*Manifest) []string {
	ids := make([]string, 0, len(manifests))
	for _, m := range manifests {
		ids = append(ids, m.ID)
	}
	return ids
}
