// Package plugins models the native integration points a plugin declares per platform.
//
// # Overview
//
// A plugin is an npm dependency of the host project. It integrates with a platform in one
// of two ways:
//
//   - Native module: package.json carries a "capacitor" section naming the module
//     directory for the platform. The plugin is registered as a build module.
//   - Bridge compatibility: plugin.xml carries a <platform name="..."> element listing
//     source files, resources, frameworks, library files and preferences that have to be
//     copied into the host project and merged into its build script.
//
// A plugin declaring neither for a platform is unsupported there.
//
// # Manifests
//
// Manifests are parsed once into typed records and validated. Malformed elements are
// reported as *ManifestError (errors.Is(err, ErrInvalidManifest)):
//
//	manifest, err := plugins.LoadManifestFromDir("node_modules/cordova-plugin-camera")
//	if plugins.IsManifestError(err) {
//		// skip this plugin
//	}
//
// plugin.yaml is accepted as an alternative, self-contained manifest form.
//
// # Classification
//
//	c := plugins.Partition(manifests, "android")
//	// c.NativeModule, c.BridgeCompat, c.Unsupported keep input order
//
// Classification is never cached; it is recomputed on every update.
//
// # Discovery
//
//	loader := plugins.NewLoader(projectRoot, "node_modules", log)
//	discovery, err := loader.DiscoverPlugins(ctx)
//
// Dependencies are visited in sorted order. Dependencies without any manifest are not
// plugins and are ignored; plugins with malformed manifests land in Discovery.Skipped.
package plugins
