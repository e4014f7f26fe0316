// Package config provides capsync configuration from a YAML file, a .env file and
// environment variables.
//
// # Sources
//
// Sources are applied in increasing precedence:
//
//  1. Built-in defaults (DefaultConfig)
//  2. capsync.yaml, or the file given with --config
//  3. A .env file next to the config file (never overrides variables already set)
//  4. CAPSYNC_* environment variables
//
// # Configuration File
//
//	project_root: .
//	platform: android
//	modules_dir: node_modules
//	workers: 5
//	log_level: info
//	preferences:
//	  MAPS_VERSION: "17.0.0"
//	watch:
//	  debounce: 500ms
//
// # Environment Variables
//
//	CAPSYNC_PROJECT_ROOT="/path/to/app"
//	CAPSYNC_PLATFORM="android"
//	CAPSYNC_MODULES_DIR="node_modules"
//	CAPSYNC_ASSET_ROOT="android/capacitor-cordova-android-plugins"
//	CAPSYNC_WORKERS="5"
//	CAPSYNC_LOG_LEVEL="debug"
//	CAPSYNC_WATCH_DEBOUNCE="1s"
//	CAPSYNC_PREF_<NAME>="value"   # preference override, e.g. CAPSYNC_PREF_MAPS_VERSION
//
// Preference overrides replace the defaults plugins declare for their build
// dependency placeholders.
package config
