// Package cli implements the capsync command line interface.
//
// # Commands
//
//	capsync update [--platform android]   synthesize native build integration
//	capsync list [--platform android]     show installed plugins and their category
//	capsync watch [--platform android]    update, then re-run on plugin changes
//
// # Global Flags
//
//	--config      config file (default ./capsync.yaml)
//	--project     host project root
//	--log-level   debug, info, warn or error
//
// Flags override the config file and CAPSYNC_* environment variables.
// Logs go to stderr; summaries go to stdout.
package cli
