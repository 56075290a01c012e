// Package config loads, normalizes, and validates the TOML configuration
// shared by the daemon and CLI.
//
// Load resolves the config path (explicit flag or ~/.config/clipline),
// overlays file values onto Default(), expands ~ in path fields, and
// validates provider endpoints before anything else starts. A missing file
// is not an error; defaults apply, and provider URLs are then reported as
// missing by Validate.
package config
