// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/lfqrun/config.cue (or the XDG equivalent on Linux,
// ~/Library/Application Support/lfqrun/config.cue on macOS, %APPDATA%\lfqrun\config.cue
// on Windows), falling back to ./config.cue. Every key may be overridden by an
// environment variable with the LFQRUN_ prefix, dots replaced by underscores.
//
// Files are validated against an embedded CUE schema (config_schema.cue) before they
// are merged over the built-in defaults.
package config
