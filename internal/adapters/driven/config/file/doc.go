// Package file loads server settings from a TOML file, overlays GLAXIMINI_*
// environment variables and watches the file for changes.
//
// Precedence, lowest first: built-in defaults, config file, environment,
// command line flags (applied by the CLI).
package file
