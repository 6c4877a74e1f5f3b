// Package config loads, normalizes, and validates the TOML configuration
// shared by the lyrico daemon and CLI.
//
// Configuration is resolved from an explicit path, ~/.config/lyrico/config.toml,
// or a project-local lyrico.toml, in that order. Loading always starts from
// repository defaults, expands ~ in path fields, and rejects unusable values
// up front so later stages can trust the config they receive.
package config
