// Package logging builds the slog loggers used across the daemon and CLI.
//
// Two handler formats are supported: a human-oriented console format for
// interactive use and JSON for machine consumption. Helpers standardize
// attribute keys so job, stage, and correlation identifiers look the same
// everywhere in the logs.
package logging
