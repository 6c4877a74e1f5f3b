// Package daemon hosts the long-running lyricod process: it enforces
// single-instance execution with a lock file, runs the workflow manager,
// and serves the webhook and status HTTP API.
package daemon
