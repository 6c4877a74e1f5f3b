// Package api defines the wire types shared by the daemon HTTP surface and
// the CLI: webhook job payloads, transport-friendly job views, and daemon
// status documents.
package api
