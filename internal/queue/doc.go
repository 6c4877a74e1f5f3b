// Package queue persists render jobs in SQLite and exposes the operations
// the daemon, API, and CLI need: enqueueing webhook submissions, claiming
// the next pending job, recording progress, and aggregating queue health.
//
// Timestamps are stored as RFC3339Nano strings in UTC. The schema carries a
// version number; a mismatch requires clearing the database rather than
// in-place migration.
package queue
