// Package workflow drives queued render jobs through the fetch, render,
// and publish stages. A single background loop claims pending jobs one at
// a time and runs the registered stage handlers in order.
package workflow
