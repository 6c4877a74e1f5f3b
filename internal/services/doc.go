// Package services holds cross-cutting helpers shared by pipeline stages:
// sentinel errors with status classification and context annotation for
// job, stage, and request identifiers.
package services
