// Package storage uploads rendered videos to a Supabase-style object
// storage service over its REST API and derives the public URLs recorded
// on completed jobs.
package storage
