package testsupport

import (
	"context"
	"testing"

	"lyrico/internal/config"
	"lyrico/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob enqueues a render job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, reference string) *queue.Job {
	t.Helper()

	job, err := store.Enqueue(context.Background(), &queue.Job{
		Reference:      reference,
		Title:          "Test Song",
		TranscriptJSON: `[{"line":"hello world"}]`,
		ArtworkURL:     "https://cdn.example.com/art.png",
		AudioURL:       "https://cdn.example.com/audio.mp3",
	})
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return job
}
