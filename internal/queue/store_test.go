package queue_test

import (
	"context"
	"fmt"
	"testing"

	"lyrico/internal/queue"
	"lyrico/internal/testsupport"
)

func TestEnqueueAndFetch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job, err := store.Enqueue(ctx, &queue.Job{
		Reference:      "song-1",
		Title:          "First Song",
		TranscriptJSON: `[{"line":"hello world"}]`,
		ArtworkURL:     "https://cdn.example.com/art.png",
		AudioURL:       "https://cdn.example.com/audio.mp3",
		Language:       "en",
	})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if job.ID == 0 {
		t.Fatal("expected job ID to be assigned")
	}
	if job.Status != queue.StatusPending {
		t.Fatalf("status = %q, want pending", job.Status)
	}
	if job.CreatedAt.IsZero() || job.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "First Song" {
		t.Fatalf("unexpected fetched job: %#v", fetched)
	}
	if fetched.TranscriptJSON != `[{"line":"hello world"}]` {
		t.Fatalf("unexpected transcript: %q", fetched.TranscriptJSON)
	}

	found, err := store.GetByReference(ctx, "song-1")
	if err != nil {
		t.Fatalf("GetByReference failed: %v", err)
	}
	if found == nil || found.ID != job.ID {
		t.Fatalf("expected to find inserted job, got %#v", found)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job, err := store.GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil for missing job, got %#v", job)
	}
}

func TestGetByReferenceReturnsNewest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewJob(t, store, "song-dup")
	second := testsupport.NewJob(t, store, "song-dup")
	if first.ID == second.ID {
		t.Fatal("expected distinct job IDs")
	}

	found, err := store.GetByReference(ctx, "song-dup")
	if err != nil {
		t.Fatalf("GetByReference failed: %v", err)
	}
	if found == nil || found.ID != second.ID {
		t.Fatalf("expected newest job %d, got %#v", second.ID, found)
	}
}

func TestUpdatePersistsFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "song-update")

	job.Status = queue.StatusProcessing
	job.SetProgress("render", "encoding video", 40)
	job.ArtworkFile = "/tmp/art.png"
	job.DurationSeconds = 12.5
	if err := store.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusProcessing {
		t.Fatalf("status = %q, want processing", fetched.Status)
	}
	if fetched.ProgressStage != "render" || fetched.ProgressPercent != 40 {
		t.Fatalf("unexpected progress: %q %f", fetched.ProgressStage, fetched.ProgressPercent)
	}
	if fetched.ArtworkFile != "/tmp/art.png" {
		t.Fatalf("artwork file = %q", fetched.ArtworkFile)
	}
	if fetched.DurationSeconds != 12.5 {
		t.Fatalf("duration = %f", fetched.DurationSeconds)
	}
}

func TestNextPendingOrdersByCreation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewJob(t, store, "song-a")
	testsupport.NewJob(t, store, "song-b")

	next, err := store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending job %d, got %#v", first.ID, next)
	}

	next.Status = queue.StatusProcessing
	if err := store.Update(ctx, next); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	next, err = store.NextPending(ctx)
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next == nil || next.Reference != "song-b" {
		t.Fatalf("expected song-b next, got %#v", next)
	}
}

func TestNextPendingEmptyQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	next, err := store.NextPending(context.Background())
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if next != nil {
		t.Fatalf("expected nil for empty queue, got %#v", next)
	}
}

func TestFailStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stale := testsupport.NewJob(t, store, "song-stale")
	stale.Status = queue.StatusProcessing
	if err := store.Update(ctx, stale); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	untouched := testsupport.NewJob(t, store, "song-pending")

	affected, err := store.FailStaleProcessing(ctx, queue.DaemonStopReason)
	if err != nil {
		t.Fatalf("FailStaleProcessing failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}

	fetched, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusFailed {
		t.Fatalf("status = %q, want failed", fetched.Status)
	}
	if fetched.ErrorMessage != queue.DaemonStopReason {
		t.Fatalf("error message = %q", fetched.ErrorMessage)
	}

	pending, err := store.GetByID(ctx, untouched.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if pending.Status != queue.StatusPending {
		t.Fatalf("pending job changed status: %q", pending.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	var failed []*queue.Job
	for i := 0; i < 3; i++ {
		job := testsupport.NewJob(t, store, fmt.Sprintf("song-fail-%d", i))
		job.SetFailed("encode crashed")
		if err := store.Update(ctx, job); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		failed = append(failed, job)
	}

	affected, err := store.RetryFailed(ctx, failed[0].ID)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("affected = %d, want 1", affected)
	}

	affected, err = store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if affected != 2 {
		t.Fatalf("affected = %d, want 2", affected)
	}

	for _, job := range failed {
		fetched, err := store.GetByID(ctx, job.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if fetched.Status != queue.StatusPending {
			t.Fatalf("job %d status = %q, want pending", job.ID, fetched.Status)
		}
		if fetched.ErrorMessage != "" {
			t.Fatalf("job %d error message not cleared: %q", job.ID, fetched.ErrorMessage)
		}
	}
}

func TestListFiltersByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewJob(t, store, "song-1")
	done := testsupport.NewJob(t, store, "song-2")
	done.Status = queue.StatusComplete
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}

	completed, err := store.List(ctx, queue.StatusComplete)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != done.ID {
		t.Fatalf("unexpected completed list: %#v", completed)
	}
}

func TestHealthAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewJob(t, store, "song-1")
	done := testsupport.NewJob(t, store, "song-2")
	done.Status = queue.StatusComplete
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	failed := testsupport.NewJob(t, store, "song-3")
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 3 || health.Pending != 1 || health.Completed != 1 || health.Failed != 1 {
		t.Fatalf("unexpected health: %#v", health)
	}

	removed, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	removed, err = store.ClearFailed(ctx)
	if err != nil {
		t.Fatalf("ClearFailed failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	removed, err = store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  queue.Status
		ok    bool
	}{
		{"pending", queue.StatusPending, true},
		{" Processing ", queue.StatusProcessing, true},
		{"COMPLETE", queue.StatusComplete, true},
		{"failed", queue.StatusFailed, true},
		{"ripping", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := queue.ParseStatus(tc.input)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q, %v", tc.input, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRemove(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "song-remove")

	ok, err := store.Remove(ctx, job.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !ok {
		t.Fatal("expected removal to report success")
	}

	ok, err = store.Remove(ctx, job.ID)
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ok {
		t.Fatal("expected second removal to report no rows")
	}
}
