package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lyrico/internal/logging"
	"lyrico/internal/media"
	"lyrico/internal/queue"
	"lyrico/internal/render"
	"lyrico/internal/services"
	"lyrico/internal/testsupport"
)

type stubEncoder struct {
	request media.EncodeRequest
	err     error
	output  []byte
}

func (s *stubEncoder) Encode(ctx context.Context, req media.EncodeRequest, progress func(media.ProgressUpdate)) error {
	s.request = req
	if s.err != nil {
		return s.err
	}
	if progress != nil {
		progress(media.ProgressUpdate{Percent: 50, Message: "encoding video"})
		progress(media.ProgressUpdate{Percent: 100, Message: "encode complete"})
	}
	data := s.output
	if data == nil {
		data = []byte("video")
	}
	return os.WriteFile(req.OutputPath, data, 0o644)
}

func fetchedJob(t *testing.T, store *queue.Store) *queue.Job {
	t.Helper()
	job := testsupport.NewJob(t, store, "song-render")
	jobDir := t.TempDir()
	job.ArtworkFile = filepath.Join(jobDir, "artwork.png")
	job.AudioFile = filepath.Join(jobDir, "audio.mp3")
	job.DurationSeconds = 4
	for _, path := range []string{job.ArtworkFile, job.AudioFile} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return job
}

func TestRenderGeneratesCaptionsAndEncodes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	encoder := &stubEncoder{}
	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), encoder)

	job := fetchedJob(t, store)
	ctx := context.Background()
	if err := renderer.Prepare(ctx, job); err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if err := renderer.Execute(ctx, job); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if job.CaptionsFile == "" {
		t.Fatal("expected captions file to be recorded")
	}
	document, err := os.ReadFile(job.CaptionsFile)
	if err != nil {
		t.Fatalf("read captions: %v", err)
	}
	for _, fragment := range []string{"[Script Info]", "[Events]", `{\k`} {
		if !strings.Contains(string(document), fragment) {
			t.Fatalf("captions missing fragment %q", fragment)
		}
	}

	if job.RenderedFile == "" {
		t.Fatal("expected rendered file to be recorded")
	}
	if _, err := os.Stat(job.RenderedFile); err != nil {
		t.Fatalf("stat rendered file: %v", err)
	}
	if job.ProgressPercent != 100 {
		t.Fatalf("progress = %f, want 100", job.ProgressPercent)
	}

	if encoder.request.CaptionsPath != job.CaptionsFile {
		t.Fatalf("encoder captions path = %q, want %q", encoder.request.CaptionsPath, job.CaptionsFile)
	}
	if encoder.request.Style.FontSize != cfg.Render.FontSize {
		t.Fatalf("style font size = %d, want %d", encoder.request.Style.FontSize, cfg.Render.FontSize)
	}
	if encoder.request.DurationSeconds != 4 {
		t.Fatalf("duration = %f, want 4", encoder.request.DurationSeconds)
	}
}

func TestRenderRequiresFetchedAssets(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), &stubEncoder{})

	job := testsupport.NewJob(t, store, "song-missing")
	err := renderer.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenderRequiresKnownDuration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), &stubEncoder{})

	job := fetchedJob(t, store)
	job.DurationSeconds = 0
	err := renderer.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenderInvalidTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), &stubEncoder{})

	job := fetchedJob(t, store)
	job.TranscriptJSON = "{broken"
	err := renderer.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenderEncodeFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), &stubEncoder{err: errors.New("encoder exploded")})

	job := fetchedJob(t, store)
	err := renderer.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestRenderEmptyOutputRejected(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	renderer := render.NewRendererWithDependencies(cfg, store, logging.NewNop(), &stubEncoder{output: []byte{}})

	job := fetchedJob(t, store)
	err := renderer.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error for empty output, got %v", err)
	}
}

func TestRenderHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	renderer := render.NewRenderer(cfg, store, logging.NewNop())
	if health := renderer.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy stage, got %#v", health)
	}

	cfg.Encoder.FFmpegBinary = ""
	renderer = render.NewRendererWithDependencies(cfg, store, logging.NewNop(), &stubEncoder{})
	if health := renderer.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy stage without ffmpeg binary")
	}
}
