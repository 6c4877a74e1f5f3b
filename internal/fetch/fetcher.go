package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"lyrico/internal/config"
	"lyrico/internal/logging"
	"lyrico/internal/media"
	"lyrico/internal/queue"
	"lyrico/internal/services"
	"lyrico/internal/stage"
)

// Fetcher downloads job source assets into staging.
type Fetcher struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	client *http.Client
	prober media.Prober
}

// NewFetcher constructs the fetch stage handler using default dependencies.
func NewFetcher(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Fetcher {
	timeout := time.Duration(cfg.Workflow.DownloadTimeout) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return NewFetcherWithDependencies(cfg, store, logger, &http.Client{Timeout: timeout}, media.NewFFprobeCLI(cfg.Encoder.FFprobeBinary))
}

// NewFetcherWithDependencies allows injecting collaborators (used in tests).
func NewFetcherWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client *http.Client, prober media.Prober) *Fetcher {
	return &Fetcher{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "fetch"),
		client: client,
		prober: prober,
	}
}

func (f *Fetcher) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, f.logger)
	job.SetProgress("fetch", "Downloading source assets", 0)
	job.ErrorMessage = ""
	logger.Info(
		"starting asset fetch",
		logging.String("artwork_url", job.ArtworkURL),
		logging.String("audio_url", job.AudioURL),
	)
	return nil
}

func (f *Fetcher) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, f.logger)

	if strings.TrimSpace(job.ArtworkURL) == "" {
		return services.Wrap(services.ErrValidation, "fetch", "validate inputs", "artwork URL is empty", nil)
	}
	if strings.TrimSpace(job.AudioURL) == "" {
		return services.Wrap(services.ErrValidation, "fetch", "validate inputs", "audio URL is empty", nil)
	}

	jobDir := filepath.Join(f.cfg.Paths.StagingDir, fmt.Sprintf("job-%d", job.ID))
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "fetch", "ensure staging dir", "failed to create job staging directory", err)
	}

	artworkPath := filepath.Join(jobDir, assetFilename("artwork", job.ArtworkURL, ".png"))
	if err := f.download(ctx, job.ArtworkURL, artworkPath); err != nil {
		return services.Wrap(services.ErrTransient, "fetch", "download artwork", "artwork download failed", err)
	}
	job.ArtworkFile = artworkPath
	f.updateProgress(ctx, job, "Artwork downloaded", 40)
	logger.Info("artwork downloaded", logging.String("path", artworkPath))

	audioPath := filepath.Join(jobDir, assetFilename("audio", job.AudioURL, ".mp3"))
	if err := f.download(ctx, job.AudioURL, audioPath); err != nil {
		return services.Wrap(services.ErrTransient, "fetch", "download audio", "audio download failed", err)
	}
	job.AudioFile = audioPath
	f.updateProgress(ctx, job, "Audio downloaded", 80)
	logger.Info("audio downloaded", logging.String("path", audioPath))

	duration, err := f.prober.Duration(ctx, audioPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "fetch", "probe audio", "failed to read audio duration", err)
	}
	job.DurationSeconds = duration
	job.SetProgress("fetch", "Source assets ready", 100)
	logger.Info("audio probed", logging.Float64("duration_seconds", duration))

	return nil
}

// HealthCheck verifies the staging directory is writable.
func (f *Fetcher) HealthCheck(ctx context.Context) stage.Health {
	const name = "fetch"
	if f.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(f.cfg.Paths.StagingDir) == "" {
		return stage.Unhealthy(name, "staging directory not configured")
	}
	if err := os.MkdirAll(f.cfg.Paths.StagingDir, 0o755); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("staging directory unavailable: %v", err))
	}
	return stage.Healthy(name)
}

func (f *Fetcher) download(ctx context.Context, sourceURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, sourceURL)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return out.Close()
}

func (f *Fetcher) updateProgress(ctx context.Context, job *queue.Job, message string, percent float64) {
	logger := logging.WithContext(ctx, f.logger)
	copy := *job
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := f.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist fetch progress", logging.Error(err))
		return
	}
	*job = copy
}

// assetFilename keeps the source extension when the URL carries one so the
// encoder sees a sensible suffix.
func assetFilename(base, sourceURL, fallbackExt string) string {
	ext := fallbackExt
	if parsed, err := url.Parse(sourceURL); err == nil {
		if e := strings.ToLower(path.Ext(parsed.Path)); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	return base + ext
}
