package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lyrico/internal/config"
	"lyrico/internal/logging"
	"lyrico/internal/notifications"
	"lyrico/internal/queue"
	"lyrico/internal/services"
	"lyrico/internal/stage"
	"lyrico/internal/storage"
)

// Uploader is the subset of the storage client the publisher needs.
type Uploader interface {
	ObjectPath(name string) string
	UploadFile(ctx context.Context, objectPath, filePath, contentType string) error
	PublicURL(objectPath string) string
}

// Publisher uploads rendered videos and finalizes jobs.
type Publisher struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	uploader Uploader
	notifier notifications.Service
}

// NewPublisher constructs the publish stage handler using default dependencies.
func NewPublisher(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Publisher, error) {
	client, err := storage.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return NewPublisherWithDependencies(cfg, store, logger, client, notifications.NewService(cfg)), nil
}

// NewPublisherWithDependencies allows injecting collaborators (used in tests).
func NewPublisherWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, uploader Uploader, notifier notifications.Service) *Publisher {
	return &Publisher{
		store:    store,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "publish"),
		uploader: uploader,
		notifier: notifier,
	}
}

func (p *Publisher) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, p.logger)
	job.SetProgress("publish", "Preparing upload", 0)
	job.ErrorMessage = ""
	logger.Info("starting publish preparation", logging.String("rendered_file", job.RenderedFile))
	return nil
}

func (p *Publisher) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, p.logger)

	if job.RenderedFile == "" {
		return services.Wrap(services.ErrValidation, "publish", "validate inputs",
			"no rendered file present; render must run before publish", nil)
	}

	objectPath := p.uploader.ObjectPath(objectName(job))
	p.updateProgress(ctx, job, "Uploading video", 20)
	logger.Info("uploading rendered video",
		logging.String("rendered_file", job.RenderedFile),
		logging.String("object_path", objectPath),
	)

	if err := p.uploader.UploadFile(ctx, objectPath, job.RenderedFile, "video/mp4"); err != nil {
		return services.Wrap(services.ErrTransient, "publish", "upload video", "storage upload failed", err)
	}

	job.ResultURL = p.uploader.PublicURL(objectPath)
	p.updateProgress(ctx, job, "Upload complete", 90)
	logger.Info("upload completed", logging.String("result_url", job.ResultURL))

	p.cleanupStaging(job, logger)

	job.SetProgress("publish", "Published", 100)

	if p.notifier != nil {
		title := strings.TrimSpace(job.Title)
		if title == "" {
			title = job.Reference
		}
		if err := p.notifier.NotifyRenderCompleted(ctx, title, job.ResultURL); err != nil {
			logger.Warn("render completion notifier failed", logging.Error(err))
		}
	}

	return nil
}

// HealthCheck verifies the storage client is configured.
func (p *Publisher) HealthCheck(ctx context.Context) stage.Health {
	const name = "publish"
	if p.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(p.cfg.Storage.BaseURL) == "" {
		return stage.Unhealthy(name, "storage base url not configured")
	}
	if p.uploader == nil {
		return stage.Unhealthy(name, "storage client unavailable")
	}
	return stage.Healthy(name)
}

// cleanupStaging removes per-job staging files once the result is uploaded.
// Failures are logged, not fatal: the job already succeeded.
func (p *Publisher) cleanupStaging(job *queue.Job, logger *slog.Logger) {
	jobDir := filepath.Dir(job.RenderedFile)
	staging := strings.TrimSpace(p.cfg.Paths.StagingDir)
	if staging == "" || !strings.HasPrefix(jobDir, staging) {
		return
	}
	if err := os.RemoveAll(jobDir); err != nil {
		logger.Warn("failed to clean staging directory", logging.Error(err))
		return
	}
	job.ArtworkFile = ""
	job.AudioFile = ""
	job.CaptionsFile = ""
	job.RenderedFile = ""
}

func (p *Publisher) updateProgress(ctx context.Context, job *queue.Job, message string, percent float64) {
	logger := logging.WithContext(ctx, p.logger)
	copy := *job
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := p.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist publish progress", logging.Error(err))
		return
	}
	*job = copy
}

func objectName(job *queue.Job) string {
	reference := strings.TrimSpace(job.Reference)
	if reference == "" {
		return fmt.Sprintf("job-%d.mp4", job.ID)
	}
	slug := strings.Builder{}
	lastHyphen := false
	for _, r := range strings.ToLower(reference) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			slug.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if !lastHyphen {
				slug.WriteRune('-')
				lastHyphen = true
			}
		default:
			// drop other runes
		}
	}
	cleaned := strings.Trim(slug.String(), "-")
	if cleaned == "" {
		return fmt.Sprintf("job-%d.mp4", job.ID)
	}
	return fmt.Sprintf("%s-%d.mp4", cleaned, job.ID)
}

var _ stage.Handler = (*Publisher)(nil)
