package render

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lyrico/internal/captions"
	"lyrico/internal/config"
	"lyrico/internal/logging"
	"lyrico/internal/media"
	"lyrico/internal/queue"
	"lyrico/internal/services"
	"lyrico/internal/stage"
)

// Renderer turns fetched assets into the final video.
type Renderer struct {
	store   *queue.Store
	cfg     *config.Config
	logger  *slog.Logger
	encoder media.Encoder
}

// NewRenderer constructs the render stage handler using default dependencies.
func NewRenderer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Renderer {
	encoder := media.NewFFmpegCLI(
		media.WithBinary(cfg.Encoder.FFmpegBinary),
		media.WithVideoPreset(cfg.Encoder.VideoPreset),
		media.WithAudioBitrate(cfg.Encoder.AudioBitrate),
		media.WithFrameRate(cfg.Encoder.FrameRate),
		media.WithOutputSize(cfg.Encoder.OutputWidth, cfg.Encoder.OutputHeight),
	)
	return NewRendererWithDependencies(cfg, store, logger, encoder)
}

// NewRendererWithDependencies allows injecting collaborators (used in tests).
func NewRendererWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, encoder media.Encoder) *Renderer {
	return &Renderer{
		store:   store,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "render"),
		encoder: encoder,
	}
}

func (r *Renderer) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, r.logger)
	job.SetProgress("render", "Preparing render", 0)
	job.ErrorMessage = ""
	logger.Info(
		"starting render preparation",
		logging.String("artwork_file", job.ArtworkFile),
		logging.String("audio_file", job.AudioFile),
		logging.Float64("duration_seconds", job.DurationSeconds),
	)
	return nil
}

func (r *Renderer) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, r.logger)

	if job.ArtworkFile == "" || job.AudioFile == "" {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"source assets missing; fetch must run before render", nil)
	}
	if job.DurationSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"audio duration unknown; fetch must probe before render", nil)
	}

	segments, err := stage.ParseTranscript(job.TranscriptJSON)
	if err != nil {
		return err
	}

	jobDir := filepath.Dir(job.AudioFile)
	captionsPath := filepath.Join(jobDir, "captions.ass")
	document := captions.Generate(segments, job.DurationSeconds)
	if err := os.WriteFile(captionsPath, []byte(document), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "render", "write captions", "failed to write caption file", err)
	}
	job.CaptionsFile = captionsPath
	r.updateProgress(ctx, job, "Captions generated", 10)
	logger.Info("caption document written",
		logging.String("path", captionsPath),
		logging.Int("segments", len(segments)),
	)

	outputPath := filepath.Join(jobDir, "render.mp4")
	encodeCtx := ctx
	if timeout := time.Duration(r.cfg.Encoder.EncodeTimeout) * time.Second; timeout > 0 {
		var cancel context.CancelFunc
		encodeCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req := media.EncodeRequest{
		ArtworkPath:     job.ArtworkFile,
		AudioPath:       job.AudioFile,
		CaptionsPath:    captionsPath,
		OutputPath:      outputPath,
		DurationSeconds: job.DurationSeconds,
		Style: media.StyleOverride{
			FontSize:       r.cfg.Render.FontSize,
			Alignment:      r.cfg.Render.Alignment,
			VerticalMargin: r.cfg.Render.VerticalMargin,
		},
	}

	const progressPersistInterval = 2 * time.Second
	var lastPersisted time.Time
	progress := func(update media.ProgressUpdate) {
		// Scale encode progress into the 10-100 band after caption generation.
		percent := 10 + update.Percent*0.9
		if time.Since(lastPersisted) < progressPersistInterval && percent < 100 {
			return
		}
		lastPersisted = time.Now()
		r.updateProgress(ctx, job, update.Message, percent)
	}

	logger.Info("launching ffmpeg encode", logging.String("output", outputPath))
	if err := r.encoder.Encode(encodeCtx, req, progress); err != nil {
		if encodeCtx.Err() == context.DeadlineExceeded {
			return services.Wrap(services.ErrTimeout, "render", "encode video", "encode exceeded timeout", err)
		}
		return services.Wrap(services.ErrExternalTool, "render", "encode video", "ffmpeg encode failed", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "verify output", "rendered file missing after encode", err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "render", "verify output", "rendered file is empty", nil)
	}

	job.RenderedFile = outputPath
	job.SetProgress("render", "Render complete", 100)
	logger.Info("render completed",
		logging.String("rendered_file", outputPath),
		logging.Int64("size_bytes", info.Size()),
	)
	return nil
}

// HealthCheck verifies the encoder binary is resolvable.
func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	const name = "render"
	if r.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(r.cfg.Encoder.FFmpegBinary) == "" {
		return stage.Unhealthy(name, "ffmpeg binary not configured")
	}
	if r.encoder == nil {
		return stage.Unhealthy(name, "encoder unavailable")
	}
	return stage.Healthy(name)
}

func (r *Renderer) updateProgress(ctx context.Context, job *queue.Job, message string, percent float64) {
	logger := logging.WithContext(ctx, r.logger)
	copy := *job
	if message != "" {
		copy.ProgressMessage = message
	}
	copy.ProgressPercent = percent
	if err := r.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist render progress", logging.Error(err))
		return
	}
	*job = copy
}

var _ stage.Handler = (*Renderer)(nil)
