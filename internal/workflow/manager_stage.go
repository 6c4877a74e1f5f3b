package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lyrico/internal/logging"
	"lyrico/internal/queue"
	"lyrico/internal/services"
)

func (m *Manager) processJob(ctx context.Context, job *queue.Job) error {
	requestID := uuid.NewString()
	jobCtx := services.WithJobID(ctx, job.ID)
	jobCtx = services.WithRequestID(jobCtx, requestID)

	if err := m.transitionToProcessing(jobCtx, job); err != nil {
		logging.WithContext(jobCtx, m.logger).Error("failed to transition job to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	m.mu.RLock()
	stages := m.stages
	m.mu.RUnlock()

	jobStart := time.Now()
	for _, stg := range stages {
		stageCtx := services.WithStage(jobCtx, stg.name)
		if err := m.executeStage(stageCtx, stg, job); err != nil {
			return err
		}
	}

	job.Status = queue.StatusComplete
	if job.ProgressPercent < 100 {
		job.ProgressPercent = 100
	}
	if strings.TrimSpace(job.ProgressMessage) == "" {
		job.ProgressMessage = "Completed"
	}
	if err := m.store.Update(jobCtx, job); err != nil {
		wrapped := fmt.Errorf("persist job completion: %w", err)
		logging.WithContext(jobCtx, m.logger).Error("failed to persist job completion", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	m.setLastJob(job)
	logging.WithContext(jobCtx, m.logger).Info("job completed",
		logging.String("reference", job.Reference),
		logging.Duration("job_duration", time.Since(jobStart)),
	)
	return nil
}

func (m *Manager) executeStage(ctx context.Context, stg pipelineStage, job *queue.Job) error {
	logger := logging.WithContext(ctx, m.logger)
	stageStart := time.Now()
	logger.Info("stage started",
		logging.String("reference", job.Reference),
		logging.String("title", strings.TrimSpace(job.Title)),
	)

	if err := stg.handler.Prepare(ctx, job); err != nil {
		m.handleStageFailure(ctx, stg.name, job, err)
		m.setLastError(err)
		return err
	}
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		logger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	if err := stg.handler.Execute(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(ctx, stg.name, job, err)
		m.setLastError(err)
		return err
	}

	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		logger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	logger.Info("stage completed",
		logging.String("progress_message", strings.TrimSpace(job.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastJob(job)
	return nil
}

func (m *Manager) transitionToProcessing(ctx context.Context, job *queue.Job) error {
	job.Status = queue.StatusProcessing
	job.ErrorMessage = ""
	job.SetProgress("fetch", "Processing started", 0)
	if err := m.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastJob(job)
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, job *queue.Job, stageErr error) {
	logger := logging.WithContext(ctx, m.logger)

	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed without error detail", stageName)
	}
	job.SetFailed(message)

	logger.Error("stage failed",
		logging.String("reference", job.Reference),
		logging.String("error_message", message),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
	m.setLastJob(job)

	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyJobFailed(ctx, job.Reference, stageErr); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send failure notification")
		} else {
			logger.Debug("failure notification failed", logging.Error(err))
		}
	}
}
