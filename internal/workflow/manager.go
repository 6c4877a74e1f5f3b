package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"lyrico/internal/config"
	"lyrico/internal/logging"
	"lyrico/internal/notifications"
	"lyrico/internal/queue"
	"lyrico/internal/stage"
)

// StageSet holds the concrete handlers for each pipeline stage.
type StageSet struct {
	Fetcher   stage.Handler
	Renderer  stage.Handler
	Publisher stage.Handler
}

type pipelineStage struct {
	name    string
	handler stage.Handler
}

// Manager coordinates queue processing using registered stage handlers.
type Manager struct {
	cfg           *config.Config
	store         *queue.Store
	logger        *slog.Logger
	notifier      notifications.Service
	pollInterval  time.Duration
	retryInterval time.Duration

	stages []pipelineStage

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastErr error
	lastJob *queue.Job
}

// NewManager constructs a new workflow manager.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Manager {
	return NewManagerWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewManagerWithNotifier constructs a workflow manager with a custom notifier (used in tests).
func NewManagerWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Manager {
	return &Manager{
		cfg:           cfg,
		store:         store,
		logger:        logging.NewComponentLogger(logger, "workflow"),
		notifier:      notifier,
		pollInterval:  time.Duration(cfg.Workflow.QueuePollInterval) * time.Second,
		retryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
	}
}

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	stages := make([]pipelineStage, 0, 3)
	if set.Fetcher != nil {
		stages = append(stages, pipelineStage{name: "fetch", handler: set.Fetcher})
	}
	if set.Renderer != nil {
		stages = append(stages, pipelineStage{name: "render", handler: set.Renderer})
	}
	if set.Publisher != nil {
		stages = append(stages, pipelineStage{name: "publish", handler: set.Publisher})
	}

	m.mu.Lock()
	m.stages = stages
	m.mu.Unlock()
}

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	if failed, err := m.store.FailStaleProcessing(runCtx, queue.DaemonStopReason); err != nil {
		m.logger.Warn("failed to reset stale processing jobs", logging.Error(err))
	} else if failed > 0 {
		m.logger.Info("failed stale processing jobs from previous run", logging.Int64("count", failed))
	}

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := m.store.NextPending(ctx)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to fetch next queue job", logging.Error(err))
			m.waitOrShutdown(ctx, m.retryInterval)
			continue
		}
		if job == nil {
			m.waitOrShutdown(ctx, m.pollInterval)
			continue
		}

		if err := m.processJob(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) waitOrShutdown(ctx context.Context, interval time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(interval):
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastJob(job *queue.Job) {
	m.mu.Lock()
	if job != nil {
		copy := *job
		m.lastJob = &copy
	} else {
		m.lastJob = nil
	}
	m.mu.Unlock()
}
