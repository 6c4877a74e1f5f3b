package daemon_test

import (
	"context"
	"errors"
	"testing"

	"lyrico/internal/api"
	"lyrico/internal/config"
	"lyrico/internal/daemon"
	"lyrico/internal/logging"
	"lyrico/internal/queue"
	"lyrico/internal/services"
	"lyrico/internal/stage"
	"lyrico/internal/testsupport"
	"lyrico/internal/workflow"
)

type idleHandler struct{}

func (idleHandler) Prepare(ctx context.Context, job *queue.Job) error { return nil }

func (idleHandler) Execute(ctx context.Context, job *queue.Job) error {
	job.SetProgress("fetch", "fetch complete", 100)
	return nil
}

func (idleHandler) HealthCheck(ctx context.Context) stage.Health { return stage.Healthy("fetch") }

func newDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	manager := workflow.NewManager(cfg, store, logging.NewNop())
	manager.ConfigureStages(workflow.StageSet{Fetcher: idleHandler{}})
	d, err := daemon.New(cfg, store, logging.NewNop(), manager)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 3600

	first := newDaemon(t, cfg)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	t.Cleanup(first.Stop)

	second := newDaemon(t, cfg)
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second daemon start to fail while lock is held")
	}
}

func TestDaemonRestartAfterStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 3600

	d := newDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	d.Stop()
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	d.Stop()
}

func TestDaemonSubmitValidatesPayload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)

	_, err := d.Submit(context.Background(), api.JobPayload{Reference: ""})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDaemonTestNotificationWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	d := newDaemon(t, cfg)

	sent, detail, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification returned error: %v", err)
	}
	if sent {
		t.Fatal("expected notification to be skipped without topic")
	}
	if detail != "ntfy topic not configured" {
		t.Fatalf("detail = %q", detail)
	}
}
