package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"log/slog"

	"lyrico/internal/config"
	"lyrico/internal/daemon"
	"lyrico/internal/fetch"
	"lyrico/internal/logging"
	"lyrico/internal/publish"
	"lyrico/internal/queue"
	"lyrico/internal/render"
	"lyrico/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "lyricod.pid")
	if err := writePIDFile(pidPath); err != nil {
		logger.Error("write pid file", logging.Error(err))
		os.Exit(1)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	workflowManager := workflow.NewManager(cfg, store, logger)
	if err := registerStages(workflowManager, cfg, store, logger); err != nil {
		logger.Error("configure stages", logging.Error(err))
		os.Exit(1)
	}

	d, err := daemon.New(cfg, store, logger, workflowManager)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("lyrico daemon shutting down")
	d.Stop()
}

func registerStages(mgr *workflow.Manager, cfg *config.Config, store *queue.Store, logger *slog.Logger) error {
	publisher, err := publish.NewPublisher(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("publish stage: %w", err)
	}
	mgr.ConfigureStages(workflow.StageSet{
		Fetcher:   fetch.NewFetcher(cfg, store, logger),
		Renderer:  render.NewRenderer(cfg, store, logger),
		Publisher: publisher,
	})
	return nil
}

func writePIDFile(path string) error {
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
