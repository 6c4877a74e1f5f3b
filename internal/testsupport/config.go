package testsupport

import (
	"path/filepath"
	"testing"

	"lyrico/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Storage.BaseURL = "https://storage.example.com"
	cfg.Storage.Bucket = "videos"
	cfg.Storage.APIKey = "test-key"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithStorage overrides the storage endpoint on the test config.
func WithStorage(baseURL, bucket string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Storage.BaseURL = baseURL
		cfg.Storage.Bucket = bucket
	}
}
