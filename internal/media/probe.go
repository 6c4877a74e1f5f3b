package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Prober reads media metadata.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// FFprobeCLI reads durations by shelling out to ffprobe.
type FFprobeCLI struct {
	binary string
}

// NewFFprobeCLI constructs a prober. An empty binary falls back to "ffprobe".
func NewFFprobeCLI(binary string) *FFprobeCLI {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFprobeCLI{binary: binary}
}

// Duration returns the media duration in seconds.
func (c *FFprobeCLI) Duration(ctx context.Context, path string) (float64, error) {
	if path == "" {
		return 0, errors.New("path required")
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var payload struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &payload); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}

	raw := strings.TrimSpace(payload.Format.Duration)
	if raw == "" {
		return 0, fmt.Errorf("ffprobe reported no duration for %s", path)
	}
	duration, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", raw, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("ffprobe reported non-positive duration %f for %s", duration, path)
	}
	return duration, nil
}

var _ Prober = (*FFprobeCLI)(nil)
