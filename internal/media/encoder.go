package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// ProgressUpdate captures encode progress events.
type ProgressUpdate struct {
	Percent float64
	Message string
}

// EncodeRequest describes one render: the downloaded source assets, the
// caption file to burn in, and where the result should land.
type EncodeRequest struct {
	ArtworkPath     string
	AudioPath       string
	CaptionsPath    string
	OutputPath      string
	DurationSeconds float64
	Style           StyleOverride
}

// StyleOverride adjusts caption presentation at encode time.
type StyleOverride struct {
	FontSize       int
	Alignment      int
	VerticalMargin int
}

// Encoder defines video rendering behaviour.
type Encoder interface {
	Encode(ctx context.Context, req EncodeRequest, progress func(ProgressUpdate)) error
}

// Option configures the CLI encoder.
type Option func(*FFmpegCLI)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(c *FFmpegCLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithVideoPreset sets the x264 preset.
func WithVideoPreset(preset string) Option {
	return func(c *FFmpegCLI) {
		if preset != "" {
			c.preset = preset
		}
	}
}

// WithAudioBitrate sets the AAC bitrate.
func WithAudioBitrate(bitrate string) Option {
	return func(c *FFmpegCLI) {
		if bitrate != "" {
			c.audioBitrate = bitrate
		}
	}
}

// WithFrameRate sets the output frame rate.
func WithFrameRate(rate int) Option {
	return func(c *FFmpegCLI) {
		if rate > 0 {
			c.frameRate = rate
		}
	}
}

// WithOutputSize sets the output dimensions.
func WithOutputSize(width, height int) Option {
	return func(c *FFmpegCLI) {
		if width > 0 && height > 0 {
			c.width = width
			c.height = height
		}
	}
}

// FFmpegCLI renders videos by shelling out to ffmpeg.
type FFmpegCLI struct {
	binary       string
	preset       string
	audioBitrate string
	frameRate    int
	width        int
	height       int
}

// NewFFmpegCLI constructs an encoder using defaults.
func NewFFmpegCLI(opts ...Option) *FFmpegCLI {
	cli := &FFmpegCLI{
		binary:       "ffmpeg",
		preset:       "ultrafast",
		audioBitrate: "192k",
		frameRate:    30,
		width:        1080,
		height:       1920,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Encode runs ffmpeg and blocks until the render finishes. Progress callbacks
// are derived from ffmpeg's machine-readable progress stream when the request
// carries a known duration.
func (c *FFmpegCLI) Encode(ctx context.Context, req EncodeRequest, progress func(ProgressUpdate)) error {
	if req.ArtworkPath == "" {
		return errors.New("artwork path required")
	}
	if req.AudioPath == "" {
		return errors.New("audio path required")
	}
	if req.CaptionsPath == "" {
		return errors.New("captions path required")
	}
	if req.OutputPath == "" {
		return errors.New("output path required")
	}

	args := []string{
		"-y",
		"-loop", "1",
		"-i", req.ArtworkPath,
		"-i", req.AudioPath,
		"-vf", buildFilterGraph(c.width, c.height, req.CaptionsPath, req.Style),
		"-c:v", "libx264",
		"-preset", c.preset,
		"-tune", "stillimage",
		"-r", strconv.Itoa(c.frameRate),
		"-c:a", "aac",
		"-b:a", c.audioBitrate,
		"-pix_fmt", "yuv420p",
		"-shortest",
		"-nostats",
		"-progress", "pipe:1",
		req.OutputPath,
	}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		key, value, found := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !found || progress == nil {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			micros, err := strconv.ParseInt(value, 10, 64)
			if err != nil || req.DurationSeconds <= 0 {
				continue
			}
			percent := float64(micros) / 1e6 / req.DurationSeconds * 100
			if percent > 100 {
				percent = 100
			}
			progress(ProgressUpdate{Percent: percent, Message: "encoding video"})
		case "progress":
			if value == "end" {
				progress(ProgressUpdate{Percent: 100, Message: "encode complete"})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ffmpeg output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return fmt.Errorf("ffmpeg encode failed: %w: %s", err, lastLine(detail))
		}
		return fmt.Errorf("ffmpeg encode failed: %w", err)
	}

	return nil
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed
		}
	}
	return s
}

var _ Encoder = (*FFmpegCLI)(nil)
