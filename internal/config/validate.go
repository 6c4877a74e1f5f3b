package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	if c.Storage.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/lyrico/config.toml"
		}
		return fmt.Errorf("storage.base_url is required. Edit %s (create with 'lyrico config init')", defaultPath)
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket must be set")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	return ensurePositiveMap(map[string]int{
		"encoder.encode_timeout": c.Encoder.EncodeTimeout,
		"encoder.probe_timeout":  c.Encoder.ProbeTimeout,
		"encoder.frame_rate":     c.Encoder.FrameRate,
		"encoder.output_width":   c.Encoder.OutputWidth,
		"encoder.output_height":  c.Encoder.OutputHeight,
	})
}

func (c *Config) validateRender() error {
	if c.Render.FontSize <= 0 {
		return errors.New("render.font_size must be positive")
	}
	if c.Render.Alignment < 1 || c.Render.Alignment > 9 {
		return errors.New("render.alignment must be a numpad alignment code between 1 and 9")
	}
	if c.Render.VerticalMargin < 0 {
		return errors.New("render.vertical_margin must not be negative")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"workflow.download_timeout":     c.Workflow.DownloadTimeout,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
