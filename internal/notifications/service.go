package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lyrico/internal/config"
)

const userAgent = "Lyrico/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyJobReceived(ctx context.Context, reference, title string) error
	NotifyRenderCompleted(ctx context.Context, title, resultURL string) error
	NotifyJobFailed(ctx context.Context, reference string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:       topic,
		client:         &http.Client{Timeout: timeout},
		jobReceived:    cfg.Notifications.JobReceived,
		renderComplete: cfg.Notifications.RenderComplete,
		errors:         cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	jobReceived    bool
	renderComplete bool
	errors         bool
}

func (n *ntfyService) NotifyJobReceived(ctx context.Context, reference, title string) error {
	if !n.jobReceived {
		return nil
	}
	label := strings.TrimSpace(title)
	if label == "" {
		label = strings.TrimSpace(reference)
	}
	data := payload{
		title:   "Lyrico - Job Received",
		message: fmt.Sprintf("Queued for rendering: %s", label),
		tags:    []string{"lyrico", "job", "received"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, title, resultURL string) error {
	if !n.renderComplete {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Render complete: %s", title)
	if resultURL = strings.TrimSpace(resultURL); resultURL != "" {
		message = fmt.Sprintf("%s\n%s", message, resultURL)
	}
	data := payload{
		title:    "Lyrico - Render Complete",
		message:  message,
		tags:     []string{"lyrico", "render", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, reference string, err error) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Job failed")
	if reference = strings.TrimSpace(reference); reference != "" {
		builder.WriteString(": ")
		builder.WriteString(reference)
	}
	builder.WriteString("\n")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown error")
	}

	data := payload{
		title:    "Lyrico - Error",
		message:  builder.String(),
		tags:     []string{"lyrico", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Lyrico - Test",
		message:  "Notification system test",
		tags:     []string{"lyrico", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobReceived(context.Context, string, string) error     { return nil }
func (noopService) NotifyRenderCompleted(context.Context, string, string) error { return nil }
func (noopService) NotifyJobFailed(context.Context, string, error) error        { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }
