package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lyrico/internal/api"
)

// daemonClient talks to the lyricod HTTP API.
type daemonClient struct {
	baseURL string
	token   string
	httpc   *http.Client
}

func newDaemonClient(addr, token string) *daemonClient {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &daemonClient{
		baseURL: strings.TrimRight(addr, "/"),
		token:   strings.TrimSpace(token),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

func errDaemonUnavailable(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("daemon API address not configured; set paths.api_bind or pass --addr")
	}
	return fmt.Errorf("daemon not reachable at %s; start it with `lyricod`", addr)
}

// reachable probes the status endpoint with a short timeout.
func (c *daemonClient) reachable() bool {
	if c == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var status api.DaemonStatus
	return c.getJSON(ctx, "/api/status", &status) == nil
}

func (c *daemonClient) Status(ctx context.Context) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.getJSON(ctx, "/api/status", &status)
	return status, err
}

func (c *daemonClient) ListJobs(ctx context.Context, statuses []string) ([]api.JobView, error) {
	path := "/api/jobs"
	if len(statuses) > 0 {
		values := url.Values{}
		for _, status := range statuses {
			values.Add("status", status)
		}
		path += "?" + values.Encode()
	}
	var resp api.JobListResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

func (c *daemonClient) GetJob(ctx context.Context, key string) (*api.JobView, error) {
	var resp api.JobResponse
	if err := c.getJSON(ctx, "/api/jobs/"+url.PathEscape(key), &resp); err != nil {
		return nil, err
	}
	return &resp.Job, nil
}

func (c *daemonClient) Submit(ctx context.Context, payload api.JobPayload) (*api.JobView, error) {
	var resp api.JobResponse
	if err := c.postJSON(ctx, "/api/jobs", payload, &resp); err != nil {
		return nil, err
	}
	return &resp.Job, nil
}

func (c *daemonClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *daemonClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *daemonClient) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	var wrapper struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error != "" {
		return fmt.Errorf("daemon: %s", wrapper.Error)
	}
	return fmt.Errorf("daemon returned status %d", resp.StatusCode)
}
