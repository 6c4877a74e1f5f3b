package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"lyrico/internal/config"
)

// Client uploads objects and derives public URLs.
type Client struct {
	baseURL    string
	bucket     string
	apiKey     string
	prefix     string
	httpClient *http.Client
}

// NewClient constructs a storage client from configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if cfg.Storage.BaseURL == "" {
		return nil, errors.New("storage base url not configured")
	}
	if cfg.Storage.Bucket == "" {
		return nil, errors.New("storage bucket not configured")
	}
	timeout := time.Duration(cfg.Storage.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.Storage.BaseURL, "/"),
		bucket:     cfg.Storage.Bucket,
		apiKey:     cfg.Storage.APIKey,
		prefix:     strings.Trim(cfg.Storage.Prefix, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ObjectPath joins the configured prefix with an object name.
func (c *Client) ObjectPath(name string) string {
	name = strings.TrimLeft(name, "/")
	if c.prefix == "" {
		return name
	}
	return path.Join(c.prefix, name)
}

// Upload sends object data to the bucket, replacing any existing object at
// the same path.
func (c *Client) Upload(ctx context.Context, objectPath string, data []byte, contentType string) error {
	if objectPath == "" {
		return errors.New("object path required")
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, strings.TrimLeft(objectPath, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("upload %s: status %d: %s", objectPath, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// UploadFile reads a local file and uploads it to the bucket.
func (c *Client) UploadFile(ctx context.Context, objectPath, filePath, contentType string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}
	return c.Upload(ctx, objectPath, data, contentType)
}

// PublicURL returns the public address of an uploaded object. The bucket
// must be configured as public on the storage service.
func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, strings.TrimLeft(objectPath, "/"))
}
