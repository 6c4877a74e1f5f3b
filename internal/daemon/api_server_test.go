package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"lyrico/internal/api"
	"lyrico/internal/config"
	"lyrico/internal/testsupport"
)

func startDaemon(t *testing.T, opts ...testsupport.ConfigOption) (*config.Config, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Workflow.QueuePollInterval = 3600

	d := newDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(d.Stop)

	// Let the initial queue poll pass so jobs submitted by the test stay
	// pending for the long 3600s interval configured above.
	time.Sleep(200 * time.Millisecond)

	addr := d.APIAddr()
	if addr == "" {
		t.Fatal("expected api server to be listening")
	}
	return cfg, "http://" + addr
}

func submitPayload() []byte {
	payload := api.JobPayload{
		Reference:  "song-api",
		Title:      "API Song",
		Transcript: json.RawMessage(`[{"line":"hello world"}]`),
		ArtworkURL: "https://cdn.example.com/art.png",
		AudioURL:   "https://cdn.example.com/audio.mp3",
	}
	body, _ := json.Marshal(payload)
	return body
}

func TestAPISubmitAndFetchJob(t *testing.T) {
	_, baseURL := startDaemon(t)

	resp, err := http.Post(baseURL+"/api/jobs", "application/json", bytes.NewReader(submitPayload()))
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("submit status = %d, want 202", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	var created api.JobResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode submit response: %v", err)
	}
	if created.Job.ID == 0 || created.Job.Reference != "song-api" {
		t.Fatalf("created job = %+v", created.Job)
	}
	if created.Job.Status != "pending" {
		t.Fatalf("created status = %q", created.Job.Status)
	}

	byID, err := http.Get(fmt.Sprintf("%s/api/jobs/%d", baseURL, created.Job.ID))
	if err != nil {
		t.Fatalf("fetch by id: %v", err)
	}
	defer byID.Body.Close()
	if byID.StatusCode != http.StatusOK {
		t.Fatalf("fetch status = %d", byID.StatusCode)
	}

	byRef, err := http.Get(baseURL + "/api/jobs/song-api")
	if err != nil {
		t.Fatalf("fetch by reference: %v", err)
	}
	defer byRef.Body.Close()
	var fetched api.JobResponse
	if err := json.NewDecoder(byRef.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode reference response: %v", err)
	}
	if fetched.Job.ID != created.Job.ID {
		t.Fatalf("reference lookup id = %d, want %d", fetched.Job.ID, created.Job.ID)
	}

	list, err := http.Get(baseURL + "/api/jobs?status=pending")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer list.Body.Close()
	var listed api.JobListResponse
	if err := json.NewDecoder(list.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed.Jobs) != 1 {
		t.Fatalf("listed jobs = %d, want 1", len(listed.Jobs))
	}
}

func TestAPISubmitRejectsInvalidPayload(t *testing.T) {
	_, baseURL := startDaemon(t)

	resp, err := http.Post(baseURL+"/api/jobs", "application/json", bytes.NewReader([]byte(`{"reference":""}`)))
	if err != nil {
		t.Fatalf("submit request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAPIListRejectsUnknownStatus(t *testing.T) {
	_, baseURL := startDaemon(t)

	resp, err := http.Get(baseURL + "/api/jobs?status=bogus")
	if err != nil {
		t.Fatalf("list request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAPIMissingJobReturnsNotFound(t *testing.T) {
	_, baseURL := startDaemon(t)

	resp, err := http.Get(baseURL + "/api/jobs/9999")
	if err != nil {
		t.Fatalf("fetch request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAPIStatus(t *testing.T) {
	_, baseURL := startDaemon(t)

	resp, err := http.Get(baseURL + "/api/status")
	if err != nil {
		t.Fatalf("status request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var status api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running daemon")
	}
	if !status.Workflow.Running {
		t.Fatal("expected running workflow")
	}
	if len(status.Workflow.StageHealth) == 0 {
		t.Fatal("expected stage health entries")
	}
}

func TestAPIBearerAuth(t *testing.T) {
	_, baseURL := startDaemon(t, func(cfg *config.Config) {
		cfg.Paths.APIToken = "secret-token"
	})

	resp, err := http.Get(baseURL + "/api/status")
	if err != nil {
		t.Fatalf("unauthenticated request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, baseURL+"/api/status", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer secret-token")
	authed, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("authenticated request: %v", err)
	}
	defer authed.Body.Close()
	if authed.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", authed.StatusCode)
	}
}
