package api

import "encoding/json"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// JobPayload is the webhook request body that enqueues a render job.
// Field names follow the external webhook contract.
type JobPayload struct {
	Reference  string          `json:"reference"`
	Title      string          `json:"title"`
	Transcript json.RawMessage `json:"transcript"`
	ArtworkURL string          `json:"artwork_url"`
	AudioURL   string          `json:"audio_url"`
	Language   string          `json:"language,omitempty"`
}

// JobView describes a queued job in a transport-friendly format.
type JobView struct {
	ID              int64       `json:"id"`
	Reference       string      `json:"reference"`
	Title           string      `json:"title"`
	Language        string      `json:"language,omitempty"`
	Status          string      `json:"status"`
	Progress        JobProgress `json:"progress"`
	ErrorMessage    string      `json:"errorMessage,omitempty"`
	ResultURL       string      `json:"resultUrl,omitempty"`
	DurationSeconds float64     `json:"durationSeconds,omitempty"`
	CreatedAt       string      `json:"createdAt,omitempty"`
	UpdatedAt       string      `json:"updatedAt,omitempty"`
}

// JobProgress captures stage progress information for a job.
type JobProgress struct {
	Stage   string  `json:"stage"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	QueueStats  map[string]int `json:"queueStats"`
	LastError   string         `json:"lastError,omitempty"`
	LastJob     *JobView       `json:"lastJob,omitempty"`
	StageHealth []StageHealth  `json:"stageHealth"`
}

// StageHealth mirrors readiness reporting for workflow stages.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	QueueDBPath  string         `json:"queueDbPath"`
	LockFilePath string         `json:"lockFilePath"`
	Workflow     WorkflowStatus `json:"workflow"`
}

// JobListResponse wraps a collection of jobs for API responses.
type JobListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job JobView `json:"job"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}
