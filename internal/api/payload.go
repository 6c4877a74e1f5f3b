package api

import (
	"fmt"
	"net/url"
	"strings"

	"lyrico/internal/language"
	"lyrico/internal/queue"
	"lyrico/internal/stage"
)

// ToJob validates the webhook payload and returns a queue job ready to
// enqueue. The transcript must be a non-empty JSON array of segments and
// both asset URLs must be absolute http(s) URLs.
func (p *JobPayload) ToJob() (*queue.Job, error) {
	reference := strings.TrimSpace(p.Reference)
	if reference == "" {
		return nil, fmt.Errorf("reference is required")
	}

	if len(p.Transcript) == 0 {
		return nil, fmt.Errorf("transcript is required")
	}
	segments, err := stage.ParseTranscript(string(p.Transcript))
	if err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("transcript must contain at least one segment")
	}

	if err := validateAssetURL("artwork_url", p.ArtworkURL); err != nil {
		return nil, err
	}
	if err := validateAssetURL("audio_url", p.AudioURL); err != nil {
		return nil, err
	}

	tag, err := language.Normalize(p.Language)
	if err != nil {
		return nil, fmt.Errorf("language: %w", err)
	}

	return &queue.Job{
		Reference:      reference,
		Title:          strings.TrimSpace(p.Title),
		TranscriptJSON: string(p.Transcript),
		ArtworkURL:     strings.TrimSpace(p.ArtworkURL),
		AudioURL:       strings.TrimSpace(p.AudioURL),
		Language:       tag,
		Status:         queue.StatusPending,
	}, nil
}

func validateAssetURL(field, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s is required", field)
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", field)
	}
	return nil
}
