package stage

import (
	"errors"
	"testing"

	"lyrico/internal/services"
)

func TestParseTranscriptValid(t *testing.T) {
	segments, err := ParseTranscript(`[{"line":"hello world"},{"line":"second line"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("len(segments) = %d, want 2", len(segments))
	}
	if segments[0].Line != "hello world" {
		t.Fatalf("unexpected first line: %q", segments[0].Line)
	}
}

func TestParseTranscriptEmpty(t *testing.T) {
	_, err := ParseTranscript("")
	if err == nil {
		t.Fatal("expected error for empty transcript")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseTranscriptInvalid(t *testing.T) {
	_, err := ParseTranscript("{invalid json")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
