package stage

import (
	"encoding/json"
	"strings"

	"lyrico/internal/captions"
	"lyrico/internal/services"
)

// ParseTranscript decodes a job's transcript JSON into caption segments.
// On failure it returns a services.ErrValidation suitable for stage Execute
// methods.
func ParseTranscript(raw string) ([]captions.Segment, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse transcript",
			"transcript is empty", nil)
	}
	var segments []captions.Segment
	if err := json.Unmarshal([]byte(trimmed), &segments); err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse transcript",
			"transcript JSON is invalid", err)
	}
	return segments, nil
}
