package captions

import "strings"

// Segment is one transcript line in playback order.
type Segment struct {
	Line string `json:"line"`
}

// Words splits the segment on whitespace, discarding empty tokens.
func (s Segment) Words() []string {
	return strings.Fields(s.Line)
}

// WordCount returns the total whitespace-delimited word count across segments.
func WordCount(segments []Segment) int {
	total := 0
	for _, seg := range segments {
		total += len(seg.Words())
	}
	return total
}

// AverageWordDuration distributes totalSeconds evenly across every word in
// the transcript. A transcript with no words yields 0 rather than dividing
// by zero. The result is always finite and non-negative for non-negative
// input.
func AverageWordDuration(segments []Segment, totalSeconds float64) float64 {
	words := WordCount(segments)
	if words == 0 {
		return 0
	}
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return totalSeconds / float64(words)
}
