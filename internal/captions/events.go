package captions

import (
	"fmt"
	"math"
	"strings"
)

// Event is one rendered caption entry covering a single transcript segment.
type Event struct {
	Start float64
	End   float64
	Text  string
}

// styleName must match the Style line emitted by the document header.
const styleName = "Karaoke"

// BuildEvents walks the transcript in order and produces one Event per
// segment. It is an explicit fold carrying (cursor, events): the cursor
// advances by avgWordDuration for each word, a segment's start is the cursor
// value before its words are consumed and its end the value after. A segment
// with no words produces a zero-duration event rather than being skipped.
//
// Each word is prefixed with a karaoke tag holding its duration in
// centiseconds. Braces in the source text are passed through unescaped; a
// transcript that contains ASS override sequences will carry them into the
// output.
func BuildEvents(segments []Segment, avgWordDuration float64) []Event {
	events := make([]Event, 0, len(segments))
	cursor := 0.0
	tag := karaokeTag(avgWordDuration)
	for _, seg := range segments {
		start := cursor
		var text strings.Builder
		for _, word := range seg.Words() {
			text.WriteString(tag)
			text.WriteString(word)
			text.WriteByte(' ')
			cursor += avgWordDuration
		}
		events = append(events, Event{
			Start: start,
			End:   cursor,
			Text:  strings.TrimRight(text.String(), " "),
		})
	}
	return events
}

// karaokeTag encodes a word duration as an ASS \k override in centiseconds.
// Rounding matches FormatTimestamp (round half away from zero) so the tag
// durations cannot drift from the event boundary timestamps.
func karaokeTag(duration float64) string {
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	return fmt.Sprintf(`{\k%d}`, int64(math.Round(duration*100)))
}

// renderDialogue formats an event as an ASS Dialogue line: layer 0, start,
// end, style, empty actor, three zero margin overrides, empty effect, text.
func renderDialogue(ev Event) string {
	return fmt.Sprintf(
		"Dialogue: 0,%s,%s,%s,,0,0,0,,%s",
		FormatTimestamp(ev.Start),
		FormatTimestamp(ev.End),
		styleName,
		ev.Text,
	)
}
