package captions

import "strings"

// documentHeader is the fixed style template applied to every generated
// document. It is not parameterized by input: callers that need different
// visual styling pass a force_style override to the encoder instead (see
// internal/media). The style field order follows the V4+ format line below.
const documentHeader = `[Script Info]
Title: Lyrico Karaoke Captions
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Karaoke,Montserrat,96,&H00FFFFFF,&H0000D7FF,&H00000000,&H64000000,-1,0,0,0,100,100,0,0,1,4,2,2,60,60,320,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// Generate produces the complete ASS subtitle document for a transcript and
// a target audio duration. It is deterministic, holds no state between
// calls, and performs no I/O; an empty transcript yields the header with no
// Dialogue lines.
func Generate(segments []Segment, totalSeconds float64) string {
	avg := AverageWordDuration(segments, totalSeconds)
	events := BuildEvents(segments, avg)

	var doc strings.Builder
	doc.Grow(len(documentHeader) + len(events)*96)
	doc.WriteString(documentHeader)
	for _, ev := range events {
		doc.WriteString(renderDialogue(ev))
		doc.WriteByte('\n')
	}
	return doc.String()
}
