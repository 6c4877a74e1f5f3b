// Package captions generates the karaoke-style ASS subtitle document burned
// into rendered videos.
//
// The generator is a pure function of (transcript, audio duration): word
// timing is allocated uniformly across the transcript, each word receives a
// karaoke tag with its duration in centiseconds, and one Dialogue event is
// emitted per transcript segment. Segments are contiguous with no gaps or
// overlaps, so the events cover the audio exactly.
//
// Word timings are an approximation, not a forced-alignment result: every
// word gets the same share of the total duration regardless of length or
// punctuation. Renderers downstream only need caption pacing that roughly
// tracks the narration, so the tradeoff is acceptable and keeps the
// generator free of any speech model dependency.
package captions
