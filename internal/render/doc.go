// Package render implements the second pipeline stage: generating the
// karaoke caption document from the job transcript and encoding the final
// vertical video with ffmpeg.
package render
