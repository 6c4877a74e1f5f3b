// Package media wraps the external ffmpeg and ffprobe binaries. The encoder
// composes a still artwork image, an audio track, and a burned-in caption
// file into a vertical video, streaming progress back to the caller. The
// prober reads audio duration ahead of caption generation.
package media
