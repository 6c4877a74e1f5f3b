// Package fetch implements the first pipeline stage: downloading a job's
// artwork and audio into the staging directory and probing the audio
// duration that drives caption timing.
package fetch
