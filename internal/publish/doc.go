// Package publish implements the final pipeline stage: uploading the
// rendered video to object storage, recording its public URL on the job,
// and cleaning up staging files.
package publish
