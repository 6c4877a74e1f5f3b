package queue

import (
	"database/sql"
	"errors"
	"time"
)

const jobColumns = "id, reference, title, transcript_json, artwork_url, audio_url, language, status, error_message, progress_stage, progress_percent, progress_message, artwork_file, audio_file, captions_file, rendered_file, result_url, duration_seconds, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id              int64
		reference       string
		title           sql.NullString
		transcriptJSON  string
		artworkURL      string
		audioURL        string
		language        sql.NullString
		statusStr       string
		errorMessage    sql.NullString
		progressStage   sql.NullString
		progressPercent sql.NullFloat64
		progressMessage sql.NullString
		artworkFile     sql.NullString
		audioFile       sql.NullString
		captionsFile    sql.NullString
		renderedFile    sql.NullString
		resultURL       sql.NullString
		durationSeconds sql.NullFloat64
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&reference,
		&title,
		&transcriptJSON,
		&artworkURL,
		&audioURL,
		&language,
		&statusStr,
		&errorMessage,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&artworkFile,
		&audioFile,
		&captionsFile,
		&renderedFile,
		&resultURL,
		&durationSeconds,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:              id,
		Reference:       reference,
		Title:           title.String,
		TranscriptJSON:  transcriptJSON,
		ArtworkURL:      artworkURL,
		AudioURL:        audioURL,
		Language:        language.String,
		Status:          Status(statusStr),
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
		ArtworkFile:     artworkFile.String,
		AudioFile:       audioFile.String,
		CaptionsFile:    captionsFile.String,
		RenderedFile:    renderedFile.String,
		ResultURL:       resultURL.String,
		DurationSeconds: durationSeconds.Float64,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	return job, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
