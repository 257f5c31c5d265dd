package queue

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const jobColumns = "id, kind, input, status, progress, output_ref, error_message, score, logs_json, options_json, created_at, updated_at, completed_at"

// terminalGuard keeps every mutation away from finished rows.
const terminalGuard = "status NOT IN ('completed', 'failed')"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var (
		id           string
		kind         string
		input        string
		statusStr    string
		progress     int
		outputRef    sql.NullString
		errorMessage sql.NullString
		score        sql.NullFloat64
		logsRaw      sql.NullString
		optionsRaw   sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		completedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&kind,
		&input,
		&statusStr,
		&progress,
		&outputRef,
		&errorMessage,
		&score,
		&logsRaw,
		&optionsRaw,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
	); err != nil {
		return nil, err
	}

	job := &Job{
		ID:        id,
		Kind:      Kind(kind),
		Input:     input,
		Status:    Status(statusStr),
		Progress:  progress,
		OutputRef: outputRef.String,
		Error:     errorMessage.String,
	}
	if score.Valid {
		value := score.Float64
		job.Score = &value
	}
	if logsRaw.Valid && logsRaw.String != "" {
		if err := json.Unmarshal([]byte(logsRaw.String), &job.Logs); err != nil {
			return nil, fmt.Errorf("decode logs for job %s: %w", id, err)
		}
	}
	if err := decodeOptions(job, optionsRaw.String); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		job.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		job.UpdatedAt = updated
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			job.CompletedAt = &completed
		}
	}
	return job, nil
}

func encodeOptions(job *Job) (string, error) {
	var payload any
	switch job.Kind {
	case KindClip:
		opts := DefaultClipOptions()
		if job.ClipOptions != nil {
			opts = *job.ClipOptions
		}
		payload = opts
	case KindGenerate:
		opts := DefaultGenerateOptions()
		if job.GenerateOptions != nil {
			opts = *job.GenerateOptions
		}
		payload = opts
	default:
		return "", fmt.Errorf("unknown job kind %q", job.Kind)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	return string(data), nil
}

func decodeOptions(job *Job, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}
	switch job.Kind {
	case KindClip:
		opts := DefaultClipOptions()
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return fmt.Errorf("decode clip options for job %s: %w", job.ID, err)
		}
		job.ClipOptions = &opts
	case KindGenerate:
		opts := DefaultGenerateOptions()
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			return fmt.Errorf("decode generate options for job %s: %w", job.ID, err)
		}
		job.GenerateOptions = &opts
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
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

func clampProgress(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
