package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"shortforge/internal/api"
)

const shortIDLength = 8

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func formatScore(score *float64) string {
	if score == nil {
		return "-"
	}
	return strconv.FormatFloat(*score, 'f', 1, 64)
}

func formatProgress(progress int) string {
	return fmt.Sprintf("%d%%", progress)
}

func formatTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "-"
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	return parsed.Local().Format("2006-01-02 15:04:05")
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if limit <= 0 || len(runes) <= limit {
		return string(runes)
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func jobStatusKind(status string) statusKind {
	switch status {
	case "completed":
		return statusOK
	case "failed":
		return statusError
	case "pending":
		return statusInfo
	default:
		return statusWarn
	}
}

func jobRows(jobs []api.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			shortID(job.ID),
			job.Kind,
			job.Status,
			formatProgress(job.Progress),
			formatScore(job.Score),
			formatTimestamp(job.CreatedAt),
			truncate(job.Input, 48),
		})
	}
	return rows
}

func renderJobDetails(job api.Job, colorize bool) []string {
	lines := renderSectionHeader("Job "+job.ID, colorize)
	lines = append(lines,
		renderStatusLine("Status", jobStatusKind(job.Status), fmt.Sprintf("%s (%s)", job.Status, formatProgress(job.Progress)), colorize),
		renderStatusLine("Kind", statusInfo, job.Kind, colorize),
		renderStatusLine("Input", statusInfo, job.Input, colorize),
		renderStatusLine("Created", statusInfo, formatTimestamp(job.CreatedAt), colorize),
		renderStatusLine("Updated", statusInfo, formatTimestamp(job.UpdatedAt), colorize),
	)
	if job.CompletedAt != "" {
		lines = append(lines, renderStatusLine("Completed", statusInfo, formatTimestamp(job.CompletedAt), colorize))
	}
	if job.OutputRef != "" {
		lines = append(lines, renderStatusLine("Output", statusOK, job.OutputRef, colorize))
	}
	if job.Score != nil {
		lines = append(lines, renderStatusLine("Virality score", statusInfo, formatScore(job.Score), colorize))
	}
	if job.Error != "" {
		lines = append(lines, renderStatusLine("Error", statusError, job.Error, colorize))
	}
	if opts := job.ClipOptions; opts != nil {
		captions := true
		if opts.BurnCaptions != nil {
			captions = *opts.BurnCaptions
		}
		lines = append(lines, renderStatusLine("Options", statusInfo,
			fmt.Sprintf("duration %.0f-%.0fs, max clips %d, burn captions %s", opts.MinDuration, opts.MaxDuration, opts.MaxClips, yesNo(captions)), colorize))
	}
	if opts := job.GenerateOptions; opts != nil {
		lines = append(lines, renderStatusLine("Options", statusInfo,
			fmt.Sprintf("voice %s, max footage %d", opts.Voice, opts.MaxFootage), colorize))
	}
	if len(job.Logs) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Log", colorize)...)
		for _, line := range job.Logs {
			lines = append(lines, "  "+line)
		}
	}
	return lines
}
