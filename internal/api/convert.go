package api

import (
	"slices"
	"time"

	"shortforge/internal/queue"
	"shortforge/internal/stage"
	"shortforge/internal/workflow"
)

// FromJob converts a job record to its API representation.
func FromJob(job *queue.Job) Job {
	if job == nil {
		return Job{}
	}
	dto := Job{
		ID:        job.ID,
		Kind:      string(job.Kind),
		Input:     job.Input,
		Status:    string(job.Status),
		Progress:  job.Progress,
		CreatedAt: FormatTime(job.CreatedAt),
		UpdatedAt: FormatTime(job.UpdatedAt),
		OutputRef: job.OutputRef,
		Error:     job.Error,
	}
	if job.CompletedAt != nil {
		dto.CompletedAt = FormatTime(*job.CompletedAt)
	}
	if job.Score != nil {
		score := *job.Score
		dto.Score = &score
	}
	if len(job.Logs) > 0 {
		dto.Logs = append([]string(nil), job.Logs...)
	}
	if opts := job.ClipOptions; opts != nil {
		burn := opts.BurnCaptions
		dto.ClipOptions = &ClipOptions{
			MinDuration:  opts.MinDuration,
			MaxDuration:  opts.MaxDuration,
			MaxClips:     opts.MaxClips,
			BurnCaptions: &burn,
		}
	}
	if opts := job.GenerateOptions; opts != nil {
		dto.GenerateOptions = &GenerateOptions{Voice: opts.Voice, MaxFootage: opts.MaxFootage}
	}
	return dto
}

// FromJobs converts a slice of job records into API DTOs.
func FromJobs(jobs []*queue.Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromStatusSummary converts a workflow status summary to API payload.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	wf := WorkflowStatus{
		Running:     summary.Running,
		QueueDepth:  summary.QueueDepth,
		CurrentJob:  summary.CurrentJob,
		QueueStats:  MergeQueueStats(summary.QueueStats),
		LastError:   summary.LastError,
		StageHealth: StageHealthSlice(summary.StageHealth),
	}
	if summary.LastJob != nil {
		last := FromJob(summary.LastJob)
		wf.LastJob = &last
	}
	return wf
}

// MergeQueueStats produces a string-keyed representation of job counts with
// every status present.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for _, status := range queue.AllStatuses() {
		out[string(status)] = stats[status]
	}
	return out
}

// StageHealthSlice converts a stage health map into a deterministic slice.
func StageHealthSlice(health map[string]stage.Health) []StageHealth {
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]StageHealth, 0, len(names))
	for _, name := range names {
		h := health[name]
		out = append(out, StageHealth{Name: name, Ready: h.Ready, Detail: h.Detail})
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
