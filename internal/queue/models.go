package queue

import (
	"fmt"
	"strings"
	"time"
)

// Kind selects which pipeline drives a job.
type Kind string

const (
	KindClip     Kind = "clip"
	KindGenerate Kind = "generate"
)

// ParseKind validates a textual kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindClip:
		return KindClip, nil
	case KindGenerate:
		return KindGenerate, nil
	default:
		return "", fmt.Errorf("unknown job kind %q", value)
	}
}

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// InterruptedReason is recorded on jobs that were running when the daemon
// stopped unexpectedly.
const InterruptedReason = "interrupted: daemon restarted while job was running"

var allStatuses = []Status{
	StatusPending,
	StatusDownloading,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusDownloading: {},
	StatusProcessing:  {},
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus validates a textual status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// IsTerminal reports whether the status can never change again.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsProcessing reports whether a worker is actively running the job.
func (s Status) IsProcessing() bool {
	_, ok := processingStatuses[s]
	return ok
}

// Job is one pipeline run persisted in SQLite.
type Job struct {
	ID          string
	Kind        Kind
	Input       string
	Status      Status
	Progress    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	OutputRef   string
	Error       string
	Score       *float64
	Logs        []string

	// Exactly one of the option sets is populated, matching Kind.
	ClipOptions     *ClipOptions
	GenerateOptions *GenerateOptions
}

// IsTerminal reports whether the job reached completed or failed.
func (j *Job) IsTerminal() bool {
	return j != nil && j.Status.IsTerminal()
}

// ShortID returns the first eight characters of the job id for display.
func (j *Job) ShortID() string {
	if j == nil {
		return ""
	}
	if len(j.ID) > 8 {
		return j.ID[:8]
	}
	return j.ID
}

// Patch lists the fields an Update may change. Nil fields are left alone.
// Terminal transitions go through Store.Complete and Store.Fail instead.
type Patch struct {
	Status   *Status
	Progress *int
}

// StatusPatch is a convenience for a status-only patch.
func StatusPatch(status Status) Patch {
	return Patch{Status: &status}
}

// ProgressPatch is a convenience for a progress-only patch.
func ProgressPatch(progress int) Patch {
	return Patch{Progress: &progress}
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Status == nil && p.Progress == nil
}
