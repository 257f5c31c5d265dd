package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Job describes a job in a transport-friendly format.
type Job struct {
	ID              string           `json:"id"`
	Kind            string           `json:"kind"`
	Input           string           `json:"input"`
	Status          string           `json:"status"`
	Progress        int              `json:"progress"`
	CreatedAt       string           `json:"created_at,omitempty"`
	UpdatedAt       string           `json:"updated_at,omitempty"`
	CompletedAt     string           `json:"completed_at,omitempty"`
	OutputRef       string           `json:"output_ref,omitempty"`
	Error           string           `json:"error,omitempty"`
	Score           *float64         `json:"score,omitempty"`
	Logs            []string         `json:"logs,omitempty"`
	ClipOptions     *ClipOptions     `json:"clip_options,omitempty"`
	GenerateOptions *GenerateOptions `json:"generate_options,omitempty"`
}

// ClipOptions mirrors queue.ClipOptions on the wire. Zero fields take the
// configured defaults when submitted.
type ClipOptions struct {
	MinDuration  float64 `json:"min_duration,omitempty"`
	MaxDuration  float64 `json:"max_duration,omitempty"`
	MaxClips     int     `json:"max_clips,omitempty"`
	BurnCaptions *bool   `json:"burn_captions,omitempty"`
}

// GenerateOptions mirrors queue.GenerateOptions on the wire.
type GenerateOptions struct {
	Voice      string `json:"voice,omitempty"`
	MaxFootage int    `json:"max_footage,omitempty"`
}

// ClipRequest is the body of POST /api/jobs/clip.
type ClipRequest struct {
	URL     string       `json:"url"`
	Options *ClipOptions `json:"options,omitempty"`
}

// GenerateRequest is the body of POST /api/jobs/generate.
type GenerateRequest struct {
	Topic   string           `json:"topic"`
	Options *GenerateOptions `json:"options,omitempty"`
}

// EnqueueResponse reports the id of a newly queued job.
type EnqueueResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// WorkflowStatus summarizes workflow execution state.
type WorkflowStatus struct {
	Running     bool           `json:"running"`
	QueueDepth  int            `json:"queue_depth"`
	CurrentJob  string         `json:"current_job,omitempty"`
	QueueStats  map[string]int `json:"queue_stats"`
	LastError   string         `json:"last_error,omitempty"`
	LastJob     *Job           `json:"last_job,omitempty"`
	StageHealth []StageHealth  `json:"stage_health"`
}

// StageHealth mirrors readiness reporting for pipeline handlers.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	QueueDBPath  string             `json:"queue_db_path"`
	LockFilePath string             `json:"lock_file_path"`
	Workflow     WorkflowStatus     `json:"workflow"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// HealthCheck is one named readiness probe.
type HealthCheck struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// HealthReport is the payload of GET /api/health.
type HealthReport struct {
	Healthy bool          `json:"healthy"`
	Checks  []HealthCheck `json:"checks"`
}

// JobListResponse wraps a page of jobs.
type JobListResponse struct {
	Jobs   []Job `json:"jobs"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// JobResponse wraps a single job.
type JobResponse struct {
	Job Job `json:"job"`
}

// ErrorResponse is the body of every non-2xx API reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
