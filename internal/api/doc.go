// Package api is the operation layer shared by the HTTP server and the CLI.
//
// Service validates and enqueues clip and generate jobs and reads them back.
// Every validation failure is reported as services.ErrValidation before any
// record is written, and lookups of unknown ids return services.ErrNotFound.
//
// # Key Types
//
// Job: transport representation of a job with progress, output, score, and
// the options it was submitted with.
//
// WorkflowStatus: worker running state, queue depth, job counts, and stage
// health.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// # Converters
//
// FromJob: queue.Job -> Job.
//
// FromStatusSummary: workflow.StatusSummary -> WorkflowStatus.
//
// StageHealthSlice: deterministic ordering of a stage health map.
//
// DTOs use snake_case JSON tags matching the job record. Timestamps use
// RFC3339 with milliseconds.
package api
