package stage

import (
	"context"

	"shortforge/internal/queue"
)

// Handler describes the contract the workflow manager needs from each
// pipeline.
type Handler interface {
	Kind() queue.Kind
	Run(ctx context.Context, job *queue.Job, reporter *Reporter) (Outcome, error)
	HealthCheck(ctx context.Context) Health
}

// Outcome is a successful pipeline result.
type Outcome struct {
	OutputRef string
	// Score is nil when scoring was skipped.
	Score *float64
}
