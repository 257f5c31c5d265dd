package workflow

import (
	"context"
	"log/slog"

	"shortforge/internal/logging"
	"shortforge/internal/queue"
	"shortforge/internal/services"
)

// jobLogger tags the manager logger with the job's context and tees it into
// the job's log file. The returned func closes the file.
func (m *Manager) jobLogger(ctx context.Context, job *queue.Job) (*slog.Logger, func()) {
	base := logging.WithContext(ctx, m.logger).With(logging.String(logging.FieldJobKind, string(job.Kind)))
	handler, closeFn, err := m.jobLogs.Open(job)
	if err != nil {
		base.Warn("job log unavailable",
			logging.Error(err),
			logging.String(logging.FieldEventType, "job_log_unavailable"),
			logging.String(logging.FieldImpact, "job output only appears in the daemon log"),
		)
		return base, func() {}
	}
	return logging.TeeLogger(base, handler.WithAttrs(logging.ContextFields(ctx))), closeFn
}

func withJobContext(ctx context.Context, job *queue.Job, requestID string) context.Context {
	ctx = ensureContext(ctx)
	if job != nil {
		ctx = services.WithJobID(ctx, job.ID)
	}
	if requestID != "" {
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx
}
