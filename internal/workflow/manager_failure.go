package workflow

import (
	"context"
	"errors"
	"log/slog"

	"shortforge/internal/logging"
	"shortforge/internal/queue"
	"shortforge/internal/services"
)

// failJob records stageErr verbatim as the job's error.
func (m *Manager) failJob(ctx context.Context, logger *slog.Logger, job *queue.Job, stageErr error) {
	message := services.FailureMessage(string(job.Kind), stageErr)
	m.setLastError(stageErr)

	logger.Error("job failed",
		logging.String("error_message", message),
		logging.Alert("stage_failure"),
		logging.String(logging.FieldErrorKind, services.Kind(stageErr)),
		logging.String(logging.FieldErrorHint, failureHint(stageErr)),
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "job_failed"),
	)

	applied, err := m.store.Fail(ctx, job.ID, message)
	if err != nil {
		logger.Error("failed to persist job failure",
			logging.Error(err),
			logging.String(logging.FieldEventType, "job_fail_persist_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
	} else if !applied {
		logger.Warn("job failure not recorded",
			logging.String(logging.FieldEventType, "job_update_skipped"),
			logging.String(logging.FieldImpact, "job is missing or already terminal; update dropped"),
		)
	}
	m.notify(ctx, logger, m.recordJob(ctx, job.ID))
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return "check the config file, API keys, and paths"
	case errors.Is(err, services.ErrValidation):
		return "resubmit the job with valid input"
	case errors.Is(err, services.ErrNotFound):
		return "try different input; nothing usable was found"
	case errors.Is(err, services.ErrExternalTool):
		return "run shortforge health to check external tools"
	default:
		return "resubmit the job; failed jobs are not retried"
	}
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
