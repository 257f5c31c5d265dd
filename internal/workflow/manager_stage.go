package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"shortforge/internal/logging"
	"shortforge/internal/queue"
	"shortforge/internal/services"
	"shortforge/internal/stage"
)

func (m *Manager) processJob(ctx context.Context, id string) {
	// A job that has started is allowed to finish during shutdown.
	jobCtx := context.WithoutCancel(ctx)

	job, err := m.store.Get(jobCtx, id)
	if err != nil {
		m.setLastError(err)
		m.logger.Error("failed to load queued job",
			logging.String(logging.FieldJobID, id),
			logging.Error(err),
			logging.String(logging.FieldEventType, "job_load_failed"),
			logging.String(logging.FieldErrorHint, "check queue database access"),
		)
		return
	}
	if job == nil || job.IsTerminal() {
		m.logger.Warn("queued job skipped",
			logging.String(logging.FieldJobID, id),
			logging.Bool("missing", job == nil),
			logging.String(logging.FieldEventType, "job_skipped"),
			logging.String(logging.FieldImpact, "job is missing or already finished"),
		)
		return
	}
	if job.Status != queue.StatusPending {
		m.logger.Warn("queued job already started; skipping",
			logging.String(logging.FieldJobID, id),
			logging.String("status", string(job.Status)),
			logging.String(logging.FieldEventType, "job_skipped"),
			logging.String(logging.FieldImpact, "duplicate enqueue ignored"),
		)
		return
	}

	jobCtx = withJobContext(jobCtx, job, uuid.NewString())
	logger, closeLog := m.jobLogger(jobCtx, job)
	defer closeLog()

	m.setCurrent(job.ID)
	defer m.setCurrent("")

	handler := m.handlerFor(job.Kind)
	if handler == nil {
		m.failJob(jobCtx, logger, job, services.Wrap(services.ErrConfiguration, "workflow", "dispatch",
			fmt.Sprintf("no handler registered for %s jobs", job.Kind), nil))
		return
	}

	reporter := stage.NewReporter(m.store, job, logger)
	if err := reporter.Advance(jobCtx, job.Kind.FirstActiveStatus(), 0); err != nil {
		m.failJob(jobCtx, logger, job, err)
		return
	}

	started := time.Now()
	logger.Info("job started",
		logging.String("input", job.Input),
		logging.String(logging.FieldEventType, "job_start"),
	)
	outcome, runErr := m.runHandler(jobCtx, logger, handler, job, reporter)
	if runErr != nil {
		m.failJob(jobCtx, logger, job, runErr)
		return
	}

	applied, err := m.store.Complete(jobCtx, job.ID, outcome.OutputRef, outcome.Score)
	if err != nil {
		m.failJob(jobCtx, logger, job, err)
		return
	}
	if !applied {
		m.failJob(jobCtx, logger, job, services.Wrap(services.ErrValidation, "workflow", "complete",
			fmt.Sprintf("job was %s when the pipeline finished", reporter.Status()), nil))
		return
	}
	attrs := []logging.Attr{
		logging.String("output", outcome.OutputRef),
		logging.Duration("job_duration", time.Since(started)),
		logging.String(logging.FieldEventType, "job_complete"),
	}
	if outcome.Score != nil {
		attrs = append(attrs, logging.Float64("score", *outcome.Score))
	}
	logger.Info("job completed", logging.Args(attrs...)...)
	m.notify(jobCtx, logger, m.recordJob(jobCtx, job.ID))
}

func (m *Manager) runHandler(ctx context.Context, logger *slog.Logger, handler stage.Handler, job *queue.Job, reporter *stage.Reporter) (outcome stage.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panicked",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
				logging.Alert("pipeline_panic"),
				logging.String(logging.FieldEventType, "job_panic"),
			)
			err = services.Wrap(services.ErrTransient, string(job.Kind), "run", fmt.Sprintf("pipeline panicked: %v", r), nil)
		}
	}()
	return handler.Run(services.WithStage(ctx, string(job.Kind)), job, reporter)
}

// recordJob reloads a finished job into the status snapshot and returns it.
func (m *Manager) recordJob(ctx context.Context, id string) *queue.Job {
	job, err := m.store.Get(ctx, id)
	if err != nil || job == nil {
		return nil
	}
	m.mu.Lock()
	m.lastJob = job
	m.mu.Unlock()
	return job
}

// notify pushes a terminal job's outcome. Delivery failures are logged only.
func (m *Manager) notify(ctx context.Context, logger *slog.Logger, job *queue.Job) {
	if job == nil || !job.IsTerminal() {
		return
	}
	m.mu.RLock()
	notifier := m.notifier
	m.mu.RUnlock()

	var err error
	if job.Status == queue.StatusCompleted {
		err = notifier.NotifyJobCompleted(ctx, job)
	} else {
		err = notifier.NotifyJobFailed(ctx, job)
	}
	if err != nil {
		logger.Warn("job notification failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "notification_failed"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "job outcome unaffected"),
		)
	}
}

func (m *Manager) setCurrent(id string) {
	m.mu.Lock()
	m.current = id
	m.mu.Unlock()
}
