package stage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"shortforge/internal/logging"
	"shortforge/internal/queue"
	"shortforge/internal/services"
)

// Store is the slice of the job store a Reporter writes through.
type Store interface {
	Update(ctx context.Context, id string, patch queue.Patch) (bool, error)
	AppendLog(ctx context.Context, id, line string) (bool, error)
}

// Reporter records a running job's status, progress, and log lines.
// Store no-ops (the job vanished or was already terminal) are logged as
// job_update_skipped and never fail the pipeline.
type Reporter struct {
	store  Store
	logger *slog.Logger
	id     string
	kind   queue.Kind

	mu       sync.Mutex
	status   queue.Status
	progress int
}

// NewReporter builds a reporter for job.
func NewReporter(store Store, job *queue.Job, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reporter{
		store:    store,
		logger:   logger,
		id:       job.ID,
		kind:     job.Kind,
		status:   job.Status,
		progress: job.Progress,
	}
}

// Status returns the last status the reporter recorded.
func (r *Reporter) Status() queue.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Progress returns the last progress the reporter recorded.
func (r *Reporter) Progress() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

// Advance moves the job to status with an optional progress checkpoint
// (negative leaves progress alone). Illegal moves return ErrValidation and
// change nothing.
func (r *Reporter) Advance(ctx context.Context, status queue.Status, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status.IsTerminal() || !queue.CanTransitionKind(r.kind, r.status, status) {
		return services.Wrap(services.ErrValidation, "workflow", "transition",
			fmt.Sprintf("%s job cannot move from %s to %s", r.kind, r.status, status), nil)
	}
	patch := queue.StatusPatch(status)
	if progress >= 0 {
		patch.Progress = &progress
	}
	applied, err := r.store.Update(ctx, r.id, patch)
	if err != nil {
		return err
	}
	if !applied {
		r.skipped("advance", logging.String("status", string(status)))
		return nil
	}
	r.logger.Debug("job status advanced",
		logging.String("from", string(r.status)),
		logging.String("to", string(status)),
		logging.Int("progress", progress),
		logging.String(logging.FieldEventType, "job_status"),
	)
	r.status = status
	if progress > r.progress {
		r.progress = progress
	}
	return nil
}

// SetProgress records a progress checkpoint. Lower values than the current
// progress are ignored by the store.
func (r *Reporter) SetProgress(ctx context.Context, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	applied, err := r.store.Update(ctx, r.id, queue.ProgressPatch(progress))
	if err != nil {
		return err
	}
	if !applied {
		r.skipped("progress", logging.Int("progress", progress))
		return nil
	}
	if progress > r.progress {
		r.progress = progress
	}
	return nil
}

// Log records a human-readable stage line. Generate jobs persist their lines
// on the job; every line is also logged.
func (r *Reporter) Log(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	r.logger.Info(line, logging.String(logging.FieldEventType, "job_log"))
	if r.kind != queue.KindGenerate {
		return nil
	}
	applied, err := r.store.AppendLog(ctx, r.id, line)
	if err != nil {
		return err
	}
	if !applied {
		r.skipped("log")
	}
	return nil
}

func (r *Reporter) skipped(op string, attrs ...logging.Attr) {
	attrs = append(attrs,
		logging.String("operation", op),
		logging.String(logging.FieldEventType, "job_update_skipped"),
		logging.String(logging.FieldImpact, "job is missing or already terminal; update dropped"),
	)
	r.logger.Warn("job update skipped", logging.Args(attrs...)...)
}
