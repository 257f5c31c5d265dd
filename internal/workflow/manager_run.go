package workflow

import (
	"context"
	"errors"
	"fmt"

	"shortforge/internal/logging"
	"shortforge/internal/queue"
	"shortforge/internal/staging"
)

// Start reconciles the store and launches the worker goroutine.
func (m *Manager) Start(ctx context.Context) error {
	ctx = ensureContext(ctx)
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.handlers) == 0 {
		m.mu.Unlock()
		return errors.New("workflow handlers not configured")
	}
	m.running = true
	m.stopping = false
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	if m.reconcileEnabled() {
		if err := m.reconcile(ctx); err != nil {
			m.setLastError(err)
			m.logger.Error("startup reconciliation failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "reconcile_failed"),
				logging.String(logging.FieldErrorHint, "check queue database access"),
				logging.String(logging.FieldImpact, "pending jobs from a previous run are not queued"),
			)
		}
	}

	m.sweepWorkspaces(ctx)

	go m.run(ctx, done)
	m.logger.Info("workflow started",
		logging.Int("queue_depth", m.QueueDepth()),
		logging.String(logging.FieldEventType, "workflow_started"),
	)
	return nil
}

// Stop asks the worker to exit after its in-flight job and waits for it.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.stopping = true
	done := m.done
	m.mu.Unlock()

	m.signal()
	<-done

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()
	m.logger.Info("workflow stopped", logging.String(logging.FieldEventType, "workflow_stopped"))
}

// QueueDepth reports how many job ids are waiting.
func (m *Manager) QueueDepth() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pending)
}

func (m *Manager) shouldStop() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stopping
}

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		if m.shouldStop() || ctx.Err() != nil {
			return
		}
		id, ok := m.dequeue()
		if !ok {
			select {
			case <-m.wake:
			case <-ctx.Done():
				return
			}
			continue
		}
		m.processJob(ctx, id)
	}
}

// reconcile re-enqueues pending jobs and fails jobs interrupted mid-run.
func (m *Manager) reconcile(ctx context.Context) error {
	jobs, err := m.store.Unfinished(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	var requeued, interrupted int
	for _, job := range jobs {
		switch {
		case job.Status == queue.StatusPending:
			m.Enqueue(job.ID)
			requeued++
		case job.Status.IsProcessing():
			applied, err := m.store.Fail(ctx, job.ID, queue.InterruptedReason)
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", job.ID, err)
			}
			if applied {
				interrupted++
				m.logger.Warn("interrupted job failed",
					logging.String(logging.FieldJobID, job.ID),
					logging.String(logging.FieldJobKind, string(job.Kind)),
					logging.String("status", string(job.Status)),
					logging.String(logging.FieldEventType, "job_interrupted"),
					logging.String(logging.FieldImpact, "job must be resubmitted"),
				)
			}
		}
	}
	m.logger.Info("startup reconciliation complete",
		logging.Int("requeued", requeued),
		logging.Int("interrupted", interrupted),
		logging.String(logging.FieldEventType, "reconcile_complete"),
	)
	return nil
}

// sweepWorkspaces removes workspaces left by runs that never finished. Jobs
// already queued keep theirs; NewWorkspace clears it before reuse anyway.
func (m *Manager) sweepWorkspaces(ctx context.Context) {
	if m.cfg == nil {
		return
	}
	m.mu.RLock()
	keep := make(map[string]struct{}, len(m.pending))
	for _, id := range m.pending {
		keep[id] = struct{}{}
	}
	m.mu.RUnlock()

	result := staging.SweepWorkspaces(ctx, m.cfg.Paths.WorkDir, keep, m.logger)
	if len(result.Removed) > 0 || len(result.Errors) > 0 {
		m.logger.Info("workspace sweep complete",
			logging.Int("removed", len(result.Removed)),
			logging.Int("errors", len(result.Errors)),
			logging.Int64("reclaimed_bytes", result.Reclaimed),
			logging.String(logging.FieldEventType, "workspace_sweep"),
		)
	}
}
