package workflow

import (
	"context"

	"shortforge/internal/logging"
	"shortforge/internal/queue"
	"shortforge/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	QueueDepth  int
	CurrentJob  string
	LastError   string
	LastJob     *queue.Job
	QueueStats  map[queue.Status]int
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	ctx = ensureContext(ctx)
	m.mu.RLock()
	summary := StatusSummary{
		Running:    m.running && !m.stopping,
		QueueDepth: len(m.pending),
		CurrentJob: m.current,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	if m.lastJob != nil {
		copy := *m.lastJob
		summary.LastJob = &copy
	}
	handlers := make([]stage.Handler, 0, len(m.order))
	for _, kind := range m.order {
		handlers = append(handlers, m.handlers[kind])
	}
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read queue stats",
			logging.Error(err),
			logging.String(logging.FieldEventType, "queue_stats_failed"),
			logging.String(logging.FieldImpact, "status omits job counts"),
		)
	}
	summary.QueueStats = stats

	summary.StageHealth = make(map[string]stage.Health, len(handlers))
	for _, handler := range handlers {
		summary.StageHealth[string(handler.Kind())] = handler.HealthCheck(ctx)
	}
	return summary
}
