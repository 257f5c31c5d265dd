package workflow

import (
	"context"
	"log/slog"
	"sync"

	"shortforge/internal/config"
	"shortforge/internal/logging"
	"shortforge/internal/notifications"
	"shortforge/internal/queue"
	"shortforge/internal/stage"
)

// Manager coordinates job processing using registered stage handlers.
type Manager struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	handlers map[queue.Kind]stage.Handler
	order    []queue.Kind
	jobLogs  *JobLogger
	notifier notifications.Service

	mu       sync.RWMutex
	pending  []string
	wake     chan struct{}
	running  bool
	stopping bool
	done     chan struct{}
	current  string
	lastErr  error
	lastJob  *queue.Job
}

// NewManager constructs a workflow manager. Handlers are registered by the
// kind they report; a later handler for the same kind replaces an earlier one.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, handlers ...stage.Handler) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:      cfg,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		handlers: make(map[queue.Kind]stage.Handler, len(handlers)),
		jobLogs:  NewJobLogger(cfg),
		notifier: notifications.NewService(cfg),
		wake:     make(chan struct{}, 1),
	}
	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		kind := handler.Kind()
		if _, ok := m.handlers[kind]; !ok {
			m.order = append(m.order, kind)
		}
		m.handlers[kind] = handler
	}
	return m
}

// SetNotifier replaces the notification service built from configuration.
func (m *Manager) SetNotifier(notifier notifications.Service) {
	if notifier == nil {
		return
	}
	m.mu.Lock()
	m.notifier = notifier
	m.mu.Unlock()
}

// Enqueue appends a job id to the FIFO and wakes the worker.
func (m *Manager) Enqueue(id string) {
	if id == "" {
		return
	}
	m.mu.Lock()
	m.pending = append(m.pending, id)
	m.mu.Unlock()
	m.signal()
}

func (m *Manager) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Manager) dequeue() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return "", false
	}
	id := m.pending[0]
	m.pending[0] = ""
	m.pending = m.pending[1:]
	return id, true
}

func (m *Manager) handlerFor(kind queue.Kind) stage.Handler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handlers[kind]
}

func (m *Manager) reconcileEnabled() bool {
	return m.cfg == nil || m.cfg.Workflow.ReconcilePending
}

// ensureContext substitutes Background for a nil context.
func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
