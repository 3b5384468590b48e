package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/store"
	"github.com/hrflowhq/hrflow/pkg/idx"
)

// DefaultAuditQueueSize bounds the in-flight audit backlog.
const DefaultAuditQueueSize = 256

const auditPersistTimeout = 5 * time.Second

// AuditRecorder persists audit entries off the request path. Record never
// blocks: entries go onto a bounded queue drained by a background worker, and
// when the queue is full the entry is dropped with a warning. Audit is
// best-effort by contract; it must never fail or slow the request it
// describes.
type AuditRecorder struct {
	store  store.Store
	logger *slog.Logger

	queue  chan domain.AuditLogEntry
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewAuditRecorder builds a recorder with the given queue capacity
// (DefaultAuditQueueSize when size <= 0).
func NewAuditRecorder(st store.Store, logger *slog.Logger, size int) *AuditRecorder {
	if size <= 0 {
		size = DefaultAuditQueueSize
	}
	return &AuditRecorder{
		store:  st,
		logger: logger.With("component", "audit"),
		queue:  make(chan domain.AuditLogEntry, size),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start launches the background worker.
func (r *AuditRecorder) Start() {
	go r.run()
}

// Stop drains the queue and waits for the worker to exit.
func (r *AuditRecorder) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// Record enqueues an entry, stamping id and created_at. Non-blocking.
func (r *AuditRecorder) Record(e domain.AuditLogEntry) {
	if e.ID == "" {
		e.ID = idx.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	select {
	case r.queue <- e:
	default:
		r.logger.Warn("audit queue full, dropping entry",
			"action", e.Action, "resource", e.Resource)
	}
}

func (r *AuditRecorder) run() {
	defer close(r.doneCh)

	for {
		select {
		case e := <-r.queue:
			r.persist(e)
		case <-r.stopCh:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case e := <-r.queue:
					r.persist(e)
				default:
					return
				}
			}
		}
	}
}

func (r *AuditRecorder) persist(e domain.AuditLogEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), auditPersistTimeout)
	defer cancel()

	if err := r.store.AuditLogs().CreateAuditLog(ctx, e); err != nil {
		r.logger.Error("failed to persist audit entry",
			"action", e.Action, "resource", e.Resource, "err", err)
		return
	}

	// Audit entries go to the log stream as well as the store.
	r.logger.Info("audit",
		"action", e.Action,
		"resource", e.Resource,
		"resource_id", e.ResourceID,
		"user_id", e.UserID,
		"ip", e.IPAddress)
}
