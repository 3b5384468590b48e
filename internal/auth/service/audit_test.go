package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/service"
)

func TestAuditRecorderPersistsEntries(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	rec := service.NewAuditRecorder(st, discardLogger(), 16)
	rec.Start()

	rec.Record(domain.AuditLogEntry{
		UserID:     "user-1",
		Action:     domain.AuditActionAccess,
		Resource:   "session",
		ResourceID: "user-1",
		Metadata:   domain.AuditMetadata{Method: "POST", Path: "/auth/login"},
		IPAddress:  "203.0.113.7",
	})
	rec.Record(domain.AuditLogEntry{
		Action:   domain.AuditActionUpdate,
		Resource: "password",
	})

	// Stop drains the queue before returning.
	rec.Stop()

	n, err := st.AuditLogs().CountAuditLogs(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestAuditRecorderDropsWhenQueueFull(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	// Worker never started: the queue fills and overflow is dropped, but
	// Record never blocks.
	rec := service.NewAuditRecorder(st, discardLogger(), 2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 10 {
			rec.Record(domain.AuditLogEntry{Action: domain.AuditActionAccess, Resource: "session"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	// Draining now persists only what fit in the queue.
	rec.Start()
	rec.Stop()

	n, err := st.AuditLogs().CountAuditLogs(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestAuditRecorderSwallowsPersistenceErrors(t *testing.T) {
	st := newTestStore(t)
	rec := service.NewAuditRecorder(st, discardLogger(), 4)
	rec.Start()

	// Close the store out from under the worker: persistence fails, but the
	// recorder keeps running and Stop still returns.
	require.NoError(t, st.Close())

	rec.Record(domain.AuditLogEntry{Action: domain.AuditActionAccess, Resource: "session"})

	done := make(chan struct{})
	go func() {
		rec.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after persistence failures")
	}
}
