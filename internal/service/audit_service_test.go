package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditStore struct {
	mu       sync.Mutex
	events   []domain.AuditEvent
	failures int
}

func (f *fakeAuditStore) Append(_ context.Context, ev domain.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("write failed")
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeAuditStore) recorded() []domain.AuditEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.AuditEvent(nil), f.events...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuditServiceFlushesOnClose(t *testing.T) {
	store := &fakeAuditStore{}
	svc := NewAuditService(store, discardLogger(), 8, 3)

	svc.Record(domain.AuditEvent{Action: "session.entry", EntityID: "a"})
	svc.Record(domain.AuditEvent{Action: "session.exit", EntityID: "b"})
	svc.Close()

	events := store.recorded()
	require.Len(t, events, 2)
	assert.Equal(t, "session.entry", events[0].Action)
	assert.Equal(t, "session.exit", events[1].Action)
}

func TestAuditServiceRetriesTransientFailure(t *testing.T) {
	store := &fakeAuditStore{failures: 1}
	svc := NewAuditService(store, discardLogger(), 8, 3)

	svc.Record(domain.AuditEvent{Action: "shift.open", EntityID: "c"})
	svc.Close()

	require.Len(t, store.recorded(), 1)
}

func TestAuditServiceGivesUpAfterMaxRetries(t *testing.T) {
	store := &fakeAuditStore{failures: 10}
	svc := NewAuditService(store, discardLogger(), 8, 2)

	svc.Record(domain.AuditEvent{Action: "shift.close", EntityID: "d"})
	svc.Close()

	assert.Empty(t, store.recorded())
}

func TestAuditServiceCloseIsIdempotent(t *testing.T) {
	svc := NewAuditService(&fakeAuditStore{}, discardLogger(), 8, 3)
	svc.Close()
	svc.Close()
}
