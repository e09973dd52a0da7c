package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
)

// AuditStore appends one event to durable audit storage.
type AuditStore interface {
	Append(ctx context.Context, ev domain.AuditEvent) error
}

// AuditRecorder is the fire-and-forget surface the operational services see.
// Recording never blocks and never fails the caller.
type AuditRecorder interface {
	Record(ev domain.AuditEvent)
}

// AuditService decouples audit persistence from the entry/exit critical path:
// events go through a bounded queue and a single writer goroutine with
// bounded retry. A full queue drops the event with a local log line only.
type AuditService struct {
	Store  AuditStore
	Logger *slog.Logger

	queue      chan domain.AuditEvent
	maxRetries int
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

func NewAuditService(store AuditStore, logger *slog.Logger, queueSize, maxRetries int) *AuditService {
	if queueSize <= 0 {
		queueSize = 256
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	s := &AuditService{
		Store:      store,
		Logger:     logger,
		queue:      make(chan domain.AuditEvent, queueSize),
		maxRetries: maxRetries,
	}
	s.wg.Add(1)
	go s.drain()
	return s
}

// Record enqueues an event without blocking. Observability must never block
// an operational transaction.
func (s *AuditService) Record(ev domain.AuditEvent) {
	select {
	case s.queue <- ev:
	default:
		auditDroppedTotal.Inc()
		s.Logger.Warn("audit queue full, event dropped", "action", ev.Action, "entity", ev.EntityID)
	}
}

// Close stops accepting events and waits for the queue to flush.
func (s *AuditService) Close() {
	s.closeOnce.Do(func() { close(s.queue) })
	s.wg.Wait()
}

func (s *AuditService) drain() {
	defer s.wg.Done()
	for ev := range s.queue {
		s.append(ev)
	}
}

func (s *AuditService) append(ev domain.AuditEvent) {
	backoff := 200 * time.Millisecond
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := s.Store.Append(ctx, ev)
		cancel()
		if err == nil {
			return
		}
		if attempt == s.maxRetries {
			s.Logger.Error("audit append failed, giving up",
				"action", ev.Action, "entity", ev.EntityID, "attempts", attempt, "err", err)
			return
		}
		time.Sleep(backoff)
		backoff *= 2
	}
}
