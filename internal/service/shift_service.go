package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/ports"
	"github.com/Limense/cochera-management-system-sub000/internal/repository"
	"github.com/google/uuid"
)

// ShiftStore is the persistence surface of the cash-shift ledger.
type ShiftStore interface {
	Open(ctx context.Context, in repository.OpenShiftInput) (*domain.Shift, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Shift, error)
	GetOpenByOperator(ctx context.Context, operatorID int64) (*domain.Shift, error)
	Close(ctx context.Context, in repository.CloseShiftInput) (bool, error)
	CollectedDuring(ctx context.Context, operatorID int64, from, to time.Time) (repository.CollectedSummary, error)
}

// ShiftService runs the till open/close state machine.
type ShiftService struct {
	Shifts ShiftStore
	Audit  AuditRecorder
	Clock  ports.Clock
	Logger *slog.Logger
}

// Open starts a shift for an operator. At most one open shift per operator;
// the store turns a double-open into domain.ErrShiftAlreadyOpen.
func (s *ShiftService) Open(ctx context.Context, operatorID int64, operatorName string, openingCash int64) (*domain.Shift, error) {
	if openingCash < 0 {
		return nil, domain.Validationf("opening cash must not be negative")
	}

	shift, err := s.Shifts.Open(ctx, repository.OpenShiftInput{
		OperatorID:   operatorID,
		OperatorName: operatorName,
		OpenedAt:     s.Clock.Now(),
		OpeningCash:  openingCash,
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(domain.AuditEvent{
		ActorID:    operatorID,
		ActorName:  operatorName,
		Action:     "shift.open",
		EntityType: "shift",
		EntityID:   shift.ID.String(),
		Amount:     &openingCash,
		LoggedAt:   shift.OpenedAt,
	})
	return shift, nil
}

// Close reconciles and finalizes a shift. Variance is informational: a
// shortage is reported, never rejected.
func (s *ShiftService) Close(ctx context.Context, shiftID uuid.UUID, countedCash int64, notes string, actorID int64, actorName string) (*domain.Shift, error) {
	if countedCash < 0 {
		return nil, domain.Validationf("counted cash must not be negative")
	}

	shift, err := s.Shifts.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.State != domain.ShiftOpen {
		return nil, fmt.Errorf("shift %s already closed: %w", shiftID, domain.ErrNotFound)
	}

	now := s.Clock.Now()
	collected, err := s.Shifts.CollectedDuring(ctx, shift.OperatorID, shift.OpenedAt, now)
	if err != nil {
		return nil, err
	}
	expected := shift.OpeningCash + collected.Total
	variance := countedCash - expected

	closed, err := s.Shifts.Close(ctx, repository.CloseShiftInput{
		ID:           shiftID,
		ClosedAt:     now,
		ClosingCash:  countedCash,
		ExpectedCash: expected,
		Variance:     variance,
		Notes:        notes,
	})
	if err != nil {
		return nil, err
	}
	if !closed {
		return nil, fmt.Errorf("shift %s already closed: %w", shiftID, domain.ErrNotFound)
	}

	if variance != 0 {
		s.Logger.Warn("shift closed with variance",
			"shift", shiftID, "operator", shift.OperatorID,
			"expected", expected, "counted", countedCash, "variance", variance)
	}
	s.Audit.Record(domain.AuditEvent{
		ActorID:    actorID,
		ActorName:  actorName,
		Action:     "shift.close",
		EntityType: "shift",
		EntityID:   shiftID.String(),
		Amount:     &variance,
		Details:    fmt.Sprintf("expected=%d counted=%d", expected, countedCash),
		LoggedAt:   now,
	})

	shift.ClosedAt = &now
	shift.ClosingCash = &countedCash
	shift.ExpectedCash = &expected
	shift.Variance = &variance
	shift.State = domain.ShiftClosed
	shift.Notes = notes
	return shift, nil
}

// ShiftStatus is the live projection of an open shift for the dashboard.
type ShiftStatus struct {
	Shift        *domain.Shift
	ExpectedCash int64
	Collected    repository.CollectedSummary
}

// Status returns the operator's open shift with expected cash so far.
func (s *ShiftService) Status(ctx context.Context, operatorID int64) (*ShiftStatus, error) {
	shift, err := s.Shifts.GetOpenByOperator(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	collected, err := s.Shifts.CollectedDuring(ctx, shift.OperatorID, shift.OpenedAt, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	return &ShiftStatus{
		Shift:        shift,
		ExpectedCash: shift.OpeningCash + collected.Total,
		Collected:    collected,
	}, nil
}
