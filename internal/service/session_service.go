package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/ports"
	"github.com/Limense/cochera-management-system-sub000/internal/repository"
)

// SessionStore is the persistence surface of the session lifecycle. The
// implementations enforce the exactly-once contracts: CreateActive reserves
// the space and inserts atomically, CloseActive is guarded on the session
// still being open.
type SessionStore interface {
	CreateActive(ctx context.Context, in repository.CreateSessionInput) (*domain.ParkingSession, error)
	FindActiveByPlate(ctx context.Context, plate string) (*domain.ParkingSession, error)
	CloseActive(ctx context.Context, in repository.CloseSessionInput) (bool, error)
}

// SpaceReleaser returns a space to the available pool.
type SpaceReleaser interface {
	Release(ctx context.Context, number int) error
}

// Pricer prices a stay; implemented by PricingService.
type Pricer interface {
	Quote(ctx context.Context, class domain.VehicleClass, entry, exit time.Time) (*CostBreakdown, error)
}

// SessionService orchestrates vehicle entry and exit.
type SessionService struct {
	Sessions SessionStore
	Spaces   SpaceReleaser
	Pricing  Pricer
	Audit    AuditRecorder
	Clock    ports.Clock
	Logger   *slog.Logger

	// ReleaseRetryWait is the initial delay between asynchronous space
	// release attempts after a paid exit.
	ReleaseRetryWait time.Duration
}

type EntryRequest struct {
	Plate        string
	VehicleClass domain.VehicleClass
	SpaceNumber  int
	OperatorID   int64
	OperatorName string
}

// RegisterEntry admits a vehicle: one active session per plate, one occupant
// per space. The space reservation and session insert commit together.
func (s *SessionService) RegisterEntry(ctx context.Context, req EntryRequest) (*domain.ParkingSession, error) {
	plate, err := domain.NormalizePlate(req.Plate)
	if err != nil {
		return nil, err
	}
	if !req.VehicleClass.Valid() {
		return nil, domain.Validationf("unknown vehicle class %q", req.VehicleClass)
	}
	if req.SpaceNumber <= 0 {
		return nil, domain.Validationf("space number must be positive")
	}

	existing, err := s.Sessions.FindActiveByPlate(ctx, plate)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("plate %s in space %d: %w", plate, existing.SpaceNumber, domain.ErrVehicleAlreadyParked)
	}

	session, err := s.Sessions.CreateActive(ctx, repository.CreateSessionInput{
		Plate:        plate,
		VehicleClass: req.VehicleClass,
		SpaceNumber:  req.SpaceNumber,
		EntryAt:      s.Clock.Now(),
		OperatorID:   req.OperatorID,
		OperatorName: req.OperatorName,
	})
	if err != nil {
		return nil, err
	}

	entriesTotal.Inc()
	s.Audit.Record(domain.AuditEvent{
		ActorID:    req.OperatorID,
		ActorName:  req.OperatorName,
		Action:     "session.entry",
		EntityType: "parking_session",
		EntityID:   session.ID.String(),
		Details:    fmt.Sprintf("plate=%s space=%d class=%s", plate, req.SpaceNumber, req.VehicleClass),
		LoggedAt:   session.EntryAt,
	})
	return session, nil
}

type ExitRequest struct {
	Plate         string
	PaymentMethod domain.PaymentMethod
	OperatorID    int64
	OperatorName  string
}

type ExitResult struct {
	Session   *domain.ParkingSession
	Breakdown *CostBreakdown
}

// RegisterExit prices the stay at the tariff governing the entry instant,
// records payment in one conditional update, then frees the space. A release
// failure after the payment committed is retried in the background: a stale
// occupied space is recoverable, a lost payment record is not.
func (s *SessionService) RegisterExit(ctx context.Context, req ExitRequest) (*ExitResult, error) {
	plate, err := domain.NormalizePlate(req.Plate)
	if err != nil {
		return nil, err
	}
	if !req.PaymentMethod.Valid() {
		return nil, domain.Validationf("unknown payment method %q", req.PaymentMethod)
	}

	session, err := s.Sessions.FindActiveByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("plate %s: %w", plate, domain.ErrVehicleNotParked)
		}
		return nil, err
	}

	now := s.Clock.Now()
	breakdown, err := s.Pricing.Quote(ctx, session.VehicleClass, session.EntryAt, now)
	if err != nil {
		// NoTariffConfigured blocks payment rather than charging an
		// undefined amount.
		return nil, err
	}

	amount := domain.Money{Amount: breakdown.Total, Currency: breakdown.Currency}
	closed, err := s.Sessions.CloseActive(ctx, repository.CloseSessionInput{
		ID:            session.ID,
		ExitAt:        now,
		Amount:        amount,
		PaymentMethod: req.PaymentMethod,
		OperatorID:    req.OperatorID,
		OperatorName:  req.OperatorName,
	})
	if err != nil {
		return nil, err
	}
	if !closed {
		// A concurrent exit won the conditional update.
		return nil, fmt.Errorf("plate %s: %w", plate, domain.ErrVehicleNotParked)
	}

	if err := s.Spaces.Release(ctx, session.SpaceNumber); err != nil {
		s.Logger.Warn("space release failed after paid exit, retrying in background",
			"space", session.SpaceNumber, "plate", plate, "err", err)
		go s.retryRelease(session.SpaceNumber)
	}

	exitsTotal.Inc()
	revenueCentsTotal.Add(float64(amount.Amount))
	s.Audit.Record(domain.AuditEvent{
		ActorID:    req.OperatorID,
		ActorName:  req.OperatorName,
		Action:     "session.exit",
		EntityType: "parking_session",
		EntityID:   session.ID.String(),
		Amount:     &amount.Amount,
		Details:    fmt.Sprintf("plate=%s space=%d method=%s", plate, session.SpaceNumber, req.PaymentMethod),
		LoggedAt:   now,
	})

	session.ExitAt = &now
	session.Amount = &amount
	session.PaymentState = domain.PaymentPaid
	method := req.PaymentMethod
	session.PaymentMethod = &method
	session.OperatorID = req.OperatorID
	session.OperatorName = req.OperatorName

	return &ExitResult{Session: session, Breakdown: breakdown}, nil
}

// retryRelease keeps trying to free a space whose paid exit already
// committed. Gives up after a handful of attempts; manual reconciliation
// covers the rest.
func (s *SessionService) retryRelease(number int) {
	wait := s.ReleaseRetryWait
	if wait <= 0 {
		wait = 2 * time.Second
	}
	for attempt := 1; attempt <= 5; attempt++ {
		time.Sleep(wait)
		wait *= 2
		releaseRetriesTotal.Inc()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.Spaces.Release(ctx, number)
		cancel()
		if err == nil {
			s.Logger.Info("space released after retry", "space", number, "attempt", attempt)
			return
		}
		s.Logger.Warn("space release retry failed", "space", number, "attempt", attempt, "err", err)
	}
	s.Logger.Error("space stuck occupied, needs manual reconciliation", "space", number)
}
