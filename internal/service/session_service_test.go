package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionStore struct {
	active    map[string]*domain.ParkingSession
	created   []repository.CreateSessionInput
	closed    []repository.CloseSessionInput
	createErr error
	closeOK   bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{active: map[string]*domain.ParkingSession{}, closeOK: true}
}

func (f *fakeSessionStore) CreateActive(_ context.Context, in repository.CreateSessionInput) (*domain.ParkingSession, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
	s := &domain.ParkingSession{
		ID:           uuid.New(),
		Plate:        in.Plate,
		VehicleClass: in.VehicleClass,
		SpaceNumber:  in.SpaceNumber,
		EntryAt:      in.EntryAt,
		PaymentState: domain.PaymentPending,
		OperatorID:   in.OperatorID,
		OperatorName: in.OperatorName,
	}
	f.active[in.Plate] = s
	return s, nil
}

func (f *fakeSessionStore) FindActiveByPlate(_ context.Context, plate string) (*domain.ParkingSession, error) {
	s, ok := f.active[plate]
	if !ok {
		return nil, fmt.Errorf("plate %s: %w", plate, domain.ErrNotFound)
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) CloseActive(_ context.Context, in repository.CloseSessionInput) (bool, error) {
	f.closed = append(f.closed, in)
	return f.closeOK, nil
}

type fakeReleaser struct {
	released []int
	err      error
}

func (f *fakeReleaser) Release(_ context.Context, number int) error {
	if f.err != nil {
		return f.err
	}
	f.released = append(f.released, number)
	return nil
}

type fakePricer struct {
	breakdown CostBreakdown
	err       error
}

func (f fakePricer) Quote(context.Context, domain.VehicleClass, time.Time, time.Time) (*CostBreakdown, error) {
	if f.err != nil {
		return nil, f.err
	}
	b := f.breakdown
	return &b, nil
}

type fakeAudit struct{ events []domain.AuditEvent }

func (f *fakeAudit) Record(ev domain.AuditEvent) { f.events = append(f.events, ev) }

func newSessionService(store *fakeSessionStore, spaces *fakeReleaser, pricer Pricer, audit *fakeAudit) *SessionService {
	return &SessionService{
		Sessions:         store,
		Spaces:           spaces,
		Pricing:          pricer,
		Audit:            audit,
		Clock:            fakeClock{now: at(12, 0)},
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		ReleaseRetryWait: time.Millisecond,
	}
}

func TestRegisterEntryNormalizesPlate(t *testing.T) {
	store := newFakeSessionStore()
	audit := &fakeAudit{}
	svc := newSessionService(store, &fakeReleaser{}, fakePricer{}, audit)

	session, err := svc.RegisterEntry(context.Background(), EntryRequest{
		Plate:        "abc 123",
		VehicleClass: domain.ClassCar,
		SpaceNumber:  7,
		OperatorID:   1,
		OperatorName: "Rosa",
	})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", session.Plate)
	assert.Equal(t, 7, session.SpaceNumber)
	assert.Equal(t, domain.PaymentPending, session.PaymentState)
	require.Len(t, audit.events, 1)
	assert.Equal(t, "session.entry", audit.events[0].Action)
}

func TestRegisterEntryRejectsBadInput(t *testing.T) {
	svc := newSessionService(newFakeSessionStore(), &fakeReleaser{}, fakePricer{}, &fakeAudit{})

	_, err := svc.RegisterEntry(context.Background(), EntryRequest{Plate: "", VehicleClass: domain.ClassCar, SpaceNumber: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.RegisterEntry(context.Background(), EntryRequest{Plate: "ABC123", VehicleClass: "truck", SpaceNumber: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.RegisterEntry(context.Background(), EntryRequest{Plate: "ABC123", VehicleClass: domain.ClassCar, SpaceNumber: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRegisterEntryTwiceSamePlate(t *testing.T) {
	store := newFakeSessionStore()
	svc := newSessionService(store, &fakeReleaser{}, fakePricer{}, &fakeAudit{})

	req := EntryRequest{Plate: "ABC123", VehicleClass: domain.ClassCar, SpaceNumber: 7, OperatorID: 1}
	_, err := svc.RegisterEntry(context.Background(), req)
	require.NoError(t, err)

	req.SpaceNumber = 8
	_, err = svc.RegisterEntry(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrVehicleAlreadyParked)
	assert.Len(t, store.created, 1)
}

func TestRegisterEntrySpaceConflictPropagates(t *testing.T) {
	store := newFakeSessionStore()
	store.createErr = fmt.Errorf("space 7: %w", domain.ErrSpaceUnavailable)
	svc := newSessionService(store, &fakeReleaser{}, fakePricer{}, &fakeAudit{})

	_, err := svc.RegisterEntry(context.Background(), EntryRequest{
		Plate: "ABC123", VehicleClass: domain.ClassCar, SpaceNumber: 7,
	})
	assert.ErrorIs(t, err, domain.ErrSpaceUnavailable)
}

func TestRegisterExitChargesAndReleases(t *testing.T) {
	store := newFakeSessionStore()
	spaces := &fakeReleaser{}
	audit := &fakeAudit{}
	pricer := fakePricer{breakdown: CostBreakdown{Total: 1275, Currency: "PEN", BillableMinutes: 195}}
	svc := newSessionService(store, spaces, pricer, audit)

	_, err := svc.RegisterEntry(context.Background(), EntryRequest{
		Plate: "ABC123", VehicleClass: domain.ClassCar, SpaceNumber: 7, OperatorID: 1,
	})
	require.NoError(t, err)

	result, err := svc.RegisterExit(context.Background(), ExitRequest{
		Plate: "abc123", PaymentMethod: domain.PayCash, OperatorID: 2, OperatorName: "Luis",
	})
	require.NoError(t, err)

	require.Len(t, store.closed, 1)
	assert.Equal(t, int64(1275), store.closed[0].Amount.Amount)
	assert.Equal(t, domain.PayCash, store.closed[0].PaymentMethod)
	assert.Equal(t, []int{7}, spaces.released)

	require.NotNil(t, result.Session.Amount)
	assert.Equal(t, int64(1275), result.Session.Amount.Amount)
	assert.Equal(t, domain.PaymentPaid, result.Session.PaymentState)
	assert.Equal(t, int64(2), result.Session.OperatorID)
	require.Len(t, audit.events, 2)
	assert.Equal(t, "session.exit", audit.events[1].Action)
}

func TestRegisterExitUnknownPlate(t *testing.T) {
	store := newFakeSessionStore()
	spaces := &fakeReleaser{}
	svc := newSessionService(store, spaces, fakePricer{}, &fakeAudit{})

	_, err := svc.RegisterExit(context.Background(), ExitRequest{
		Plate: "ZZZ999", PaymentMethod: domain.PayCash,
	})
	assert.ErrorIs(t, err, domain.ErrVehicleNotParked)
	assert.Empty(t, store.closed)
	assert.Empty(t, spaces.released)
}

func TestRegisterExitLostRace(t *testing.T) {
	store := newFakeSessionStore()
	store.closeOK = false
	spaces := &fakeReleaser{}
	svc := newSessionService(store, spaces, fakePricer{breakdown: CostBreakdown{Total: 300}}, &fakeAudit{})

	_, err := svc.RegisterEntry(context.Background(), EntryRequest{
		Plate: "ABC123", VehicleClass: domain.ClassCar, SpaceNumber: 7,
	})
	require.NoError(t, err)

	_, err = svc.RegisterExit(context.Background(), ExitRequest{Plate: "ABC123", PaymentMethod: domain.PayCard})
	assert.ErrorIs(t, err, domain.ErrVehicleNotParked)
	assert.Empty(t, spaces.released)
}

func TestRegisterExitBlockedWithoutTariff(t *testing.T) {
	store := newFakeSessionStore()
	pricer := fakePricer{err: fmt.Errorf("class car: %w", domain.ErrNoTariffConfigured)}
	svc := newSessionService(store, &fakeReleaser{}, pricer, &fakeAudit{})

	_, err := svc.RegisterEntry(context.Background(), EntryRequest{
		Plate: "ABC123", VehicleClass: domain.ClassCar, SpaceNumber: 7,
	})
	require.NoError(t, err)

	_, err = svc.RegisterExit(context.Background(), ExitRequest{Plate: "ABC123", PaymentMethod: domain.PayCash})
	assert.ErrorIs(t, err, domain.ErrNoTariffConfigured)
	assert.Empty(t, store.closed, "payment must not be recorded without a tariff")
}

func TestRegisterExitSucceedsWhenReleaseFails(t *testing.T) {
	store := newFakeSessionStore()
	spaces := &fakeReleaser{err: errors.New("connection reset")}
	svc := newSessionService(store, spaces, fakePricer{breakdown: CostBreakdown{Total: 300, Currency: "PEN"}}, &fakeAudit{})

	_, err := svc.RegisterEntry(context.Background(), EntryRequest{
		Plate: "ABC123", VehicleClass: domain.ClassCar, SpaceNumber: 7,
	})
	require.NoError(t, err)

	// Payment correctness outranks space freshness: the exit still succeeds.
	result, err := svc.RegisterExit(context.Background(), ExitRequest{Plate: "ABC123", PaymentMethod: domain.PayCash})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, result.Session.PaymentState)
	require.Len(t, store.closed, 1)
}
