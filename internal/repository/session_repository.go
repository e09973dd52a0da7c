package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/db"
	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

type SessionRepository struct {
	DB *db.Postgres
}

type CreateSessionInput struct {
	Plate        string
	VehicleClass domain.VehicleClass
	SpaceNumber  int
	EntryAt      time.Time
	OperatorID   int64
	OperatorName string
}

// CreateActive reserves the space and inserts the session in one transaction:
// either the vehicle is parked and the space is occupied, or neither. The
// conditional space update is the concurrency enforcement point; the partial
// unique indexes are the backstop.
func (r SessionRepository) CreateActive(ctx context.Context, in CreateSessionInput) (*domain.ParkingSession, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE spaces SET state = $2, last_occupied_at = $3
		WHERE number = $1 AND state = $4
	`, in.SpaceNumber, domain.SpaceOccupied, in.EntryAt, domain.SpaceAvailable)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("space %d: %w", in.SpaceNumber, domain.ErrSpaceUnavailable)
	}

	id := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO parking_sessions
		(id, plate, vehicle_class, space_number, entry_at, payment_state, operator_id, operator_name)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, id, in.Plate, in.VehicleClass, in.SpaceNumber, in.EntryAt, domain.PaymentPending, in.OperatorID, in.OperatorName)
	if err != nil {
		return nil, mapSessionInsertErr(err, in)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.ParkingSession{
		ID:           id,
		Plate:        in.Plate,
		VehicleClass: in.VehicleClass,
		SpaceNumber:  in.SpaceNumber,
		EntryAt:      in.EntryAt,
		PaymentState: domain.PaymentPending,
		OperatorID:   in.OperatorID,
		OperatorName: in.OperatorName,
	}, nil
}

func mapSessionInsertErr(err error, in CreateSessionInput) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "parking_sessions_active_plate":
			return fmt.Errorf("plate %s: %w", in.Plate, domain.ErrVehicleAlreadyParked)
		case "parking_sessions_active_space":
			return fmt.Errorf("space %d: %w", in.SpaceNumber, domain.ErrSpaceUnavailable)
		}
	}
	return err
}

// FindActiveByPlate returns the single open session for a plate, or
// domain.ErrNotFound.
func (r SessionRepository) FindActiveByPlate(ctx context.Context, plate string) (*domain.ParkingSession, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, plate, vehicle_class, space_number, entry_at, exit_at, amount, currency,
		       payment_state, payment_method, operator_id, operator_name
		FROM parking_sessions
		WHERE plate = $1 AND exit_at IS NULL
	`, plate)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("plate %s: %w", plate, domain.ErrNotFound)
	}
	return s, err
}

type CloseSessionInput struct {
	ID            uuid.UUID
	ExitAt        time.Time
	Amount        domain.Money
	PaymentMethod domain.PaymentMethod
	OperatorID    int64
	OperatorName  string
}

// CloseActive records exit, amount and payment in a single update guarded on
// exit_at IS NULL. It returns false when the session was already closed by a
// concurrent exit.
func (r SessionRepository) CloseActive(ctx context.Context, in CloseSessionInput) (bool, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE parking_sessions
		SET exit_at = $2, amount = $3, currency = $4, payment_state = $5,
		    payment_method = $6, operator_id = $7, operator_name = $8
		WHERE id = $1 AND exit_at IS NULL
	`, in.ID, in.ExitAt, in.Amount.Amount, in.Amount.Currency, domain.PaymentPaid,
		in.PaymentMethod, in.OperatorID, in.OperatorName)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// List returns session history, newest first, optionally filtered by plate.
func (r SessionRepository) List(ctx context.Context, plate string, limit int) ([]domain.ParkingSession, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, plate, vehicle_class, space_number, entry_at, exit_at, amount, currency,
		       payment_state, payment_method, operator_id, operator_name
		FROM parking_sessions
		WHERE ($1 = '' OR plate = $1)
		ORDER BY entry_at DESC
		LIMIT $2
	`, plate, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListActive returns all open sessions ordered by space number.
func (r SessionRepository) ListActive(ctx context.Context) ([]domain.ParkingSession, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, plate, vehicle_class, space_number, entry_at, exit_at, amount, currency,
		       payment_state, payment_method, operator_id, operator_name
		FROM parking_sessions
		WHERE exit_at IS NULL
		ORDER BY space_number ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

func collectSessions(rows pgx.Rows) ([]domain.ParkingSession, error) {
	var out []domain.ParkingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (*domain.ParkingSession, error) {
	var s domain.ParkingSession
	var class, state string
	var amount pgtype.Int8
	var currency string
	var method pgtype.Text
	if err := row.Scan(
		&s.ID, &s.Plate, &class, &s.SpaceNumber, &s.EntryAt, &s.ExitAt, &amount, &currency,
		&state, &method, &s.OperatorID, &s.OperatorName,
	); err != nil {
		return nil, err
	}
	s.VehicleClass = domain.VehicleClass(class)
	s.PaymentState = domain.PaymentState(state)
	if amount.Valid {
		s.Amount = &domain.Money{Amount: amount.Int64, Currency: currency}
	}
	if method.Valid {
		m := domain.PaymentMethod(method.String)
		s.PaymentMethod = &m
	}
	return &s, nil
}
