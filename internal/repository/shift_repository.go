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
)

type ShiftRepository struct {
	DB *db.Postgres
}

type OpenShiftInput struct {
	OperatorID   int64
	OperatorName string
	OpenedAt     time.Time
	OpeningCash  int64
}

// Open creates a shift row. The partial unique index on open shifts turns a
// double-open into domain.ErrShiftAlreadyOpen.
func (r ShiftRepository) Open(ctx context.Context, in OpenShiftInput) (*domain.Shift, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	id := uuid.New()
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO shifts (id, operator_id, operator_name, opened_at, opening_cash, state)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, id, in.OperatorID, in.OperatorName, in.OpenedAt, in.OpeningCash, domain.ShiftOpen)
	if db.IsUniqueViolation(err) {
		return nil, fmt.Errorf("operator %d: %w", in.OperatorID, domain.ErrShiftAlreadyOpen)
	}
	if err != nil {
		return nil, err
	}

	return &domain.Shift{
		ID:           id,
		OperatorID:   in.OperatorID,
		OperatorName: in.OperatorName,
		OpenedAt:     in.OpenedAt,
		OpeningCash:  in.OpeningCash,
		State:        domain.ShiftOpen,
	}, nil
}

const shiftColumns = `id, operator_id, operator_name, opened_at, opening_cash,
	closed_at, closing_cash, expected_cash, variance, state, notes`

func (r ShiftRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Shift, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	row := r.DB.Pool.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)
	s, err := scanShift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("shift %s: %w", id, domain.ErrNotFound)
	}
	return s, err
}

func (r ShiftRepository) GetOpenByOperator(ctx context.Context, operatorID int64) (*domain.Shift, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE operator_id = $1 AND state = $2
	`, operatorID, domain.ShiftOpen)
	s, err := scanShift(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("no open shift for operator %d: %w", operatorID, domain.ErrNotFound)
	}
	return s, err
}

type CloseShiftInput struct {
	ID           uuid.UUID
	ClosedAt     time.Time
	ClosingCash  int64
	ExpectedCash int64
	Variance     int64
	Notes        string
}

// Close finalizes a shift in a single update guarded on state='open'. It
// returns false when the shift was already closed.
func (r ShiftRepository) Close(ctx context.Context, in CloseShiftInput) (bool, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE shifts
		SET closed_at = $2, closing_cash = $3, expected_cash = $4, variance = $5,
		    state = $6, notes = $7
		WHERE id = $1 AND state = $8
	`, in.ID, in.ClosedAt, in.ClosingCash, in.ExpectedCash, in.Variance,
		domain.ShiftClosed, in.Notes, domain.ShiftOpen)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CollectedSummary breaks down payments taken during a shift window. Total is
// what enters the expected-cash formula; the per-method split is
// informational for the live dashboard.
type CollectedSummary struct {
	Total int64
	Cash  int64
	Card  int64
	Other int64
	Count int64
}

// CollectedDuring aggregates paid session amounts recorded by an operator
// inside [from, to).
func (r ShiftRepository) CollectedDuring(ctx context.Context, operatorID int64, from, to time.Time) (CollectedSummary, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	var s CollectedSummary
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount),0) AS total,
			COALESCE(SUM(amount) FILTER (WHERE payment_method = 'cash'),0) AS cash,
			COALESCE(SUM(amount) FILTER (WHERE payment_method = 'card'),0) AS card,
			COALESCE(SUM(amount) FILTER (WHERE payment_method NOT IN ('cash','card')),0) AS other,
			COUNT(*) AS cnt
		FROM parking_sessions
		WHERE payment_state = 'paid'
		  AND operator_id = $1
		  AND exit_at >= $2 AND exit_at < $3
	`, operatorID, from, to).Scan(&s.Total, &s.Cash, &s.Card, &s.Other, &s.Count)
	return s, err
}

// List returns shift history, newest first, optionally bounded by open date.
func (r ShiftRepository) List(ctx context.Context, from, to *time.Time, limit int) ([]domain.Shift, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE ($1::timestamptz IS NULL OR opened_at >= $1)
		  AND ($2::timestamptz IS NULL OR opened_at < $2)
		ORDER BY opened_at DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanShift(row pgx.Row) (*domain.Shift, error) {
	var s domain.Shift
	var state string
	if err := row.Scan(
		&s.ID, &s.OperatorID, &s.OperatorName, &s.OpenedAt, &s.OpeningCash,
		&s.ClosedAt, &s.ClosingCash, &s.ExpectedCash, &s.Variance, &state, &s.Notes,
	); err != nil {
		return nil, err
	}
	s.State = domain.ShiftState(state)
	return &s, nil
}
