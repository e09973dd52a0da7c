package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/db"
	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
)

type SpaceRepository struct {
	DB *db.Postgres
}

// List returns the space inventory, optionally filtered by state and class.
func (r SpaceRepository) List(ctx context.Context, state *domain.SpaceState, class *domain.VehicleClass) ([]domain.Space, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT number, vehicle_class, state, last_occupied_at
		FROM spaces
		WHERE ($1::text IS NULL OR state = $1)
		  AND ($2::text IS NULL OR vehicle_class = $2)
		ORDER BY number ASC
	`, stateArg(state), classArg(class))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spaces []domain.Space
	for rows.Next() {
		var s domain.Space
		var st, cl string
		if err := rows.Scan(&s.Number, &cl, &st, &s.LastOccupiedAt); err != nil {
			return nil, err
		}
		s.State = domain.SpaceState(st)
		s.VehicleClass = domain.VehicleClass(cl)
		spaces = append(spaces, s)
	}
	return spaces, rows.Err()
}

func (r SpaceRepository) Get(ctx context.Context, number int) (*domain.Space, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	var s domain.Space
	var st, cl string
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT number, vehicle_class, state, last_occupied_at
		FROM spaces WHERE number = $1
	`, number).Scan(&s.Number, &cl, &st, &s.LastOccupiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("space %d: %w", number, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	s.State = domain.SpaceState(st)
	s.VehicleClass = domain.VehicleClass(cl)
	return &s, nil
}

// Reserve flips an available space to occupied in one conditional update.
// Zero rows affected means the space was taken or under maintenance.
func (r SpaceRepository) Reserve(ctx context.Context, number int, at time.Time) error {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE spaces SET state = $2, last_occupied_at = $3
		WHERE number = $1 AND state = $4
	`, number, domain.SpaceOccupied, at, domain.SpaceAvailable)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("space %d: %w", number, domain.ErrSpaceUnavailable)
	}
	return nil
}

// Release returns an occupied space to the available pool. Releasing a space
// that is not occupied is a no-op so retries stay idempotent.
func (r SpaceRepository) Release(ctx context.Context, number int) error {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE spaces SET state = $2
		WHERE number = $1 AND state = $3
	`, number, domain.SpaceAvailable, domain.SpaceOccupied)
	return err
}

// SetMaintenance takes a space out of service. Occupied spaces refuse the
// transition.
func (r SpaceRepository) SetMaintenance(ctx context.Context, number int) error {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE spaces SET state = $2
		WHERE number = $1 AND state = $3
	`, number, domain.SpaceMaintenance, domain.SpaceAvailable)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		space, err := r.Get(ctx, number)
		if err != nil {
			return err
		}
		if space.State == domain.SpaceOccupied {
			return fmt.Errorf("space %d: %w", number, domain.ErrSpaceOccupied)
		}
	}
	return nil
}

func (r SpaceRepository) ClearMaintenance(ctx context.Context, number int) error {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE spaces SET state = $2
		WHERE number = $1 AND state = $3
	`, number, domain.SpaceAvailable, domain.SpaceMaintenance)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, number); err != nil {
			return err
		}
	}
	return nil
}

func stateArg(s *domain.SpaceState) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func classArg(c *domain.VehicleClass) *string {
	if c == nil {
		return nil
	}
	v := string(*c)
	return &v
}
