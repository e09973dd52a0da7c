package repository

import (
	"context"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
)

// SeedInventory provisions the static space inventory. The highest-numbered
// block of spaces is sized for motorcycles per the configured share; the rest
// take cars. Existing rows are left untouched so re-runs are safe.
func (r SpaceRepository) SeedInventory(ctx context.Context, capacity int, motorcycleShare float64) error {
	motorcycles := int(float64(capacity) * motorcycleShare)
	for number := 1; number <= capacity; number++ {
		class := domain.ClassCar
		if number > capacity-motorcycles {
			class = domain.ClassMotorcycle
		}
		_, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO spaces (number, vehicle_class, state)
			VALUES ($1, $2, $3)
			ON CONFLICT (number) DO NOTHING
		`, number, class, domain.SpaceAvailable)
		if err != nil {
			return err
		}
	}
	return nil
}
