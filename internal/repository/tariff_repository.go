package repository

import (
	"context"
	"fmt"

	"github.com/Limense/cochera-management-system-sub000/internal/db"
	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type TariffRepository struct {
	DB *db.Postgres
}

const tariffColumns = `id, name, vehicle_class, weekday_mask, start_minute, end_minute,
	first_hour_rate, additional_hour_rate, minimum_charge, maximum_charge, priority, active`

// ListActiveByClass returns active rules for a class ordered by priority
// descending then insertion order. The resolver relies on this ordering being
// stable for its tie-break rule.
func (r TariffRepository) ListActiveByClass(ctx context.Context, class domain.VehicleClass) ([]domain.TariffRule, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+tariffColumns+`
		FROM tariff_rules
		WHERE vehicle_class = $1 AND active = true
		ORDER BY priority DESC, id ASC
	`, class)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTariffs(rows)
}

// ListAll returns every rule, active or not, for administration screens.
func (r TariffRepository) ListAll(ctx context.Context) ([]domain.TariffRule, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+tariffColumns+`
		FROM tariff_rules
		ORDER BY vehicle_class ASC, priority DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTariffs(rows)
}

// Upsert inserts a new rule (ID zero) or updates an existing one. Rules are
// never hard-deleted; deactivation flips the active flag.
func (r TariffRepository) Upsert(ctx context.Context, rule domain.TariffRule) (*domain.TariffRule, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	if rule.ID == 0 {
		err := r.DB.Pool.QueryRow(ctx, `
			INSERT INTO tariff_rules
			(name, vehicle_class, weekday_mask, start_minute, end_minute,
			 first_hour_rate, additional_hour_rate, minimum_charge, maximum_charge, priority, active)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			RETURNING id
		`, rule.Name, rule.VehicleClass, int(rule.Weekdays), rule.StartMinute, rule.EndMinute,
			rule.FirstHourRate, rule.AdditionalHourRate, rule.MinimumCharge, rule.MaximumCharge,
			rule.Priority, rule.Active).Scan(&rule.ID)
		if err != nil {
			return nil, err
		}
		return &rule, nil
	}

	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE tariff_rules
		SET name=$2, vehicle_class=$3, weekday_mask=$4, start_minute=$5, end_minute=$6,
		    first_hour_rate=$7, additional_hour_rate=$8, minimum_charge=$9, maximum_charge=$10,
		    priority=$11, active=$12
		WHERE id=$1
	`, rule.ID, rule.Name, rule.VehicleClass, int(rule.Weekdays), rule.StartMinute, rule.EndMinute,
		rule.FirstHourRate, rule.AdditionalHourRate, rule.MinimumCharge, rule.MaximumCharge,
		rule.Priority, rule.Active)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("tariff %d: %w", rule.ID, domain.ErrNotFound)
	}
	return &rule, nil
}

func collectTariffs(rows pgx.Rows) ([]domain.TariffRule, error) {
	var out []domain.TariffRule
	for rows.Next() {
		var t domain.TariffRule
		var class string
		var mask int
		var maxCharge pgtype.Int8
		if err := rows.Scan(
			&t.ID, &t.Name, &class, &mask, &t.StartMinute, &t.EndMinute,
			&t.FirstHourRate, &t.AdditionalHourRate, &t.MinimumCharge, &maxCharge,
			&t.Priority, &t.Active,
		); err != nil {
			return nil, err
		}
		t.VehicleClass = domain.VehicleClass(class)
		t.Weekdays = domain.WeekdayMask(mask)
		if maxCharge.Valid {
			t.MaximumCharge = &maxCharge.Int64
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
