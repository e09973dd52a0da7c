package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/db"
	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/jackc/pgx/v5"
)

type PricingRepository struct {
	DB              *db.Postgres
	DefaultCurrency string
}

// Get returns the pricing singleton, or sensible defaults when the row has
// never been saved.
func (r PricingRepository) Get(ctx context.Context) (*domain.PricingConfig, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	var cfg domain.PricingConfig
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT grace_minutes, rounding_minutes, night_rules_enabled, weekend_rules_enabled,
		       currency_code, updated_at
		FROM pricing_config WHERE id = 1
	`).Scan(&cfg.GraceMinutes, &cfg.RoundingMinutes, &cfg.NightRulesEnabled,
		&cfg.WeekendRulesEnabled, &cfg.CurrencyCode, &cfg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.PricingConfig{
			GraceMinutes:        15,
			RoundingMinutes:     15,
			NightRulesEnabled:   true,
			WeekendRulesEnabled: true,
			CurrencyCode:        r.DefaultCurrency,
			UpdatedAt:           time.Time{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the singleton row.
func (r PricingRepository) Save(ctx context.Context, cfg domain.PricingConfig) (*domain.PricingConfig, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	if cfg.CurrencyCode == "" {
		cfg.CurrencyCode = r.DefaultCurrency
	}
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO pricing_config
		(id, grace_minutes, rounding_minutes, night_rules_enabled, weekend_rules_enabled, currency_code, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, now())
		ON CONFLICT (id) DO UPDATE SET
			grace_minutes = EXCLUDED.grace_minutes,
			rounding_minutes = EXCLUDED.rounding_minutes,
			night_rules_enabled = EXCLUDED.night_rules_enabled,
			weekend_rules_enabled = EXCLUDED.weekend_rules_enabled,
			currency_code = EXCLUDED.currency_code,
			updated_at = now()
		RETURNING updated_at
	`, cfg.GraceMinutes, cfg.RoundingMinutes, cfg.NightRulesEnabled,
		cfg.WeekendRulesEnabled, cfg.CurrencyCode).Scan(&cfg.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
