package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/ports"
)

// TariffStore lists active rules for a vehicle class in priority-descending,
// insertion-stable order.
type TariffStore interface {
	ListActiveByClass(ctx context.Context, class domain.VehicleClass) ([]domain.TariffRule, error)
}

// PricingConfigStore fetches the pricing singleton.
type PricingConfigStore interface {
	Get(ctx context.Context) (*domain.PricingConfig, error)
}

// PricingService resolves the governing tariff for an instant and computes
// the amount owed for a stay.
type PricingService struct {
	Tariffs TariffStore
	Config  PricingConfigStore
	Clock   ports.Clock
}

// CostBreakdown is the auditable trace of one calculation. It backs the
// "simulate cost" preview as well as real exits.
type CostBreakdown struct {
	RuleID          int64  `json:"ruleId"`
	RuleName        string `json:"ruleName"`
	FallbackRule    bool   `json:"fallbackRule"`
	ElapsedMinutes  int    `json:"elapsedMinutes"`
	BillableMinutes int    `json:"billableMinutes"`
	Rounded         bool   `json:"rounded"`
	GraceApplied    bool   `json:"graceApplied"`
	FirstHourPart   int64  `json:"firstHourPart"`
	AdditionalPart  int64  `json:"additionalPart"`
	MinimumApplied  bool   `json:"minimumApplied"`
	MaximumApplied  bool   `json:"maximumApplied"`
	Total           int64  `json:"total"`
	Currency        string `json:"currency"`
}

// Resolve picks the single rule governing a class at an instant: highest
// priority whose weekday set and time window both contain the instant. When
// nothing matches, the highest-priority active rule prices the stay anyway
// ("always price something rather than fail"); the returned flag marks that
// fallback. Only an empty rule set is an error.
func (s PricingService) Resolve(ctx context.Context, class domain.VehicleClass, at time.Time) (*domain.TariffRule, bool, error) {
	rules, err := s.Tariffs.ListActiveByClass(ctx, class)
	if err != nil {
		return nil, false, err
	}
	if len(rules) == 0 {
		return nil, false, fmt.Errorf("class %s: %w", class, domain.ErrNoTariffConfigured)
	}

	cfg, err := s.Config.Get(ctx)
	if err != nil {
		return nil, false, err
	}

	candidates := filterRules(rules, cfg)
	if len(candidates) == 0 {
		candidates = rules
	}

	minute := at.Hour()*60 + at.Minute()
	for i := range candidates {
		r := &candidates[i]
		if r.Weekdays.Contains(at.Weekday()) && r.WindowContains(minute) {
			return r, false, nil
		}
	}
	return &candidates[0], true, nil
}

// filterRules drops rule categories a toggle has disabled. Both filters fall
// through to general rules, never to an error.
func filterRules(rules []domain.TariffRule, cfg *domain.PricingConfig) []domain.TariffRule {
	out := make([]domain.TariffRule, 0, len(rules))
	for _, r := range rules {
		if !cfg.NightRulesEnabled && !r.FullDay() {
			continue
		}
		if !cfg.WeekendRulesEnabled && r.Weekdays.WeekendOnly() {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Calculate computes the amount owed for a stay under one rule. All money is
// int64 minor units; pro-rating divides with half-up rounding so results are
// exact to two decimals.
func Calculate(rule domain.TariffRule, cfg domain.PricingConfig, entry, exit time.Time) CostBreakdown {
	b := CostBreakdown{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Currency: cfg.CurrencyCode,
	}

	elapsed := int(exit.Sub(entry).Minutes())
	if elapsed < 0 {
		elapsed = 0
	}
	b.ElapsedMinutes = elapsed

	if elapsed <= cfg.GraceMinutes {
		b.GraceApplied = true
		return b
	}

	billable := elapsed
	if cfg.RoundingMinutes > 1 {
		if rem := billable % cfg.RoundingMinutes; rem != 0 {
			billable += cfg.RoundingMinutes - rem
			b.Rounded = true
		}
	}
	b.BillableMinutes = billable

	firstMinutes := billable
	if firstMinutes > 60 {
		firstMinutes = 60
	}
	b.FirstHourPart = divHalfUp(int64(firstMinutes)*rule.FirstHourRate, 60)
	if billable > 60 {
		b.AdditionalPart = divHalfUp(int64(billable-60)*rule.AdditionalHourRate, 60)
	}

	total := b.FirstHourPart + b.AdditionalPart
	if total < rule.MinimumCharge {
		total = rule.MinimumCharge
		b.MinimumApplied = true
	}
	if rule.MaximumCharge != nil && total > *rule.MaximumCharge {
		total = *rule.MaximumCharge
		b.MaximumApplied = true
	}
	b.Total = total
	return b
}

// Quote resolves the tariff at entry time and prices the stay. The exit flow
// and the simulator share it.
func (s PricingService) Quote(ctx context.Context, class domain.VehicleClass, entry, exit time.Time) (*CostBreakdown, error) {
	rule, fallback, err := s.Resolve(ctx, class, entry)
	if err != nil {
		return nil, err
	}
	cfg, err := s.Config.Get(ctx)
	if err != nil {
		return nil, err
	}
	b := Calculate(*rule, *cfg, entry, exit)
	b.FallbackRule = fallback
	return &b, nil
}

// Simulate prices a hypothetical stay of the given duration starting at the
// reference instant (now when zero).
func (s PricingService) Simulate(ctx context.Context, class domain.VehicleClass, durationMinutes int, reference time.Time) (*CostBreakdown, error) {
	if !class.Valid() {
		return nil, domain.Validationf("unknown vehicle class %q", class)
	}
	if durationMinutes < 0 {
		return nil, domain.Validationf("duration must not be negative")
	}
	if reference.IsZero() {
		reference = s.Clock.Now()
	}
	exit := reference.Add(time.Duration(durationMinutes) * time.Minute)
	return s.Quote(ctx, class, reference, exit)
}

// divHalfUp divides non-negative minor-unit products rounding half away from
// zero.
func divHalfUp(n, d int64) int64 {
	return (n + d/2) / d
}
