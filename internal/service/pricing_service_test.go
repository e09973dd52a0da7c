package service

import (
	"context"
	"testing"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeTariffStore struct {
	rules []domain.TariffRule
	err   error
}

func (f fakeTariffStore) ListActiveByClass(_ context.Context, class domain.VehicleClass) ([]domain.TariffRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.TariffRule
	for _, r := range f.rules {
		if r.VehicleClass == class && r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeConfigStore struct{ cfg domain.PricingConfig }

func (f fakeConfigStore) Get(context.Context) (*domain.PricingConfig, error) {
	cfg := f.cfg
	return &cfg, nil
}

func testConfig() domain.PricingConfig {
	return domain.PricingConfig{
		GraceMinutes:        15,
		RoundingMinutes:     15,
		NightRulesEnabled:   true,
		WeekendRulesEnabled: true,
		CurrencyCode:        "PEN",
	}
}

func dayRule() domain.TariffRule {
	return domain.TariffRule{
		ID: 1, Name: "Car day", VehicleClass: domain.ClassCar,
		Weekdays: domain.EveryDay, StartMinute: 0, EndMinute: 24 * 60,
		FirstHourRate: 600, AdditionalHourRate: 300, MinimumCharge: 250,
		Priority: 10, Active: true,
	}
}

func at(hour, minute int) time.Time {
	// 2026-06-03 is a Wednesday.
	return time.Date(2026, 6, 3, hour, minute, 0, 0, time.UTC)
}

func TestCalculateWithinGraceIsFree(t *testing.T) {
	b := Calculate(dayRule(), testConfig(), at(10, 0), at(10, 10))

	assert.True(t, b.GraceApplied)
	assert.Equal(t, 10, b.ElapsedMinutes)
	assert.Equal(t, 0, b.BillableMinutes)
	assert.Equal(t, int64(0), b.Total)
}

func TestCalculateExactlyGraceIsFree(t *testing.T) {
	b := Calculate(dayRule(), testConfig(), at(10, 0), at(10, 15))

	assert.True(t, b.GraceApplied)
	assert.Equal(t, int64(0), b.Total)
}

func TestCalculateRoundsUpThenProRates(t *testing.T) {
	// 20 min elapsed, rounds to 30, 30/60 * 6.00 = 3.00, above the 2.50 minimum.
	b := Calculate(dayRule(), testConfig(), at(10, 0), at(10, 20))

	assert.False(t, b.GraceApplied)
	assert.Equal(t, 20, b.ElapsedMinutes)
	assert.Equal(t, 30, b.BillableMinutes)
	assert.True(t, b.Rounded)
	assert.Equal(t, int64(300), b.Total)
	assert.False(t, b.MinimumApplied)
}

func TestCalculateAdditionalHours(t *testing.T) {
	// 185 min elapsed rounds to 195: 6.00 first hour + 135/60 * 3.00 = 12.75.
	b := Calculate(dayRule(), testConfig(), at(8, 0), at(11, 5))

	assert.Equal(t, 185, b.ElapsedMinutes)
	assert.Equal(t, 195, b.BillableMinutes)
	assert.Equal(t, int64(600), b.FirstHourPart)
	assert.Equal(t, int64(675), b.AdditionalPart)
	assert.Equal(t, int64(1275), b.Total)
}

func TestCalculateMinimumCharge(t *testing.T) {
	rule := dayRule()
	rule.MinimumCharge = 400
	// 30 billable minutes would be 3.00; minimum lifts it to 4.00.
	b := Calculate(rule, testConfig(), at(10, 0), at(10, 20))

	assert.True(t, b.MinimumApplied)
	assert.Equal(t, int64(400), b.Total)
}

func TestCalculateMaximumCharge(t *testing.T) {
	rule := dayRule()
	max := int64(1000)
	rule.MaximumCharge = &max
	b := Calculate(rule, testConfig(), at(8, 0), at(18, 0))

	assert.True(t, b.MaximumApplied)
	assert.Equal(t, int64(1000), b.Total)
}

func TestCalculateMonotonicInDuration(t *testing.T) {
	rule := dayRule()
	max := int64(2000)
	rule.MaximumCharge = &max
	cfg := testConfig()

	var prev int64 = -1
	entry := at(8, 0)
	for minutes := 0; minutes <= 12*60; minutes++ {
		b := Calculate(rule, cfg, entry, entry.Add(time.Duration(minutes)*time.Minute))
		require.GreaterOrEqual(t, b.Total, prev, "amount decreased at %d minutes", minutes)
		if !b.GraceApplied {
			require.GreaterOrEqual(t, b.BillableMinutes, b.ElapsedMinutes)
		}
		prev = b.Total
	}
}

func TestCalculateNoRoundingConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.RoundingMinutes = 0
	b := Calculate(dayRule(), cfg, at(10, 0), at(10, 20))

	assert.False(t, b.Rounded)
	assert.Equal(t, 20, b.BillableMinutes)
	assert.Equal(t, int64(200), b.Total)
}

func newPricing(rules []domain.TariffRule, cfg domain.PricingConfig) PricingService {
	return PricingService{
		Tariffs: fakeTariffStore{rules: rules},
		Config:  fakeConfigStore{cfg: cfg},
		Clock:   fakeClock{now: at(12, 0)},
	}
}

func TestResolveHigherPriorityWinsOverlap(t *testing.T) {
	low := dayRule()
	high := dayRule()
	high.ID, high.Name, high.Priority = 2, "Car promo", 20
	// Store contract: priority descending.
	svc := newPricing([]domain.TariffRule{high, low}, testConfig())

	rule, fallback, err := svc.Resolve(context.Background(), domain.ClassCar, at(12, 0))
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, int64(2), rule.ID)
}

func TestResolveEqualPriorityInsertionOrder(t *testing.T) {
	first := dayRule()
	second := dayRule()
	second.ID, second.Name = 2, "Car day B"
	svc := newPricing([]domain.TariffRule{first, second}, testConfig())

	rule, _, err := svc.Resolve(context.Background(), domain.ClassCar, at(12, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rule.ID)
}

func TestResolveFallbackOutsideAllWindows(t *testing.T) {
	rule := dayRule()
	rule.StartMinute, rule.EndMinute = 6*60, 10*60
	svc := newPricing([]domain.TariffRule{rule}, testConfig())

	got, fallback, err := svc.Resolve(context.Background(), domain.ClassCar, at(14, 0))
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, rule.ID, got.ID)
}

func TestResolveNoRulesConfigured(t *testing.T) {
	svc := newPricing(nil, testConfig())

	_, _, err := svc.Resolve(context.Background(), domain.ClassCar, at(12, 0))
	assert.ErrorIs(t, err, domain.ErrNoTariffConfigured)
}

func TestResolveNightWindowWrapsMidnight(t *testing.T) {
	night := dayRule()
	night.ID, night.Name, night.Priority = 2, "Car night", 20
	night.StartMinute, night.EndMinute = 22*60, 6*60
	svc := newPricing([]domain.TariffRule{night, dayRule()}, testConfig())

	rule, _, err := svc.Resolve(context.Background(), domain.ClassCar, at(23, 30))
	require.NoError(t, err)
	assert.Equal(t, int64(2), rule.ID)

	rule, _, err = svc.Resolve(context.Background(), domain.ClassCar, at(5, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), rule.ID)

	rule, _, err = svc.Resolve(context.Background(), domain.ClassCar, at(12, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rule.ID)
}

func TestResolveNightToggleDisablesWindowedRules(t *testing.T) {
	night := dayRule()
	night.ID, night.Priority = 2, 20
	night.StartMinute, night.EndMinute = 22*60, 6*60
	cfg := testConfig()
	cfg.NightRulesEnabled = false
	svc := newPricing([]domain.TariffRule{night, dayRule()}, cfg)

	rule, _, err := svc.Resolve(context.Background(), domain.ClassCar, at(23, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rule.ID)
}

func TestResolveWeekendToggleDisablesWeekendRules(t *testing.T) {
	weekend := dayRule()
	weekend.ID, weekend.Priority, weekend.Weekdays = 2, 20, domain.Weekend
	cfg := testConfig()
	cfg.WeekendRulesEnabled = false
	svc := newPricing([]domain.TariffRule{weekend, dayRule()}, cfg)

	// 2026-06-06 is a Saturday.
	saturday := time.Date(2026, 6, 6, 12, 0, 0, 0, time.UTC)
	rule, _, err := svc.Resolve(context.Background(), domain.ClassCar, saturday)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rule.ID)
}

func TestSimulateUsesClockWhenNoReference(t *testing.T) {
	svc := newPricing([]domain.TariffRule{dayRule()}, testConfig())

	b, err := svc.Simulate(context.Background(), domain.ClassCar, 90, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 90, b.ElapsedMinutes)
	assert.Equal(t, int64(600+150), b.Total)
	assert.Equal(t, "PEN", b.Currency)
}

func TestSimulateRejectsUnknownClass(t *testing.T) {
	svc := newPricing([]domain.TariffRule{dayRule()}, testConfig())

	_, err := svc.Simulate(context.Background(), "truck", 60, time.Time{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
