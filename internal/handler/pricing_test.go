package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTariffStore struct{ rules []domain.TariffRule }

func (s stubTariffStore) ListActiveByClass(_ context.Context, class domain.VehicleClass) ([]domain.TariffRule, error) {
	var out []domain.TariffRule
	for _, r := range s.rules {
		if r.VehicleClass == class {
			out = append(out, r)
		}
	}
	return out, nil
}

type stubConfigStore struct{ cfg domain.PricingConfig }

func (s stubConfigStore) Get(context.Context) (*domain.PricingConfig, error) {
	cfg := s.cfg
	return &cfg, nil
}

type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

func newPricingRouter(rules []domain.TariffRule) *chi.Mux {
	svc := service.PricingService{
		Tariffs: stubTariffStore{rules: rules},
		Config: stubConfigStore{cfg: domain.PricingConfig{
			GraceMinutes:        15,
			RoundingMinutes:     15,
			NightRulesEnabled:   true,
			WeekendRulesEnabled: true,
			CurrencyCode:        "PEN",
		}},
		Clock: stubClock{now: time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)},
	}
	r := chi.NewRouter()
	PricingHandler{Service: svc}.RegisterPublicRoutes(r)
	return r
}

func carDayRule() domain.TariffRule {
	return domain.TariffRule{
		ID: 1, Name: "Car day", VehicleClass: domain.ClassCar,
		Weekdays: domain.EveryDay, StartMinute: 0, EndMinute: 24 * 60,
		FirstHourRate: 600, AdditionalHourRate: 300, MinimumCharge: 250,
		Priority: 10, Active: true,
	}
}

func TestSimulateEndpoint(t *testing.T) {
	router := newPricingRouter([]domain.TariffRule{carDayRule()})

	body := `{"vehicleClass":"car","durationMinutes":90}`
	req := httptest.NewRequest(http.MethodPost, "/pricing/simulate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string                `json:"status"`
		Data   service.CostBreakdown `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(750), resp.Data.Total)
	assert.Equal(t, "PEN", resp.Data.Currency)
	assert.Equal(t, "Car day", resp.Data.RuleName)
}

func TestSimulateEndpointBadReference(t *testing.T) {
	router := newPricingRouter([]domain.TariffRule{carDayRule()})

	body := `{"vehicleClass":"car","durationMinutes":60,"referenceTime":"yesterday"}`
	req := httptest.NewRequest(http.MethodPost, "/pricing/simulate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateEndpointNoTariffs(t *testing.T) {
	router := newPricingRouter(nil)

	body := `{"vehicleClass":"car","durationMinutes":60}`
	req := httptest.NewRequest(http.MethodPost, "/pricing/simulate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
