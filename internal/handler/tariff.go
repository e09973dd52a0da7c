package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/repository"
	"github.com/go-chi/chi/v5"
)

type TariffHandler struct {
	Repo repository.TariffRepository
}

func (h TariffHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/tariffs", h.list)
}

func (h TariffHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/tariffs", h.upsert)
}

func (h TariffHandler) list(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Repo.ListAll(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(rules))
	for _, rule := range rules {
		resp = append(resp, toTariffResponse(rule))
	}
	writeJSON(w, http.StatusOK, resp)
}

type tariffPayload struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	VehicleClass       string `json:"vehicleClass"`
	Weekdays           []int  `json:"weekdays"`
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
	FirstHourRate      int64  `json:"firstHourRate"`
	AdditionalHourRate int64  `json:"additionalHourRate"`
	MinimumCharge      int64  `json:"minimumCharge"`
	MaximumCharge      *int64 `json:"maximumCharge"`
	Priority           int    `json:"priority"`
	Active             bool   `json:"active"`
}

func (h TariffHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var req tariffPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	rule, err := fromTariffPayload(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	saved, err := h.Repo.Upsert(r.Context(), *rule)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTariffResponse(*saved))
}

func fromTariffPayload(req tariffPayload) (*domain.TariffRule, error) {
	if req.Name == "" {
		return nil, domain.Validationf("tariff name is required")
	}
	class := domain.VehicleClass(req.VehicleClass)
	if !class.Valid() {
		return nil, domain.Validationf("unknown vehicle class %q", req.VehicleClass)
	}
	if req.FirstHourRate < 0 || req.AdditionalHourRate < 0 || req.MinimumCharge < 0 {
		return nil, domain.Validationf("rates must not be negative")
	}
	if req.MaximumCharge != nil && *req.MaximumCharge < req.MinimumCharge {
		return nil, domain.Validationf("maximum charge below minimum charge")
	}

	var mask domain.WeekdayMask
	if len(req.Weekdays) == 0 {
		mask = domain.EveryDay
	}
	for _, d := range req.Weekdays {
		if d < 0 || d > 6 {
			return nil, domain.Validationf("weekday %d out of range", d)
		}
		mask |= domain.MaskOf(time.Weekday(d))
	}

	start, err := parseMinuteOfDay(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseMinuteOfDay(req.EndTime)
	if err != nil {
		return nil, err
	}

	return &domain.TariffRule{
		ID:                 req.ID,
		Name:               req.Name,
		VehicleClass:       class,
		Weekdays:           mask,
		StartMinute:        start,
		EndMinute:          end,
		FirstHourRate:      req.FirstHourRate,
		AdditionalHourRate: req.AdditionalHourRate,
		MinimumCharge:      req.MinimumCharge,
		MaximumCharge:      req.MaximumCharge,
		Priority:           req.Priority,
		Active:             req.Active,
	}, nil
}

// parseMinuteOfDay reads "HH:MM" into minutes since midnight. "24:00" is
// accepted as end-of-day.
func parseMinuteOfDay(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	if value == "24:00" {
		return 24 * 60, nil
	}
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, domain.Validationf("time %q must be HH:MM", value)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

func toTariffResponse(rule domain.TariffRule) map[string]any {
	var weekdays []int
	for d := time.Sunday; d <= time.Saturday; d++ {
		if rule.Weekdays.Contains(d) {
			weekdays = append(weekdays, int(d))
		}
	}
	resp := map[string]any{
		"id":                 rule.ID,
		"name":               rule.Name,
		"vehicleClass":       rule.VehicleClass,
		"weekdays":           weekdays,
		"startTime":          minuteToClock(rule.StartMinute),
		"endTime":            minuteToClock(rule.EndMinute),
		"firstHourRate":      rule.FirstHourRate,
		"additionalHourRate": rule.AdditionalHourRate,
		"minimumCharge":      rule.MinimumCharge,
		"priority":           rule.Priority,
		"active":             rule.Active,
	}
	if rule.MaximumCharge != nil {
		resp["maximumCharge"] = *rule.MaximumCharge
	}
	return resp
}

func minuteToClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
