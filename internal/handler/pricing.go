package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/repository"
	"github.com/Limense/cochera-management-system-sub000/internal/service"
	"github.com/go-chi/chi/v5"
)

type PricingHandler struct {
	Service service.PricingService
	Repo    repository.PricingRepository
}

// RegisterPublicRoutes mounts the simulator, usable from the booth.
func (h PricingHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/pricing/simulate", h.simulate)
	r.Get("/pricing/config", h.getConfig)
}

// RegisterAdminRoutes mounts config mutation, supervisor and up.
func (h PricingHandler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/pricing/config", h.saveConfig)
}

func (h PricingHandler) simulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VehicleClass    string `json:"vehicleClass"`
		DurationMinutes int    `json:"durationMinutes"`
		ReferenceTime   string `json:"referenceTime"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	var reference time.Time
	if req.ReferenceTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.ReferenceTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, "referenceTime must be RFC3339")
			return
		}
		reference = parsed
	}

	breakdown, err := h.Service.Simulate(r.Context(), domain.VehicleClass(req.VehicleClass), req.DurationMinutes, reference)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (h PricingHandler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Repo.Get(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPricingConfigResponse(cfg))
}

func (h PricingHandler) saveConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GraceMinutes        int    `json:"graceMinutes"`
		RoundingMinutes     int    `json:"roundingMinutes"`
		NightRulesEnabled   bool   `json:"nightRulesEnabled"`
		WeekendRulesEnabled bool   `json:"weekendRulesEnabled"`
		CurrencyCode        string `json:"currencyCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.GraceMinutes < 0 || req.RoundingMinutes < 0 {
		writeError(w, http.StatusBadRequest, "grace and rounding minutes must not be negative")
		return
	}

	cfg, err := h.Repo.Save(r.Context(), domain.PricingConfig{
		GraceMinutes:        req.GraceMinutes,
		RoundingMinutes:     req.RoundingMinutes,
		NightRulesEnabled:   req.NightRulesEnabled,
		WeekendRulesEnabled: req.WeekendRulesEnabled,
		CurrencyCode:        req.CurrencyCode,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPricingConfigResponse(cfg))
}

func toPricingConfigResponse(cfg *domain.PricingConfig) map[string]any {
	return map[string]any{
		"graceMinutes":        cfg.GraceMinutes,
		"roundingMinutes":     cfg.RoundingMinutes,
		"nightRulesEnabled":   cfg.NightRulesEnabled,
		"weekendRulesEnabled": cfg.WeekendRulesEnabled,
		"currencyCode":        cfg.CurrencyCode,
		"updatedAt":           cfg.UpdatedAt,
	}
}
