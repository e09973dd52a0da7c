package handler

import (
	"net/http"
	"strconv"

	"github.com/Limense/cochera-management-system-sub000/internal/repository"
	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	Repo repository.DashboardRepository
}

func (h DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/summary", h.summary)
	r.Get("/dashboard/revenue", h.revenue)
}

func (h DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repo.Summary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"spacesTotal":       s.SpacesTotal,
		"spacesAvailable":   s.SpacesAvailable,
		"spacesOccupied":    s.SpacesOccupied,
		"spacesMaintenance": s.SpacesMaintenance,
		"activeSessions":    s.ActiveSessions,
		"todayExits":        s.TodayExits,
		"todayRevenue":      s.TodayRevenue,
		"openShifts":        s.OpenShifts,
	})
}

func (h DashboardHandler) revenue(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	points, err := h.Repo.RevenueSeries(r.Context(), days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(points))
	for _, p := range points {
		resp = append(resp, map[string]any{
			"date":   p.Date,
			"amount": p.Amount,
			"exits":  p.Exits,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
