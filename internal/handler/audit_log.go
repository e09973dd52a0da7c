package handler

import (
	"net/http"
	"strconv"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/repository"
	"github.com/go-chi/chi/v5"
)

type AuditLogHandler struct {
	Repo repository.AuditRepository
}

func (h AuditLogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/audit", h.list)
}

func (h AuditLogHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.Repo.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		resp = append(resp, toAuditResponse(ev))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toAuditResponse(ev domain.AuditEvent) map[string]any {
	resp := map[string]any{
		"id":         ev.ID,
		"actorId":    strconv.FormatInt(ev.ActorID, 10),
		"actorName":  ev.ActorName,
		"action":     ev.Action,
		"entityType": ev.EntityType,
		"entityId":   ev.EntityID,
		"details":    ev.Details,
		"loggedAt":   ev.LoggedAt,
	}
	if ev.Amount != nil {
		resp["amount"] = *ev.Amount
	}
	return resp
}
