package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/repository"
	"github.com/Limense/cochera-management-system-sub000/internal/server/authctx"
	"github.com/Limense/cochera-management-system-sub000/internal/service"
	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	Service *service.SessionService
	Repo    repository.SessionRepository
}

func (h SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions/entry", h.entry)
	r.Post("/sessions/exit", h.exit)
	r.Get("/sessions", h.list)
	r.Get("/sessions/active", h.listActive)
}

func (h SessionHandler) entry(w http.ResponseWriter, r *http.Request) {
	op := authctx.FromContext(r.Context())
	if op == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Plate        string `json:"plate"`
		VehicleClass string `json:"vehicleClass"`
		SpaceNumber  int    `json:"spaceNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	session, err := h.Service.RegisterEntry(r.Context(), service.EntryRequest{
		Plate:        req.Plate,
		VehicleClass: domain.VehicleClass(req.VehicleClass),
		SpaceNumber:  req.SpaceNumber,
		OperatorID:   op.ID,
		OperatorName: op.Name,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(*session))
}

func (h SessionHandler) exit(w http.ResponseWriter, r *http.Request) {
	op := authctx.FromContext(r.Context())
	if op == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Plate         string `json:"plate"`
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	result, err := h.Service.RegisterExit(r.Context(), service.ExitRequest{
		Plate:         req.Plate,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		OperatorID:    op.ID,
		OperatorName:  op.Name,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":   toSessionResponse(*result.Session),
		"breakdown": result.Breakdown,
	})
}

func (h SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	plate := r.URL.Query().Get("plate")
	if plate != "" {
		normalized, err := domain.NormalizePlate(plate)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		plate = normalized
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := h.Repo.List(r.Context(), plate, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponses(sessions))
}

func (h SessionHandler) listActive(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Repo.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponses(sessions))
}

func toSessionResponses(sessions []domain.ParkingSession) []map[string]any {
	out := make([]map[string]any, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	return out
}

func toSessionResponse(s domain.ParkingSession) map[string]any {
	resp := map[string]any{
		"id":           s.ID.String(),
		"plate":        s.Plate,
		"vehicleClass": s.VehicleClass,
		"spaceNumber":  s.SpaceNumber,
		"entryAt":      s.EntryAt,
		"paymentState": s.PaymentState,
		"operatorId":   strconv.FormatInt(s.OperatorID, 10),
		"operatorName": s.OperatorName,
	}
	if s.ExitAt != nil {
		resp["exitAt"] = s.ExitAt
	}
	if s.Amount != nil {
		resp["amount"] = s.Amount.Amount
		resp["currency"] = s.Amount.Currency
	}
	if s.PaymentMethod != nil {
		resp["paymentMethod"] = *s.PaymentMethod
	}
	return resp
}
