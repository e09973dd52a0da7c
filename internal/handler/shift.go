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
	"github.com/google/uuid"
)

type ShiftHandler struct {
	Service *service.ShiftService
	Repo    repository.ShiftRepository
}

func (h ShiftHandler) RegisterRoutes(r chi.Router) {
	r.Post("/shifts/open", h.open)
	r.Post("/shifts/{id}/close", h.close)
	r.Get("/shifts/current", h.current)
	r.Get("/shifts", h.list)
}

func (h ShiftHandler) open(w http.ResponseWriter, r *http.Request) {
	op := authctx.FromContext(r.Context())
	if op == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		OpeningCash int64 `json:"openingCash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	shift, err := h.Service.Open(r.Context(), op.ID, op.Name, req.OpeningCash)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftResponse(*shift))
}

func (h ShiftHandler) close(w http.ResponseWriter, r *http.Request) {
	op := authctx.FromContext(r.Context())
	if op == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	shiftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shift id")
		return
	}
	var req struct {
		CountedCash int64  `json:"countedCash"`
		Notes       string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	shift, err := h.Service.Close(r.Context(), shiftID, req.CountedCash, req.Notes, op.ID, op.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftResponse(*shift))
}

func (h ShiftHandler) current(w http.ResponseWriter, r *http.Request) {
	op := authctx.FromContext(r.Context())
	if op == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status, err := h.Service.Status(r.Context(), op.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := toShiftResponse(*status.Shift)
	resp["expectedCashSoFar"] = status.ExpectedCash
	resp["collected"] = map[string]any{
		"total": status.Collected.Total,
		"cash":  status.Collected.Cash,
		"card":  status.Collected.Card,
		"other": status.Collected.Other,
		"count": status.Collected.Count,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ShiftHandler) list(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be YYYY-MM-DD")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	shifts, err := h.Repo.List(r.Context(), from, to, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(shifts))
	for _, s := range shifts {
		resp = append(resp, toShiftResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func toShiftResponse(s domain.Shift) map[string]any {
	resp := map[string]any{
		"id":           s.ID.String(),
		"operatorId":   strconv.FormatInt(s.OperatorID, 10),
		"operatorName": s.OperatorName,
		"openedAt":     s.OpenedAt,
		"openingCash":  s.OpeningCash,
		"state":        s.State,
		"notes":        s.Notes,
	}
	if s.ClosedAt != nil {
		resp["closedAt"] = s.ClosedAt
	}
	if s.ClosingCash != nil {
		resp["closingCash"] = *s.ClosingCash
	}
	if s.ExpectedCash != nil {
		resp["expectedCash"] = *s.ExpectedCash
	}
	if s.Variance != nil {
		resp["variance"] = *s.Variance
	}
	return resp
}
