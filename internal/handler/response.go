package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Limense/cochera-management-system-sub000/internal/db"
	"github.com/Limense/cochera-management-system-sub000/internal/domain"
)

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if status >= 400 {
		writeRawJSON(w, status, apiResponse{
			Status: "error",
			Data:   payload,
			Error: &apiError{
				Code:   status,
				Status: http.StatusText(status),
			},
		})
		return
	}
	writeRawJSON(w, status, apiResponse{
		Status: "ok",
		Data:   payload,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "error",
		Message: message,
		Error: &apiError{
			Code:   status,
			Status: http.StatusText(status),
		},
	})
}

// writeDomainError maps the core error taxonomy onto HTTP statuses. The
// wrapped message already carries plate/space/shift context for display.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrVehicleNotParked),
		errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrVehicleAlreadyParked),
		errors.Is(err, domain.ErrSpaceUnavailable),
		errors.Is(err, domain.ErrSpaceOccupied),
		errors.Is(err, domain.ErrShiftAlreadyOpen):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNoTariffConfigured):
		// Configuration failure: block payment, alert an administrator.
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, domain.ErrBackendUnavailable), db.IsUnavailable(err):
		writeError(w, http.StatusServiceUnavailable, "backend unavailable, retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
