package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDomainErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", domain.Validationf("plate is required"), http.StatusBadRequest},
		{"vehicle not parked", fmt.Errorf("plate ABC123: %w", domain.ErrVehicleNotParked), http.StatusNotFound},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"already parked", domain.ErrVehicleAlreadyParked, http.StatusConflict},
		{"space unavailable", domain.ErrSpaceUnavailable, http.StatusConflict},
		{"space occupied", domain.ErrSpaceOccupied, http.StatusConflict},
		{"shift already open", domain.ErrShiftAlreadyOpen, http.StatusConflict},
		{"no tariff", domain.ErrNoTariffConfigured, http.StatusInternalServerError},
		{"backend unavailable", domain.ErrBackendUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body apiResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "error", body.Status)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.status, body.Error.Code)
		})
	}
}

func TestWriteJSONOkEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]any{"plate": "ABC123"})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Nil(t, body.Error)
}
