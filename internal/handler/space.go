package handler

import (
	"net/http"
	"strconv"

	"github.com/Limense/cochera-management-system-sub000/internal/domain"
	"github.com/Limense/cochera-management-system-sub000/internal/repository"
	"github.com/go-chi/chi/v5"
)

type SpaceHandler struct {
	Repo repository.SpaceRepository
}

func (h SpaceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/spaces", h.list)
	r.Post("/spaces/{number}/maintenance", h.setMaintenance)
	r.Delete("/spaces/{number}/maintenance", h.clearMaintenance)
}

func (h SpaceHandler) list(w http.ResponseWriter, r *http.Request) {
	var state *domain.SpaceState
	if v := r.URL.Query().Get("state"); v != "" {
		s := domain.SpaceState(v)
		state = &s
	}
	var class *domain.VehicleClass
	if v := r.URL.Query().Get("class"); v != "" {
		c := domain.VehicleClass(v)
		if !c.Valid() {
			writeError(w, http.StatusBadRequest, "unknown vehicle class "+v)
			return
		}
		class = &c
	}

	spaces, err := h.Repo.List(r.Context(), state, class)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(spaces))
	for _, s := range spaces {
		resp = append(resp, toSpaceResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h SpaceHandler) setMaintenance(w http.ResponseWriter, r *http.Request) {
	number, err := spaceNumberParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid space number")
		return
	}
	if err := h.Repo.SetMaintenance(r.Context(), number); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"number": number, "state": domain.SpaceMaintenance})
}

func (h SpaceHandler) clearMaintenance(w http.ResponseWriter, r *http.Request) {
	number, err := spaceNumberParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid space number")
		return
	}
	if err := h.Repo.ClearMaintenance(r.Context(), number); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"number": number, "state": domain.SpaceAvailable})
}

func spaceNumberParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "number"))
}

func toSpaceResponse(s domain.Space) map[string]any {
	out := map[string]any{
		"number": s.Number,
		"class":  s.VehicleClass,
		"state":  s.State,
	}
	if s.LastOccupiedAt != nil {
		out["lastOccupiedAt"] = s.LastOccupiedAt
	}
	return out
}
