package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/taskly/dashboard/internal/dashboard"
	"github.com/taskly/dashboard/internal/models"
	"github.com/taskly/dashboard/internal/validation"
)

// FilterHandler reads and replaces the active dashboard filters
type FilterHandler struct {
	store *dashboard.Store
}

// NewFilterHandler creates a new filter handler
func NewFilterHandler(store *dashboard.Store) *FilterHandler {
	return &FilterHandler{store: store}
}

// RegisterRoutes registers filter routes on a router already prefixed with /filters
func (h *FilterHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetFilters).Methods(http.MethodGet)
	r.HandleFunc("", h.SetFilters).Methods(http.MethodPut)
}

// GetFilters returns the active filters
func (h *FilterHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Filters())
}

// SetFilters replaces the active filters
func (h *FilterHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var f models.Filter
	if err := decodeJSON(r, &f); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	f.ProjectName = validation.SanitizeText(f.ProjectName)
	if err := validation.Validate.Struct(f); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", validationMessage(err))
		return
	}
	if f.DueFrom != "" && f.DueTo != "" && f.DueFrom > f.DueTo {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", "due_from must not be after due_to")
		return
	}

	h.store.SetFilters(f)
	respondJSON(w, http.StatusOK, h.store.Filters())
}
