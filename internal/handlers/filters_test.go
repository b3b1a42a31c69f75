package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskly/dashboard/internal/dashboard"
	"github.com/taskly/dashboard/internal/models"
)

func TestFilterHandler_SetFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"project filter", map[string]any{"project_name": "Onboarding"}, http.StatusOK},
		{"status filter", map[string]any{"status": "completed"}, http.StatusOK},
		{"due range", map[string]any{"due_from": "2024-01-01", "due_to": "2024-01-31"}, http.StatusOK},
		{"clear filters", map[string]any{}, http.StatusOK},
		{"invalid status", map[string]any{"status": "archived"}, http.StatusBadRequest},
		{"invalid date", map[string]any{"due_from": "2024-13-01"}, http.StatusBadRequest},
		{"inverted range", map[string]any{"due_from": "2024-02-01", "due_to": "2024-01-01"}, http.StatusBadRequest},
		{"unknown field", map[string]any{"owner": "ana"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := dashboard.NewStore(nil, nil)
			w := httptest.NewRecorder()
			newTestRouter(store, nil).ServeHTTP(w, newTestRequest(http.MethodPut, "/api/v1/filters", tt.body))

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK && !store.Filters().IsEmpty() {
				t.Error("Expected filters unchanged after rejected update")
			}
		})
	}
}

func TestFilterHandler_FiltersDoNotAffectMonthlyProgress(t *testing.T) {
	t.Parallel()

	store := dashboard.NewStore(nil, scenarioTasks())
	router := newTestRouter(store, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newTestRequest(http.MethodPut, "/api/v1/filters", map[string]any{"project_name": "Onboarding"}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil))
	_, data := envelope(t, w.Body.Bytes())
	var f models.Filter
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("Failed to decode filters: %v", err)
	}
	if f.ProjectName != "Onboarding" {
		t.Errorf("Expected Onboarding filter, got %+v", f)
	}

	if got := len(getProgress(t, router, "").Records); got != 2 {
		t.Errorf("Expected 2 monthly records regardless of filters, got %d", got)
	}
}
