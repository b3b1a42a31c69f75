package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/taskly/dashboard/internal/chart"
	"github.com/taskly/dashboard/internal/dashboard"
	logpkg "github.com/taskly/dashboard/internal/logger"
	"github.com/taskly/dashboard/internal/progress"
	"go.uber.org/zap"
)

// DashboardHandler serves the chart data and the metric cards
type DashboardHandler struct {
	store  *dashboard.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(store *dashboard.Store, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{store: store, logger: logger, now: time.Now}
}

// RegisterRoutes registers dashboard routes on a router already prefixed
// with /dashboard
func (h *DashboardHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/monthly-progress", h.MonthlyProgress).Methods(http.MethodGet)
	r.HandleFunc("/chart", h.Chart).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.Metrics).Methods(http.MethodGet)
}

// MonthlyProgressResponse is the payload of the monthly progress endpoint
type MonthlyProgressResponse struct {
	Records []chart.Record `json:"records"`
	// Skipped counts tasks left out because their due date was unusable
	Skipped int `json:"skipped"`
}

// MonthlyProgress returns one record per month with task counts per project.
// Records failing the chart contract are logged and omitted.
func (h *DashboardHandler) MonthlyProgress(w http.ResponseWriter, r *http.Request) {
	order, err := progress.ParseOrder(r.URL.Query().Get("order"))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	result := h.store.ValidatedMonthlyProgress(r.Context(), order)
	for _, rejected := range result.Rejected {
		h.logger.Warn("monthly_progress_record_rejected",
			zap.String("error", logpkg.SanitizeError(rejected)),
		)
	}
	for _, skipped := range result.Skipped {
		h.logger.Debug("monthly_progress_task_skipped",
			zap.String("task_id", skipped.TaskID.String()),
			zap.String("due_date", logpkg.SanitizeString(skipped.DueDate, logpkg.MaxGeneralStringLength)),
			zap.Error(skipped.Err),
		)
	}

	records := result.Records
	if records == nil {
		records = []chart.Record{}
	}
	respondJSON(w, http.StatusOK, MonthlyProgressResponse{
		Records: records,
		Skipped: len(result.Skipped),
	})
}

// Chart returns the renderer description of the monthly progress chart
func (h *DashboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Schema().Spec())
}

// Metrics returns the dashboard cards computed over the filtered tasks
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Metrics(h.now()))
}
