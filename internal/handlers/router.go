package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/taskly/dashboard/internal/dashboard"
	"github.com/taskly/dashboard/internal/database"
	"go.uber.org/zap"
)

// RouterConfig holds the dependencies of the HTTP API
type RouterConfig struct {
	Store       *dashboard.Store
	Logger      *zap.Logger
	Health      *HealthChecker
	TaskOptions []TaskHandlerOption
	// Projects serves /api/v1/projects; nil derives projects from the store
	Projects database.ProjectRepositoryInterface
	// APIMiddleware wraps only /api/v1 routes, e.g. rate limiting
	APIMiddleware []mux.MiddlewareFunc
	Version       string
}

// NewRouter registers every route of the dashboard API
func NewRouter(cfg RouterConfig) *mux.Router {
	if cfg.Health == nil {
		cfg.Health = NewHealthChecker()
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", cfg.Health.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", versionInfo(cfg.Version)).Methods(http.MethodGet)
	NewOpenAPIHandler().RegisterRoutes(r)

	api := r.PathPrefix("/api/v1").Subrouter()
	for _, mw := range cfg.APIMiddleware {
		api.Use(mw)
	}

	NewDashboardHandler(cfg.Store, cfg.Logger).RegisterRoutes(api.PathPrefix("/dashboard").Subrouter())
	NewTaskHandler(cfg.Store, cfg.Logger, cfg.TaskOptions...).RegisterRoutes(api.PathPrefix("/tasks").Subrouter())
	NewProjectHandler(cfg.Store, cfg.Projects, cfg.Logger).RegisterRoutes(api.PathPrefix("/projects").Subrouter())
	NewFilterHandler(cfg.Store).RegisterRoutes(api.PathPrefix("/filters").Subrouter())

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondJSONError(w, http.StatusMethodNotAllowed, "Method Not Allowed", "Method not allowed on this route")
	})
	return r
}

func versionInfo(version string) http.HandlerFunc {
	if version == "" {
		version = "dev"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"version": version})
	}
}
