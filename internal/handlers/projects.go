package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/taskly/dashboard/internal/dashboard"
	"github.com/taskly/dashboard/internal/database"
	"github.com/taskly/dashboard/internal/models"
	"go.uber.org/zap"
)

// ProjectHandler lists the projects tasks are grouped under
type ProjectHandler struct {
	store  *dashboard.Store
	repo   database.ProjectRepositoryInterface
	logger *zap.Logger
}

// NewProjectHandler creates a new project handler. Without a repository the
// projects are the distinct project names of the store's tasks.
func NewProjectHandler(store *dashboard.Store, repo database.ProjectRepositoryInterface, logger *zap.Logger) *ProjectHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectHandler{store: store, repo: repo, logger: logger}
}

// RegisterRoutes registers project routes on a router already prefixed with /projects
func (h *ProjectHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListProjects).Methods(http.MethodGet)
}

// ListProjects returns one page of projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePage(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	var projects []models.Project
	if h.repo != nil {
		projects, err = h.repo.List(r.Context(), skip, limit)
		if err != nil {
			h.logger.Error("failed_to_list_projects", zap.Error(err))
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list projects")
			return
		}
	} else {
		projects = paginate(storeProjects(h.store), skip, limit)
	}

	if projects == nil {
		projects = []models.Project{}
	}
	respondJSON(w, http.StatusOK, projects)
}

// storeProjects returns the task project names in first-seen order
func storeProjects(store *dashboard.Store) []models.Project {
	seen := make(map[string]bool)
	var projects []models.Project
	for _, t := range store.Tasks() {
		if t.ProjectName == "" || seen[t.ProjectName] {
			continue
		}
		seen[t.ProjectName] = true
		projects = append(projects, models.Project{Name: t.ProjectName})
	}
	return projects
}
