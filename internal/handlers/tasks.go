package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/taskly/dashboard/internal/dashboard"
	"github.com/taskly/dashboard/internal/database"
	"github.com/taskly/dashboard/internal/models"
	"github.com/taskly/dashboard/internal/queue"
	"github.com/taskly/dashboard/internal/validation"
	"go.uber.org/zap"
)

// EventPublisher publishes task change events
type EventPublisher interface {
	Publish(ctx context.Context, event *queue.TaskEvent) error
}

// TaskHandler lists, reads, creates, updates and deletes dashboard tasks
type TaskHandler struct {
	store     *dashboard.Store
	repo      database.TaskRepositoryInterface
	publisher EventPublisher
	logger    *zap.Logger
}

// TaskHandlerOption configures a TaskHandler
type TaskHandlerOption func(*TaskHandler)

// WithTaskRepository persists tasks before they reach the store
func WithTaskRepository(repo database.TaskRepositoryInterface) TaskHandlerOption {
	return func(h *TaskHandler) { h.repo = repo }
}

// WithEventPublisher announces task changes to other services
func WithEventPublisher(p EventPublisher) TaskHandlerOption {
	return func(h *TaskHandler) { h.publisher = p }
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(store *dashboard.Store, logger *zap.Logger, opts ...TaskHandlerOption) *TaskHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &TaskHandler{store: store, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers task routes on a router already prefixed with /tasks
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods(http.MethodGet)
	r.HandleFunc("", h.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/{id}", h.GetTask).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.UpdateTask).Methods(http.MethodPut)
	r.HandleFunc("/{id}", h.DeleteTask).Methods(http.MethodDelete)
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Title       string            `json:"title" validate:"required,min=1,max=200"`
	Description string            `json:"description" validate:"max=2000"`
	Status      models.TaskStatus `json:"status" validate:"omitempty,task_status"`
	Priority    int               `json:"priority" validate:"min=0,max=5"`
	Completed   bool              `json:"completed"`
	DueDate     string            `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	ProjectName string            `json:"project_name" validate:"max=200"`
}

// UpdateTaskRequest replaces every editable field of a task
type UpdateTaskRequest CreateTaskRequest

func (req *CreateTaskRequest) sanitize() {
	req.Title = validation.SanitizeText(req.Title)
	req.Description = validation.SanitizeText(req.Description)
	req.ProjectName = validation.SanitizeText(req.ProjectName)
}

// apply copies the request onto task. Completed tasks are forced to the
// completed status; an empty status means pending.
func (req *CreateTaskRequest) apply(task *models.Task) {
	task.Title = req.Title
	task.Description = req.Description
	task.Status = req.Status
	task.Priority = req.Priority
	task.Completed = req.Completed
	task.DueDate = req.DueDate
	task.ProjectName = req.ProjectName
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if task.Completed {
		task.Status = models.TaskStatusCompleted
	}
}

// ListTasks returns one page of the tasks matching the active filters
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePage(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	tasks := paginate(h.store.FilteredTasks(), skip, limit)
	if tasks == nil {
		tasks = []models.Task{}
	}
	respondJSON(w, http.StatusOK, tasks)
}

// GetTask returns a single task by ID
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	task, err := h.lookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, dashboard.ErrTaskNotFound) || errors.Is(err, database.ErrTaskNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
			return
		}
		h.logger.Error("failed_to_get_task", zap.String("task_id", id.String()), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to get task")
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// lookup reads a task from the store, falling back to the repository for
// persisted tasks the store has not received yet
func (h *TaskHandler) lookup(ctx context.Context, id uuid.UUID) (models.Task, error) {
	task, err := h.store.Task(id)
	if err == nil || h.repo == nil {
		return task, err
	}
	persisted, err := h.repo.Get(ctx, id)
	if err != nil {
		return models.Task{}, err
	}
	return *persisted, nil
}

// CreateTask validates and adds a task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	req.sanitize()
	if err := validation.Validate.Struct(req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", validationMessage(err))
		return
	}

	now := time.Now().UTC()
	task := models.Task{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	req.apply(&task)

	if h.repo != nil {
		if err := h.repo.Create(r.Context(), &task); err != nil {
			h.logger.Error("failed_to_create_task", zap.Error(err))
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create task")
			return
		}
	}

	task = h.store.AddTask(task)
	h.publish(r.Context(), queue.EventTaskCreated, task)

	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask validates and replaces a task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	update := CreateTaskRequest(req)
	update.sanitize()
	if err := validation.Validate.Struct(update); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Validation Error", validationMessage(err))
		return
	}

	task, err := h.store.Task(id)
	if err != nil && h.repo == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	task.ID = id
	update.apply(&task)
	task.UpdatedAt = time.Now().UTC()

	if h.repo != nil {
		if err := h.repo.Update(r.Context(), &task); err != nil {
			if errors.Is(err, database.ErrTaskNotFound) {
				respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
				return
			}
			h.logger.Error("failed_to_update_task", zap.String("task_id", id.String()), zap.Error(err))
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update task")
			return
		}
	}

	// A persisted task may not have reached the store yet
	if err := h.store.UpdateTask(task); err != nil {
		if h.repo == nil {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
			return
		}
		h.store.UpsertTask(task)
	}
	h.publish(r.Context(), queue.EventTaskUpdated, task)

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask removes a task by ID
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	if h.repo != nil {
		if err := h.repo.Delete(r.Context(), id); err != nil {
			if errors.Is(err, database.ErrTaskNotFound) {
				respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
				return
			}
			h.logger.Error("failed_to_delete_task", zap.String("task_id", id.String()), zap.Error(err))
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete task")
			return
		}
	}

	// A persisted task may not have reached the store yet
	if err := h.store.RemoveTask(id); err != nil && h.repo == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}
	h.publish(r.Context(), queue.EventTaskDeleted, models.Task{ID: id})

	w.WriteHeader(http.StatusNoContent)
}

// publish announces a change; failures are logged because the store is
// already updated
func (h *TaskHandler) publish(ctx context.Context, eventType queue.EventType, task models.Task) {
	if h.publisher == nil {
		return
	}
	event := queue.NewTaskEvent(eventType, task)
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed_to_publish_task_event",
			zap.String("event_type", string(eventType)),
			zap.String("task_id", task.ID.String()),
			zap.Error(err),
		)
	}
}
