package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskly/dashboard/internal/models"
)

// ErrTaskNotFound is returned when no task row matches an ID
var ErrTaskNotFound = errors.New("task not found")

// TaskRepositoryInterface is the task source the server depends on
type TaskRepositoryInterface interface {
	List(ctx context.Context) ([]models.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

// TaskRepository handles task database operations
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const selectTaskColumns = `
	SELECT t.id, t.title, COALESCE(t.description, ''), t.status, t.priority, t.completed,
	       t.due_date, COALESCE(p.name, ''), t.created_at, t.updated_at
	FROM tasks t
	LEFT JOIN projects p ON p.id = t.project_id
`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		task models.Task
		due  sql.NullTime
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.Completed,
		&due,
		&task.ProjectName,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, err
	}
	task.DueDate = formatDueDate(due)
	return task, nil
}

// List returns every task with its project name, oldest first
func (r *TaskRepository) List(ctx context.Context) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, selectTaskColumns+` ORDER BY t.created_at, t.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}

// Get retrieves a task by ID
func (r *TaskRepository) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx, selectTaskColumns+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// Create inserts a task, creating its project by name when needed.
// The task's ID is generated when unset and its timestamps are filled in.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	due, err := dueDateArg(task.DueDate)
	if err != nil {
		return err
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	projectID, err := upsertProject(ctx, tx, task.ProjectName)
	if err != nil {
		return err
	}

	now := time.Now()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, completed, due_date, project_id, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7::date, $8, $9, $10)
		RETURNING created_at, updated_at
	`,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Completed,
		due,
		projectID,
		now,
		now,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task: %w", err)
	}
	return nil
}

// Update replaces a task's fields, creating its project by name when needed.
// CreatedAt is reloaded from the row and UpdatedAt is set to now.
func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	due, err := dueDateArg(task.DueDate)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	projectID, err := upsertProject(ctx, tx, task.ProjectName)
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE tasks
		SET title = $2, description = NULLIF($3, ''), status = $4, priority = $5,
		    completed = $6, due_date = $7::date, project_id = $8, updated_at = $9
		WHERE id = $1
		RETURNING created_at, updated_at
	`,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Completed,
		due,
		projectID,
		time.Now(),
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task: %w", err)
	}
	return nil
}

// Delete deletes a task by ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// upsertProject returns the ID of the named project, creating it if needed.
// An empty name leaves the task without a project.
func upsertProject(ctx context.Context, tx *sql.Tx, name string) (sql.NullInt64, error) {
	var projectID sql.NullInt64
	if name == "" {
		return projectID, nil
	}
	err := tx.QueryRowContext(ctx, `
		INSERT INTO projects (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`, name).Scan(&projectID)
	if err != nil {
		return projectID, fmt.Errorf("failed to upsert project: %w", err)
	}
	return projectID, nil
}

func formatDueDate(due sql.NullTime) string {
	if !due.Valid {
		return ""
	}
	return due.Time.Format(models.DueDateLayout)
}

// dueDateArg converts a task due date to a DATE parameter, formatted in the
// date's own offset so the session time zone cannot move it to another day.
// DATE columns cannot hold malformed text, so those are rejected here.
func dueDateArg(value string) (sql.NullString, error) {
	if value == "" {
		return sql.NullString{}, nil
	}
	t, err := models.ParseDueDate(value)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: t.Format(models.DueDateLayout), Valid: true}, nil
}
