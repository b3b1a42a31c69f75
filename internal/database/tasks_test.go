package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/taskly/dashboard/internal/models"
)

func TestDueDateArg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    sql.NullString
		wantErr bool
	}{
		{"empty is NULL", "", sql.NullString{}, false},
		{"calendar date", "2024-01-10", sql.NullString{String: "2024-01-10", Valid: true}, false},
		{"timestamp keeps its own day", "2024-01-31T23:30:00-03:00", sql.NullString{String: "2024-01-31", Valid: true}, false},
		{"malformed", "10/01/2024", sql.NullString{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := dueDateArg(tt.value)
			if tt.wantErr {
				if !errors.Is(err, models.ErrInvalidDate) {
					t.Errorf("Expected ErrInvalidDate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("dueDateArg(%q) error = %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("dueDateArg(%q) = %+v, want %+v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatDueDate(t *testing.T) {
	t.Parallel()

	if got := formatDueDate(sql.NullTime{}); got != "" {
		t.Errorf("Expected empty string for NULL, got %q", got)
	}
	due := sql.NullTime{Time: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), Valid: true}
	if got := formatDueDate(due); got != "2024-03-04" {
		t.Errorf("Expected 2024-03-04, got %q", got)
	}
}

func TestMigrationSource(t *testing.T) {
	t.Parallel()

	d, err := migrationSource()
	if err != nil {
		t.Fatalf("migrationSource() error = %v", err)
	}
	defer d.Close()

	version, err := d.First()
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if version != 1 {
		t.Errorf("Expected first migration version 1, got %d", version)
	}
	next, err := d.Next(version)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if next != 2 {
		t.Errorf("Expected second migration version 2, got %d", next)
	}
}

// TestTaskRepository_Integration runs against a real database when
// TEST_DATABASE_URL is set
func TestTaskRepository_Integration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database integration test")
	}

	db, err := New(url)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	repo := NewTaskRepository(db)
	ctx := context.Background()

	task := &models.Task{
		Title:       "Integration task",
		Status:      models.TaskStatusInProgress,
		DueDate:     "2024-02-05",
		ProjectName: "TaskFlow MVP",
	}
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.ID == uuid.Nil {
		t.Fatal("Expected Create to assign an ID")
	}
	t.Cleanup(func() { _ = repo.Delete(context.Background(), task.ID) })

	tasks, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var found *models.Task
	for i := range tasks {
		if tasks[i].ID == task.ID {
			found = &tasks[i]
		}
	}
	if found == nil {
		t.Fatal("Expected created task to be listed")
	}
	if found.DueDate != "2024-02-05" || found.ProjectName != "TaskFlow MVP" {
		t.Errorf("Unexpected listed task %+v", *found)
	}

	got, err := repo.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Title != task.Title || got.Status != models.TaskStatusInProgress {
		t.Errorf("Unexpected task from Get %+v", *got)
	}
	if _, err := repo.Get(ctx, uuid.New()); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound from Get, got %v", err)
	}

	task.Title = "Integration task renamed"
	task.Status = models.TaskStatusCompleted
	task.Completed = true
	task.DueDate = "2024-03-01"
	task.ProjectName = "Documentação"
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err = repo.Get(ctx, task.ID)
	if err != nil {
		t.Fatalf("Get() after Update error = %v", err)
	}
	if got.Title != "Integration task renamed" || got.DueDate != "2024-03-01" || got.ProjectName != "Documentação" || !got.Completed {
		t.Errorf("Unexpected task after Update %+v", *got)
	}
	if err := repo.Update(ctx, &models.Task{ID: uuid.New(), Title: "ghost", Status: models.TaskStatusPending}); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound from Update, got %v", err)
	}

	projects, err := NewProjectRepository(db).List(ctx, 0, 100)
	if err != nil {
		t.Fatalf("ProjectRepository.List() error = %v", err)
	}
	names := make(map[string]bool, len(projects))
	for _, p := range projects {
		names[p.Name] = true
	}
	if !names["TaskFlow MVP"] || !names["Documentação"] {
		t.Errorf("Expected projects created through tasks to be listed, got %+v", projects)
	}
	if page, err := NewProjectRepository(db).List(ctx, 0, 1); err != nil || len(page) != 1 {
		t.Errorf("Expected a single project with limit 1, got %d (%v)", len(page), err)
	}

	if err := repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Expected ErrTaskNotFound on second delete, got %v", err)
	}
}
