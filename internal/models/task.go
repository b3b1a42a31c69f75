package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// DueDateLayout is the calendar-date layout used for task due dates
const DueDateLayout = "2006-01-02"

// Task represents a unit of work on the dashboard.
// DueDate is kept as the text supplied by the data source so that malformed
// dates reach month labeling and can be reported there.
type Task struct {
	ID          uuid.UUID  `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status      TaskStatus `json:"status" yaml:"status"`
	Priority    int        `json:"priority" yaml:"priority"`
	Completed   bool       `json:"completed" yaml:"completed"`
	DueDate     string     `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	ProjectName string     `json:"project_name,omitempty" yaml:"project_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at,omitempty"`
}

// IsDone reports whether the task counts as finished
func (t Task) IsDone() bool {
	return t.Completed || t.Status == TaskStatusCompleted
}
