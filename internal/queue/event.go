// Package queue carries task change events between the task service and the
// dashboard over RabbitMQ.
package queue

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskly/dashboard/internal/models"
)

// EventType represents the kind of task change
type EventType string

const (
	EventTaskCreated EventType = "task.created"
	EventTaskUpdated EventType = "task.updated"
	EventTaskDeleted EventType = "task.deleted"
)

// ErrInvalidEvent is returned for events that cannot be applied
var ErrInvalidEvent = errors.New("invalid task event")

// TaskEvent is one change to the task collection
type TaskEvent struct {
	ID         uuid.UUID    `json:"id"`
	Type       EventType    `json:"type"`
	Task       *models.Task `json:"task,omitempty"`
	TaskID     uuid.UUID    `json:"task_id"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewTaskEvent creates an event for task. For deletions only the ID is sent.
func NewTaskEvent(eventType EventType, task models.Task) *TaskEvent {
	e := &TaskEvent{
		ID:         uuid.New(),
		Type:       eventType,
		TaskID:     task.ID,
		OccurredAt: time.Now().UTC(),
	}
	if eventType != EventTaskDeleted {
		e.Task = &task
	}
	return e
}

// RoutingKey is the key the event is published under
func (e *TaskEvent) RoutingKey() string {
	return string(e.Type)
}

// Validate checks that the event carries what its type needs
func (e *TaskEvent) Validate() error {
	switch e.Type {
	case EventTaskCreated, EventTaskUpdated:
		if e.Task == nil {
			return fmt.Errorf("%w: %s without task", ErrInvalidEvent, e.Type)
		}
		if e.Task.ID == uuid.Nil {
			return fmt.Errorf("%w: %s task has no id", ErrInvalidEvent, e.Type)
		}
	case EventTaskDeleted:
		if e.TaskID == uuid.Nil {
			return fmt.Errorf("%w: %s without task_id", ErrInvalidEvent, e.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}
