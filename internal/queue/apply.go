package queue

import (
	"errors"

	"github.com/google/uuid"
	"github.com/taskly/dashboard/internal/dashboard"
	"github.com/taskly/dashboard/internal/models"
)

// TaskSink is the part of the dashboard store events are applied to
type TaskSink interface {
	UpsertTask(task models.Task)
	RemoveTask(id uuid.UUID) error
}

var _ TaskSink = (*dashboard.Store)(nil)

// ApplyEvent mutates the store according to event. Creations and updates are
// upserts and deleting an absent task is not an error, so redelivered events
// are harmless.
func ApplyEvent(sink TaskSink, event *TaskEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	switch event.Type {
	case EventTaskCreated, EventTaskUpdated:
		sink.UpsertTask(*event.Task)
	case EventTaskDeleted:
		if err := sink.RemoveTask(event.TaskID); err != nil && !errors.Is(err, dashboard.ErrTaskNotFound) {
			return err
		}
	}
	return nil
}
