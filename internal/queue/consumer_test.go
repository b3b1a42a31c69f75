package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/taskly/dashboard/internal/dashboard"
	"github.com/taskly/dashboard/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeMessage struct {
	event *TaskEvent

	mu      sync.Mutex
	acked   bool
	nacked  bool
	requeue bool
}

func (m *fakeMessage) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = true
	return nil
}

func (m *fakeMessage) Nack(requeue bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *fakeMessage) GetEvent() *TaskEvent { return m.event }

type fakeQueue struct {
	msgs chan MessageInterface
	errs chan error

	mu        sync.Mutex
	published []*TaskEvent
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{msgs: make(chan MessageInterface, 8), errs: make(chan error, 8)}
}

func (q *fakeQueue) Publish(_ context.Context, event *TaskEvent) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, event)
	return nil
}

func (q *fakeQueue) Consume(context.Context, int) (<-chan MessageInterface, <-chan error, error) {
	return q.msgs, q.errs, nil
}

func (q *fakeQueue) Close() error { return nil }
func (q *fakeQueue) HealthCheck(context.Context) error { return nil }

func TestConsumer_Run(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	store := dashboard.NewStore(nil, nil)
	q := newFakeQueue()
	consumer := NewConsumer(q, store, zap.New(core), 4)

	task := models.Task{ID: uuid.New(), Title: "Escopo", DueDate: "2024-01-10", ProjectName: "TaskFlow MVP"}
	good := &fakeMessage{event: NewTaskEvent(EventTaskCreated, task)}
	bad := &fakeMessage{event: &TaskEvent{ID: uuid.New(), Type: EventTaskUpdated}}

	q.msgs <- good
	q.msgs <- bad
	q.errs <- errors.New("failed to unmarshal event")
	close(q.msgs)

	err := consumer.Run(context.Background())
	if err == nil {
		t.Fatal("Expected closed delivery channel to be reported")
	}

	if !good.acked || good.nacked {
		t.Errorf("Expected valid event to be acked, acked=%v nacked=%v", good.acked, good.nacked)
	}
	if !bad.nacked || bad.requeue {
		t.Errorf("Expected invalid event to be dead-lettered, nacked=%v requeue=%v", bad.nacked, bad.requeue)
	}
	if _, err := store.Task(task.ID); err != nil {
		t.Errorf("Expected task to be in the store: %v", err)
	}
	if logs.FilterMessage("task_event_apply_failed").Len() != 1 {
		t.Errorf("Expected one apply failure log, got %d", logs.FilterMessage("task_event_apply_failed").Len())
	}
}

func TestConsumer_StopsOnCancel(t *testing.T) {
	t.Parallel()

	q := newFakeQueue()
	consumer := NewConsumer(q, dashboard.NewStore(nil, nil), nil, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error on cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Consumer did not stop after cancellation")
	}
}
