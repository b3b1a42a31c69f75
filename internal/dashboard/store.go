package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskly/dashboard/internal/chart"
	"github.com/taskly/dashboard/internal/models"
	"github.com/taskly/dashboard/internal/progress"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ErrTaskNotFound is returned when an action targets a task the store does not hold
var ErrTaskNotFound = errors.New("task not found")

const tracerName = "github.com/taskly/dashboard/internal/dashboard"

// Store is the session's dashboard state: the task collection and the
// active filters. Monthly progress is derived on every read and never cached.
type Store struct {
	mu         sync.RWMutex
	tasks      []models.Task
	filters    models.Filter
	aggregator *progress.Aggregator
}

// NewStore creates a store seeded with tasks
func NewStore(aggregator *progress.Aggregator, tasks []models.Task) *Store {
	if aggregator == nil {
		aggregator = progress.NewAggregator()
	}
	return &Store{
		tasks:      slices.Clone(tasks),
		aggregator: aggregator,
	}
}

// Schema returns the chart schema records are built for
func (s *Store) Schema() *chart.Schema {
	return s.aggregator.Schema()
}

// ReplaceTasks swaps the whole task collection
func (s *Store) ReplaceTasks(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = slices.Clone(tasks)
}

// AddTask appends a task. A nil ID is replaced with a new one.
func (s *Store) AddTask(task models.Task) models.Task {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return task
}

// UpdateTask replaces the task with the same ID, keeping its position
func (s *Store) UpdateTask(task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(task.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, task.ID)
	}
	s.tasks[i] = task
	return nil
}

// UpsertTask updates the task if present, otherwise appends it
func (s *Store) UpsertTask(task models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(task.ID); i >= 0 {
		s.tasks[i] = task
		return
	}
	s.tasks = append(s.tasks, task)
}

// RemoveTask deletes the task with the given ID
func (s *Store) RemoveTask(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return nil
}

// SetFilters replaces the active filters
func (s *Store) SetFilters(f models.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
}

// Filters returns the active filters
func (s *Store) Filters() models.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// Tasks returns a copy of the task collection in insertion order
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Task returns the task with the given ID
func (s *Store) Task(id uuid.UUID) (models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.tasks[i], nil
}

// FilteredTasks returns the tasks matching the active filters
func (s *Store) FilteredTasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if s.filters.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// MonthlyProgress aggregates the current task collection. Filters are not
// applied: they are reserved until aggregation requirements call for them.
func (s *Store) MonthlyProgress(ctx context.Context) progress.Result {
	return s.monthlyProgress(ctx, s.aggregator)
}

// MonthlyProgressOrdered is MonthlyProgress with an explicit record order
func (s *Store) MonthlyProgressOrdered(ctx context.Context, order progress.Order) progress.Result {
	return s.monthlyProgress(ctx, s.aggregator.WithOrder(order))
}

func (s *Store) monthlyProgress(ctx context.Context, agg *progress.Aggregator) progress.Result {
	_, span := otel.Tracer(tracerName).Start(ctx, "dashboard.monthly_progress")
	defer span.End()

	// Aggregate a snapshot so writers are not blocked for the whole pass
	tasks := s.Tasks()
	result := agg.Aggregate(tasks)

	span.SetAttributes(
		attribute.Int("tasks", len(tasks)),
		attribute.Int("records", len(result.Records)),
		attribute.Int("skipped", len(result.Skipped)),
	)
	return result
}

// ValidatedProgress is an aggregation whose records all passed the chart schema
type ValidatedProgress struct {
	progress.Result
	Rejected []error
}

// ValidatedMonthlyProgress aggregates and checks every record against the
// schema. Records that fail are dropped and their errors returned in Rejected.
func (s *Store) ValidatedMonthlyProgress(ctx context.Context, order progress.Order) ValidatedProgress {
	result := s.MonthlyProgressOrdered(ctx, order)
	schema := s.Schema()

	out := ValidatedProgress{Result: result}
	out.Records = make([]chart.Record, 0, len(result.Records))
	for _, r := range result.Records {
		if err := schema.ValidateRecord(r); err != nil {
			out.Rejected = append(out.Rejected, fmt.Errorf("record %q: %w", r.Name, err))
			continue
		}
		out.Records = append(out.Records, r)
	}
	return out
}

// Metrics counts the filtered tasks for the dashboard cards. A task is
// overdue when it is not done and its due date is before now's calendar day.
func (s *Store) Metrics(now time.Time) []models.MetricCard {
	var done, inProgress, overdue int
	today := now.Format(models.DueDateLayout)
	for _, t := range s.FilteredTasks() {
		if t.IsDone() {
			done++
			continue
		}
		if t.Status == models.TaskStatusInProgress {
			inProgress++
		}
		if due, err := t.Due(); err == nil && due.Format(models.DueDateLayout) < today {
			overdue++
		}
	}
	return []models.MetricCard{
		{Key: "completed", Title: "Tarefas Concluídas", Value: done},
		{Key: "in_progress", Title: "Tarefas em Andamento", Value: inProgress},
		{Key: "overdue", Title: "Tarefas Atrasadas", Value: overdue},
	}
}

// indexOf must be called with the lock held
func (s *Store) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.tasks, func(t models.Task) bool { return t.ID == id })
}
