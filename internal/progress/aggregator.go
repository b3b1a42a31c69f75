package progress

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/taskly/dashboard/internal/chart"
	"github.com/taskly/dashboard/internal/models"
)

// Order selects how monthly records are sequenced
type Order int

const (
	// OrderFirstSeen emits months in the order they first appear in the task list
	OrderFirstSeen Order = iota
	// OrderCalendar emits months January to December
	OrderCalendar
)

// ParseOrder maps "first-seen"/"" and "calendar" to an Order
func ParseOrder(value string) (Order, error) {
	switch value {
	case "", "first-seen":
		return OrderFirstSeen, nil
	case "calendar":
		return OrderCalendar, nil
	default:
		return OrderFirstSeen, fmt.Errorf("invalid order: %s (must be 'first-seen' or 'calendar')", value)
	}
}

// SkippedTask is a task left out of the aggregation because its due date
// could not be labeled
type SkippedTask struct {
	TaskID  uuid.UUID
	DueDate string
	Err     error
}

// Result is the outcome of one aggregation pass
type Result struct {
	Records []chart.Record
	Skipped []SkippedTask
}

// Aggregator groups tasks by month label and counts them per known project
type Aggregator struct {
	labeler *Labeler
	schema  *chart.Schema
	order   Order
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLabeler sets the month labeler
func WithLabeler(l *Labeler) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.labeler = l
		}
	}
}

// WithSchema sets the chart schema the known projects are taken from
func WithSchema(s *chart.Schema) Option {
	return func(a *Aggregator) {
		if s != nil {
			a.schema = s
		}
	}
}

// WithOrder sets the record order
func WithOrder(o Order) Option {
	return func(a *Aggregator) {
		a.order = o
	}
}

// NewAggregator creates an aggregator for the pt-BR locale and
// chart.MonthlyProgressSchema unless options say otherwise
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		labeler: defaultLabeler,
		schema:  chart.MonthlyProgressSchema,
		order:   OrderFirstSeen,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Schema returns the schema the aggregator produces records for
func (a *Aggregator) Schema() *chart.Schema {
	return a.schema
}

// WithOrder returns a copy of the aggregator using order o
func (a *Aggregator) WithOrder(o Order) *Aggregator {
	c := *a
	c.order = o
	return &c
}

type monthBucket struct {
	month  time.Month
	record chart.Record
}

// Aggregate builds one record per distinct month label found in tasks.
// A month's record exists as soon as any task falls in it, even when that
// task's project is unknown; only known projects are counted.
func (a *Aggregator) Aggregate(tasks []models.Task) Result {
	var (
		buckets []*monthBucket
		byLabel = make(map[string]*monthBucket)
		skipped []SkippedTask
	)

	for _, task := range tasks {
		due, err := task.Due()
		if err != nil {
			skipped = append(skipped, SkippedTask{TaskID: task.ID, DueDate: task.DueDate, Err: err})
			continue
		}

		label := a.labeler.Label(due)
		bucket, ok := byLabel[label]
		if !ok {
			bucket = &monthBucket{month: due.Month(), record: a.schema.NewRecord(label)}
			byLabel[label] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.record.Increment(task.ProjectName)
	}

	if a.order == OrderCalendar {
		sort.SliceStable(buckets, func(i, j int) bool {
			return buckets[i].month < buckets[j].month
		})
	}

	records := make([]chart.Record, 0, len(buckets))
	for _, b := range buckets {
		records = append(records, b.record)
	}
	return Result{Records: records, Skipped: skipped}
}
