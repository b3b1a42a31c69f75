package queue

import (
	"context"
)

// MessageInterface defines the interface for queue messages
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetEvent() *TaskEvent
}

// EventQueue is the interface for task event transports
type EventQueue interface {
	// Publish sends an event under its routing key
	Publish(ctx context.Context, event *TaskEvent) error

	// Consume returns a channel of decoded events. Undecodable messages are
	// dead-lettered and reported on the error channel. Both channels are
	// closed when ctx is cancelled or the delivery channel closes.
	Consume(ctx context.Context, prefetchCount int) (<-chan MessageInterface, <-chan error, error)

	// Close closes the queue connection
	Close() error

	// HealthCheck verifies the queue connection is healthy
	HealthCheck(ctx context.Context) error
}
