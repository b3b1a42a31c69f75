package queue

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Consumer applies task events from a queue to the dashboard store
type Consumer struct {
	queue    EventQueue
	sink     TaskSink
	logger   *zap.Logger
	prefetch int
}

// NewConsumer creates a consumer
func NewConsumer(queue EventQueue, sink TaskSink, logger *zap.Logger, prefetch int) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{queue: queue, sink: sink, logger: logger, prefetch: prefetch}
}

// Run consumes until ctx is cancelled. It returns nil on cancellation and an
// error if consumption could not start or the delivery channel was lost.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, errs, err := c.queue.Consume(ctx, c.prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming task events: %w", err)
	}
	c.logger.Info("task_event_consumer_started", zap.Int("prefetch", c.prefetch))
	return c.process(ctx, msgs, errs)
}

func (c *Consumer) process(ctx context.Context, msgs <-chan MessageInterface, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			c.logger.Warn("task_event_rejected", zap.Error(err))
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("task event channel closed")
			}
			c.handle(msg)
		}
	}
}

func (c *Consumer) handle(msg MessageInterface) {
	event := msg.GetEvent()
	fields := []zap.Field{
		zap.String("event_id", event.ID.String()),
		zap.String("event_type", string(event.Type)),
		zap.String("task_id", event.TaskID.String()),
	}

	if err := ApplyEvent(c.sink, event); err != nil {
		c.logger.Error("task_event_apply_failed", append(fields, zap.Error(err))...)
		if nackErr := msg.Nack(false); nackErr != nil {
			c.logger.Warn("task_event_nack_failed", append(fields, zap.Error(nackErr))...)
		}
		return
	}

	if err := msg.Ack(); err != nil {
		c.logger.Warn("task_event_ack_failed", append(fields, zap.Error(err))...)
		return
	}
	c.logger.Debug("task_event_applied", fields...)
}
