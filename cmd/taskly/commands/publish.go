package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskly/dashboard/internal/fixtures"
	"github.com/taskly/dashboard/internal/queue"
	"go.uber.org/zap"
)

// NewPublishCmd creates the publish command
func NewPublishCmd(newLogger func() (*zap.Logger, error)) *cobra.Command {
	var (
		file string
		url  string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the tasks of a file as task.created events",
		Long:  "Load a YAML task file and publish one task.created event per task to the dashboard exchange",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				return fmt.Errorf("--url or RABBITMQ_URL is required")
			}
			zapLogger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = zapLogger.Sync() }()

			tasks, err := fixtures.LoadFile(file)
			if err != nil {
				return err
			}

			q, err := queue.NewRabbitMQQueue(url)
			if err != nil {
				return err
			}
			defer func() {
				if err := q.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()

			ctx := cmd.Context()
			for _, task := range tasks {
				event := queue.NewTaskEvent(queue.EventTaskCreated, task)
				if err := q.Publish(ctx, event); err != nil {
					return fmt.Errorf("failed to publish task %s: %w", task.ID, err)
				}
				zapLogger.Debug("task_event_published",
					zap.String("event_id", event.ID.String()),
					zap.String("task_id", task.ID.String()),
				)
			}
			zapLogger.Info("task_events_published", zap.Int("count", len(tasks)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "fixtures/tasks.yaml", "YAML task file")
	cmd.Flags().StringVar(&url, "url", envOr("RABBITMQ_URL", ""), "AMQP URL")
	return cmd
}
