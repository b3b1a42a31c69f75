package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taskly/dashboard/internal/chart"
	"github.com/taskly/dashboard/internal/dashboard"
	"github.com/taskly/dashboard/internal/fixtures"
	"github.com/taskly/dashboard/internal/progress"
)

// NewProgressCmd creates the progress command
func NewProgressCmd() *cobra.Command {
	var (
		file   string
		order  string
		locale string
	)

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Print monthly progress records for a task file",
		Long:  "Aggregate the tasks of a YAML task file into monthly progress records and print them as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := progress.ParseOrder(order)
			if err != nil {
				return err
			}
			labeler, err := progress.NewLabeler(locale)
			if err != nil {
				return err
			}
			tasks, err := fixtures.LoadFile(file)
			if err != nil {
				return err
			}

			store := dashboard.NewStore(progress.NewAggregator(progress.WithLabeler(labeler)), tasks)
			result := store.ValidatedMonthlyProgress(cmd.Context(), o)
			for _, rejected := range result.Rejected {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", rejected)
			}
			for _, skipped := range result.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: skipped task %s: %v\n", skipped.TaskID, skipped.Err)
			}

			records := result.Records
			if records == nil {
				records = []chart.Record{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "fixtures/tasks.yaml", "YAML task file")
	cmd.Flags().StringVar(&order, "order", "first-seen", "Record order (first-seen or calendar)")
	cmd.Flags().StringVar(&locale, "locale", "pt-BR", "Locale of the month labels")
	return cmd
}
