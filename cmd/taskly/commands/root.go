// Package commands implements the taskly command line tool.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/taskly/dashboard/internal/logger"
	"go.uber.org/zap"
)

// NewRootCmd creates the taskly root command
func NewRootCmd() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "taskly",
		Short:         "Tools for the Taskly dashboard",
		Long:          "Compute monthly progress from task files, check chart records, publish task events and migrate the database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	newLogger := func() (*zap.Logger, error) {
		return logger.NewCLILogger(debug)
	}

	rootCmd.AddCommand(NewProgressCmd())
	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewPublishCmd(newLogger))
	rootCmd.AddCommand(NewMigrateCmd(newLogger))
	return rootCmd
}
