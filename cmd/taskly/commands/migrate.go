package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/taskly/dashboard/internal/database"
	"go.uber.org/zap"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd(newLogger func() (*zap.Logger, error)) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply the embedded schema migrations to the dashboard database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			zapLogger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = zapLogger.Sync() }()

			db, err := database.New(url)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
				}
			}()

			if err := db.Migrate(); err != nil {
				return err
			}
			zapLogger.Info("migrations_applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "database-url", envOr("DATABASE_URL", ""), "PostgreSQL connection URL")
	return cmd
}

// envOr reads key from the environment or a .env file, falling back to def
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if env, err := godotenv.Read(); err == nil && env[key] != "" {
		return env[key]
	}
	return def
}
