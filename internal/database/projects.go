package database

import (
	"context"
	"fmt"

	"github.com/taskly/dashboard/internal/models"
)

// ProjectRepositoryInterface lists the projects tasks are grouped under
type ProjectRepositoryInterface interface {
	List(ctx context.Context, skip, limit int) ([]models.Project, error)
}

var _ ProjectRepositoryInterface = (*ProjectRepository)(nil)

// ProjectRepository reads the projects table
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// List returns one page of projects ordered by ID
func (r *ProjectRepository) List(ctx context.Context, skip, limit int) ([]models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), created_at, updated_at
		FROM projects
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}
