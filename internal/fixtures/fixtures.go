// Package fixtures loads the static task data the dashboard is seeded with
// when no database is configured.
package fixtures

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/taskly/dashboard/internal/models"
	"github.com/taskly/dashboard/internal/validation"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a fixture file
type File struct {
	Tasks []models.Task `yaml:"tasks"`
}

// LoadFile reads tasks from a YAML fixture file
func LoadFile(path string) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads tasks from YAML. Missing IDs are generated and missing
// statuses default to pending; due dates are kept verbatim.
func Decode(r io.Reader) ([]models.Task, error) {
	var f File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}

	for i := range f.Tasks {
		t := &f.Tasks[i]
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if t.Status == "" {
			t.Status = models.TaskStatusPending
		}
		if err := validation.ValidateTaskStatus(string(t.Status)); err != nil {
			return nil, fmt.Errorf("task %d (%s): %w", i, t.Title, err)
		}
		t.Title = validation.SanitizeText(t.Title)
	}
	return f.Tasks, nil
}
