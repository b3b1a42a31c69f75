package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a due date is missing or cannot be parsed
var ErrInvalidDate = errors.New("invalid date")

// dueDateLayouts are tried in order when parsing a due date
var dueDateLayouts = []string{
	DueDateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDueDate parses a due date string. The returned time keeps the offset
// written in the input so its calendar month is the one the source meant.
func ParseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty due date", ErrInvalidDate)
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// Due parses the task's due date
func (t Task) Due() (time.Time, error) {
	return ParseDueDate(t.DueDate)
}
