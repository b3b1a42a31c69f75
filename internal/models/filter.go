package models

// Filter narrows which tasks are listed and counted on the dashboard cards.
// Zero-valued fields match everything. Monthly progress aggregation does not
// consult the filter.
type Filter struct {
	Status      *TaskStatus `json:"status,omitempty" validate:"omitempty,task_status"`
	ProjectName string      `json:"project_name,omitempty" validate:"max=200"`
	DueFrom     string      `json:"due_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DueTo       string      `json:"due_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// IsEmpty reports whether the filter matches every task
func (f Filter) IsEmpty() bool {
	return f.Status == nil && f.ProjectName == "" && f.DueFrom == "" && f.DueTo == ""
}

// Matches reports whether the task satisfies every set criterion.
// Tasks without a due date never match a due range; the range bounds are
// compared as YYYY-MM-DD strings, which sort chronologically.
func (f Filter) Matches(t Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.ProjectName != "" && t.ProjectName != f.ProjectName {
		return false
	}
	if f.DueFrom == "" && f.DueTo == "" {
		return true
	}
	due, err := t.Due()
	if err != nil {
		return false
	}
	day := due.Format(DueDateLayout)
	if f.DueFrom != "" && day < f.DueFrom {
		return false
	}
	if f.DueTo != "" && day > f.DueTo {
		return false
	}
	return true
}
