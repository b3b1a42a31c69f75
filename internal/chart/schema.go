package chart

import (
	"fmt"
	"slices"
	"sort"

	"github.com/taskly/dashboard/internal/validation"
)

// NameField is the record key holding the category (month) label
const NameField = "name"

// Project is a bar series of the monthly progress chart
type Project struct {
	Name  string
	Color string
}

// Schema describes the exact shape of a monthly progress record: a string
// name plus one count per project, in a fixed order.
type Schema struct {
	title    string
	projects []Project
	names    []string
	rules    map[string]any
}

// MonthlyProgressSchema is the contract shared by the aggregator and the chart.
// It is the only place the known project names are declared.
var MonthlyProgressSchema = MustSchema("Progresso Mensal de Projetos",
	Project{Name: "TaskFlow MVP", Color: "#000000"},
	Project{Name: "Onboarding", Color: "#10B981"},
	Project{Name: "Documentação", Color: "#EF4444"},
)

// NewSchema builds a schema. Project names must be non-empty, unique and
// must not collide with the name field.
func NewSchema(title string, projects ...Project) (*Schema, error) {
	if len(projects) == 0 {
		return nil, fmt.Errorf("schema requires at least one project")
	}

	s := &Schema{
		title:    title,
		projects: make([]Project, 0, len(projects)),
		names:    make([]string, 0, len(projects)),
		rules:    map[string]any{NameField: validation.TagChartLabel},
	}
	for _, p := range projects {
		switch {
		case p.Name == "":
			return nil, fmt.Errorf("project name cannot be empty")
		case p.Name == NameField:
			return nil, fmt.Errorf("project name %q is reserved", NameField)
		case slices.Contains(s.names, p.Name):
			return nil, fmt.Errorf("duplicate project name %q", p.Name)
		}
		s.projects = append(s.projects, p)
		s.names = append(s.names, p.Name)
		s.rules[p.Name] = validation.TagChartCount
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error
func MustSchema(title string, projects ...Project) *Schema {
	s, err := NewSchema(title, projects...)
	if err != nil {
		panic(fmt.Sprintf("invalid chart schema: %v", err))
	}
	return s
}

// KnownProjects returns the project names of MonthlyProgressSchema
func KnownProjects() []string {
	return MonthlyProgressSchema.Projects()
}

// Title returns the chart title
func (s *Schema) Title() string {
	return s.title
}

// Projects returns the project names in schema order
func (s *Schema) Projects() []string {
	return slices.Clone(s.names)
}

// Known reports whether name is one of the schema's projects
func (s *Schema) Known(name string) bool {
	return slices.Contains(s.names, name)
}

// Fields returns every record key in schema order, starting with the name field
func (s *Schema) Fields() []string {
	return append([]string{NameField}, s.names...)
}

// NewRecord returns a record for the given label with every project at zero
func (s *Schema) NewRecord(name string) Record {
	counts := make(map[string]int, len(s.names))
	for _, p := range s.names {
		counts[p] = 0
	}
	return Record{Name: name, Counts: counts, order: s.names}
}

// Validate checks a candidate record against the schema. It returns nil or
// a *SchemaError naming every missing, mistyped or unknown field.
func (s *Schema) Validate(candidate map[string]any) error {
	errs := validation.Validate.ValidateMap(candidate, s.rules)

	var violations []FieldViolation
	for _, field := range s.Fields() {
		if _, failed := errs[field]; !failed {
			continue
		}
		violations = append(violations, FieldViolation{
			Field:  field,
			Reason: s.reason(candidate, field),
		})
	}

	var unknown []string
	for key := range candidate {
		if _, ok := s.rules[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		violations = append(violations, FieldViolation{Field: key, Reason: ReasonUnknown})
	}

	if len(violations) == 0 {
		return nil
	}
	return &SchemaError{Violations: violations}
}

// ValidateRecord checks a typed record against the schema
func (s *Schema) ValidateRecord(r Record) error {
	return s.Validate(r.Map())
}

func (s *Schema) reason(candidate map[string]any, field string) string {
	value, present := candidate[field]
	if !present {
		return ReasonMissing
	}
	if value == nil {
		return ReasonNull
	}
	if field == NameField {
		return ReasonNotString
	}
	return ReasonNotCount
}
