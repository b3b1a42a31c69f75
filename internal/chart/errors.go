package chart

import (
	"strings"
)

// Violation reasons reported by Schema.Validate
const (
	ReasonMissing   = "required field missing"
	ReasonNull      = "must not be null"
	ReasonNotString = "must be a string"
	ReasonNotCount  = "must be a non-negative integer"
	ReasonUnknown   = "unknown field"
)

// FieldViolation describes one field that does not satisfy the schema
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// SchemaError is returned when a record does not match the chart schema
type SchemaError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return "chart schema violation: " + strings.Join(parts, "; ")
}

// Fields returns the names of the offending fields
func (e *SchemaError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

// Has reports whether field is among the violations
func (e *SchemaError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}
