package chart

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMonthlyProgressSchema_Projects(t *testing.T) {
	t.Parallel()

	want := []string{"TaskFlow MVP", "Onboarding", "Documentação"}
	if diff := cmp.Diff(want, KnownProjects()); diff != "" {
		t.Errorf("KnownProjects() mismatch (-want +got):\n%s", diff)
	}

	// Callers must not be able to mutate the schema through the returned slice
	projects := MonthlyProgressSchema.Projects()
	projects[0] = "Hacked"
	if !MonthlyProgressSchema.Known("TaskFlow MVP") {
		t.Error("Expected schema to be unaffected by mutation of Projects() result")
	}
}

func TestNewSchema_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		projects []Project
	}{
		{"no projects", nil},
		{"empty name", []Project{{Name: ""}}},
		{"reserved name", []Project{{Name: NameField}}},
		{"duplicate", []Project{{Name: "A"}, {Name: "A"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewSchema("t", tt.projects...); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		candidate  map[string]any
		wantFields []string
		wantReason map[string]string
	}{
		{
			name: "valid record",
			candidate: map[string]any{
				"name": "Jan", "TaskFlow MVP": 1, "Onboarding": 1, "Documentação": 0,
			},
		},
		{
			name: "valid record decoded from JSON floats",
			candidate: map[string]any{
				"name": "Fev", "TaskFlow MVP": float64(1), "Onboarding": float64(0), "Documentação": float64(0),
			},
		},
		{
			name: "missing Documentação",
			candidate: map[string]any{
				"name": "Jan", "TaskFlow MVP": 1, "Onboarding": 1,
			},
			wantFields: []string{"Documentação"},
			wantReason: map[string]string{"Documentação": ReasonMissing},
		},
		{
			name: "mistyped fields",
			candidate: map[string]any{
				"name": 3, "TaskFlow MVP": "1", "Onboarding": -1, "Documentação": 0.5,
			},
			wantFields: []string{"name", "TaskFlow MVP", "Onboarding", "Documentação"},
			wantReason: map[string]string{
				"name":         ReasonNotString,
				"TaskFlow MVP": ReasonNotCount,
				"Onboarding":   ReasonNotCount,
				"Documentação": ReasonNotCount,
			},
		},
		{
			name: "unknown field",
			candidate: map[string]any{
				"name": "Jan", "TaskFlow MVP": 0, "Onboarding": 0, "Documentação": 0, "Unknown": 2,
			},
			wantFields: []string{"Unknown"},
			wantReason: map[string]string{"Unknown": ReasonUnknown},
		},
		{
			name: "null values",
			candidate: map[string]any{
				"name": nil, "TaskFlow MVP": nil, "Onboarding": 0, "Documentação": 0,
			},
			wantFields: []string{"name", "TaskFlow MVP"},
			wantReason: map[string]string{"name": ReasonNull, "TaskFlow MVP": ReasonNull},
		},
		{
			name:       "nil candidate",
			candidate:  nil,
			wantFields: []string{"name", "TaskFlow MVP", "Onboarding", "Documentação"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := MonthlyProgressSchema.Validate(tt.candidate)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Expected valid record, got %v", err)
				}
				return
			}

			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("Expected *SchemaError, got %v", err)
			}
			if diff := cmp.Diff(tt.wantFields, schemaErr.Fields()); diff != "" {
				t.Errorf("Fields mismatch (-want +got):\n%s", diff)
			}
			for _, v := range schemaErr.Violations {
				if want, ok := tt.wantReason[v.Field]; ok && v.Reason != want {
					t.Errorf("Field %q: expected reason %q, got %q", v.Field, want, v.Reason)
				}
			}
		})
	}
}

func TestSchemaError_MessageNamesField(t *testing.T) {
	t.Parallel()

	err := MonthlyProgressSchema.Validate(map[string]any{
		"name": "Jan", "TaskFlow MVP": 1, "Onboarding": 1,
	})
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "Documentação") {
		t.Errorf("Expected error to name Documentação, got %q", err.Error())
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) && !schemaErr.Has("Documentação") {
		t.Error("Expected Has(Documentação) to be true")
	}
}

func TestSchema_NewRecord(t *testing.T) {
	t.Parallel()

	r := MonthlyProgressSchema.NewRecord("Mar")
	if err := MonthlyProgressSchema.ValidateRecord(r); err != nil {
		t.Fatalf("Expected fresh record to be valid, got %v", err)
	}
	if r.Total() != 0 {
		t.Errorf("Expected zero total, got %d", r.Total())
	}
	if !r.Increment("Onboarding") {
		t.Error("Expected Increment on known project to succeed")
	}
	if r.Increment("Unknown") {
		t.Error("Expected Increment on unknown project to be ignored")
	}
	if r.Count("Onboarding") != 1 || r.Total() != 1 {
		t.Errorf("Unexpected counts after increment: %v", r.Counts)
	}
	if _, ok := r.Counts["Unknown"]; ok {
		t.Error("Expected unknown project not to be added to counts")
	}
}

func TestRecord_MarshalJSON(t *testing.T) {
	t.Parallel()

	r := MonthlyProgressSchema.NewRecord("Jan")
	r.Increment("TaskFlow MVP")
	r.Increment("Onboarding")

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Failed to marshal record: %v", err)
	}

	want := `{"name":"Jan","TaskFlow MVP":1,"Onboarding":1,"Documentação":0}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, string(data))
	}
}

func TestRecord_MarshalJSONWithoutSchemaOrder(t *testing.T) {
	t.Parallel()

	r := Record{Name: "Abr", Counts: map[string]int{"b": 2, "a": 1}}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Failed to marshal record: %v", err)
	}
	if string(data) != `{"name":"Abr","a":1,"b":2}` {
		t.Errorf("Unexpected JSON %s", string(data))
	}
}

func TestDecodeCandidatesAndRecordFromMap(t *testing.T) {
	t.Parallel()

	input := []byte(`[
		{"name":"Jan","TaskFlow MVP":1,"Onboarding":1,"Documentação":0},
		{"name":"Fev","TaskFlow MVP":1,"Onboarding":0}
	]`)

	candidates, err := DecodeCandidates(input)
	if err != nil {
		t.Fatalf("DecodeCandidates() error = %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}

	r, err := MonthlyProgressSchema.RecordFromMap(candidates[0])
	if err != nil {
		t.Fatalf("RecordFromMap() error = %v", err)
	}
	if r.Name != "Jan" || r.Count("TaskFlow MVP") != 1 || r.Count("Documentação") != 0 {
		t.Errorf("Unexpected record %+v", r)
	}

	if _, err := MonthlyProgressSchema.RecordFromMap(candidates[1]); err == nil {
		t.Error("Expected second candidate to fail validation")
	}

	if _, err := DecodeCandidates([]byte(`{"name":"Jan"}`)); err == nil {
		t.Error("Expected non-array input to fail")
	}
}

func TestSchema_Spec(t *testing.T) {
	t.Parallel()

	got := MonthlyProgressSchema.Spec()
	want := Spec{
		Title:       "Progresso Mensal de Projetos",
		CategoryKey: "name",
		Series: []Series{
			{DataKey: "TaskFlow MVP", Color: "#000000"},
			{DataKey: "Onboarding", Color: "#10B981"},
			{DataKey: "Documentação", Color: "#EF4444"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Spec() mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordFromMap_CountKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		count     any
		want      int
		wantValid bool
	}{
		{"json float", float64(2), 2, true},
		{"int32", int32(2), 2, true},
		{"uint", uint(2), 2, true},
		{"uint8", uint8(4), 4, true},
		{"huge float", 1e30, 0, false},
		{"uint64 above int range", uint64(math.MaxUint64), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			candidate := map[string]any{
				"name": "Jan", "TaskFlow MVP": tt.count, "Onboarding": 0, "Documentação": 0,
			}
			validateErr := MonthlyProgressSchema.Validate(candidate)
			r, err := MonthlyProgressSchema.RecordFromMap(candidate)

			if (validateErr == nil) != (err == nil) {
				t.Fatalf("Validate and RecordFromMap disagree: validate=%v convert=%v", validateErr, err)
			}
			if !tt.wantValid {
				if err == nil {
					t.Fatalf("Expected %v to be rejected, got counts %v", tt.count, r.Counts)
				}
				return
			}
			if err != nil {
				t.Fatalf("RecordFromMap() error = %v", err)
			}
			if r.Count("TaskFlow MVP") != tt.want {
				t.Errorf("Expected count %d, got %d", tt.want, r.Count("TaskFlow MVP"))
			}
		})
	}
}
