package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const fixtureFile = "../../../fixtures/tasks.yaml"

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestProgressCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "progress", "--file", fixtureFile)
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(stdout), &records); err != nil {
		t.Fatalf("Output is not a JSON array: %v\n%s", err, stdout)
	}
	want := []map[string]any{
		{"name": "Jan", "TaskFlow MVP": float64(1), "Onboarding": float64(1), "Documentação": float64(0)},
		{"name": "Fev", "TaskFlow MVP": float64(1), "Onboarding": float64(0), "Documentação": float64(1)},
		{"name": "Mar", "TaskFlow MVP": float64(1), "Onboarding": float64(1), "Documentação": float64(1)},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("Records mismatch (-want +got):\n%s", diff)
	}
}

func TestProgressCmd_Locale(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "", "progress", "--file", fixtureFile, "--locale", "en", "--order", "calendar")
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if !strings.Contains(stdout, `"name": "Feb"`) {
		t.Errorf("Expected English month labels, got %s", stdout)
	}
}

func TestProgressCmd_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"bad order", []string{"progress", "--file", fixtureFile, "--order", "random"}},
		{"bad locale", []string{"progress", "--file", fixtureFile, "--locale", "!!"}},
		{"missing file", []string{"progress", "--file", "does-not-exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, _, err := execute(t, "", tt.args...); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestValidateCmd(t *testing.T) {
	t.Parallel()

	valid := `[{"name":"Jan","TaskFlow MVP":1,"Onboarding":1,"Documentação":0}]`
	invalid := `[
		{"name":"Jan","TaskFlow MVP":1,"Onboarding":1,"Documentação":0},
		{"name":"Fev","TaskFlow MVP":1,"Onboarding":0}
	]`

	t.Run("valid stdin", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := execute(t, valid, "validate")
		if err != nil {
			t.Fatalf("Expected valid records, got %v", err)
		}
		if !strings.Contains(stdout, "record 0 (Jan): ok") {
			t.Errorf("Unexpected output %q", stdout)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "records.json")
		if err := os.WriteFile(path, []byte(invalid), 0o600); err != nil {
			t.Fatal(err)
		}
		stdout, _, err := execute(t, "", "validate", "--file", path)
		if err == nil {
			t.Fatal("Expected error for invalid record")
		}
		if !strings.Contains(err.Error(), "1 of 2") {
			t.Errorf("Unexpected error %v", err)
		}
		if !strings.Contains(stdout, "Documentação: required field missing") {
			t.Errorf("Expected missing field reported, got %q", stdout)
		}
	})

	t.Run("count out of int range", func(t *testing.T) {
		t.Parallel()
		stdout, _, err := execute(t, `[{"name":"Jan","TaskFlow MVP":1e30,"Onboarding":0,"Documentação":0}]`, "validate")
		if err == nil {
			t.Fatalf("Expected overflowing count to be rejected, got output %q", stdout)
		}
		if !strings.Contains(stdout, "TaskFlow MVP: must be a non-negative integer") {
			t.Errorf("Expected count violation reported, got %q", stdout)
		}
	})

	t.Run("normalized output", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "normalized.json")
		input := `[{"Documentação":2,"Onboarding":0,"name":"Mar","TaskFlow MVP":1}]`
		if _, _, err := execute(t, input, "validate", "--out", path); err != nil {
			t.Fatalf("validate failed: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, data); err != nil {
			t.Fatalf("Output is not JSON: %v", err)
		}
		want := `[{"name":"Mar","TaskFlow MVP":1,"Onboarding":0,"Documentação":2}]`
		if compact.String() != want {
			t.Errorf("Expected %s, got %s", want, compact.String())
		}
	})

	t.Run("not an array", func(t *testing.T) {
		t.Parallel()
		if _, _, err := execute(t, `{"name":"Jan"}`, "validate"); err == nil {
			t.Error("Expected decode error")
		}
	})
}

func TestRequiredURLs(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("DATABASE_URL", "")

	if _, _, err := execute(t, "", "publish", "--url", ""); err == nil || !strings.Contains(err.Error(), "RABBITMQ_URL") {
		t.Errorf("Expected missing URL error, got %v", err)
	}
	if _, _, err := execute(t, "", "migrate", "--database-url", ""); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("Expected missing URL error, got %v", err)
	}
}
