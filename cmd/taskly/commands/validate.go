package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/taskly/dashboard/internal/chart"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	var (
		file string
		out  string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check chart records against the monthly progress schema",
		Long:  "Read a JSON array of chart records from a file, or stdin with --file -, and report every field that breaks the monthly progress schema. With --out, valid input is rewritten in schema key order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			candidates, err := chart.DecodeCandidates(data)
			if err != nil {
				return err
			}

			invalid := 0
			report := cmd.OutOrStdout()
			records := make([]chart.Record, 0, len(candidates))
			for i, candidate := range candidates {
				name, _ := candidate[chart.NameField].(string)
				record, err := chart.MonthlyProgressSchema.RecordFromMap(candidate)
				if err == nil {
					records = append(records, record)
					fmt.Fprintf(report, "record %d (%s): ok\n", i, name)
					continue
				}
				invalid++
				var schemaErr *chart.SchemaError
				if !errors.As(err, &schemaErr) {
					fmt.Fprintf(report, "record %d (%s): %v\n", i, name, err)
					continue
				}
				fmt.Fprintf(report, "record %d (%s): invalid\n", i, name)
				for _, v := range schemaErr.Violations {
					fmt.Fprintf(report, "  - %s: %s\n", v.Field, v.Reason)
				}
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d records are invalid", invalid, len(candidates))
			}
			if out == "" {
				return nil
			}
			return writeRecords(out, records)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON records file, - for stdin")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the normalized records to this file")
	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return data, nil
}

func writeRecords(path string, records []chart.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
