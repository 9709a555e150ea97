package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/susdigest/internal/checks"
	"github.com/dgallion1/susdigest/internal/export"
	"github.com/dgallion1/susdigest/internal/extract"
	"github.com/dgallion1/susdigest/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate <table.csv|table.json>",
	Short: "Run plausibility checks over a comparison table",
	Long: `Check each row of a comparison table: Scope 3 should exceed Scope 1, scopes
should add up to the reported total, percentages must be within 0-100, target
years should be in the future, and emissions should be of a plausible size.
JSON tables are first checked row by row against the record schema.

Exits non-zero when any issue is found.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	if format, err := export.ParseFormat(args[0]); err == nil && format == export.JSON {
		bad, err := schemaErrors(cmd.OutOrStdout(), args[0])
		if err != nil {
			return err
		}
		if bad > 0 {
			return fmt.Errorf("%d row(s) do not match the record schema", bad)
		}
	}
	records, err := readTable(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("%s: no rows", args[0])
	}
	issues := printChecks(cmd.OutOrStdout(), records, time.Now().Year())
	if issues > 0 {
		return fmt.Errorf("%d issue(s) found", issues)
	}
	return nil
}

func printChecks(w io.Writer, records []report.Record, year int) int {
	total := 0
	for _, r := range records {
		s := checks.Run(r, year)
		fmt.Fprintf(w, "%s (%d/%d fields)\n", s.Subject, r.Filled(), len(report.Fields)-1)
		for _, f := range s.Findings {
			fmt.Fprintf(w, "  %-5s %-27s %s\n", f.Level, f.Check, f.Message)
		}
		total += s.Count(checks.Issue)
	}
	fmt.Fprintf(w, "%d row(s), %d issue(s)\n", len(records), total)
	return total
}

// schemaErrors prints each row of a JSON table that fails the record schema
// and returns how many did.
func schemaErrors(w io.Writer, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	bad := 0
	for i, row := range rows {
		if err := extract.ValidateJSON(row, false); err != nil {
			fmt.Fprintf(w, "row %d: %v\n", i+1, err)
			bad++
		}
	}
	return bad, nil
}
