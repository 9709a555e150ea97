package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/susdigest/internal/report"
)

func TestMergeInto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "comparison.csv")

	google := report.Placeholder("Google")
	year := 2023
	google.ReportingYear = &year
	if err := mergeInto(path, google); err != nil {
		t.Fatal(err)
	}
	if err := mergeInto(path, report.Placeholder("Apple")); err != nil {
		t.Fatal(err)
	}
	// Rerun replaces the Google row.
	year2 := 2024
	google.ReportingYear = &year2
	if err := mergeInto(path, google); err != nil {
		t.Fatal(err)
	}

	got, err := readTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].CompanyName != "Google" || got[1].CompanyName != "Apple" {
		t.Fatalf("unexpected rows %+v", got)
	}
	if got[0].ReportingYear == nil || *got[0].ReportingYear != 2024 {
		t.Errorf("expected replaced year 2024, got %v", got[0].ReportingYear)
	}
}

func TestReadTable_Missing(t *testing.T) {
	got, err := readTable(filepath.Join(t.TempDir(), "none.json"))
	if err != nil || got != nil {
		t.Errorf("expected empty table, got %v %v", got, err)
	}
	if _, err := readTable("table.xlsx"); err == nil {
		t.Error("expected xlsx tables to be write-only")
	}
}

func TestWriteTable_UnknownFormat(t *testing.T) {
	if err := writeTable(filepath.Join(t.TempDir(), "out.txt"), nil); err == nil {
		t.Error("expected error for .txt")
	}
}

func TestSchemaErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	rows := `[{"company_name": "BP", "target_year": "soon"}, {"company_name": "Apple"}]`
	if err := os.WriteFile(bad, []byte(rows), 0o644); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	n, err := schemaErrors(&buf, bad)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || !strings.HasPrefix(buf.String(), "row 1:") {
		t.Errorf("expected row 1 rejected, got %d: %q", n, buf.String())
	}

	good := filepath.Join(dir, "good.json")
	if err := writeTable(good, []report.Record{report.Placeholder("BP")}); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if n, err := schemaErrors(&buf, good); err != nil || n != 0 {
		t.Errorf("expected written table to pass, got %d %v: %q", n, err, buf.String())
	}
}

func TestPrintChecks(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	r := report.Placeholder("BP")
	r.Scope1Emissions = v(40_000_000)
	r.Scope3Emissions = v(300_000_000)
	r.RenewableEnergyPercentage = v(140)

	var buf bytes.Buffer
	issues := printChecks(&buf, []report.Record{r}, 2026)
	out := buf.String()
	if issues != 2 {
		t.Errorf("expected 2 issues (renewable range, scope 3 size), got %d:\n%s", issues, out)
	}
	if !strings.HasPrefix(out, "BP (3/21 fields)") {
		t.Errorf("unexpected header %q", strings.SplitN(out, "\n", 2)[0])
	}
	if !strings.Contains(out, "1 row(s), 2 issue(s)") {
		t.Errorf("missing summary line:\n%s", out)
	}
}

func TestLoadConfig_Flags(t *testing.T) {
	t.Setenv("TOP_CHUNKS", "4")
	cfg, _, err := loadConfig(extractCmd, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TopChunks != 4 {
		t.Errorf("expected env value 4, got %d", cfg.TopChunks)
	}

	if err := extractCmd.Flags().Set("top", "9"); err != nil {
		t.Fatal(err)
	}
	if err := extractCmd.Flags().Set("delay", "1s"); err != nil {
		t.Fatal(err)
	}
	cfg, _, err = loadConfig(extractCmd, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TopChunks != 9 || cfg.ExtractDelay != time.Second {
		t.Errorf("expected flags to win, got top=%d delay=%s", cfg.TopChunks, cfg.ExtractDelay)
	}
	if cfg.LLMModel != "qwen3" {
		t.Errorf("expected unset flags to keep defaults, got model %q", cfg.LLMModel)
	}
}
