package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/susdigest/internal/report"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }
func s(v string) *string   { return &v }

func sample() []report.Record {
	return []report.Record{
		{CompanyName: "Google", ReportingYear: i(2023), Scope1Emissions: f(91200), EmissionsUnits: s("tCO2e")},
		report.Placeholder("Apple"),
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(report.Columns(), ",") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Google,2023,91200,,,,,tCO2e,") {
		t.Errorf("unexpected Google row %q", lines[1])
	}
	want := "Apple" + strings.Repeat(",", len(report.Fields)-1)
	if lines[2] != want {
		t.Errorf("expected placeholder row of empty cells, got %q", lines[2])
	}
}

func TestWriteJSON_ExplicitNulls(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	v, ok := rows[1]["scope_1_emissions"]
	if !ok || v != nil {
		t.Errorf("expected explicit null, got %v (present=%v)", v, ok)
	}
	if rows[0]["scope_1_emissions"] != 91200.0 {
		t.Errorf("expected 91200, got %v", rows[0]["scope_1_emissions"])
	}

	buf.Reset()
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestCSVReadBack(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Scope1Emissions == nil || *got[0].Scope1Emissions != 91200 {
		t.Errorf("expected scope 1 to read back")
	}
	if got[0].ReportingYear == nil || *got[0].ReportingYear != 2023 {
		t.Errorf("expected reporting year to read back")
	}
	if got[1].Filled() != 0 || got[1].CompanyName != "Apple" {
		t.Errorf("expected placeholder to read back empty, got %+v", got[1])
	}
}

func TestReadCSV_PartialColumns(t *testing.T) {
	in := "total_emissions,company_name,extra\n1500,BP,ignored\n"
	got, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].CompanyName != "BP" || *got[0].TotalEmissions != 1500 {
		t.Fatalf("unexpected records %+v", got)
	}

	if _, err := ReadCSV(strings.NewReader("target_year\nsoon\n")); err == nil {
		t.Error("expected error for non-numeric year")
	}
}

func TestUpsert(t *testing.T) {
	recs := sample()
	updated := Upsert(recs, report.Record{CompanyName: "apple", Notes: s("rerun")})
	if len(updated) != 2 {
		t.Fatalf("expected replacement, got %d rows", len(updated))
	}
	if updated[1].Notes == nil || *updated[1].Notes != "rerun" {
		t.Errorf("expected Apple row replaced")
	}
	if recs[1].Notes != nil {
		t.Errorf("input slice must not change")
	}

	added := Upsert(recs, report.Placeholder("Amazon"))
	if len(added) != 3 || added[2].CompanyName != "Amazon" {
		t.Errorf("expected Amazon appended, got %d rows", len(added))
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	x, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer x.Close()

	rows, err := x.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "company_name" || rows[1][0] != "Google" || rows[2][0] != "Apple" {
		t.Errorf("unexpected first column: %v %v %v", rows[0][0], rows[1][0], rows[2][0])
	}
	if rows[1][2] != "91200" {
		t.Errorf("expected scope 1 cell 91200, got %q", rows[1][2])
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": CSV, "out/table.JSON": JSON, "comparison.xlsx": XLSX} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): expected %q, got %q (%v)", in, want, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}
