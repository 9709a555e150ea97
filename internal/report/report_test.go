package report

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFieldsMatchRecordTags(t *testing.T) {
	typ := reflect.TypeOf(Record{})
	if typ.NumField() != len(Fields) {
		t.Fatalf("expected %d struct fields, got %d", len(Fields), typ.NumField())
	}
	for i, f := range Fields {
		tag := typ.Field(i).Tag.Get("json")
		if tag != f.Name {
			t.Errorf("field %d: schema says %q, struct tag says %q", i, f.Name, tag)
		}
	}
}

func TestRecordJSONHasExplicitNulls(t *testing.T) {
	data, err := json.Marshal(Placeholder("Apple"))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if len(m) != len(Fields) {
		t.Fatalf("expected every field present, got %d keys", len(m))
	}
	if m["company_name"] != "Apple" {
		t.Errorf("expected company_name Apple, got %v", m["company_name"])
	}
	if v, ok := m["scope_1_emissions"]; !ok || v != nil {
		t.Errorf("expected explicit null for scope_1_emissions, got %v (present=%v)", v, ok)
	}
}

func TestValueAndFormat(t *testing.T) {
	year := 2023
	scope1 := 12500.5
	units := "tCO2e"
	r := Record{CompanyName: "Google", ReportingYear: &year, Scope1Emissions: &scope1, EmissionsUnits: &units}

	if r.Value("reporting_year") != 2023 {
		t.Errorf("expected 2023, got %v", r.Value("reporting_year"))
	}
	if r.Value("scope_3_emissions") != nil {
		t.Errorf("expected nil for unset field")
	}
	if got := r.Format("scope_1_emissions"); got != "12500.5" {
		t.Errorf("expected 12500.5, got %q", got)
	}
	if got := r.Format("total_emissions"); got != "" {
		t.Errorf("expected empty cell for null, got %q", got)
	}
	if got := r.Filled(); got != 3 {
		t.Errorf("expected 3 filled fields, got %d", got)
	}
}

func TestSetString(t *testing.T) {
	var r Record
	if err := r.SetString("target_year", "2030"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetString("renewable_energy_percentage", "64.5"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetString("company_name", "BP"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetString("notes", "restated"); err != nil {
		t.Fatal(err)
	}
	if r.TargetYear == nil || *r.TargetYear != 2030 {
		t.Errorf("expected target_year 2030, got %v", r.TargetYear)
	}
	if r.RenewableEnergyPercentage == nil || *r.RenewableEnergyPercentage != 64.5 {
		t.Errorf("expected 64.5, got %v", r.RenewableEnergyPercentage)
	}
	if r.CompanyName != "BP" || r.Notes == nil || *r.Notes != "restated" {
		t.Errorf("unexpected string fields: %+v", r)
	}

	if err := r.SetString("target_year", ""); err != nil {
		t.Fatal(err)
	}
	if r.TargetYear != nil {
		t.Errorf("expected empty string to clear target_year")
	}

	if err := r.SetString("baseline_year", "2019.5"); err == nil {
		t.Error("expected error for fractional year")
	}
	if err := r.SetString("water_consumption", "lots"); err == nil {
		t.Error("expected error for non-numeric number field")
	}
	if err := r.SetString("no_such_field", "1"); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestCopyField(t *testing.T) {
	v := 3.0
	src := Record{Scope3Emissions: &v}
	var dst Record
	dst.CopyField("scope_3_emissions", src)
	if dst.Scope3Emissions == nil || *dst.Scope3Emissions != 3.0 {
		t.Fatalf("expected copied value, got %v", dst.Scope3Emissions)
	}
}

func TestJSONSchema(t *testing.T) {
	s := JSONSchema(true)
	if s["additionalProperties"] != false {
		t.Errorf("expected strict schema to reject extra properties")
	}
	req, _ := s["required"].([]any)
	if len(req) != 1 || req[0] != "company_name" {
		t.Errorf("expected only company_name required, got %v", req)
	}
	p := s["properties"].(map[string]any)
	if len(p) != len(Fields) {
		t.Errorf("expected %d properties, got %d", len(Fields), len(p))
	}
	if JSONSchema(false)["additionalProperties"] != true {
		t.Errorf("expected lenient schema to allow extra properties")
	}
}

func TestInferSubject(t *testing.T) {
	tests := []struct {
		filename string
		want     string
		ok       bool
	}{
		{"google-2023-environmental-report.pdf", "Google", true},
		{"/reports/Apple_Environmental_Progress_Report_2024.pdf", "Apple", true},
		{"amazon-sustainability-2023.pdf", "Amazon", true},
		{"Microsoft-2024-Environmental-Sustainability-Report.pdf", "Microsoft", true},
		{"bp-sustainability-report-2023.pdf", "BP", true},
		{"annual-report.pdf", "", false},
		// First table entry wins on multiple hits.
		{"apple-vs-google.pdf", "Google", true},
		// Directory names are ignored.
		{"/data/google/report.pdf", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, ok := InferSubject(tt.filename)
			if got != tt.want || ok != tt.ok {
				t.Errorf("InferSubject(%q): expected (%q, %v), got (%q, %v)", tt.filename, tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestResolveSubject(t *testing.T) {
	if got, ok := ResolveSubject("  Acme Corp ", "google.pdf"); !ok || got != "Acme Corp" {
		t.Errorf("expected explicit subject to win, got %q", got)
	}
	if got, ok := ResolveSubject("", "google.pdf"); !ok || got != "Google" {
		t.Errorf("expected inferred Google, got %q", got)
	}
	if _, ok := ResolveSubject("", "x.pdf"); ok {
		t.Error("expected no subject")
	}
}
