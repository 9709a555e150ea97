package report

// Kind is the JSON type of a field.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindNumber  Kind = "number"
)

// Field describes one machine-checkable column of a Record. LLM guidance
// text lives with the prompt, not here.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
}

// Fields lists every Record field in output column order.
var Fields = []Field{
	{Name: "company_name", Kind: KindString, Required: true},
	{Name: "reporting_year", Kind: KindInteger},
	{Name: "scope_1_emissions", Kind: KindNumber},
	{Name: "scope_2_emissions_market_based", Kind: KindNumber},
	{Name: "scope_2_emissions_location_based", Kind: KindNumber},
	{Name: "scope_3_emissions", Kind: KindNumber},
	{Name: "total_emissions", Kind: KindNumber},
	{Name: "emissions_units", Kind: KindString},
	{Name: "total_energy_consumption", Kind: KindNumber},
	{Name: "energy_consumption_units", Kind: KindString},
	{Name: "renewable_energy_percentage", Kind: KindNumber},
	{Name: "renewable_energy_absolute", Kind: KindNumber},
	{Name: "target_description", Kind: KindString},
	{Name: "target_year", Kind: KindInteger},
	{Name: "baseline_year", Kind: KindInteger},
	{Name: "scope_coverage", Kind: KindString},
	{Name: "interim_target", Kind: KindString},
	{Name: "total_water_withdrawal", Kind: KindNumber},
	{Name: "water_consumption", Kind: KindNumber},
	{Name: "water_units", Kind: KindString},
	{Name: "report_title", Kind: KindString},
	{Name: "notes", Kind: KindString},
}

var kinds = func() map[string]Kind {
	m := make(map[string]Kind, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f.Kind
	}
	return m
}()

// KindOf returns the kind of a named field.
func KindOf(name string) (Kind, bool) {
	k, ok := kinds[name]
	return k, ok
}

// Columns returns field names in output order.
func Columns() []string {
	cols := make([]string, len(Fields))
	for i, f := range Fields {
		cols[i] = f.Name
	}
	return cols
}

// JSONSchema builds the validation schema for one extraction. Optional
// fields accept null. When strict is set, unknown properties are rejected.
func JSONSchema(strict bool) map[string]any {
	props := make(map[string]any, len(Fields))
	var required []any
	for _, f := range Fields {
		if f.Required {
			p := map[string]any{"type": string(f.Kind)}
			if f.Kind == KindString {
				p["minLength"] = 1
			}
			props[f.Name] = p
			required = append(required, f.Name)
			continue
		}
		props[f.Name] = map[string]any{"type": []any{string(f.Kind), "null"}}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": !strict,
	}
}
