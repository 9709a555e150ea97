package report

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Record holds the sustainability metrics extracted for one subject.
// A nil pointer means the value was not found.
type Record struct {
	CompanyName string `json:"company_name"`

	ReportingYear *int `json:"reporting_year"`

	Scope1Emissions           *float64 `json:"scope_1_emissions"`
	Scope2MarketBased         *float64 `json:"scope_2_emissions_market_based"`
	Scope2LocationBased       *float64 `json:"scope_2_emissions_location_based"`
	Scope3Emissions           *float64 `json:"scope_3_emissions"`
	TotalEmissions            *float64 `json:"total_emissions"`
	EmissionsUnits            *string  `json:"emissions_units"`
	TotalEnergyConsumption    *float64 `json:"total_energy_consumption"`
	EnergyConsumptionUnits    *string  `json:"energy_consumption_units"`
	RenewableEnergyPercentage *float64 `json:"renewable_energy_percentage"`
	RenewableEnergyAbsolute   *float64 `json:"renewable_energy_absolute"`

	TargetDescription *string `json:"target_description"`
	TargetYear        *int    `json:"target_year"`
	BaselineYear      *int    `json:"baseline_year"`
	ScopeCoverage     *string `json:"scope_coverage"`
	InterimTarget     *string `json:"interim_target"`

	TotalWaterWithdrawal *float64 `json:"total_water_withdrawal"`
	WaterConsumption     *float64 `json:"water_consumption"`
	WaterUnits           *string  `json:"water_units"`

	ReportTitle *string `json:"report_title"`
	Notes       *string `json:"notes"`
}

// Placeholder is the row emitted for a subject with no extracted data.
func Placeholder(subject string) Record {
	return Record{CompanyName: subject}
}

// fieldIndex maps JSON field names to struct field positions.
var fieldIndex = func() map[string]int {
	m := make(map[string]int)
	t := reflect.TypeOf(Record{})
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		m[name] = i
	}
	return m
}()

func (r *Record) field(name string) (reflect.Value, error) {
	i, ok := fieldIndex[name]
	if !ok {
		return reflect.Value{}, fmt.Errorf("unknown field %q", name)
	}
	return reflect.ValueOf(r).Elem().Field(i), nil
}

// IsNull reports whether the named field has no value. An empty company
// name counts as null.
func (r Record) IsNull(name string) bool {
	v, err := r.field(name)
	if err != nil {
		return true
	}
	return v.IsZero()
}

// Value returns the dereferenced value of a field, or nil.
func (r Record) Value(name string) any {
	v, err := r.field(name)
	if err != nil || v.IsZero() {
		return nil
	}
	if v.Kind() == reflect.Pointer {
		return v.Elem().Interface()
	}
	return v.Interface()
}

// CopyField sets the named field on r to src's value.
func (r *Record) CopyField(name string, src Record) {
	dst, err := r.field(name)
	if err != nil {
		return
	}
	from, _ := src.field(name)
	dst.Set(from)
}

// Format renders a field for tabular output. Null fields render empty.
func (r Record) Format(name string) string {
	switch v := r.Value(name).(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// SetString parses s according to the field's kind and stores it. An empty
// string clears the field.
func (r *Record) SetString(name, s string) error {
	v, err := r.field(name)
	if err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}

	switch kind, _ := KindOf(name); kind {
	case KindString:
		if v.Kind() == reflect.String {
			v.SetString(s)
			return nil
		}
		v.Set(reflect.ValueOf(&s))
	case KindInteger:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != float64(int(f)) {
			return fmt.Errorf("%s: %q is not an integer", name, s)
		}
		n := int(f)
		v.Set(reflect.ValueOf(&n))
	case KindNumber:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", name, s)
		}
		v.Set(reflect.ValueOf(&f))
	}
	return nil
}

// Filled counts the non-null fields, company name excluded.
func (r Record) Filled() int {
	n := 0
	for _, f := range Fields {
		if f.Name != "company_name" && !r.IsNull(f.Name) {
			n++
		}
	}
	return n
}
