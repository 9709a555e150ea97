package extract

import (
	"fmt"
	"strings"

	"github.com/dgallion1/susdigest/internal/report"
)

const SystemPrompt = "You are a data extraction assistant. Extract sustainability metrics from corporate reports accurately. Return only the requested structured data."

// FieldGuide is the LLM-facing description of each record field. It is kept
// apart from the machine schema so wording can change without touching
// validation.
var FieldGuide = map[string]string{
	"company_name":                     "Name of the reporting company or organization.",
	"reporting_year":                   "Fiscal or calendar year the report covers, e.g. 2023.",
	"scope_1_emissions":                "Scope 1 direct GHG emissions from owned or controlled sources such as on-site combustion and company vehicles.",
	"scope_2_emissions_market_based":   "Scope 2 purchased-energy emissions, market-based method (reflects renewable purchases and RECs).",
	"scope_2_emissions_location_based": "Scope 2 purchased-energy emissions, location-based method (grid average factors).",
	"scope_3_emissions":                "Scope 3 value-chain emissions: suppliers, product use, travel, waste. Usually the largest figure.",
	"total_emissions":                  "Total GHG emissions across scopes, sometimes called carbon footprint.",
	"emissions_units":                  "Units of the emissions figures, e.g. tCO2e, metric tons CO2e, MtCO2e.",
	"total_energy_consumption":         "Total energy or electricity consumed by operations.",
	"energy_consumption_units":         "Units of the energy figures, e.g. MWh, GWh, TWh.",
	"renewable_energy_percentage":      "Share of energy from renewable sources, between 0 and 100.",
	"renewable_energy_absolute":        "Absolute renewable energy procured or generated.",
	"target_description":               "The primary climate target, e.g. net zero across operations by 2030 or 50% reduction by 2030.",
	"target_year":                      "Year the primary climate target is due, e.g. 2030 or 2050.",
	"baseline_year":                    "Base year progress is measured against, e.g. 2019.",
	"scope_coverage":                   "Scopes covered by the target, e.g. Scope 1 and 2, or all scopes.",
	"interim_target":                   "Any intermediate milestone before the main target.",
	"total_water_withdrawal":           "Total water withdrawn.",
	"water_consumption":                "Water consumed (withdrawn minus discharged).",
	"water_units":                      "Units of the water figures, e.g. megaliters, million gallons, cubic meters.",
	"report_title":                     "Title of the report.",
	"notes":                            "Short note on caveats such as restatements or partial coverage.",
}

// BuildPrompt asks for every record field from one chunk of a subject's report.
func BuildPrompt(subject, chunkText string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Extract sustainability and environmental data from the following text excerpt from %s's report.\n", subject)
	sb.WriteString("Return a JSON object with these fields:\n\n")
	for _, f := range report.Fields {
		fmt.Fprintf(&sb, "- %q (%s): %s\n", f.Name, f.Kind, FieldGuide[f.Name])
	}
	sb.WriteString("\nUse plain numbers without thousands separators or units for numeric fields. ")
	sb.WriteString("If a field is not mentioned or cannot be determined from this text, set it to null.\n\n")
	sb.WriteString("Text excerpt:\n")
	sb.WriteString(chunkText)
	return sb.String()
}
