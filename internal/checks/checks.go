// Package checks runs plausibility checks over extracted records.
package checks

import (
	"fmt"
	"math"

	"github.com/dgallion1/susdigest/internal/report"
)

// Level grades a finding.
type Level string

const (
	Pass  Level = "pass"
	Warn  Level = "warn"
	Issue Level = "issue"
)

// Finding is the outcome of one check on one record.
type Finding struct {
	Check   string `json:"check"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

const (
	totalTolerance = 0.10
	minEmissions   = 1e3
	maxEmissions   = 1e8
	minTargetYear  = 2020
)

// Summary groups findings for one subject.
type Summary struct {
	Subject  string    `json:"subject"`
	Findings []Finding `json:"findings"`
}

// Count returns how many findings have level l.
func (s Summary) Count(l Level) int {
	n := 0
	for _, f := range s.Findings {
		if f.Level == l {
			n++
		}
	}
	return n
}

// Run checks one record. currentYear decides whether a target has passed.
func Run(r report.Record, currentYear int) Summary {
	var fs []Finding
	fs = append(fs, scopeOrder(r))
	fs = append(fs, totalConsistency(r))
	fs = append(fs, renewableRange(r))
	fs = append(fs, targetYear(r, currentYear))
	fs = append(fs, emissionsRange(r)...)
	return Summary{Subject: r.CompanyName, Findings: fs}
}

func scopeOrder(r report.Record) Finding {
	const name = "scope3_exceeds_scope1"
	switch {
	case r.Scope1Emissions == nil:
		return Finding{name, Warn, "scope 1 missing"}
	case r.Scope3Emissions == nil:
		return Finding{name, Warn, "scope 3 missing"}
	case *r.Scope3Emissions > *r.Scope1Emissions:
		return Finding{name, Pass, fmt.Sprintf("scope 3 is %.1fx scope 1", ratio(*r.Scope3Emissions, *r.Scope1Emissions))}
	default:
		return Finding{name, Issue, fmt.Sprintf("scope 3 (%.0f) not greater than scope 1 (%.0f)", *r.Scope3Emissions, *r.Scope1Emissions)}
	}
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return math.Inf(1)
	}
	return a / b
}

// totalConsistency compares scope 1 + scope 2 (+ scope 3) with the reported
// total. Market-based scope 2 is preferred.
func totalConsistency(r report.Record) Finding {
	const name = "total_matches_scopes"
	scope2 := r.Scope2MarketBased
	if scope2 == nil {
		scope2 = r.Scope2LocationBased
	}
	if r.Scope1Emissions == nil || scope2 == nil || r.TotalEmissions == nil || *r.TotalEmissions == 0 {
		return Finding{name, Warn, "not enough data to check total"}
	}
	sum := *r.Scope1Emissions + *scope2
	if r.Scope3Emissions != nil {
		sum += *r.Scope3Emissions
	}
	diff := math.Abs(sum-*r.TotalEmissions) / *r.TotalEmissions
	if diff <= totalTolerance {
		return Finding{name, Pass, fmt.Sprintf("calculated total within %.1f%% of reported", diff*100)}
	}
	return Finding{name, Issue, fmt.Sprintf("calculated total %.0f differs from reported %.0f by %.1f%%", sum, *r.TotalEmissions, diff*100)}
}

func renewableRange(r report.Record) Finding {
	const name = "renewable_percentage_range"
	p := r.RenewableEnergyPercentage
	switch {
	case p == nil:
		return Finding{name, Warn, "renewable percentage missing"}
	case *p < 0 || *p > 100:
		return Finding{name, Issue, fmt.Sprintf("renewable percentage %.1f outside 0-100", *p)}
	default:
		return Finding{name, Pass, fmt.Sprintf("renewable percentage %.1f", *p)}
	}
}

func targetYear(r report.Record, currentYear int) Finding {
	const name = "target_year"
	y := r.TargetYear
	switch {
	case y == nil:
		return Finding{name, Warn, "target year missing"}
	case *y < minTargetYear:
		return Finding{name, Issue, fmt.Sprintf("target year %d before %d", *y, minTargetYear)}
	case *y < currentYear:
		return Finding{name, Warn, fmt.Sprintf("target year %d has passed", *y)}
	default:
		return Finding{name, Pass, fmt.Sprintf("target year %d", *y)}
	}
}

func emissionsRange(r report.Record) []Finding {
	const name = "emissions_plausible"
	fields := []struct {
		label string
		v     *float64
	}{
		{"scope 1", r.Scope1Emissions},
		{"scope 2 market", r.Scope2MarketBased},
		{"scope 2 location", r.Scope2LocationBased},
		{"scope 3", r.Scope3Emissions},
		{"total", r.TotalEmissions},
	}
	var out []Finding
	for _, f := range fields {
		if f.v == nil {
			continue
		}
		if *f.v < minEmissions || *f.v > maxEmissions {
			out = append(out, Finding{name, Issue, fmt.Sprintf("%s %.0f outside [%.0f, %.0f]", f.label, *f.v, minEmissions, maxEmissions)})
		}
	}
	if len(out) == 0 {
		out = append(out, Finding{name, Pass, "emissions values in plausible range"})
	}
	return out
}
