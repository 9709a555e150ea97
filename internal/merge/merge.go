// Package merge combines the partial records extracted from each chunk of a
// document into one record.
package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/susdigest/internal/report"
)

// ErrNothingToMerge is returned for an empty input.
var ErrNothingToMerge = errors.New("nothing to merge")

// Policy decides which candidate wins when chunks disagree.
type Policy string

const (
	// FirstNonNull takes the first non-null value in input order.
	FirstNonNull Policy = "first"
	// Majority takes the most frequent value; ties go to the earliest.
	Majority Policy = "majority"
)

// ParsePolicy accepts "first" or "majority". Empty means first.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FirstNonNull:
		return FirstNonNull, nil
	case Majority:
		return Majority, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q", s)
	}
}

// Merge folds records in order, keeping the first non-null value per field.
func Merge(records []report.Record) (report.Record, error) {
	return MergeWith(records, FirstNonNull)
}

// MergeWith picks one value per field across records using policy.
func MergeWith(records []report.Record, policy Policy) (report.Record, error) {
	if len(records) == 0 {
		return report.Record{}, ErrNothingToMerge
	}
	c := Collect(records)
	var out report.Record
	for _, f := range report.Fields {
		idx := c.pick(f.Name, policy)
		if idx >= 0 {
			out.CopyField(f.Name, records[idx])
		}
	}
	return out, nil
}

// Candidate is one non-null value seen for a field.
type Candidate struct {
	Value string // formatted value
	Count int
	First int // index of the first record carrying it
}

// Candidates lists the distinct non-null values per field in first-seen
// order.
type Candidates map[string][]Candidate

// Collect gathers every distinct non-null value per field.
func Collect(records []report.Record) Candidates {
	c := make(Candidates)
	for i, r := range records {
		for _, f := range report.Fields {
			if r.IsNull(f.Name) {
				continue
			}
			v := r.Format(f.Name)
			found := false
			for j := range c[f.Name] {
				if c[f.Name][j].Value == v {
					c[f.Name][j].Count++
					found = true
					break
				}
			}
			if !found {
				c[f.Name] = append(c[f.Name], Candidate{Value: v, Count: 1, First: i})
			}
		}
	}
	return c
}

// Conflicts returns the fields that saw more than one distinct value, in
// column order.
func (c Candidates) Conflicts() []string {
	var out []string
	for _, f := range report.Fields {
		if len(c[f.Name]) > 1 {
			out = append(out, f.Name)
		}
	}
	return out
}

func (c Candidates) pick(field string, policy Policy) int {
	cands := c[field]
	if len(cands) == 0 {
		return -1
	}
	best := cands[0]
	if policy == Majority {
		for _, cand := range cands[1:] {
			if cand.Count > best.Count {
				best = cand
			}
		}
	}
	return best.First
}
