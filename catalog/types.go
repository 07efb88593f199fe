/*
Package catalog provides the college, salary and state tax dataset.

PURPOSE:
  Input lookup for projections: tuition for a college, starting salary for a
  major, and the flat income tax rate of a state. The dataset replaces the
  remote model's "research" step; it never does arithmetic.

KEY CONCEPTS IN THIS FILE (types.go):
  - College: tuition by residency
  - Salary: average starting salary for a major, per state or national
  - StateTax: flat effective rate for a state

STATE CODES:
  Two-letter USPS codes, upper case. Salary.State == "" is the national
  average, used when no state-specific figure exists.

SEE ALSO:
  - catalog.go: Catalog and Writer interfaces
  - dataset.go: JSON dataset and seeding
  - cache.go: read-through cache
  - store/sqlite, store/memory: implementations
*/
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// College is a tuition record.
type College struct {
	Name              string          `json:"name"`
	State             string          `json:"state"`
	Private           bool            `json:"private"`
	InStateTuition    decimal.Decimal `json:"in_state_tuition"`
	OutOfStateTuition decimal.Decimal `json:"out_of_state_tuition"`
}

// TuitionFor returns the yearly tuition a student from studentState pays,
// and whether that is the in-state rate.
func (c College) TuitionFor(studentState string) (decimal.Decimal, bool) {
	if NormalizeState(studentState) == NormalizeState(c.State) {
		return c.InStateTuition, true
	}
	return c.OutOfStateTuition, false
}

// Salary is an average starting salary for graduates of a major.
type Salary struct {
	Major                 string          `json:"major"`
	State                 string          `json:"state,omitempty"`
	DataYear              int             `json:"data_year"`
	AverageStartingSalary decimal.Decimal `json:"average_starting_salary"`
}

// IsNational reports whether the record is the national fallback.
func (s Salary) IsNational() bool {
	return s.State == ""
}

// StateTax is the flat income tax rate of a state.
type StateTax struct {
	State string          `json:"state"`
	Name  string          `json:"name"`
	Rate  decimal.Decimal `json:"rate"`
}

// Filter narrows SearchColleges.
type Filter struct {
	State   string
	Private *bool
	Query   string // case-insensitive substring of the name
	Limit   int
}

// Matches reports whether c passes the filter (Limit is not applied).
func (f Filter) Matches(c College) bool {
	if f.State != "" && NormalizeState(f.State) != NormalizeState(c.State) {
		return false
	}
	if f.Private != nil && *f.Private != c.Private {
		return false
	}
	if f.Query != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(strings.TrimSpace(f.Query))) {
		return false
	}
	return true
}

// NormalizeState upper-cases and trims a state code.
func NormalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeMajor returns the lookup key of a major name.
func NormalizeMajor(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// NormalizeCollege returns the lookup key of a college name.
func NormalizeCollege(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
