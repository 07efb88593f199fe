package catalog

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// INTERFACES
// =============================================================================

// Catalog is read access to the dataset.
// Point lookups return (nil, nil) when the record does not exist.
type Catalog interface {
	GetCollege(ctx context.Context, name string) (*College, error)
	SearchColleges(ctx context.Context, f Filter) ([]College, error)

	// GetSalary returns the exact (major, state) record. Pass state "" for
	// the national average.
	GetSalary(ctx context.Context, major, state string) (*Salary, error)
	ListMajors(ctx context.Context) ([]string, error)

	GetStateTax(ctx context.Context, state string) (*StateTax, error)
	ListStateTaxes(ctx context.Context) ([]StateTax, error)
}

// Writer upserts dataset records.
type Writer interface {
	SaveCollege(ctx context.Context, c College) error
	SaveSalary(ctx context.Context, s Salary) error
	SaveStateTax(ctx context.Context, t StateTax) error
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrCollegeNotFound is returned when a projection names an unknown college.
	ErrCollegeNotFound = errors.New("college not found")

	// ErrInvalidRecord is returned when a dataset record fails validation.
	ErrInvalidRecord = errors.New("invalid dataset record")
)

// RecordError names the invalid record.
type RecordError struct {
	Kind   string // college, salary, state_tax
	Key    string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Key, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return ErrInvalidRecord
}

// =============================================================================
// LOOKUP HELPERS
// =============================================================================

// LookupSalary returns the state-specific salary for major, falling back to
// the national average. The returned record says which one was used.
func LookupSalary(ctx context.Context, c Catalog, major, state string) (*Salary, error) {
	if state != "" {
		s, err := c.GetSalary(ctx, major, state)
		if err != nil {
			return nil, err
		}
		if s != nil {
			return s, nil
		}
	}
	return c.GetSalary(ctx, major, "")
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks a college record.
func (c College) Validate() error {
	switch {
	case NormalizeCollege(c.Name) == "":
		return &RecordError{Kind: "college", Key: c.Name, Reason: "name is required"}
	case !IsKnownState(c.State):
		return &RecordError{Kind: "college", Key: c.Name, Reason: "unknown state " + c.State}
	case !c.InStateTuition.IsPositive() || !c.OutOfStateTuition.IsPositive():
		return &RecordError{Kind: "college", Key: c.Name, Reason: "tuition must be positive"}
	}
	return nil
}

// Validate checks a salary record.
func (s Salary) Validate() error {
	switch {
	case NormalizeMajor(s.Major) == "":
		return &RecordError{Kind: "salary", Key: s.Major, Reason: "major is required"}
	case s.State != "" && !IsKnownState(s.State):
		return &RecordError{Kind: "salary", Key: s.Major, Reason: "unknown state " + s.State}
	case !s.AverageStartingSalary.IsPositive():
		return &RecordError{Kind: "salary", Key: s.Major, Reason: "salary must be positive"}
	}
	return nil
}

// Validate checks a state tax record.
func (t StateTax) Validate() error {
	switch {
	case !IsKnownState(t.State):
		return &RecordError{Kind: "state_tax", Key: t.State, Reason: "unknown state"}
	case t.Rate.IsNegative() || t.Rate.GreaterThanOrEqual(maxStateRate):
		return &RecordError{Kind: "state_tax", Key: t.State, Reason: "rate must be in [0, 0.5)"}
	}
	return nil
}
