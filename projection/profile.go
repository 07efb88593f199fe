package projection

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-projection/catalog"
)

const (
	MinAge = 16
	MaxAge = 30
)

// ErrInvalidProfile is returned when a profile fails validation.
var ErrInvalidProfile = errors.New("invalid profile")

// Profile is what a student tells us about themselves.
type Profile struct {
	College            string
	Major              string
	State              string // home state, two-letter code
	IsPrivateCollege   bool
	Age                int
	CurrentSavings     decimal.Decimal
	ExpectedLoanAmount decimal.Decimal // zero means "derive from cost and savings"

	// Collected for display; they do not change the arithmetic.
	WorkDuringCollege bool
	GraduateSchool    bool
}

// ValidationError lists every invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidProfile
}

// Validate applies the form rules. Field names match the JSON contract.
func (p Profile) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(p.College) == "" {
		fields["college"] = "required"
	}
	if strings.TrimSpace(p.Major) == "" {
		fields["major"] = "required"
	}
	switch {
	case strings.TrimSpace(p.State) == "":
		fields["state"] = "required"
	case !catalog.IsKnownState(p.State):
		fields["state"] = "unknown state code"
	}
	if p.Age < MinAge || p.Age > MaxAge {
		fields["age"] = fmt.Sprintf("must be between %d and %d", MinAge, MaxAge)
	}
	if p.CurrentSavings.IsNegative() {
		fields["currentSavings"] = "must not be negative"
	}
	if p.ExpectedLoanAmount.IsNegative() {
		fields["expectedLoanAmount"] = "must not be negative"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
