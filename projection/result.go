package projection

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-projection/amortization"
	"github.com/warp/loan-projection/tax"
)

// Confidence describes where the salary figure came from.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"   // state-specific salary data
	ConfidenceMedium Confidence = "medium" // national average
	ConfidenceLow    Confidence = "low"    // no salary data
)

// Fields that can be reported unavailable.
const (
	FieldSalary       = "averageSalary"
	FieldTax          = "taxBreakdown"
	FieldStandard     = "standardRepayment"
	FieldIncomeDriven = "incomeDrivenRepayment"
)

// ErrInvalidResult is returned when a built result breaks an invariant.
var ErrInvalidResult = errors.New("invalid projection result")

// Unavailable marks a field that could not be computed.
type Unavailable struct {
	Field  string
	Reason string
}

// SalaryEstimate is the starting salary used for the projection.
type SalaryEstimate struct {
	Amount   decimal.Decimal // grown to the graduation year
	Base     decimal.Decimal // as recorded in the dataset
	DataYear int
	State    string // "" when the national average was used
}

// Metadata describes the inputs behind the numbers.
type Metadata struct {
	CollegeName string
	Major       string
	Confidence  Confidence
	Assumptions string
	Notes       []string
}

// Result is a complete projection. Pointer fields are nil exactly when the
// field is listed in Unavailable.
type Result struct {
	Profile Profile

	GraduationYear int
	GraduationAge  int

	CollegeState     string
	CollegePrivate   bool
	IsInState        bool
	TuitionPerYear   decimal.Decimal
	YearsOfCollege   int
	TotalCollegeCost decimal.Decimal
	TotalLoanAmount  decimal.Decimal

	Salary *SalaryEstimate
	Tax    *tax.Breakdown

	Standard       *amortization.StandardRepaymentResult
	StandardPayoff *amortization.PayoffProjection

	IncomeDriven       *amortization.IncomeDrivenResult
	IncomeDrivenPayoff *amortization.PayoffProjection

	Unavailable []Unavailable
	Metadata    Metadata
}

// IsUnavailable reports whether field was marked unavailable.
func (r *Result) IsUnavailable(field string) bool {
	for _, u := range r.Unavailable {
		if u.Field == field {
			return true
		}
	}
	return false
}

func (r *Result) markUnavailable(field, reason string) {
	r.Unavailable = append(r.Unavailable, Unavailable{Field: field, Reason: reason})
}

// Validate checks the result against the data model invariants.
func (r *Result) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidResult, fmt.Sprintf(format, args...))
	}

	if !r.TuitionPerYear.IsPositive() {
		return fail("tuition must be positive")
	}
	if r.TotalLoanAmount.IsNegative() {
		return fail("loan amount must not be negative")
	}

	present := map[string]bool{
		FieldSalary:       r.Salary != nil,
		FieldTax:          r.Tax != nil,
		FieldStandard:     r.Standard != nil && r.StandardPayoff != nil,
		FieldIncomeDriven: r.IncomeDriven != nil && r.IncomeDrivenPayoff != nil,
	}
	for _, field := range []string{FieldSalary, FieldTax, FieldStandard, FieldIncomeDriven} {
		if present[field] == r.IsUnavailable(field) {
			return fail("%s must be either present or unavailable", field)
		}
	}

	if s := r.Salary; s != nil && !s.Amount.IsPositive() {
		return fail("salary must be positive")
	}

	if t := r.Tax; t != nil {
		if t.TakeHomeAnnual.IsNegative() || t.TakeHomeAnnual.GreaterThan(t.Gross) {
			return fail("take-home pay must be between zero and gross salary")
		}
	}

	if s := r.Standard; s != nil {
		if !s.MonthlyPayment.IsPositive() {
			return fail("standard payment must be positive")
		}
		if s.TotalAmountPaid.LessThan(s.Terms.Principal) {
			return fail("standard total paid is below the principal")
		}
		if !s.TotalInterestPaid.Equal(s.TotalAmountPaid.Sub(s.Terms.Principal)) {
			return fail("standard interest does not match total paid")
		}
		if !s.Terms.Principal.Equal(r.TotalLoanAmount) {
			return fail("standard principal does not match the loan")
		}
	}

	if i := r.IncomeDriven; i != nil {
		if i.BalanceAtForgiveness.IsNegative() || i.TotalAmountPaid.IsNegative() {
			return fail("income-driven amounts must not be negative")
		}
		if i.PaidOff != i.BalanceAtForgiveness.IsZero() {
			return fail("income-driven payoff flag disagrees with the balance")
		}
		if i.PayoffYears.GreaterThan(decimal.NewFromInt(int64(i.Terms.HorizonYears))) {
			return fail("income-driven payoff exceeds the horizon")
		}
	}
	return nil
}
