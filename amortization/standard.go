/*
standard.go - Fixed-payment amortization

PURPOSE:
  Computes the monthly payment that retires a loan exactly at the end of its
  term, together with the totals shown on the results dashboard.

FORMULA:
  i = r / 12, N = n * 12

    payment = P * i * (1+i)^N / ((1+i)^N - 1)    i > 0
    payment = P / N                              i == 0

  totalAmountPaid   = payment * N
  totalInterestPaid = totalAmountPaid - P

PRECISION:
  The growth factor (1+i)^N is evaluated in float64 so a non-finite value can
  be detected and reported as ErrNumericOverflow. Everything after that is
  decimal. Nothing is rounded here.

SEE ALSO:
  - idr.go: income-driven variant
  - schedule.go: per-year breakdown
*/
package amortization

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ComputeStandardRepayment amortizes principal at annualRate over termYears.
func ComputeStandardRepayment(principal, annualRate decimal.Decimal, termYears int) (StandardRepaymentResult, error) {
	return Standard(LoanTerms{Principal: principal, AnnualRate: annualRate, TermYears: termYears})
}

// Standard amortizes the given terms.
func Standard(terms LoanTerms) (StandardRepaymentResult, error) {
	if err := terms.Validate(); err != nil {
		return StandardRepaymentResult{}, err
	}

	n := terms.NumPayments()
	payment, degenerate, err := monthlyPayment(terms)
	if err != nil {
		return StandardRepaymentResult{}, err
	}

	result := StandardRepaymentResult{
		Terms:          terms,
		MonthlyPayment: payment,
		NumPayments:    n,
	}

	if degenerate {
		// P/N does not always multiply back to P exactly in decimal.
		result.TotalAmountPaid = terms.Principal
		result.TotalInterestPaid = decimal.Zero
	} else {
		result.TotalAmountPaid = payment.Mul(decimal.NewFromInt(int64(n)))
		result.TotalInterestPaid = result.TotalAmountPaid.Sub(terms.Principal)
	}

	result.Schedule = standardSchedule(terms, payment)
	return result, nil
}

// Validate checks P > 0, r >= 0, 0 < n <= MaxYears.
func (t LoanTerms) Validate() error {
	if !t.Principal.IsPositive() {
		return invalid("principal", t.Principal, "must be positive")
	}
	if t.AnnualRate.IsNegative() {
		return invalid("annual_rate", t.AnnualRate, "must not be negative")
	}
	if t.TermYears <= 0 {
		return invalidInt("term_years", t.TermYears, "must be positive")
	}
	if t.TermYears > MaxYears {
		return invalidInt("term_years", t.TermYears, fmt.Sprintf("must not exceed %d", MaxYears))
	}
	return nil
}

// monthlyPayment reports degenerate when the loan amortizes as if i == 0.
func monthlyPayment(terms LoanTerms) (decimal.Decimal, bool, error) {
	n := decimal.NewFromInt(int64(terms.NumPayments()))
	flat := terms.Principal.Div(n)
	if terms.AnnualRate.IsZero() {
		return flat, true, nil
	}

	i := terms.MonthlyRate().InexactFloat64()
	growth := math.Pow(1+i, float64(terms.NumPayments()))
	if !isFinite(growth) {
		return decimal.Zero, false, &OverflowError{Operation: "growth factor (1+i)^N"}
	}

	if growth == 1 {
		// Rate too small to register in float64.
		return flat, true, nil
	}

	factor := i / (1 - 1/growth)
	if !isFinite(factor) {
		return decimal.Zero, false, &OverflowError{Operation: "payment factor"}
	}

	payment := terms.Principal.Mul(decimal.NewFromFloat(factor))
	if payment.LessThanOrEqual(flat) {
		return flat, true, nil
	}
	return payment, false, nil
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
