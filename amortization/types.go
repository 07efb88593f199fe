/*
Package amortization provides the loan repayment calculation engine.

PURPOSE:
  Deterministic replacements for the arithmetic that used to be delegated to a
  remote language model: fixed-payment amortization and an income-driven
  repayment (IDR) simulation with forgiveness after a fixed horizon.

KEY CONCEPTS IN THIS FILE (types.go):
  - LoanTerms: principal, annual rate, term in years
  - StandardRepaymentResult: fixed monthly payment and totals
  - IncomeDrivenTerms / IncomeDrivenResult: payment sized to income
  - YearSummary: per-year rows used by the results charts

DESIGN PRINCIPLES:
  1. Pure functions: no I/O, no shared state, safe to call concurrently
  2. Precision: currency is carried as decimal.Decimal and only rounded
     by the presentation layer
  3. Explicit failure: invalid or non-finite inputs return errors, never
     NaN or Inf

USAGE:
  res, err := amortization.ComputeStandardRepayment(
      decimal.NewFromInt(40000), decimal.RequireFromString("0.055"), 10)
  if amortization.IsUnavailable(err) {
      // render "unavailable"
  }

SEE ALSO:
  - standard.go: fixed-payment formula
  - idr.go: income-driven simulation
  - payoff.go: payoff age derivation
*/
package amortization

import "github.com/shopspring/decimal"

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MonthsPerYear is the number of payments per year.
	MonthsPerYear = 12

	// DefaultHorizonYears is the IDR forgiveness horizon.
	DefaultHorizonYears = 25

	// MaxYears bounds loan terms and IDR horizons. The simulations are
	// linear in it, and years*12 must not overflow.
	MaxYears = 100

	// internalScale bounds the digits carried by the monthly simulations.
	// Far below a cent, so it never shows up after presentation rounding.
	internalScale = 12
)

var (
	// DefaultThreshold is the poverty-line-derived discretionary income threshold.
	DefaultThreshold = decimal.NewFromInt(24000)

	// PaymentShare is the share of discretionary income paid under IDR.
	PaymentShare = decimal.RequireFromString("0.10")

	months = decimal.NewFromInt(MonthsPerYear)
)

// =============================================================================
// STANDARD REPAYMENT
// =============================================================================

// LoanTerms is the immutable input to a standard repayment calculation.
type LoanTerms struct {
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal // decimal, e.g. 0.055
	TermYears  int
}

// NumPayments returns the number of monthly payments over the term.
func (t LoanTerms) NumPayments() int {
	return t.TermYears * MonthsPerYear
}

// MonthlyRate returns the periodic rate r/12.
func (t LoanTerms) MonthlyRate() decimal.Decimal {
	return t.AnnualRate.Div(months)
}

// StandardRepaymentResult is the outcome of a fixed-payment amortization.
type StandardRepaymentResult struct {
	Terms             LoanTerms
	MonthlyPayment    decimal.Decimal
	TotalAmountPaid   decimal.Decimal
	TotalInterestPaid decimal.Decimal
	NumPayments       int
	Schedule          []YearSummary
}

// =============================================================================
// INCOME-DRIVEN REPAYMENT
// =============================================================================

// IncomeDrivenTerms is the immutable input to an IDR calculation.
// Income is gross annual income; take-home is deliberately not used.
type IncomeDrivenTerms struct {
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal
	AnnualIncome decimal.Decimal
	Threshold    decimal.Decimal
	HorizonYears int
}

// Discretionary returns max(0, income - threshold).
func (t IncomeDrivenTerms) Discretionary() decimal.Decimal {
	return decimal.Max(decimal.Zero, t.AnnualIncome.Sub(t.Threshold))
}

// MonthlyPayment returns 10% of discretionary income spread over twelve months.
func (t IncomeDrivenTerms) MonthlyPayment() decimal.Decimal {
	return decimal.Max(decimal.Zero, t.Discretionary().Mul(PaymentShare).Div(months))
}

// IncomeDrivenResult is the outcome of an IDR simulation.
type IncomeDrivenResult struct {
	Terms                IncomeDrivenTerms
	Discretionary        decimal.Decimal
	MonthlyPayment       decimal.Decimal
	TotalAmountPaid      decimal.Decimal
	TotalInterestPaid    decimal.Decimal
	BalanceAtForgiveness decimal.Decimal
	PayoffMonths         int             // months until the balance reached zero, or the horizon
	PayoffYears          decimal.Decimal // PayoffMonths / 12
	PaidOff              bool            // balance reached zero before forgiveness

	// NegativeAmortization is set when the payment never covers the monthly
	// interest, so the balance cannot decrease.
	NegativeAmortization bool
	Schedule             []YearSummary
}

// Forgiven returns the amount written off at the horizon.
func (r IncomeDrivenResult) Forgiven() decimal.Decimal {
	return r.BalanceAtForgiveness
}

// =============================================================================
// SCHEDULE
// =============================================================================

// YearSummary aggregates one year of a repayment schedule.
type YearSummary struct {
	Year          int // 1-based year of repayment
	Payments      decimal.Decimal
	PrincipalPaid decimal.Decimal
	InterestPaid  decimal.Decimal
	EndingBalance decimal.Decimal
}
