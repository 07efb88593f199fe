/*
idr.go - Income-driven repayment simulation

PURPOSE:
  Sizes the monthly payment to income rather than to the loan, then replays
  the loan month by month until it is paid off or the forgiveness horizon is
  reached, whichever comes first.

ALGORITHM:
  1. discretionary = max(0, income - threshold)
  2. payment       = max(0, 0.10 * discretionary / 12)
  3. for each month up to H*12:
       balance += balance * r/12
       paid     = min(payment, balance)
       balance -= paid
       stop once balance == 0
  4. totalAmountPaid   = sum of actual payments
  5. totalInterestPaid = totalAmountPaid - (P - balanceAtForgiveness)
  6. payoffYears       = payoff month / 12, or H

NEGATIVE AMORTIZATION:
  When the payment never covers the monthly interest (including a zero
  payment), the balance only grows. The result is still valid; the flag
  NegativeAmortization tells the caller to render it distinctly.

SEE ALSO:
  - standard.go: fixed-payment variant
  - payoff.go: IncomeDrivenPayoff
*/
package amortization

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ComputeIncomeDrivenRepayment simulates IDR repayment of principal.
func ComputeIncomeDrivenRepayment(principal, annualRate, annualIncome, threshold decimal.Decimal, horizonYears int) (IncomeDrivenResult, error) {
	return IncomeDriven(IncomeDrivenTerms{
		Principal:    principal,
		AnnualRate:   annualRate,
		AnnualIncome: annualIncome,
		Threshold:    threshold,
		HorizonYears: horizonYears,
	})
}

// IncomeDriven simulates the given terms.
func IncomeDriven(terms IncomeDrivenTerms) (IncomeDrivenResult, error) {
	if err := terms.Validate(); err != nil {
		return IncomeDrivenResult{}, err
	}

	periods := terms.HorizonYears * MonthsPerYear
	rate := terms.AnnualRate.Div(months)

	growth := math.Pow(1+rate.InexactFloat64(), float64(periods))
	if !isFinite(growth) {
		return IncomeDrivenResult{}, &OverflowError{Operation: "balance growth over horizon"}
	}

	payment := terms.MonthlyPayment()
	result := IncomeDrivenResult{
		Terms:                terms,
		Discretionary:        terms.Discretionary(),
		MonthlyPayment:       payment,
		NegativeAmortization: payment.LessThanOrEqual(terms.Principal.Mul(rate)),
	}

	balance := terms.Principal
	paid := decimal.Zero
	var b scheduleBuilder

	for m := 1; m <= periods; m++ {
		interest := balance.Mul(rate).Round(internalScale)
		balance = balance.Add(interest)

		actual := decimal.Min(payment, balance)
		balance = balance.Sub(actual)
		paid = paid.Add(actual)
		b.record(actual, interest, balance)

		if balance.IsZero() {
			result.PaidOff = true
			result.PayoffMonths = m
			break
		}
	}

	if !result.PaidOff {
		result.PayoffMonths = periods
	}

	result.TotalAmountPaid = paid
	result.BalanceAtForgiveness = balance
	result.TotalInterestPaid = paid.Sub(terms.Principal.Sub(balance))
	result.PayoffYears = decimal.NewFromInt(int64(result.PayoffMonths)).Div(months)
	result.Schedule = b.finish()
	return result, nil
}

// Validate checks P > 0, r >= 0, income >= 0, T >= 0, 0 < H <= MaxYears.
func (t IncomeDrivenTerms) Validate() error {
	if !t.Principal.IsPositive() {
		return invalid("principal", t.Principal, "must be positive")
	}
	if t.AnnualRate.IsNegative() {
		return invalid("annual_rate", t.AnnualRate, "must not be negative")
	}
	if t.AnnualIncome.IsNegative() {
		return invalid("annual_income", t.AnnualIncome, "must not be negative")
	}
	if t.Threshold.IsNegative() {
		return invalid("threshold", t.Threshold, "must not be negative")
	}
	if t.HorizonYears <= 0 {
		return invalidInt("horizon_years", t.HorizonYears, "must be positive")
	}
	if t.HorizonYears > MaxYears {
		return invalidInt("horizon_years", t.HorizonYears, fmt.Sprintf("must not exceed %d", MaxYears))
	}
	return nil
}
