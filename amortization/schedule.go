package amortization

import "github.com/shopspring/decimal"

// =============================================================================
// SCHEDULE BUILDER - Per-year aggregation of a monthly simulation
// =============================================================================

// scheduleBuilder accumulates monthly payments into YearSummary rows.
type scheduleBuilder struct {
	rows    []YearSummary
	current YearSummary
	month   int
}

func (b *scheduleBuilder) record(payment, interest, balance decimal.Decimal) {
	if b.month%MonthsPerYear == 0 {
		b.current = YearSummary{Year: b.month/MonthsPerYear + 1}
	}
	b.month++

	b.current.Payments = b.current.Payments.Add(payment)
	b.current.InterestPaid = b.current.InterestPaid.Add(decimal.Min(interest, payment))
	b.current.PrincipalPaid = b.current.PrincipalPaid.Add(decimal.Max(decimal.Zero, payment.Sub(interest)))
	b.current.EndingBalance = balance

	if b.month%MonthsPerYear == 0 {
		b.rows = append(b.rows, b.current)
	}
}

func (b *scheduleBuilder) finish() []YearSummary {
	if b.month%MonthsPerYear != 0 {
		b.rows = append(b.rows, b.current)
	}
	return b.rows
}

// standardSchedule replays the fixed payment month by month.
func standardSchedule(terms LoanTerms, payment decimal.Decimal) []YearSummary {
	rate := terms.MonthlyRate()
	balance := terms.Principal
	var b scheduleBuilder

	for m := 0; m < terms.NumPayments(); m++ {
		interest := balance.Mul(rate).Round(internalScale)
		balance = balance.Add(interest).Sub(payment)
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		b.record(payment, interest, balance)
	}
	return b.finish()
}
