/*
Package tax estimates take-home pay from gross salary.

PURPOSE:
  Three independent flat rates (federal, state, FICA) applied to gross annual
  salary. No brackets, no deductions.

    takeHomeMonthly = salary * (1 - federal - state - fica) / 12

  Income-driven repayment keeps using gross salary, not this figure.

SEE ALSO:
  - projection/service.go: builds Rates from assumptions and the catalog
*/
package tax

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// DefaultFederalRate is the flat federal rate used when none is configured.
	DefaultFederalRate = decimal.RequireFromString("0.22")

	// DefaultFICARate is Social Security plus Medicare.
	DefaultFICARate = decimal.RequireFromString("0.0765")

	months = decimal.NewFromInt(12)
)

var (
	// ErrInvalidRates is returned when a rate is outside [0, 1) or the rates sum to 1 or more.
	ErrInvalidRates = errors.New("invalid tax rates")

	// ErrInvalidSalary is returned for negative salaries.
	ErrInvalidSalary = errors.New("invalid salary")
)

// Rates are flat effective rates expressed as decimals.
type Rates struct {
	Federal decimal.Decimal
	State   decimal.Decimal
	FICA    decimal.Decimal
}

// DefaultRates returns the federal and FICA defaults with the given state rate.
func DefaultRates(state decimal.Decimal) Rates {
	return Rates{Federal: DefaultFederalRate, State: state, FICA: DefaultFICARate}
}

// Total returns federal + state + fica.
func (r Rates) Total() decimal.Decimal {
	return r.Federal.Add(r.State).Add(r.FICA)
}

// Validate checks each rate and their sum.
func (r Rates) Validate() error {
	named := []struct {
		name string
		rate decimal.Decimal
	}{{"federal", r.Federal}, {"state", r.State}, {"fica", r.FICA}}

	for _, n := range named {
		if n.rate.IsNegative() || n.rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: %s rate %s", ErrInvalidRates, n.name, n.rate)
		}
	}
	if r.Total().GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: combined rate %s", ErrInvalidRates, r.Total())
	}
	return nil
}

// Breakdown is the annual tax split and resulting take-home pay.
type Breakdown struct {
	Rates           Rates
	Gross           decimal.Decimal
	FederalTax      decimal.Decimal
	StateTax        decimal.Decimal
	FICATax         decimal.Decimal
	TakeHomeAnnual  decimal.Decimal
	TakeHomeMonthly decimal.Decimal
}

// TotalTax returns the sum of the three annual taxes.
func (b Breakdown) TotalTax() decimal.Decimal {
	return b.FederalTax.Add(b.StateTax).Add(b.FICATax)
}

// Estimate applies rates to gross annual salary.
func Estimate(salary decimal.Decimal, rates Rates) (Breakdown, error) {
	if salary.IsNegative() {
		return Breakdown{}, fmt.Errorf("%w: %s", ErrInvalidSalary, salary)
	}
	if err := rates.Validate(); err != nil {
		return Breakdown{}, err
	}

	annual := salary.Mul(decimal.NewFromInt(1).Sub(rates.Total()))
	return Breakdown{
		Rates:           rates,
		Gross:           salary,
		FederalTax:      salary.Mul(rates.Federal),
		StateTax:        salary.Mul(rates.State),
		FICATax:         salary.Mul(rates.FICA),
		TakeHomeAnnual:  annual,
		TakeHomeMonthly: annual.Div(months),
	}, nil
}
