package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-projection/tax"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEstimate_FlatRates(t *testing.T) {
	// GIVEN: $60,000 with 22% federal, 5% state, 7.65% FICA
	b, err := tax.Estimate(d("60000"), tax.DefaultRates(d("0.05")))
	require.NoError(t, err)

	// THEN: 34.65% goes to tax
	assert.True(t, b.FederalTax.Equal(d("13200")))
	assert.True(t, b.StateTax.Equal(d("3000")))
	assert.True(t, b.FICATax.Equal(d("4590")))
	assert.True(t, b.TotalTax().Equal(d("20790")))
	assert.True(t, b.TakeHomeAnnual.Equal(d("39210")))
	assert.True(t, b.TakeHomeMonthly.Equal(d("3267.5")), "got %s", b.TakeHomeMonthly)
}

func TestEstimate_NoStateTax(t *testing.T) {
	b, err := tax.Estimate(d("48000"), tax.DefaultRates(decimal.Zero))
	require.NoError(t, err)

	assert.True(t, b.StateTax.IsZero())
	assert.InDelta(t, 48000*(1-0.22-0.0765)/12, b.TakeHomeMonthly.InexactFloat64(), 0.0001)
}

func TestEstimate_ZeroSalary(t *testing.T) {
	b, err := tax.Estimate(decimal.Zero, tax.DefaultRates(d("0.04")))
	require.NoError(t, err)
	assert.True(t, b.TakeHomeMonthly.IsZero())
}

func TestEstimate_Invalid(t *testing.T) {
	_, err := tax.Estimate(d("-1"), tax.DefaultRates(decimal.Zero))
	assert.ErrorIs(t, err, tax.ErrInvalidSalary)

	_, err = tax.Estimate(d("50000"), tax.Rates{Federal: d("-0.1"), State: decimal.Zero, FICA: decimal.Zero})
	assert.ErrorIs(t, err, tax.ErrInvalidRates)

	_, err = tax.Estimate(d("50000"), tax.Rates{Federal: d("0.5"), State: d("0.3"), FICA: d("0.2")})
	assert.ErrorIs(t, err, tax.ErrInvalidRates)
}
