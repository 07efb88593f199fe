package amortization

import "github.com/shopspring/decimal"

// PayoffProjection places the end of repayment on the borrower's age axis.
type PayoffProjection struct {
	StartingAge int
	Years       decimal.Decimal // years of repayment
	PayoffAge   decimal.Decimal
	Forgiven    bool // IDR balance written off at the horizon
}

// StandardPayoff returns startingAge + term.
func StandardPayoff(startingAge int, r StandardRepaymentResult) (PayoffProjection, error) {
	if startingAge < 0 {
		return PayoffProjection{}, invalidInt("starting_age", startingAge, "must not be negative")
	}
	years := decimal.NewFromInt(int64(r.Terms.TermYears))
	return PayoffProjection{
		StartingAge: startingAge,
		Years:       years,
		PayoffAge:   years.Add(decimal.NewFromInt(int64(startingAge))),
	}, nil
}

// IncomeDrivenPayoff returns startingAge + payoff years, capped at the horizon.
func IncomeDrivenPayoff(startingAge int, r IncomeDrivenResult) (PayoffProjection, error) {
	if startingAge < 0 {
		return PayoffProjection{}, invalidInt("starting_age", startingAge, "must not be negative")
	}
	years := decimal.Min(r.PayoffYears, decimal.NewFromInt(int64(r.Terms.HorizonYears)))
	return PayoffProjection{
		StartingAge: startingAge,
		Years:       years,
		PayoffAge:   years.Add(decimal.NewFromInt(int64(startingAge))),
		Forgiven:    !r.PaidOff && r.BalanceAtForgiveness.IsPositive(),
	}, nil
}
