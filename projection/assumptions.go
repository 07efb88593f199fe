package projection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/warp/loan-projection/amortization"
	"github.com/warp/loan-projection/tax"
)

// ErrInvalidAssumptions is returned by Assumptions.Validate.
var ErrInvalidAssumptions = errors.New("invalid assumptions")

// Assumptions are the fixed parameters of every projection.
type Assumptions struct {
	AnnualRate   decimal.Decimal
	TermYears    int
	Threshold    decimal.Decimal
	HorizonYears int

	FederalRate decimal.Decimal
	FICARate    decimal.Decimal

	CollegeStartAge int
	YearsOfCollege  int

	// SalaryGrowthRate grows a salary from its data year to the graduation year.
	SalaryGrowthRate decimal.Decimal
}

// DefaultAssumptions returns 5.5% over ten years, the $24,000 IDR threshold
// with 25-year forgiveness, flat 22% federal and 7.65% FICA, and four years
// of college starting at 18.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		AnnualRate:       decimal.RequireFromString("0.055"),
		TermYears:        10,
		Threshold:        amortization.DefaultThreshold,
		HorizonYears:     amortization.DefaultHorizonYears,
		FederalRate:      tax.DefaultFederalRate,
		FICARate:         tax.DefaultFICARate,
		CollegeStartAge:  18,
		YearsOfCollege:   4,
		SalaryGrowthRate: decimal.RequireFromString("0.03"),
	}
}

// Validate rejects assumptions no projection could be built from.
func (a Assumptions) Validate() error {
	one := decimal.NewFromInt(1)
	switch {
	case a.AnnualRate.IsNegative():
		return fmt.Errorf("%w: annual rate must not be negative", ErrInvalidAssumptions)
	case a.TermYears <= 0 || a.TermYears > amortization.MaxYears:
		return fmt.Errorf("%w: term must be between 1 and %d years", ErrInvalidAssumptions, amortization.MaxYears)
	case a.Threshold.IsNegative():
		return fmt.Errorf("%w: threshold must not be negative", ErrInvalidAssumptions)
	case a.HorizonYears <= 0 || a.HorizonYears > amortization.MaxYears:
		return fmt.Errorf("%w: horizon must be between 1 and %d years", ErrInvalidAssumptions, amortization.MaxYears)
	case a.CollegeStartAge <= 0 || a.YearsOfCollege <= 0:
		return fmt.Errorf("%w: college start age and years of college must be positive", ErrInvalidAssumptions)
	case a.SalaryGrowthRate.IsNegative() || a.SalaryGrowthRate.GreaterThanOrEqual(one):
		return fmt.Errorf("%w: salary growth must be in [0, 1)", ErrInvalidAssumptions)
	}

	// State rate is unknown here; zero checks federal and FICA alone.
	if err := a.Rates(decimal.Zero).Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAssumptions, err)
	}
	return nil
}

// Rates combines the federal and FICA assumptions with a state rate.
func (a Assumptions) Rates(state decimal.Decimal) tax.Rates {
	return tax.Rates{Federal: a.FederalRate, State: state, FICA: a.FICARate}
}

// GraduationAge is the age at which a student who starts on time graduates.
func (a Assumptions) GraduationAge() int {
	return a.CollegeStartAge + a.YearsOfCollege
}

// Graduation returns the graduation year and age for a student of the given
// age in currentYear. Students past the usual graduation age are assumed to
// start now.
func (a Assumptions) Graduation(currentYear, age int) (year, gradAge int) {
	if age <= a.GraduationAge() {
		return currentYear + a.GraduationAge() - age, a.GraduationAge()
	}
	return currentYear + a.YearsOfCollege, age + a.YearsOfCollege
}

// Describe renders the assumptions as one sentence for result metadata.
func (a Assumptions) Describe(stateCode string, stateRate decimal.Decimal) string {
	p := message.NewPrinter(language.AmericanEnglish)
	parts := []string{
		fmt.Sprintf("%s%% fixed interest over %d years", percent(a.AnnualRate), a.TermYears),
		p.Sprintf("income-driven plan pays %s%% of income above $%d for up to %d years",
			percent(amortization.PaymentShare), a.Threshold.Round(0).IntPart(), a.HorizonYears),
		fmt.Sprintf("flat taxes of %s%% federal, %s%% FICA and %s%% %s state",
			percent(a.FederalRate), percent(a.FICARate), percent(stateRate), stateCode),
		fmt.Sprintf("%d years of college starting at %d", a.YearsOfCollege, a.CollegeStartAge),
	}
	if a.SalaryGrowthRate.IsPositive() {
		parts = append(parts, fmt.Sprintf("salaries grow %s%% per year", percent(a.SalaryGrowthRate)))
	}
	return strings.Join(parts, "; ")
}

func percent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).String()
}
