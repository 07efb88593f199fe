/*
Package projection builds a student's financial projection.

PURPOSE:
  Turns a Profile (college, major, home state, savings) into a Result:
  tuition, loan, starting salary, take-home pay and two repayment plans.
  The catalog supplies the inputs; the amortization and tax packages do
  all of the arithmetic.

PIPELINE (Projector.Project):
  1. college lookup                  (ErrCollegeNotFound if absent)
  2. tuition: in-state iff home state == college state
  3. loan: expected amount, or max(0, cost - savings)
  4. graduation year and age
  5. salary for (major, college state), else national, grown to graduation
  6. take-home pay with the college state's tax rate
  7. standard and income-driven plans
  8. Result.Validate

UNAVAILABLE FIELDS:
  Missing salary data and engine InvalidInput/NumericOverflow conditions do
  not fail the projection. The affected field is left nil and listed in
  Result.Unavailable with a reason.

SEE ALSO:
  - profile.go: input validation
  - assumptions.go: fixed parameters
  - result.go: output invariants
*/
package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/loan-projection/amortization"
	"github.com/warp/loan-projection/catalog"
	"github.com/warp/loan-projection/tax"
)

// Projector builds projections from a catalog and a set of assumptions.
// It holds no per-request state and is safe for concurrent use.
type Projector struct {
	Catalog     catalog.Catalog
	Assumptions Assumptions
	Now         func() time.Time
	Logger      *zap.Logger
}

// NewProjector returns a Projector using the wall clock.
func NewProjector(c catalog.Catalog, a Assumptions, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{Catalog: c, Assumptions: a, Now: time.Now, Logger: logger}
}

// Project builds the projection for profile.
func (p *Projector) Project(ctx context.Context, profile Profile) (*Result, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	a := p.Assumptions

	// 1-2. College and tuition
	college, err := p.Catalog.GetCollege(ctx, profile.College)
	if err != nil {
		return nil, fmt.Errorf("lookup college: %w", err)
	}
	if college == nil {
		return nil, fmt.Errorf("%w: %s", catalog.ErrCollegeNotFound, profile.College)
	}

	tuition, inState := college.TuitionFor(profile.State)
	cost := tuition.Mul(decimal.NewFromInt(int64(a.YearsOfCollege)))

	// 3. Loan
	loan := profile.ExpectedLoanAmount
	if !loan.IsPositive() {
		loan = decimal.Max(decimal.Zero, cost.Sub(profile.CurrentSavings))
	}

	// 4. Graduation
	gradYear, gradAge := a.Graduation(p.now().Year(), profile.Age)

	res := &Result{
		Profile:          profile,
		GraduationYear:   gradYear,
		GraduationAge:    gradAge,
		CollegeState:     college.State,
		CollegePrivate:   college.Private,
		IsInState:        inState,
		TuitionPerYear:   tuition,
		YearsOfCollege:   a.YearsOfCollege,
		TotalCollegeCost: cost,
		TotalLoanAmount:  loan,
		Metadata: Metadata{
			CollegeName: college.Name,
			Major:       profile.Major,
		},
	}
	if profile.IsPrivateCollege != college.Private {
		res.Metadata.Notes = append(res.Metadata.Notes,
			fmt.Sprintf("%s is listed as %s; its recorded tuition was used", college.Name, sector(college.Private)))
	}

	// 5. Salary
	if err := p.projectSalary(ctx, res, college.State, gradYear); err != nil {
		return nil, err
	}

	// 6. Tax
	stateRate, err := p.stateRate(ctx, res, college.State)
	if err != nil {
		return nil, err
	}
	res.Metadata.Assumptions = a.Describe(college.State, stateRate)

	if res.Salary != nil {
		breakdown, err := tax.Estimate(res.Salary.Amount, a.Rates(stateRate))
		if err != nil {
			res.markUnavailable(FieldTax, err.Error())
		} else {
			res.Tax = &breakdown
		}
	} else {
		res.markUnavailable(FieldTax, "no salary data")
	}

	// 7. Repayment plans
	if err := p.projectPlans(res); err != nil {
		return nil, err
	}

	// 8. Boundary check
	if err := res.Validate(); err != nil {
		return nil, err
	}

	p.logger().Debug("projection built",
		zap.String("college", college.Name),
		zap.String("major", profile.Major),
		zap.String("loan", loan.StringFixed(2)),
		zap.String("confidence", string(res.Metadata.Confidence)),
		zap.Int("unavailable", len(res.Unavailable)),
	)
	return res, nil
}

func (p *Projector) projectSalary(ctx context.Context, res *Result, state string, gradYear int) error {
	sal, err := catalog.LookupSalary(ctx, p.Catalog, res.Profile.Major, state)
	if err != nil {
		return fmt.Errorf("lookup salary: %w", err)
	}
	if sal == nil {
		res.Metadata.Confidence = ConfidenceLow
		res.markUnavailable(FieldSalary, fmt.Sprintf("no salary data for %q", res.Profile.Major))
		return nil
	}

	res.Metadata.Confidence = ConfidenceHigh
	if sal.IsNational() {
		res.Metadata.Confidence = ConfidenceMedium
		res.Metadata.Notes = append(res.Metadata.Notes,
			fmt.Sprintf("no %s salary data for %s; national average used", state, sal.Major))
	}

	res.Salary = &SalaryEstimate{
		Amount:   p.grow(sal.AverageStartingSalary, sal.DataYear, gradYear),
		Base:     sal.AverageStartingSalary,
		DataYear: sal.DataYear,
		State:    sal.State,
	}
	return nil
}

// grow applies the salary growth rate for each year between the data year
// and the graduation year.
func (p *Projector) grow(amount decimal.Decimal, dataYear, gradYear int) decimal.Decimal {
	years := gradYear - dataYear
	if dataYear == 0 || years <= 0 || !p.Assumptions.SalaryGrowthRate.IsPositive() {
		return amount
	}
	factor := decimal.NewFromInt(1).Add(p.Assumptions.SalaryGrowthRate).Pow(decimal.NewFromInt(int64(years)))
	return amount.Mul(factor)
}

// stateRate returns the college state's tax rate, or zero with a note when
// the catalog has none.
func (p *Projector) stateRate(ctx context.Context, res *Result, state string) (decimal.Decimal, error) {
	t, err := p.Catalog.GetStateTax(ctx, state)
	if err != nil {
		return decimal.Zero, fmt.Errorf("lookup state tax: %w", err)
	}
	if t == nil {
		res.Metadata.Notes = append(res.Metadata.Notes,
			fmt.Sprintf("no tax rate recorded for %s; state tax assumed zero", state))
		return decimal.Zero, nil
	}
	return t.Rate, nil
}

func (p *Projector) projectPlans(res *Result) error {
	a := p.Assumptions

	if !res.TotalLoanAmount.IsPositive() {
		res.markUnavailable(FieldStandard, "no loan required")
		res.markUnavailable(FieldIncomeDriven, "no loan required")
		return nil
	}

	std, err := amortization.ComputeStandardRepayment(res.TotalLoanAmount, a.AnnualRate, a.TermYears)
	switch {
	case amortization.IsUnavailable(err):
		res.markUnavailable(FieldStandard, err.Error())
	case err != nil:
		return err
	default:
		payoff, err := amortization.StandardPayoff(res.GraduationAge, std)
		if err != nil {
			return err
		}
		res.Standard = &std
		res.StandardPayoff = &payoff
	}

	if res.Salary == nil {
		res.markUnavailable(FieldIncomeDriven, "no salary data")
		return nil
	}

	// Gross salary is the income basis, not take-home pay.
	idr, err := amortization.ComputeIncomeDrivenRepayment(res.TotalLoanAmount, a.AnnualRate, res.Salary.Amount, a.Threshold, a.HorizonYears)
	switch {
	case amortization.IsUnavailable(err):
		res.markUnavailable(FieldIncomeDriven, err.Error())
	case err != nil:
		return err
	default:
		payoff, err := amortization.IncomeDrivenPayoff(res.GraduationAge, idr)
		if err != nil {
			return err
		}
		res.IncomeDriven = &idr
		res.IncomeDrivenPayoff = &payoff
	}
	return nil
}

func (p *Projector) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Projector) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func sector(private bool) string {
	if private {
		return "private"
	}
	return "public"
}
