/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model from the external contract: the calculation request and
  result keep the camelCase field names the web client already sends and
  reads, while dataset records use the snake_case dataset file format.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  The domain carries decimal.Decimal end to end. Amounts are rounded to
  cents here and nowhere else.

UNAVAILABLE FIELDS:
  Pointer fields are null when the value could not be computed; the
  "unavailable" list says why.

SEE ALSO:
  - handlers.go: Uses these types
  - projection/result.go: Result type
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/loan-projection/amortization"
	"github.com/warp/loan-projection/catalog"
	"github.com/warp/loan-projection/projection"
	"github.com/warp/loan-projection/tax"
)

// =============================================================================
// CALCULATION
// =============================================================================

// CalculateRequest is the student profile submitted by the form.
type CalculateRequest struct {
	College            string          `json:"college"`
	Major              string          `json:"major"`
	State              string          `json:"state"`
	IsPrivateCollege   bool            `json:"isPrivateCollege"`
	Age                int             `json:"age"`
	CurrentSavings     decimal.Decimal `json:"currentSavings"`
	ExpectedLoanAmount decimal.Decimal `json:"expectedLoanAmount"`
	WorkDuringCollege  bool            `json:"workDuringCollege"`
	GraduateSchool     bool            `json:"graduateSchool"`
}

func (r CalculateRequest) toProfile() projection.Profile {
	return projection.Profile{
		College:            r.College,
		Major:              r.Major,
		State:              r.State,
		IsPrivateCollege:   r.IsPrivateCollege,
		Age:                r.Age,
		CurrentSavings:     r.CurrentSavings,
		ExpectedLoanAmount: r.ExpectedLoanAmount,
		WorkDuringCollege:  r.WorkDuringCollege,
		GraduateSchool:     r.GraduateSchool,
	}
}

// CalculationResultDTO is the projection shown on the results page.
type CalculationResultDTO struct {
	GraduationYear   int     `json:"graduationYear"`
	GraduationAge    int     `json:"graduationAge"`
	CollegeState     string  `json:"collegeState"`
	IsInState        bool    `json:"isInState"`
	TuitionPerYear   float64 `json:"tuitionPerYear"`
	TotalCollegeCost float64 `json:"totalCollegeCost"`
	TotalLoanAmount  float64 `json:"totalLoanAmount"`

	AverageSalary   *float64 `json:"averageSalary"`
	TakeHomeMonthly *float64 `json:"takeHomeMonthly"`

	MonthlyLoanPayment *float64 `json:"monthlyLoanPayment"`
	TotalAmountPaid    *float64 `json:"totalAmountPaid"`
	TotalInterestPaid  *float64 `json:"totalInterestPaid"`
	PayoffAge          *float64 `json:"payoffAge"`
	LoanTermYears      int      `json:"loanTermYears"`

	TaxBreakdown *TaxBreakdownDTO `json:"taxBreakdown"`
	Schedule     []YearDTO        `json:"schedule,omitempty"`
	IncomeDriven *IncomeDrivenDTO `json:"incomeDriven"`

	Unavailable []UnavailableDTO `json:"unavailable"`
	Metadata    MetadataDTO      `json:"metadata"`
}

// TaxBreakdownDTO holds annual tax amounts.
type TaxBreakdownDTO struct {
	Federal float64 `json:"federal"`
	State   float64 `json:"state"`
	FICA    float64 `json:"fica"`
}

// MetadataDTO describes where the numbers came from.
type MetadataDTO struct {
	CollegeName string   `json:"collegeName"`
	Major       string   `json:"major"`
	Confidence  string   `json:"confidence"`
	Assumptions string   `json:"assumptions"`
	Notes       []string `json:"notes,omitempty"`
}

// UnavailableDTO names a field that could not be computed.
type UnavailableDTO struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func toCalculationResultDTO(res *projection.Result, termYears int) CalculationResultDTO {
	dto := CalculationResultDTO{
		GraduationYear:   res.GraduationYear,
		GraduationAge:    res.GraduationAge,
		CollegeState:     res.CollegeState,
		IsInState:        res.IsInState,
		TuitionPerYear:   money(res.TuitionPerYear),
		TotalCollegeCost: money(res.TotalCollegeCost),
		TotalLoanAmount:  money(res.TotalLoanAmount),
		LoanTermYears:    termYears,
		Unavailable:      make([]UnavailableDTO, 0, len(res.Unavailable)),
		Metadata: MetadataDTO{
			CollegeName: res.Metadata.CollegeName,
			Major:       res.Metadata.Major,
			Confidence:  string(res.Metadata.Confidence),
			Assumptions: res.Metadata.Assumptions,
			Notes:       res.Metadata.Notes,
		},
	}

	if res.Salary != nil {
		dto.AverageSalary = moneyPtr(res.Salary.Amount)
	}
	if res.Tax != nil {
		dto.TakeHomeMonthly = moneyPtr(res.Tax.TakeHomeMonthly)
		dto.TaxBreakdown = toTaxBreakdownDTO(*res.Tax)
	}
	if res.Standard != nil {
		dto.MonthlyLoanPayment = moneyPtr(res.Standard.MonthlyPayment)
		dto.TotalAmountPaid = moneyPtr(res.Standard.TotalAmountPaid)
		dto.TotalInterestPaid = moneyPtr(res.Standard.TotalInterestPaid)
		dto.PayoffAge = moneyPtr(res.StandardPayoff.PayoffAge)
		dto.LoanTermYears = res.Standard.Terms.TermYears
		dto.Schedule = toYearDTOs(res.Standard.Schedule)
	}
	if res.IncomeDriven != nil {
		idr := toIncomeDrivenDTO(*res.IncomeDriven, res.IncomeDrivenPayoff)
		dto.IncomeDriven = &idr
	}
	for _, u := range res.Unavailable {
		dto.Unavailable = append(dto.Unavailable, UnavailableDTO{Field: u.Field, Reason: u.Reason})
	}
	return dto
}

func toTaxBreakdownDTO(b tax.Breakdown) *TaxBreakdownDTO {
	return &TaxBreakdownDTO{
		Federal: money(b.FederalTax),
		State:   money(b.StateTax),
		FICA:    money(b.FICATax),
	}
}

// =============================================================================
// REPAYMENT
// =============================================================================

// StandardRequest is a direct standard amortization request.
type StandardRequest struct {
	Principal   decimal.Decimal `json:"principal"`
	AnnualRate  decimal.Decimal `json:"annualRate"`
	TermYears   int             `json:"termYears"`
	StartingAge *int            `json:"startingAge,omitempty"`
}

// StandardDTO is a standard repayment result.
type StandardDTO struct {
	MonthlyPayment    float64   `json:"monthlyPayment"`
	TotalAmountPaid   float64   `json:"totalAmountPaid"`
	TotalInterestPaid float64   `json:"totalInterestPaid"`
	NumPayments       int       `json:"numPayments"`
	PayoffAge         *float64  `json:"payoffAge,omitempty"`
	Schedule          []YearDTO `json:"schedule"`
}

func toStandardDTO(r amortization.StandardRepaymentResult, payoff *amortization.PayoffProjection) StandardDTO {
	dto := StandardDTO{
		MonthlyPayment:    money(r.MonthlyPayment),
		TotalAmountPaid:   money(r.TotalAmountPaid),
		TotalInterestPaid: money(r.TotalInterestPaid),
		NumPayments:       r.NumPayments,
		Schedule:          toYearDTOs(r.Schedule),
	}
	if payoff != nil {
		dto.PayoffAge = moneyPtr(payoff.PayoffAge)
	}
	return dto
}

// IncomeDrivenRequest is a direct IDR request. Threshold and horizon
// default to the active assumptions.
type IncomeDrivenRequest struct {
	Principal    decimal.Decimal  `json:"principal"`
	AnnualRate   decimal.Decimal  `json:"annualRate"`
	AnnualIncome decimal.Decimal  `json:"annualIncome"`
	Threshold    *decimal.Decimal `json:"threshold,omitempty"`
	HorizonYears *int             `json:"horizonYears,omitempty"`
	StartingAge  *int             `json:"startingAge,omitempty"`
}

// IncomeDrivenDTO is an IDR result.
type IncomeDrivenDTO struct {
	MonthlyPayment       float64   `json:"monthlyPayment"`
	DiscretionaryIncome  float64   `json:"discretionaryIncome"`
	TotalAmountPaid      float64   `json:"totalAmountPaid"`
	TotalInterestPaid    float64   `json:"totalInterestPaid"`
	BalanceAtForgiveness float64   `json:"balanceAtForgiveness"`
	PayoffYears          float64   `json:"payoffYears"`
	PayoffAge            *float64  `json:"payoffAge,omitempty"`
	PaidOff              bool      `json:"paidOff"`
	Forgiven             bool      `json:"forgiven"`
	NegativeAmortization bool      `json:"negativeAmortization"`
	Schedule             []YearDTO `json:"schedule"`
}

func toIncomeDrivenDTO(r amortization.IncomeDrivenResult, payoff *amortization.PayoffProjection) IncomeDrivenDTO {
	dto := IncomeDrivenDTO{
		MonthlyPayment:       money(r.MonthlyPayment),
		DiscretionaryIncome:  money(r.Discretionary),
		TotalAmountPaid:      money(r.TotalAmountPaid),
		TotalInterestPaid:    money(r.TotalInterestPaid),
		BalanceAtForgiveness: money(r.BalanceAtForgiveness),
		PayoffYears:          money(r.PayoffYears),
		PaidOff:              r.PaidOff,
		NegativeAmortization: r.NegativeAmortization,
		Schedule:             toYearDTOs(r.Schedule),
	}
	if payoff != nil {
		dto.PayoffAge = moneyPtr(payoff.PayoffAge)
		dto.Forgiven = payoff.Forgiven
	}
	return dto
}

// YearDTO is one row of a repayment chart.
type YearDTO struct {
	Year          int     `json:"year"`
	Payments      float64 `json:"payments"`
	PrincipalPaid float64 `json:"principalPaid"`
	InterestPaid  float64 `json:"interestPaid"`
	EndingBalance float64 `json:"endingBalance"`
}

func toYearDTOs(rows []amortization.YearSummary) []YearDTO {
	dtos := make([]YearDTO, len(rows))
	for i, y := range rows {
		dtos[i] = YearDTO{
			Year:          y.Year,
			Payments:      money(y.Payments),
			PrincipalPaid: money(y.PrincipalPaid),
			InterestPaid:  money(y.InterestPaid),
			EndingBalance: money(y.EndingBalance),
		}
	}
	return dtos
}

// =============================================================================
// TAX
// =============================================================================

// TaxEstimateRequest estimates take-home pay. Explicit rates override the
// configured federal/FICA rates and the state's catalog rate.
type TaxEstimateRequest struct {
	Salary      decimal.Decimal  `json:"salary"`
	State       string           `json:"state,omitempty"`
	FederalRate *decimal.Decimal `json:"federalRate,omitempty"`
	StateRate   *decimal.Decimal `json:"stateRate,omitempty"`
	FICARate    *decimal.Decimal `json:"ficaRate,omitempty"`
}

// TaxEstimateDTO is a take-home estimate.
type TaxEstimateDTO struct {
	Salary          float64         `json:"salary"`
	TakeHomeAnnual  float64         `json:"takeHomeAnnual"`
	TakeHomeMonthly float64         `json:"takeHomeMonthly"`
	TaxBreakdown    TaxBreakdownDTO `json:"taxBreakdown"`
	Rates           TaxRatesDTO     `json:"rates"`
}

// TaxRatesDTO echoes the rates applied.
type TaxRatesDTO struct {
	Federal float64 `json:"federal"`
	State   float64 `json:"state"`
	FICA    float64 `json:"fica"`
}

func toTaxEstimateDTO(b tax.Breakdown) TaxEstimateDTO {
	return TaxEstimateDTO{
		Salary:          money(b.Gross),
		TakeHomeAnnual:  money(b.TakeHomeAnnual),
		TakeHomeMonthly: money(b.TakeHomeMonthly),
		TaxBreakdown:    *toTaxBreakdownDTO(b),
		Rates: TaxRatesDTO{
			Federal: b.Rates.Federal.InexactFloat64(),
			State:   b.Rates.State.InexactFloat64(),
			FICA:    b.Rates.FICA.InexactFloat64(),
		},
	}
}

// =============================================================================
// CATALOG
// =============================================================================

// StateDTO is a state with its tax rate, if one is recorded.
type StateDTO struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	TaxRate *float64 `json:"taxRate"`
}

// DatasetsDTO lists the embedded datasets and the one last loaded.
type DatasetsDTO struct {
	Current  string                `json:"current,omitempty"`
	Datasets []catalog.DatasetInfo `json:"datasets"`
}

// LoadDatasetRequest names an embedded dataset or carries a full one.
type LoadDatasetRequest struct {
	Name    string           `json:"name,omitempty"`
	Dataset *catalog.Dataset `json:"dataset,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details any               `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// money rounds to cents for presentation.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func moneyPtr(d decimal.Decimal) *float64 {
	f := money(d)
	return &f
}
