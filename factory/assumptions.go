/*
Package factory provides JSON to Go assumptions conversion.

PURPOSE:
  Converts a JSON assumptions file into projection.Assumptions, so the
  interest rate, repayment term, IDR threshold and tax rates can change
  without a rebuild. Omitted fields keep their defaults.

JSON SCHEMA:
  {
    "annual_rate": 0.055,
    "term_years": 10,
    "idr": {
      "threshold": 24000,
      "horizon_years": 25
    },
    "tax": {
      "federal_rate": 0.22,
      "fica_rate": 0.0765
    },
    "college": {
      "start_age": 18,
      "years": 4
    },
    "salary_growth_rate": 0.03
  }

USAGE:
  f := factory.NewAssumptionsFactory()

  a, err := f.ParseAssumptions(jsonString)
  a, err := f.LoadFile("./assumptions.json")

  // Serve the active values
  json.NewEncoder(w).Encode(f.ToJSON(a))

SEE ALSO:
  - projection/assumptions.go: Assumptions type and defaults
  - cmd/server/main.go: -assumptions flag
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-projection/projection"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// AssumptionsJSON is the JSON representation of the projection assumptions.
// Pointer fields are optional.
type AssumptionsJSON struct {
	AnnualRate       *decimal.Decimal `json:"annual_rate,omitempty"`
	TermYears        *int             `json:"term_years,omitempty"`
	IDR              *IDRJSON         `json:"idr,omitempty"`
	Tax              *TaxJSON         `json:"tax,omitempty"`
	College          *CollegeJSON     `json:"college,omitempty"`
	SalaryGrowthRate *decimal.Decimal `json:"salary_growth_rate,omitempty"`
}

// IDRJSON configures the income-driven plan.
type IDRJSON struct {
	Threshold    *decimal.Decimal `json:"threshold,omitempty"`
	HorizonYears *int             `json:"horizon_years,omitempty"`
}

// TaxJSON holds the flat federal and FICA rates. State rates come from the catalog.
type TaxJSON struct {
	FederalRate *decimal.Decimal `json:"federal_rate,omitempty"`
	FICARate    *decimal.Decimal `json:"fica_rate,omitempty"`
}

// CollegeJSON places college on the student's age axis.
type CollegeJSON struct {
	StartAge *int `json:"start_age,omitempty"`
	Years    *int `json:"years,omitempty"`
}

// =============================================================================
// ASSUMPTIONS FACTORY
// =============================================================================

// AssumptionsFactory converts JSON assumptions to projection.Assumptions.
type AssumptionsFactory struct {
	defaults projection.Assumptions
}

// NewAssumptionsFactory creates a factory that fills omitted fields from
// projection.DefaultAssumptions.
func NewAssumptionsFactory() *AssumptionsFactory {
	return &AssumptionsFactory{defaults: projection.DefaultAssumptions()}
}

// Defaults returns the values used for omitted fields.
func (f *AssumptionsFactory) Defaults() projection.Assumptions {
	return f.defaults
}

// ParseAssumptions parses a JSON string. Unknown fields are rejected so a
// misspelt key is not silently ignored.
func (f *AssumptionsFactory) ParseAssumptions(jsonStr string) (projection.Assumptions, error) {
	var aj AssumptionsJSON
	dec := json.NewDecoder(bytes.NewReader([]byte(jsonStr)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&aj); err != nil {
		return projection.Assumptions{}, fmt.Errorf("failed to parse assumptions JSON: %w", err)
	}

	return f.FromJSON(aj)
}

// LoadFile reads and parses an assumptions file.
func (f *AssumptionsFactory) LoadFile(path string) (projection.Assumptions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return projection.Assumptions{}, fmt.Errorf("failed to read assumptions file: %w", err)
	}
	return f.ParseAssumptions(string(raw))
}

// FromJSON overlays aj on the defaults and validates the result.
func (f *AssumptionsFactory) FromJSON(aj AssumptionsJSON) (projection.Assumptions, error) {
	a := f.defaults

	setDecimal(&a.AnnualRate, aj.AnnualRate)
	setInt(&a.TermYears, aj.TermYears)
	setDecimal(&a.SalaryGrowthRate, aj.SalaryGrowthRate)

	if aj.IDR != nil {
		setDecimal(&a.Threshold, aj.IDR.Threshold)
		setInt(&a.HorizonYears, aj.IDR.HorizonYears)
	}
	if aj.Tax != nil {
		setDecimal(&a.FederalRate, aj.Tax.FederalRate)
		setDecimal(&a.FICARate, aj.Tax.FICARate)
	}
	if aj.College != nil {
		setInt(&a.CollegeStartAge, aj.College.StartAge)
		setInt(&a.YearsOfCollege, aj.College.Years)
	}

	if err := a.Validate(); err != nil {
		return projection.Assumptions{}, err
	}
	return a, nil
}

// ToJSON converts Assumptions to their fully populated JSON form.
func (f *AssumptionsFactory) ToJSON(a projection.Assumptions) AssumptionsJSON {
	return AssumptionsJSON{
		AnnualRate: decimalPtr(a.AnnualRate),
		TermYears:  intPtr(a.TermYears),
		IDR: &IDRJSON{
			Threshold:    decimalPtr(a.Threshold),
			HorizonYears: intPtr(a.HorizonYears),
		},
		Tax: &TaxJSON{
			FederalRate: decimalPtr(a.FederalRate),
			FICARate:    decimalPtr(a.FICARate),
		},
		College: &CollegeJSON{
			StartAge: intPtr(a.CollegeStartAge),
			Years:    intPtr(a.YearsOfCollege),
		},
		SalaryGrowthRate: decimalPtr(a.SalaryGrowthRate),
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func intPtr(i int) *int { return &i }
