/*
errors.go - Error taxonomy for the calculation engine

PURPOSE:
  Two local, non-fatal conditions. Callers decline to render the affected
  projection field and show it as "unavailable" instead.

ERROR CATEGORIES:
  1. Invalid input - non-positive or negative parameters
  2. Numeric overflow - non-finite intermediate results

USAGE:
  if errors.Is(err, amortization.ErrInvalidInput) { ... }

  var inv *amortization.InvalidInputError
  if errors.As(err, &inv) {
      fmt.Println(inv.Field)
  }

SEE ALSO:
  - standard.go, idr.go: return these errors
  - projection/service.go: maps them to unavailable fields
*/
package amortization

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when a parameter violates its positivity or
	// non-negativity requirement.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNumericOverflow is returned when an intermediate result is not finite.
	ErrNumericOverflow = errors.New("numeric overflow")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError names the offending parameter.
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%s %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// OverflowError names the computation that stopped being finite.
type OverflowError struct {
	Operation string
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("numeric overflow in %s", e.Operation)
}

func (e *OverflowError) Unwrap() error {
	return ErrNumericOverflow
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsUnavailable returns true if the error means "cannot compute" rather than
// a failure of the hosting process.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNumericOverflow)
}

func invalid(field string, value fmt.Stringer, reason string) error {
	return &InvalidInputError{Field: field, Value: value.String(), Reason: reason}
}

func invalidInt(field string, value int, reason string) error {
	return &InvalidInputError{Field: field, Value: fmt.Sprint(value), Reason: reason}
}
