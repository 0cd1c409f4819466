package commission

import (
	"errors"
	"fmt"
)

// Input-contract violations. These indicate a caller bug, never a business
// condition, so the calculator fails fast instead of coercing.
var (
	ErrNonPositiveServiceValue = errors.New("service value must be positive")
	ErrNonPositiveQuantity     = errors.New("quantity must be positive")
	ErrUnknownCalculationType  = errors.New("unknown calculation type")
	ErrUnknownCalculationUnit  = errors.New("unknown calculation unit")
)

// ComputeAmount computes the commission owed under rule for one appointment.
// The result is in the same currency scale as serviceValue; no rounding is
// applied here so that multi-beneficiary splits do not compound rounding
// error. Rounding is a presentation concern.
//
// Percentage rules apply to the full service value and ignore quantity.
// Fixed rules pay a flat amount per appointment, or the amount times
// quantity for the per-unit calculation units.
func ComputeAmount(rule Rule, serviceValue float64, quantity int) (float64, error) {
	if serviceValue <= 0 {
		return 0, fmt.Errorf("%w: got %v", ErrNonPositiveServiceValue, serviceValue)
	}
	if quantity <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNonPositiveQuantity, quantity)
	}

	switch rule.Type {
	case CalculationPercentage:
		return serviceValue * rule.Value / 100, nil
	case CalculationFixed:
		switch rule.Unit {
		case UnitAppointment:
			return rule.Value, nil
		case UnitMl, UnitArch, UnitSession, UnitUnit:
			return rule.Value * float64(quantity), nil
		default:
			return 0, fmt.Errorf("%w: %q", ErrUnknownCalculationUnit, rule.Unit)
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCalculationType, rule.Type)
	}
}
