// Package commission implements the commission computation engine: rule
// matching, payout calculation, appointment completion, and reporting
// aggregation. Everything in this package is a pure computation over its
// inputs; persistence of rules and records belongs to the caller.
package commission

import (
	"context"
	"time"
)

// BeneficiaryType identifies which staff role a rule pays.
type BeneficiaryType string

const (
	BeneficiaryProfessional BeneficiaryType = "professional"
	BeneficiarySeller       BeneficiaryType = "seller"
	BeneficiaryReception    BeneficiaryType = "reception"
)

// CalculationType determines how a rule's value is interpreted.
type CalculationType string

const (
	CalculationPercentage CalculationType = "percentage" // value is 0-100, applied to the service value
	CalculationFixed      CalculationType = "fixed"      // value is an absolute currency amount
)

// CalculationUnit is the quantity basis for fixed-amount rules. Percentage
// rules ignore it entirely.
type CalculationUnit string

const (
	UnitAppointment CalculationUnit = "appointment"
	UnitMl          CalculationUnit = "ml"
	UnitArch        CalculationUnit = "arch"
	UnitSession     CalculationUnit = "session"
	UnitUnit        CalculationUnit = "unit"
)

// Status represents the lifecycle of a commission record. Paid is terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Selector is a match filter that either targets one specific value or
// matches any value. The zero Selector matches everything.
type Selector[T comparable] struct {
	value    T
	specific bool
}

// Any returns a selector that matches every value.
func Any[T comparable]() Selector[T] {
	return Selector[T]{}
}

// Only returns a selector that matches exactly v.
func Only[T comparable](v T) Selector[T] {
	return Selector[T]{value: v, specific: true}
}

// IsAny reports whether the selector matches every value.
func (s Selector[T]) IsAny() bool {
	return !s.specific
}

// Value returns the targeted value and whether the selector is specific.
func (s Selector[T]) Value() (T, bool) {
	return s.value, s.specific
}

// Matches reports whether v satisfies the selector.
func (s Selector[T]) Matches(v T) bool {
	return !s.specific || s.value == v
}

// Rule is one commission rule as seen by the engine. Rules never cross
// clinics. BeneficiaryID is nil when the rule applies to any member of the
// beneficiary category.
type Rule struct {
	ID            uint
	ClinicID      uint
	Beneficiary   BeneficiaryType
	BeneficiaryID *uint
	Professional  Selector[uint]
	Procedure     Selector[string]
	Day           Selector[time.Weekday]
	Type          CalculationType
	Unit          CalculationUnit
	Value         float64
	Priority      int
	Active        bool
}

// Specificity weights. A filter that pins down a single professional narrows
// the rule more than a procedure filter, which narrows more than a weekday
// filter.
const (
	priorityBase         = 1
	professionalSpecific = 20
	procedureSpecific    = 15
	daySpecific          = 10
	beneficiarySpecific  = 5
)

// Specificity scores how narrowly the rule's match filters pin down a single
// scenario. A fully wildcarded rule scores the base value; each specific
// filter adds its weight.
func (r Rule) Specificity() int {
	score := priorityBase
	if !r.Professional.IsAny() {
		score += professionalSpecific
	}
	if !r.Procedure.IsAny() {
		score += procedureSpecific
	}
	if !r.Day.IsAny() {
		score += daySpecific
	}
	if r.BeneficiaryID != nil {
		score += beneficiarySpecific
	}
	return score
}

// DefaultPriority returns the priority assigned to a rule when the operator
// does not set one explicitly: more specific rules outrank broader ones.
func DefaultPriority(r Rule) int {
	return r.Specificity()
}

// RuleSource supplies the active rule set for a clinic. The engine itself
// only consumes plain rule slices; this interface lets callers plug in any
// storage backend.
type RuleSource interface {
	ActiveRulesForClinic(ctx context.Context, clinicID uint) ([]Rule, error)
}
