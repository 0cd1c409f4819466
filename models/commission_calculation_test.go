package models

import (
	"testing"
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommissionCalculation_StatusTransitions(t *testing.T) {
	calc := &CommissionCalculation{Status: commission.StatusPending}
	assert.True(t, calc.IsPending())
	assert.True(t, calc.CanBePaid())
	assert.True(t, calc.CanBeCancelled())

	paidAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	calc.MarkAsPaid(paidAt)
	assert.True(t, calc.IsPaid())
	require.NotNil(t, calc.PaidAt)
	assert.Equal(t, paidAt, *calc.PaidAt)

	// Paid is terminal
	assert.False(t, calc.CanBePaid())
	assert.False(t, calc.CanBeCancelled())
}

func TestCommissionCalculation_CancelledNeverComesBack(t *testing.T) {
	calc := &CommissionCalculation{Status: commission.StatusPending}

	cancelledAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	calc.MarkAsCancelled(cancelledAt)
	assert.True(t, calc.IsCancelled())
	require.NotNil(t, calc.CancelledAt)
	assert.Equal(t, cancelledAt, *calc.CancelledAt)

	assert.False(t, calc.CanBePaid())
	assert.False(t, calc.CanBeCancelled())
}

func TestCommissionCalculation_AsRecordSnapshotsRuleParameters(t *testing.T) {
	serviceDate := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	calc := &CommissionCalculation{
		AppointmentID:   42,
		ClinicID:        7,
		ProfessionalID:  3,
		BeneficiaryType: commission.BeneficiarySeller,
		BeneficiaryID:   5,
		Beneficiary:     StaffMember{FullName: "Ana Souza"},
		ProcedureCode:   "BOTOX-50",
		ServiceValue:    800,
		Quantity:        2,
		RuleID:          11,
		RuleType:        commission.CalculationFixed,
		RuleUnit:        commission.UnitMl,
		RuleValue:       15,
		Amount:          30,
		Status:          commission.StatusPending,
		ServiceDate:     serviceDate,
	}

	rec := calc.AsRecord()
	assert.Equal(t, uint(42), rec.AppointmentID)
	assert.Equal(t, commission.BeneficiarySeller, rec.Beneficiary)
	assert.Equal(t, uint(5), rec.BeneficiaryID)
	assert.Equal(t, "Ana Souza", rec.BeneficiaryName)
	assert.Equal(t, "BOTOX-50", rec.Procedure)
	assert.Equal(t, commission.CalculationFixed, rec.RuleType)
	assert.Equal(t, commission.UnitMl, rec.RuleUnit)
	assert.Equal(t, 15.0, rec.RuleValue)
	assert.Equal(t, 30.0, rec.Amount)
	assert.Equal(t, serviceDate, rec.Date)
}
