package models

import (
	"testing"
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/stretchr/testify/assert"
)

func TestCommissionRule_AsRuleNullColumnsMatchAnything(t *testing.T) {
	rule := &CommissionRule{
		ID:              9,
		ClinicID:        2,
		BeneficiaryType: commission.BeneficiaryProfessional,
		CalculationType: commission.CalculationPercentage,
		CalculationUnit: commission.UnitAppointment,
		Value:           10,
		Priority:        3,
		IsActive:        utils.ToPtr(true),
	}

	engineRule := rule.AsRule()
	assert.True(t, engineRule.Professional.IsAny())
	assert.True(t, engineRule.Procedure.IsAny())
	assert.True(t, engineRule.Day.IsAny())
	assert.True(t, engineRule.Active)
	assert.Equal(t, uint(9), engineRule.ID)
	assert.Equal(t, 3, engineRule.Priority)
}

func TestCommissionRule_AsRuleTranslatesFilters(t *testing.T) {
	rule := &CommissionRule{
		ClinicID:        2,
		BeneficiaryType: commission.BeneficiarySeller,
		BeneficiaryID:   utils.ToPtr(uint(14)),
		ProfessionalID:  utils.ToPtr(uint(4)),
		ProcedureCode:   utils.ToPtr("CLEAN-01"),
		DayOfWeek:       utils.ToPtr(int(time.Saturday)),
		CalculationType: commission.CalculationFixed,
		CalculationUnit: commission.UnitSession,
		Value:           50,
		IsActive:        utils.ToPtr(true),
	}

	engineRule := rule.AsRule()
	assert.True(t, engineRule.Professional.Matches(4))
	assert.False(t, engineRule.Professional.Matches(5))
	assert.True(t, engineRule.Procedure.Matches("CLEAN-01"))
	assert.False(t, engineRule.Procedure.Matches("CLEAN-02"))
	assert.True(t, engineRule.Day.Matches(time.Saturday))
	assert.False(t, engineRule.Day.Matches(time.Sunday))
	assert.Equal(t, utils.ToPtr(uint(14)), engineRule.BeneficiaryID)
}

func TestCommissionRule_AsRuleInactiveWhenFlagNilOrFalse(t *testing.T) {
	rule := &CommissionRule{
		BeneficiaryType: commission.BeneficiaryProfessional,
		CalculationType: commission.CalculationPercentage,
		Value:           5,
	}
	assert.False(t, rule.AsRule().Active)

	rule.IsActive = utils.ToPtr(false)
	assert.False(t, rule.AsRule().Active)
}
