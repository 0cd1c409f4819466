package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCompletion_CleanAppointment(t *testing.T) {
	rules := []Rule{professionalRule(1, nil)}

	result := ValidateCompletion(nil, rules, matchCtx())
	assert.True(t, result.OK())
	assert.Empty(t, result.Blocking(false))
}

func TestValidateCompletion_DuplicateIsAbsolute(t *testing.T) {
	existing := []Record{
		record(100, BeneficiaryProfessional, 7, 120, 48, StatusPending),
	}
	rules := []Rule{professionalRule(1, nil)}

	result := ValidateCompletion(existing, rules, matchCtx())
	require.Len(t, result.Issues, 1)
	assert.Equal(t, IssueDuplicate, result.Issues[0].Code)
	assert.False(t, result.Issues[0].Overridable)

	// Acknowledging the missing-rule warning never clears a duplicate.
	assert.Len(t, result.Blocking(true), 1)
}

func TestValidateCompletion_CancelledRecordsDoNotBlock(t *testing.T) {
	existing := []Record{
		record(100, BeneficiaryProfessional, 7, 120, 48, StatusCancelled),
	}
	rules := []Rule{professionalRule(1, nil)}

	result := ValidateCompletion(existing, rules, matchCtx())
	assert.True(t, result.OK())
}

func TestValidateCompletion_NoRuleIsOverridable(t *testing.T) {
	result := ValidateCompletion(nil, nil, matchCtx())
	require.Len(t, result.Issues, 1)
	assert.Equal(t, IssueNoRule, result.Issues[0].Code)
	assert.True(t, result.Issues[0].Overridable)

	assert.Len(t, result.Blocking(false), 1)
	assert.Empty(t, result.Blocking(true))
}

func TestValidateCompletion_SellerRuleAloneStillFlagsNoRule(t *testing.T) {
	// Only the professional category is mandatory.
	seller := professionalRule(1, func(r *Rule) {
		r.Beneficiary = BeneficiarySeller
		r.Value = 3
	})

	result := ValidateCompletion(nil, []Rule{seller}, matchCtx())
	require.Len(t, result.Issues, 1)
	assert.Equal(t, IssueNoRule, result.Issues[0].Code)
}

func TestValidateCompletion_ProfessionalRuleNamingAnotherFlagsNoRule(t *testing.T) {
	// A winning rule whose beneficiary is a different professional produces
	// no record at completion, so it must not count as coverage
	other := uint(99)
	rule := professionalRule(1, func(r *Rule) { r.BeneficiaryID = &other })

	result := ValidateCompletion(nil, []Rule{rule}, matchCtx())
	require.Len(t, result.Issues, 1)
	assert.Equal(t, IssueNoRule, result.Issues[0].Code)

	// Naming the performer is coverage
	performer := uint(7)
	named := professionalRule(2, func(r *Rule) { r.BeneficiaryID = &performer })
	assert.True(t, ValidateCompletion(nil, []Rule{named}, matchCtx()).OK())
}

func TestValidateCompletion_NonMatchingProfessionalRuleFlagsNoRule(t *testing.T) {
	rule := professionalRule(1, func(r *Rule) { r.Procedure = Only("filler") })

	result := ValidateCompletion(nil, []Rule{rule}, matchCtx())
	require.Len(t, result.Issues, 1)
	assert.Equal(t, IssueNoRule, result.Issues[0].Code)
}
