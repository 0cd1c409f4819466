package commission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixed reference date: Tuesday 2025-03-04
var tuesday = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func matchCtx() MatchContext {
	return MatchContext{
		ClinicID:       1,
		ProfessionalID: 7,
		Procedure:      "botox",
		Date:           tuesday,
	}
}

func professionalRule(id uint, mutate func(*Rule)) Rule {
	r := Rule{
		ID:          id,
		ClinicID:    1,
		Beneficiary: BeneficiaryProfessional,
		Type:        CalculationPercentage,
		Unit:        UnitAppointment,
		Value:       30,
		Priority:    1,
		Active:      true,
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func TestSelectWinningRules_HigherPriorityWins(t *testing.T) {
	general := professionalRule(1, nil)
	specific := professionalRule(2, func(r *Rule) {
		r.Procedure = Only("botox")
		r.Value = 40
		r.Priority = 16
	})

	winners := SelectWinningRules([]Rule{general, specific}, matchCtx())

	require.Len(t, winners, 1)
	assert.Equal(t, uint(2), winners[0].ID)
	assert.Equal(t, 40.0, winners[0].Value)
}

func TestSelectWinningRules_FiltersNonMatching(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rule)
	}{
		{"inactive", func(r *Rule) { r.Active = false }},
		{"other clinic", func(r *Rule) { r.ClinicID = 2 }},
		{"other professional", func(r *Rule) { r.Professional = Only(uint(99)) }},
		{"other procedure", func(r *Rule) { r.Procedure = Only("filler") }},
		{"other weekday", func(r *Rule) { r.Day = Only(time.Friday) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := professionalRule(1, tt.mutate)
			winners := SelectWinningRules([]Rule{rule}, matchCtx())
			assert.Empty(t, winners)
		})
	}
}

func TestSelectWinningRules_WildcardsMatchEverything(t *testing.T) {
	rule := professionalRule(1, nil)

	for _, procedure := range []string{"botox", "filler", "cleaning"} {
		ctx := matchCtx()
		ctx.Procedure = procedure
		winners := SelectWinningRules([]Rule{rule}, ctx)
		require.Len(t, winners, 1, "procedure %s", procedure)
	}
}

func TestSelectWinningRules_SpecificFiltersMatchTheirValue(t *testing.T) {
	rule := professionalRule(1, func(r *Rule) {
		r.Professional = Only(uint(7))
		r.Procedure = Only("botox")
		r.Day = Only(time.Tuesday)
	})

	winners := SelectWinningRules([]Rule{rule}, matchCtx())
	require.Len(t, winners, 1)
}

func TestSelectWinningRules_OneWinnerPerBeneficiaryGroup(t *testing.T) {
	prof := professionalRule(1, nil)
	sellerGeneral := professionalRule(2, func(r *Rule) {
		r.Beneficiary = BeneficiarySeller
		r.Value = 3
	})
	sellerSpecific := professionalRule(3, func(r *Rule) {
		r.Beneficiary = BeneficiarySeller
		r.BeneficiaryID = ptr(uint(12))
		r.Value = 5
		r.Priority = 6
	})

	winners := SelectWinningRules([]Rule{prof, sellerGeneral, sellerSpecific}, matchCtx())

	// One per group: professional-general, seller-general, seller for staff 12.
	require.Len(t, winners, 3)
	ids := []uint{winners[0].ID, winners[1].ID, winners[2].ID}
	assert.ElementsMatch(t, []uint{1, 2, 3}, ids)
}

func TestSelectWinningRules_TieBreakIsFirstSupplied(t *testing.T) {
	first := professionalRule(1, func(r *Rule) { r.Value = 25; r.Priority = 10 })
	second := professionalRule(2, func(r *Rule) { r.Value = 35; r.Priority = 10 })

	winners := SelectWinningRules([]Rule{first, second}, matchCtx())
	require.Len(t, winners, 1)
	assert.Equal(t, uint(1), winners[0].ID)

	// Reversed input, reversed outcome: the order is deterministic per input.
	winners = SelectWinningRules([]Rule{second, first}, matchCtx())
	require.Len(t, winners, 1)
	assert.Equal(t, uint(2), winners[0].ID)
}

func TestSelectWinningRules_EmptyIsNotAnError(t *testing.T) {
	winners := SelectWinningRules(nil, matchCtx())
	assert.Empty(t, winners)
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rule)
		want   int
	}{
		{"all wildcards", nil, 1},
		{"day only", func(r *Rule) { r.Day = Only(time.Tuesday) }, 11},
		{"professional and procedure", func(r *Rule) {
			r.Professional = Only(uint(7))
			r.Procedure = Only("botox")
		}, 36},
		{"everything", func(r *Rule) {
			r.Professional = Only(uint(7))
			r.Procedure = Only("botox")
			r.Day = Only(time.Tuesday)
			r.BeneficiaryID = ptr(uint(7))
		}, 51},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := professionalRule(1, tt.mutate)
			assert.Equal(t, tt.want, rule.Specificity())
			assert.Equal(t, tt.want, DefaultPriority(rule))
		})
	}
}

func TestSpecificity_NarrowerAlwaysOutranksBroader(t *testing.T) {
	broad := professionalRule(1, func(r *Rule) { r.Day = Only(time.Tuesday) })
	narrow := professionalRule(2, func(r *Rule) { r.Procedure = Only("botox") })

	assert.Greater(t, narrow.Specificity(), broad.Specificity())
}

func ptr[T any](v T) *T { return &v }
