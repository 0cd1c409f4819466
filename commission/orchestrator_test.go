package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionInput(rules []Rule) CompletionInput {
	return CompletionInput{
		Appointment: Appointment{
			ID:               100,
			ClinicID:         1,
			ProfessionalID:   7,
			ProfessionalName: "Dra. Ana",
			Procedure:        "botox",
			Date:             tuesday,
		},
		ServiceValue:  120,
		PaymentMethod: PaymentPix,
		Rules:         rules,
	}
}

func TestCompleteAppointment_SpecificRuleBeatsGeneral(t *testing.T) {
	general := professionalRule(1, func(r *Rule) { r.Value = 30 })
	specific := professionalRule(2, func(r *Rule) {
		r.Procedure = Only("botox")
		r.Value = 40
		r.Priority = 16
	})

	result, err := CompleteAppointment(completionInput([]Rule{general, specific}))
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, uint(2), rec.RuleID)
	assert.Equal(t, 48.0, rec.Amount)
	assert.Equal(t, StatusPending, rec.Status)
}

func TestCompleteAppointment_SingleWinnerNeverStacks(t *testing.T) {
	flat := professionalRule(1, func(r *Rule) {
		r.Type = CalculationFixed
		r.Unit = UnitAppointment
		r.Value = 50
		r.Priority = 10
	})
	percent := professionalRule(2, func(r *Rule) { r.Value = 37.5; r.Priority = 1 })

	result, err := CompleteAppointment(completionInput([]Rule{flat, percent}))
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, 50.0, result.Records[0].Amount)
}

func TestCompleteAppointment_SellerCommission(t *testing.T) {
	prof := professionalRule(1, func(r *Rule) { r.Value = 40 })
	seller := professionalRule(2, func(r *Rule) {
		r.Beneficiary = BeneficiarySeller
		r.Value = 3
	})

	in := completionInput([]Rule{prof, seller})
	in.ServiceValue = 150
	in.Seller = &Staff{ID: 12, Name: "Carla"}

	result, err := CompleteAppointment(in)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	byBeneficiary := map[BeneficiaryType]Record{}
	for _, rec := range result.Records {
		byBeneficiary[rec.Beneficiary] = rec
	}
	assert.Equal(t, 60.0, byBeneficiary[BeneficiaryProfessional].Amount)
	assert.Equal(t, 4.5, byBeneficiary[BeneficiarySeller].Amount)
	assert.Equal(t, uint(12), byBeneficiary[BeneficiarySeller].BeneficiaryID)
	assert.Equal(t, "Carla", byBeneficiary[BeneficiarySeller].BeneficiaryName)
}

func TestCompleteAppointment_GeneralSellerRuleNeedsAssignedSeller(t *testing.T) {
	seller := professionalRule(1, func(r *Rule) {
		r.Beneficiary = BeneficiarySeller
		r.Value = 3
	})

	result, err := CompleteAppointment(completionInput([]Rule{seller}))
	require.NoError(t, err)
	assert.Empty(t, result.Records)
}

func TestCompleteAppointment_NamedSellerRuleFiresWithoutAssignment(t *testing.T) {
	seller := professionalRule(1, func(r *Rule) {
		r.Beneficiary = BeneficiarySeller
		r.BeneficiaryID = ptr(uint(12))
		r.Value = 5
	})

	result, err := CompleteAppointment(completionInput([]Rule{seller}))
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, uint(12), result.Records[0].BeneficiaryID)
}

func TestCompleteAppointment_ProfessionalRuleForOtherProfessionalSkipped(t *testing.T) {
	other := professionalRule(1, func(r *Rule) {
		r.BeneficiaryID = ptr(uint(99))
		r.Value = 60
	})

	result, err := CompleteAppointment(completionInput([]Rule{other}))
	require.NoError(t, err)
	assert.Empty(t, result.Records)
}

func TestCompleteAppointment_LedgerEntries(t *testing.T) {
	prof := professionalRule(1, func(r *Rule) { r.Value = 40 })
	reception := professionalRule(2, func(r *Rule) {
		r.Beneficiary = BeneficiaryReception
		r.Type = CalculationFixed
		r.Unit = UnitAppointment
		r.Value = 10
	})

	in := completionInput([]Rule{prof, reception})
	in.Receptionist = &Staff{ID: 20, Name: "Bruna"}

	result, err := CompleteAppointment(in)
	require.NoError(t, err)

	assert.Equal(t, EntryRevenue, result.Revenue.Kind)
	assert.Equal(t, 120.0, result.Revenue.Amount)
	assert.Equal(t, PaymentPix, result.Revenue.PaymentMethod)
	assert.Equal(t, uint(100), result.Revenue.AppointmentID)

	require.Len(t, result.Expenses, len(result.Records))
	var expenseTotal, recordTotal float64
	for _, e := range result.Expenses {
		assert.Equal(t, EntryExpense, e.Kind)
		expenseTotal += e.Amount
	}
	for _, rec := range result.Records {
		recordTotal += rec.Amount
	}
	assert.Equal(t, recordTotal, expenseTotal)
}

func TestCompleteAppointment_QuantityDefaultsToOne(t *testing.T) {
	perMl := professionalRule(1, func(r *Rule) {
		r.Type = CalculationFixed
		r.Unit = UnitMl
		r.Value = 8
	})

	in := completionInput([]Rule{perMl})
	result, err := CompleteAppointment(in)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 8.0, result.Records[0].Amount)
	assert.Equal(t, 1, result.Records[0].Quantity)

	in.Quantity = ptr(4)
	result, err = CompleteAppointment(in)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 32.0, result.Records[0].Amount)
}

func TestCompleteAppointment_RejectsBadInputs(t *testing.T) {
	in := completionInput(nil)
	in.ServiceValue = 0
	_, err := CompleteAppointment(in)
	assert.ErrorIs(t, err, ErrNonPositiveServiceValue)

	in = completionInput(nil)
	in.Quantity = ptr(0)
	_, err = CompleteAppointment(in)
	assert.ErrorIs(t, err, ErrNonPositiveQuantity)

	in = completionInput(nil)
	in.PaymentMethod = "check"
	_, err = CompleteAppointment(in)
	assert.Error(t, err)
}

func TestCompleteAppointment_NoRulesStillRecordsRevenue(t *testing.T) {
	result, err := CompleteAppointment(completionInput(nil))
	require.NoError(t, err)

	assert.Empty(t, result.Records)
	assert.Empty(t, result.Expenses)
	assert.Equal(t, 120.0, result.Revenue.Amount)
}

func TestCompleteAppointment_RuleSnapshot(t *testing.T) {
	rule := professionalRule(1, func(r *Rule) { r.Value = 25 })

	result, err := CompleteAppointment(completionInput([]Rule{rule}))
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, CalculationPercentage, rec.RuleType)
	assert.Equal(t, UnitAppointment, rec.RuleUnit)
	assert.Equal(t, 25.0, rec.RuleValue)
	assert.Equal(t, 120.0, rec.ServiceValue)
}
