package commission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(appointmentID uint, beneficiary BeneficiaryType, staffID uint, serviceValue, amount float64, status Status) Record {
	return Record{
		AppointmentID: appointmentID,
		ClinicID:      1,
		Beneficiary:   beneficiary,
		BeneficiaryID: staffID,
		ServiceValue:  serviceValue,
		Amount:        amount,
		Status:        status,
	}
}

func TestSummarize_GroupsPerBeneficiary(t *testing.T) {
	records := []Record{
		record(1, BeneficiaryProfessional, 7, 100, 40, StatusPending),
		record(2, BeneficiaryProfessional, 7, 200, 80, StatusPaid),
		record(2, BeneficiarySeller, 12, 200, 6, StatusPending),
	}

	summaries := Summarize(records)
	require.Len(t, summaries, 2)

	prof := summaries[0]
	assert.Equal(t, BeneficiaryProfessional, prof.Beneficiary)
	assert.Equal(t, uint(7), prof.BeneficiaryID)
	assert.Equal(t, 2, prof.Appointments)
	assert.Equal(t, 300.0, prof.TotalRevenue)
	assert.Equal(t, 120.0, prof.TotalCommission)
	assert.Equal(t, 40.0, prof.PendingAmount)
	assert.Equal(t, 80.0, prof.PaidAmount)
	assert.Equal(t, 40.0, prof.EffectiveRate)

	seller := summaries[1]
	assert.Equal(t, BeneficiarySeller, seller.Beneficiary)
	assert.Equal(t, 3.0, seller.EffectiveRate)
}

func TestSummarize_PendingPlusPaidCoverAllNonCancelled(t *testing.T) {
	records := []Record{
		record(1, BeneficiaryProfessional, 7, 100, 40, StatusPending),
		record(2, BeneficiaryProfessional, 7, 100, 30, StatusPaid),
		record(3, BeneficiaryProfessional, 7, 100, 25, StatusPaid),
	}

	summaries := Summarize(records)
	require.Len(t, summaries, 1)
	s := summaries[0]
	assert.Equal(t, s.TotalCommission, s.PendingAmount+s.PaidAmount)
}

func TestSummarize_SameAppointmentCountedOnce(t *testing.T) {
	// Two records of one appointment for the same professional must not
	// double the revenue.
	records := []Record{
		record(1, BeneficiaryProfessional, 7, 100, 40, StatusPending),
		record(1, BeneficiaryProfessional, 7, 100, 10, StatusPending),
	}

	summaries := Summarize(records)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Appointments)
	assert.Equal(t, 100.0, summaries[0].TotalRevenue)
	assert.Equal(t, 50.0, summaries[0].TotalCommission)
}

func TestSummarize_ZeroRevenueZeroRate(t *testing.T) {
	summaries := Summarize([]Record{
		record(1, BeneficiaryProfessional, 7, 0, 0, StatusPending),
	})
	require.Len(t, summaries, 1)
	assert.Equal(t, 0.0, summaries[0].EffectiveRate)
}

func TestSummarize_EmptyInput(t *testing.T) {
	assert.Empty(t, Summarize(nil))
}

func TestSummarize_DeterministicOrder(t *testing.T) {
	records := []Record{
		record(1, BeneficiarySeller, 12, 100, 3, StatusPending),
		record(1, BeneficiaryProfessional, 9, 100, 40, StatusPending),
		record(2, BeneficiaryProfessional, 7, 100, 40, StatusPending),
	}

	first := Summarize(records)
	second := Summarize(records)
	assert.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, uint(7), first[0].BeneficiaryID)
	assert.Equal(t, uint(9), first[1].BeneficiaryID)
	assert.Equal(t, BeneficiarySeller, first[2].Beneficiary)
}
