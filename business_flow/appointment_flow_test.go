package businessflow_test

import (
	"testing"
	"time"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	businessflow "github.com/amirphl/Shirahama-Clinic/business_flow"
	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/repository"
	clinictesting "github.com/amirphl/Shirahama-Clinic/testing"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAppointmentFlow(t *testing.T) (businessflow.AppointmentFlow, *clinictesting.TestFixtures, *clinictesting.TestDB) {
	t.Helper()

	testDB, err := clinictesting.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("teardown warning: %v", err)
		}
	})

	db := testDB.DB
	flow := businessflow.NewAppointmentFlow(
		repository.NewAppointmentRepository(db),
		repository.NewPatientRepository(db),
		repository.NewStaffMemberRepository(db),
		repository.NewProcedureRepository(db),
		repository.NewCommissionRuleRepository(db),
		repository.NewCommissionCalculationRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewAuditLogRepository(db),
		nil,
		nil,
		db,
	)

	return flow, clinictesting.NewTestFixtures(testDB), testDB
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "test-agent")
}

func TestAppointmentFlow_ScheduleAndGet(t *testing.T) {
	flow, fixtures, _ := setupAppointmentFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	scheduled, err := flow.Schedule(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.ScheduleAppointmentRequest{
		PatientID:      scenario.Patient.ID,
		ProfessionalID: scenario.Professional.ID,
		ProcedureID:    scenario.Procedure.ID,
		ScheduledAt:    utils.UTCNow().Add(48 * time.Hour),
	}, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, string(models.AppointmentStatusScheduled), scheduled.Status)
	assert.Equal(t, scenario.Patient.FullName, scheduled.PatientName)

	fetched, err := flow.Get(ctx, scenario.Clinic.ID, scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduled.ID, fetched.ID)

	// Another clinic must not see it
	otherClinic, err := fixtures.CreateTestClinic()
	require.NoError(t, err)
	_, err = flow.Get(ctx, otherClinic.ID, scheduled.ID)
	assert.True(t, businessflow.IsAppointmentNotFound(err))
}

func TestAppointmentFlow_ScheduleRejectsForeignPatient(t *testing.T) {
	flow, fixtures, _ := setupAppointmentFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	otherClinic, err := fixtures.CreateTestClinic()
	require.NoError(t, err)
	foreignPatient, err := fixtures.CreateTestPatient(otherClinic.ID)
	require.NoError(t, err)

	_, err = flow.Schedule(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.ScheduleAppointmentRequest{
		PatientID:      foreignPatient.ID,
		ProfessionalID: scenario.Professional.ID,
		ProcedureID:    scenario.Procedure.ID,
		ScheduledAt:    utils.UTCNow().Add(48 * time.Hour),
	}, testMetadata())
	assert.True(t, businessflow.IsPatientNotFound(err))
}

func TestAppointmentFlow_CompleteProducesCommissionsAndLedger(t *testing.T) {
	flow, fixtures, testDB := setupAppointmentFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	_, err = fixtures.CreateTestCommissionRule(scenario.Clinic.ID, commission.BeneficiaryProfessional, nil, 40)
	require.NoError(t, err)

	appointment, err := fixtures.CreateTestAppointment(scenario.Clinic.ID, scenario.Patient.ID, scenario.Professional.ID, scenario.Procedure.ID)
	require.NoError(t, err)

	resp, validation, err := flow.Complete(ctx, scenario.Clinic.ID, scenario.Owner.ID, appointment.ID, &dto.CompleteAppointmentRequest{
		ServiceValue:  500,
		PaymentMethod: "pix",
	}, testMetadata())
	require.NoError(t, err)
	require.Nil(t, validation)
	require.NotNil(t, resp)

	assert.Equal(t, string(models.AppointmentStatusCompleted), resp.Appointment.Status)
	require.Len(t, resp.Commissions, 1)
	assert.Equal(t, 200.0, resp.Commissions[0].Amount)
	assert.Equal(t, string(commission.StatusPending), resp.Commissions[0].Status)

	// One revenue entry for the full service value, one expense per commission
	assert.Equal(t, 500.0, resp.Revenue.Amount)
	require.Len(t, resp.Expenses, 1)
	assert.Equal(t, 200.0, resp.Expenses[0].Amount)

	var ledgerCount int64
	require.NoError(t, testDB.DB.Model(&models.Transaction{}).Where("clinic_id = ?", scenario.Clinic.ID).Count(&ledgerCount).Error)
	assert.Equal(t, int64(2), ledgerCount)
}

func TestAppointmentFlow_CompleteBlockedWithoutRuleUntilAcknowledged(t *testing.T) {
	flow, fixtures, _ := setupAppointmentFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	appointment, err := fixtures.CreateTestAppointment(scenario.Clinic.ID, scenario.Patient.ID, scenario.Professional.ID, scenario.Procedure.ID)
	require.NoError(t, err)

	request := &dto.CompleteAppointmentRequest{
		ServiceValue:  300,
		PaymentMethod: "cash",
	}

	_, validation, err := flow.Complete(ctx, scenario.Clinic.ID, scenario.Owner.ID, appointment.ID, request, testMetadata())
	require.Error(t, err)
	require.NotNil(t, validation)
	require.Len(t, validation.Issues, 1)
	assert.Equal(t, string(commission.IssueNoRule), validation.Issues[0].Code)
	assert.True(t, validation.Issues[0].Overridable)

	// Acknowledging the warning completes with zero commissions
	request.AckMissingRule = true
	resp, validation, err := flow.Complete(ctx, scenario.Clinic.ID, scenario.Owner.ID, appointment.ID, request, testMetadata())
	require.NoError(t, err)
	require.Nil(t, validation)
	assert.Empty(t, resp.Commissions)
	assert.Equal(t, 300.0, resp.Revenue.Amount)
}

func TestAppointmentFlow_CompleteDuplicateIsBlocked(t *testing.T) {
	flow, fixtures, _ := setupAppointmentFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	_, err = fixtures.CreateTestCommissionRule(scenario.Clinic.ID, commission.BeneficiaryProfessional, nil, 40)
	require.NoError(t, err)
	appointment, err := fixtures.CreateTestAppointment(scenario.Clinic.ID, scenario.Patient.ID, scenario.Professional.ID, scenario.Procedure.ID)
	require.NoError(t, err)

	request := &dto.CompleteAppointmentRequest{
		ServiceValue:  500,
		PaymentMethod: "credit",
	}

	_, _, err = flow.Complete(ctx, scenario.Clinic.ID, scenario.Owner.ID, appointment.ID, request, testMetadata())
	require.NoError(t, err)

	// The second attempt hits the duplicate guard; the ack flag never clears it
	request.AckMissingRule = true
	_, validation, err := flow.Complete(ctx, scenario.Clinic.ID, scenario.Owner.ID, appointment.ID, request, testMetadata())
	require.Error(t, err)
	require.NotNil(t, validation)
	require.Len(t, validation.Issues, 1)
	assert.Equal(t, string(commission.IssueDuplicate), validation.Issues[0].Code)
	assert.False(t, validation.Issues[0].Overridable)
}

func TestAppointmentFlow_CompleteWithSellerAndFixedUnitRule(t *testing.T) {
	flow, fixtures, _ := setupAppointmentFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	_, err = fixtures.CreateTestCommissionRule(scenario.Clinic.ID, commission.BeneficiaryProfessional, nil, 40)
	require.NoError(t, err)
	_, err = fixtures.CreateTestCommissionRule(scenario.Clinic.ID, commission.BeneficiarySeller, nil, 10)
	require.NoError(t, err)

	appointment, err := fixtures.CreateTestAppointment(scenario.Clinic.ID, scenario.Patient.ID, scenario.Professional.ID, scenario.Procedure.ID)
	require.NoError(t, err)

	resp, validation, err := flow.Complete(ctx, scenario.Clinic.ID, scenario.Owner.ID, appointment.ID, &dto.CompleteAppointmentRequest{
		ServiceValue:  1000,
		Quantity:      utils.ToPtr(2),
		PaymentMethod: "debit",
		SellerID:      &scenario.Seller.ID,
	}, testMetadata())
	require.NoError(t, err)
	require.Nil(t, validation)

	// Professional 40% of 1000 plus seller 10% of 1000
	require.Len(t, resp.Commissions, 2)
	amounts := map[string]float64{}
	for _, c := range resp.Commissions {
		amounts[c.BeneficiaryType] = c.Amount
	}
	assert.Equal(t, 400.0, amounts[string(commission.BeneficiaryProfessional)])
	assert.Equal(t, 100.0, amounts[string(commission.BeneficiarySeller)])
	assert.Len(t, resp.Expenses, 2)
}

func TestAppointmentFlow_StorageRejectsSecondLiveCommission(t *testing.T) {
	_, fixtures, testDB := setupAppointmentFlow(t)

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	appointment, err := fixtures.CreateTestAppointment(scenario.Clinic.ID, scenario.Patient.ID, scenario.Professional.ID, scenario.Procedure.ID)
	require.NoError(t, err)

	first := pendingCalculation(scenario, appointment.ID)
	require.NoError(t, testDB.DB.Create(first).Error)

	// A second live record for the same appointment and beneficiary is
	// rejected by the index even when no pre-flight check ran
	require.Error(t, testDB.DB.Create(pendingCalculation(scenario, appointment.ID)).Error)

	// A different beneficiary of the same appointment is fine
	sellerRecord := pendingCalculation(scenario, appointment.ID)
	sellerRecord.BeneficiaryType = commission.BeneficiarySeller
	sellerRecord.BeneficiaryID = scenario.Seller.ID
	require.NoError(t, testDB.DB.Create(sellerRecord).Error)

	// Cancelling the first record frees the slot for a redo
	require.NoError(t, testDB.DB.Model(first).Update("status", commission.StatusCancelled).Error)
	require.NoError(t, testDB.DB.Create(pendingCalculation(scenario, appointment.ID)).Error)
}

// pendingCalculation builds a live professional commission row for direct
// persistence
func pendingCalculation(scenario *clinictesting.ClinicScenario, appointmentID uint) *models.CommissionCalculation {
	return &models.CommissionCalculation{
		UUID:            uuid.New(),
		ClinicID:        scenario.Clinic.ID,
		AppointmentID:   appointmentID,
		BeneficiaryType: commission.BeneficiaryProfessional,
		BeneficiaryID:   scenario.Professional.ID,
		ProfessionalID:  scenario.Professional.ID,
		ProcedureCode:   scenario.Procedure.Code,
		ServiceValue:    500,
		Quantity:        1,
		RuleID:          1,
		RuleType:        commission.CalculationPercentage,
		RuleUnit:        commission.UnitAppointment,
		RuleValue:       40,
		Amount:          200,
		Status:          commission.StatusPending,
		ServiceDate:     utils.UTCNow(),
	}
}

func TestAppointmentFlow_CancelOnlyWhileScheduled(t *testing.T) {
	flow, fixtures, _ := setupAppointmentFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	appointment, err := fixtures.CreateTestAppointment(scenario.Clinic.ID, scenario.Patient.ID, scenario.Professional.ID, scenario.Procedure.ID)
	require.NoError(t, err)

	cancelled, err := flow.Cancel(ctx, scenario.Clinic.ID, scenario.Owner.ID, appointment.ID, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, string(models.AppointmentStatusCancelled), cancelled.Status)

	_, err = flow.Cancel(ctx, scenario.Clinic.ID, scenario.Owner.ID, appointment.ID, testMetadata())
	assert.True(t, businessflow.IsAppointmentNotCancelable(err))
}
