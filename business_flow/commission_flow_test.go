package businessflow_test

import (
	"testing"
	"time"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/app/services"
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

func setupCommissionFlow(t *testing.T) (businessflow.CommissionFlow, *clinictesting.TestFixtures, *clinictesting.TestDB) {
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
	flow := businessflow.NewCommissionFlow(
		repository.NewCommissionRuleRepository(db),
		repository.NewCommissionCalculationRepository(db),
		repository.NewStaffMemberRepository(db),
		repository.NewUserRepository(db),
		repository.NewAuditLogRepository(db),
		services.NewReportService(),
		nil,
		nil,
		db,
	)

	return flow, clinictesting.NewTestFixtures(testDB), testDB
}

func TestCommissionFlow_CreateRuleDefaultsPriorityFromSpecificity(t *testing.T) {
	flow, fixtures, _ := setupCommissionFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	// Fully wildcarded rule: base specificity only
	broad, err := flow.CreateRule(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.CreateCommissionRuleRequest{
		Name:            "House percentage",
		BeneficiaryType: string(commission.BeneficiaryProfessional),
		CalculationType: string(commission.CalculationPercentage),
		Value:           30,
	}, testMetadata())
	require.NoError(t, err)

	// Professional + procedure filters outrank the broad rule
	narrow, err := flow.CreateRule(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.CreateCommissionRuleRequest{
		Name:            "Dra. Ana botox override",
		BeneficiaryType: string(commission.BeneficiaryProfessional),
		ProfessionalID:  &scenario.Professional.ID,
		ProcedureCode:   &scenario.Procedure.Code,
		CalculationType: string(commission.CalculationPercentage),
		Value:           45,
	}, testMetadata())
	require.NoError(t, err)

	assert.Greater(t, narrow.Priority, broad.Priority)

	// An explicit priority is never overwritten
	pinned, err := flow.CreateRule(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.CreateCommissionRuleRequest{
		Name:            "Pinned priority",
		BeneficiaryType: string(commission.BeneficiarySeller),
		CalculationType: string(commission.CalculationPercentage),
		Value:           5,
		Priority:        99,
	}, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, 99, pinned.Priority)
}

func TestCommissionFlow_CreateRuleRequiresManagerRole(t *testing.T) {
	flow, fixtures, _ := setupCommissionFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	operator, err := fixtures.CreateTestUser(scenario.Clinic.ID, models.UserRoleOperator)
	require.NoError(t, err)

	_, err = flow.CreateRule(ctx, scenario.Clinic.ID, operator.ID, &dto.CreateCommissionRuleRequest{
		Name:            "Operator attempt",
		BeneficiaryType: string(commission.BeneficiaryProfessional),
		CalculationType: string(commission.CalculationPercentage),
		Value:           10,
	}, testMetadata())
	assert.True(t, businessflow.IsPermissionDenied(err))
}

func TestCommissionFlow_CreateRuleRejectsPercentageOver100(t *testing.T) {
	flow, fixtures, _ := setupCommissionFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	_, err = flow.CreateRule(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.CreateCommissionRuleRequest{
		Name:            "Impossible percentage",
		BeneficiaryType: string(commission.BeneficiaryProfessional),
		CalculationType: string(commission.CalculationPercentage),
		Value:           120,
	}, testMetadata())
	assert.True(t, businessflow.IsRulePercentageOutOfRange(err))
}

func TestCommissionFlow_DeactivateRuleStopsMatching(t *testing.T) {
	flow, fixtures, testDB := setupCommissionFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	created, err := flow.CreateRule(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.CreateCommissionRuleRequest{
		Name:            "Short lived",
		BeneficiaryType: string(commission.BeneficiaryProfessional),
		CalculationType: string(commission.CalculationPercentage),
		Value:           20,
	}, testMetadata())
	require.NoError(t, err)

	require.NoError(t, flow.DeactivateRule(ctx, scenario.Clinic.ID, scenario.Owner.ID, created.ID, testMetadata()))

	active, err := repository.NewCommissionRuleRepository(testDB.DB).ActiveRulesForClinic(ctx, scenario.Clinic.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCommissionFlow_MarkPaidIsTerminal(t *testing.T) {
	flow, fixtures, testDB := setupCommissionFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	calc := seedCalculation(t, testDB, scenario, 200)

	paid, err := flow.MarkPaid(ctx, scenario.Clinic.ID, scenario.Owner.ID, calc.ID, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, string(commission.StatusPaid), paid.Status)

	// Paying twice and cancelling a paid record both fail
	_, err = flow.MarkPaid(ctx, scenario.Clinic.ID, scenario.Owner.ID, calc.ID, testMetadata())
	assert.True(t, businessflow.IsCommissionAlreadyPaid(err))

	_, err = flow.CancelCommission(ctx, scenario.Clinic.ID, scenario.Owner.ID, calc.ID, testMetadata())
	assert.True(t, businessflow.IsCommissionNotPending(err))
}

func TestCommissionFlow_SummarizeGroupsByBeneficiary(t *testing.T) {
	flow, fixtures, testDB := setupCommissionFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	seedCalculation(t, testDB, scenario, 200)
	seedCalculation(t, testDB, scenario, 100)

	from := utils.UTCNow().Add(-24 * time.Hour)
	to := utils.UTCNow().Add(24 * time.Hour)

	resp, err := flow.Summarize(ctx, scenario.Clinic.ID, &dto.CommissionSummaryRequest{From: from, To: to})
	require.NoError(t, err)
	require.Len(t, resp.Summaries, 1)

	summary := resp.Summaries[0]
	assert.Equal(t, string(commission.BeneficiaryProfessional), summary.BeneficiaryType)
	assert.Equal(t, 2, summary.Appointments)
	assert.Equal(t, 300.0, summary.TotalCommission)
}

func TestCommissionFlow_ExportSummariesProducesWorkbook(t *testing.T) {
	flow, fixtures, testDB := setupCommissionFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	seedCalculation(t, testDB, scenario, 200)

	from := utils.UTCNow().Add(-24 * time.Hour)
	to := utils.UTCNow().Add(24 * time.Hour)

	filename, content, err := flow.ExportSummaries(ctx, scenario.Clinic.ID, &dto.CommissionSummaryRequest{From: from, To: to})
	require.NoError(t, err)
	assert.Contains(t, filename, ".xlsx")
	assert.NotEmpty(t, content)
}

// seedCalculation writes one pending professional commission with the given
// amount for a fresh appointment of the scenario
func seedCalculation(t *testing.T, testDB *clinictesting.TestDB, scenario *clinictesting.ClinicScenario, amount float64) *models.CommissionCalculation {
	t.Helper()

	fixtures := clinictesting.NewTestFixtures(testDB)
	appointment, err := fixtures.CreateTestAppointment(scenario.Clinic.ID, scenario.Patient.ID, scenario.Professional.ID, scenario.Procedure.ID)
	require.NoError(t, err)

	calc := &models.CommissionCalculation{
		UUID:            uuid.New(),
		ClinicID:        scenario.Clinic.ID,
		AppointmentID:   appointment.ID,
		BeneficiaryType: commission.BeneficiaryProfessional,
		BeneficiaryID:   scenario.Professional.ID,
		ProfessionalID:  scenario.Professional.ID,
		ProcedureCode:   scenario.Procedure.Code,
		ServiceValue:    amount * 2.5,
		Quantity:        1,
		RuleID:          1,
		RuleType:        commission.CalculationPercentage,
		RuleUnit:        commission.UnitAppointment,
		RuleValue:       40,
		Amount:          amount,
		Status:          commission.StatusPending,
		ServiceDate:     utils.UTCNow(),
	}
	require.NoError(t, testDB.DB.Create(calc).Error)
	return calc
}
