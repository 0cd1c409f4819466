package businessflow_test

import (
	"testing"
	"time"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	businessflow "github.com/amirphl/Shirahama-Clinic/business_flow"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/repository"
	clinictesting "github.com/amirphl/Shirahama-Clinic/testing"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClinicFlows(t *testing.T) (businessflow.ClinicFlow, businessflow.FinanceFlow, *clinictesting.TestFixtures) {
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
	clinicFlow := businessflow.NewClinicFlow(
		repository.NewStaffMemberRepository(db),
		repository.NewPatientRepository(db),
		repository.NewProcedureRepository(db),
		db,
	)
	financeFlow := businessflow.NewFinanceFlow(
		repository.NewTransactionRepository(db),
		repository.NewAuditLogRepository(db),
		db,
	)

	return clinicFlow, financeFlow, clinictesting.NewTestFixtures(testDB)
}

func TestClinicFlow_CreateStaffMemberValidatesRole(t *testing.T) {
	clinicFlow, _, fixtures := setupClinicFlows(t)
	ctx := clinictesting.CreateTestContext()

	clinic, err := fixtures.CreateTestClinic()
	require.NoError(t, err)

	created, err := clinicFlow.CreateStaffMember(ctx, clinic.ID, &dto.CreateStaffMemberRequest{
		FullName: "Dra. Ana",
		Role:     string(models.StaffRoleProfessional),
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.StaffRoleProfessional), created.Role)

	_, err = clinicFlow.CreateStaffMember(ctx, clinic.ID, &dto.CreateStaffMemberRequest{
		FullName: "Invalid Role",
		Role:     "janitor",
	})
	assert.True(t, businessflow.IsStaffRoleMismatch(err))
}

func TestClinicFlow_ProcedureCodesAreUniquePerClinic(t *testing.T) {
	clinicFlow, _, fixtures := setupClinicFlows(t)
	ctx := clinictesting.CreateTestContext()

	clinic, err := fixtures.CreateTestClinic()
	require.NoError(t, err)

	request := &dto.CreateProcedureRequest{
		Code:           "botox",
		Name:           "Botox facial",
		SuggestedPrice: 450,
	}

	_, err = clinicFlow.CreateProcedure(ctx, clinic.ID, request)
	require.NoError(t, err)

	_, err = clinicFlow.CreateProcedure(ctx, clinic.ID, request)
	assert.True(t, businessflow.IsProcedureCodeExists(err))

	// The same code is fine in another clinic
	otherClinic, err := fixtures.CreateTestClinic()
	require.NoError(t, err)
	_, err = clinicFlow.CreateProcedure(ctx, otherClinic.ID, request)
	assert.NoError(t, err)
}

func TestClinicFlow_SearchPatientsByName(t *testing.T) {
	clinicFlow, _, fixtures := setupClinicFlows(t)
	ctx := clinictesting.CreateTestContext()

	clinic, err := fixtures.CreateTestClinic()
	require.NoError(t, err)

	_, err = clinicFlow.CreatePatient(ctx, clinic.ID, &dto.CreatePatientRequest{FullName: "Joana Lima"})
	require.NoError(t, err)
	_, err = clinicFlow.CreatePatient(ctx, clinic.ID, &dto.CreatePatientRequest{FullName: "Carlos Pereira"})
	require.NoError(t, err)

	found, err := clinicFlow.SearchPatients(ctx, clinic.ID, "joana", 1, 20)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Joana Lima", found[0].FullName)
}

func TestFinanceFlow_AdjustmentsAndSummary(t *testing.T) {
	_, financeFlow, fixtures := setupClinicFlows(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	entryDate := utils.UTCNow()
	_, err = financeFlow.RecordAdjustment(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.RecordAdjustmentRequest{
		Type:        string(models.TransactionTypeIncome),
		Amount:      1000,
		Description: "Package prepayment",
		EntryDate:   entryDate,
	}, testMetadata())
	require.NoError(t, err)

	_, err = financeFlow.RecordAdjustment(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.RecordAdjustmentRequest{
		Type:        string(models.TransactionTypeExpense),
		Amount:      250,
		Description: "Disposable supplies",
		EntryDate:   entryDate,
	}, testMetadata())
	require.NoError(t, err)

	summary, err := financeFlow.Summary(ctx, scenario.Clinic.ID, &dto.FinanceSummaryRequest{
		From: entryDate.Add(-time.Hour),
		To:   entryDate.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, summary.TotalIncome)
	assert.Equal(t, 250.0, summary.TotalExpense)
	assert.Equal(t, 750.0, summary.NetResult)
}

func TestFinanceFlow_SummaryRejectsInvertedRange(t *testing.T) {
	_, financeFlow, fixtures := setupClinicFlows(t)
	ctx := clinictesting.CreateTestContext()

	clinic, err := fixtures.CreateTestClinic()
	require.NoError(t, err)

	now := utils.UTCNow()
	_, err = financeFlow.Summary(ctx, clinic.ID, &dto.FinanceSummaryRequest{
		From: now,
		To:   now.Add(-time.Hour),
	})
	assert.True(t, businessflow.IsStartDateAfterEndDate(err))
}

func TestFinanceFlow_ListTransactionsFiltersByType(t *testing.T) {
	_, financeFlow, fixtures := setupClinicFlows(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	entryDate := utils.UTCNow()
	for _, adj := range []struct {
		kind   string
		amount float64
	}{
		{string(models.TransactionTypeIncome), 800},
		{string(models.TransactionTypeExpense), 120},
		{string(models.TransactionTypeExpense), 60},
	} {
		_, err = financeFlow.RecordAdjustment(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.RecordAdjustmentRequest{
			Type:        adj.kind,
			Amount:      adj.amount,
			Description: "Ledger seed entry",
			EntryDate:   entryDate,
		}, testMetadata())
		require.NoError(t, err)
	}

	expenses, err := financeFlow.ListTransactions(ctx, scenario.Clinic.ID, &dto.ListTransactionsRequest{
		Type:     utils.ToPtr(string(models.TransactionTypeExpense)),
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), expenses.Total)
	require.Len(t, expenses.Items, 2)
	for _, item := range expenses.Items {
		assert.Equal(t, string(models.TransactionTypeExpense), item.Type)
	}

	all, err := financeFlow.ListTransactions(ctx, scenario.Clinic.ID, &dto.ListTransactionsRequest{
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
}

func TestFinanceFlow_AdjustmentRejectsNonPositiveAmount(t *testing.T) {
	_, financeFlow, fixtures := setupClinicFlows(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	_, err = financeFlow.RecordAdjustment(ctx, scenario.Clinic.ID, scenario.Owner.ID, &dto.RecordAdjustmentRequest{
		Type:        string(models.TransactionTypeExpense),
		Amount:      0,
		Description: "Nothing",
		EntryDate:   utils.UTCNow(),
	}, testMetadata())
	assert.True(t, businessflow.IsAmountInvalid(err))
}
