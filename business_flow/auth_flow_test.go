package businessflow_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/app/services"
	businessflow "github.com/amirphl/Shirahama-Clinic/business_flow"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/repository"
	clinictesting "github.com/amirphl/Shirahama-Clinic/testing"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthFlow(t *testing.T) (businessflow.AuthFlow, *clinictesting.TestFixtures, *clinictesting.TestDB) {
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

	tokenService, err := services.NewTokenService(
		time.Hour,
		24*time.Hour,
		"shirahama-clinic",
		"shirahama-clinic-api",
		false,
		"",
		"",
		"test-secret-key-that-is-long-enough-123456",
	)
	require.NoError(t, err)

	db := testDB.DB
	flow := businessflow.NewAuthFlow(
		repository.NewUserRepository(db),
		repository.NewUserSessionRepository(db),
		repository.NewAuditLogRepository(db),
		tokenService,
		db,
	)

	return flow, clinictesting.NewTestFixtures(testDB), testDB
}

func TestAuthFlow_LoginIssuesTokenPair(t *testing.T) {
	flow, fixtures, _ := setupAuthFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	resp, err := flow.Login(ctx, &dto.LoginRequest{
		Email:    scenario.Owner.Email,
		Password: "TestPass123!",
	}, testMetadata())
	require.NoError(t, err)

	assert.Equal(t, scenario.Owner.ID, resp.User.ID)
	assert.Equal(t, scenario.Clinic.ID, resp.User.ClinicID)
	assert.NotEmpty(t, resp.Session.SessionToken)
	require.NotNil(t, resp.Session.RefreshToken)
	assert.Equal(t, "Bearer", resp.Session.TokenType)
}

func TestAuthFlow_LoginRejectsWrongPassword(t *testing.T) {
	flow, fixtures, _ := setupAuthFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	_, err = flow.Login(ctx, &dto.LoginRequest{
		Email:    scenario.Owner.Email,
		Password: "WrongPass123!",
	}, testMetadata())
	assert.True(t, businessflow.IsIncorrectPassword(err))

	_, err = flow.Login(ctx, &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "TestPass123!",
	}, testMetadata())
	assert.True(t, businessflow.IsUserNotFound(err))
}

func TestAuthFlow_LoginRejectsInactiveAccount(t *testing.T) {
	flow, fixtures, testDB := setupAuthFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)
	require.NoError(t, testDB.DB.Model(&models.User{}).
		Where("id = ?", scenario.Owner.ID).
		Update("is_active", false).Error)

	_, err = flow.Login(ctx, &dto.LoginRequest{
		Email:    scenario.Owner.Email,
		Password: "TestPass123!",
	}, testMetadata())
	assert.True(t, businessflow.IsAccountInactive(err))
}

func TestAuthFlow_RefreshRotatesSession(t *testing.T) {
	flow, fixtures, _ := setupAuthFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	login, err := flow.Login(ctx, &dto.LoginRequest{
		Email:    scenario.Owner.Email,
		Password: "TestPass123!",
	}, testMetadata())
	require.NoError(t, err)

	refreshed, err := flow.RefreshToken(ctx, &dto.RefreshTokenRequest{
		RefreshToken: *login.Session.RefreshToken,
	}, testMetadata())
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Session.SessionToken)
	assert.NotEqual(t, login.Session.SessionToken, refreshed.Session.SessionToken)

	// The old refresh token is spent
	_, err = flow.RefreshToken(ctx, &dto.RefreshTokenRequest{
		RefreshToken: *login.Session.RefreshToken,
	}, testMetadata())
	assert.Error(t, err)
}

func TestAuthFlow_LogoutExpiresSession(t *testing.T) {
	flow, fixtures, testDB := setupAuthFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	login, err := flow.Login(ctx, &dto.LoginRequest{
		Email:    scenario.Owner.Email,
		Password: "TestPass123!",
	}, testMetadata())
	require.NoError(t, err)

	out, err := flow.Logout(ctx, login.Session.SessionToken, testMetadata())
	require.NoError(t, err)
	assert.True(t, out.LoggedOut)

	sessions, err := repository.NewUserSessionRepository(testDB.DB).ListActiveSessionsByUser(ctx, scenario.Owner.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestAuthFlow_AuditCarriesRequestID(t *testing.T) {
	flow, fixtures, testDB := setupAuthFlow(t)
	ctx := context.WithValue(clinictesting.CreateTestContext(), utils.RequestIDKey, "req-42")

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	_, err = flow.Login(ctx, &dto.LoginRequest{
		Email:    scenario.Owner.Email,
		Password: "TestPass123!",
	}, testMetadata())
	require.NoError(t, err)

	var audit models.AuditLog
	require.NoError(t, testDB.DB.Order("id DESC").First(&audit).Error)
	require.NotNil(t, audit.RequestID)
	assert.Equal(t, "req-42", *audit.RequestID)
}

func TestAuthFlow_ChangePasswordInvalidatesOldOne(t *testing.T) {
	flow, fixtures, _ := setupAuthFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	err = flow.ChangePassword(ctx, scenario.Owner.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "TestPass123!",
		NewPassword:     "FreshPass456!",
		ConfirmPassword: "FreshPass456!",
	}, testMetadata())
	require.NoError(t, err)

	_, err = flow.Login(ctx, &dto.LoginRequest{
		Email:    scenario.Owner.Email,
		Password: "TestPass123!",
	}, testMetadata())
	assert.True(t, businessflow.IsIncorrectPassword(err))

	resp, err := flow.Login(ctx, &dto.LoginRequest{
		Email:    scenario.Owner.Email,
		Password: "FreshPass456!",
	}, testMetadata())
	require.NoError(t, err)
	assert.Equal(t, scenario.Owner.ID, resp.User.ID)
}

func TestAuthFlow_ChangePasswordRejectsWrongCurrent(t *testing.T) {
	flow, fixtures, _ := setupAuthFlow(t)
	ctx := clinictesting.CreateTestContext()

	scenario, err := fixtures.CreateClinicScenario()
	require.NoError(t, err)

	err = flow.ChangePassword(ctx, scenario.Owner.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "WrongPass123!",
		NewPassword:     "FreshPass456!",
		ConfirmPassword: "FreshPass456!",
	}, testMetadata())
	assert.True(t, businessflow.IsIncorrectPassword(err))
}
