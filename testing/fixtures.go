// Package testing provides test utilities and database setup for testing the clinic management system
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mathrand "math/rand"
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestClinic creates an active clinic
func (tf *TestFixtures) CreateTestClinic() (*models.Clinic, error) {
	clinic := &models.Clinic{
		UUID:     uuid.New(),
		Name:     fmt.Sprintf("Test Clinic %d", mathrand.Intn(100000)),
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(clinic).Error; err != nil {
		return nil, fmt.Errorf("failed to create test clinic: %w", err)
	}
	return clinic, nil
}

// CreateTestUser creates an active user in the clinic with the given role.
// The password is always "TestPass123!".
func (tf *TestFixtures) CreateTestUser(clinicID uint, role models.UserRole) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		UUID:         uuid.New(),
		ClinicID:     clinicID,
		FullName:     "Test User",
		Email:        fmt.Sprintf("user.%d.%d@example.com", clinicID, mathrand.Intn(10000000)),
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}
	return user, nil
}

// CreateTestStaffMember creates an active staff member with the given role
func (tf *TestFixtures) CreateTestStaffMember(clinicID uint, role models.StaffRole) (*models.StaffMember, error) {
	member := &models.StaffMember{
		UUID:     uuid.New(),
		ClinicID: clinicID,
		FullName: fmt.Sprintf("Test %s %d", role, mathrand.Intn(100000)),
		Role:     role,
		IsActive: utils.ToPtr(true),
	}

	if role == models.StaffRoleProfessional {
		registration := fmt.Sprintf("CRO-%05d", mathrand.Intn(100000))
		specialty := "Dentistry"
		member.RegistrationNumber = &registration
		member.Specialty = &specialty
	}

	if err := tf.DB.DB.Create(member).Error; err != nil {
		return nil, fmt.Errorf("failed to create test staff member: %w", err)
	}
	return member, nil
}

// CreateTestPatient creates an active patient
func (tf *TestFixtures) CreateTestPatient(clinicID uint) (*models.Patient, error) {
	document := fmt.Sprintf("%011d", mathrand.Intn(1000000000))
	phone := "+5511999990000"

	patient := &models.Patient{
		UUID:     uuid.New(),
		ClinicID: clinicID,
		FullName: fmt.Sprintf("Test Patient %d", mathrand.Intn(100000)),
		Document: &document,
		Phone:    &phone,
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(patient).Error; err != nil {
		return nil, fmt.Errorf("failed to create test patient: %w", err)
	}
	return patient, nil
}

// CreateTestProcedure creates an active procedure with a unique code
func (tf *TestFixtures) CreateTestProcedure(clinicID uint) (*models.Procedure, error) {
	procedure := &models.Procedure{
		ClinicID:       clinicID,
		Code:           fmt.Sprintf("PROC-%06d", mathrand.Intn(1000000)),
		Name:           "Test Procedure",
		SuggestedPrice: 300,
		Currency:       "BRL",
		DefaultUnit:    commission.UnitAppointment,
		IsActive:       utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(procedure).Error; err != nil {
		return nil, fmt.Errorf("failed to create test procedure: %w", err)
	}
	return procedure, nil
}

// CreateTestAppointment creates a scheduled appointment for the given parties
func (tf *TestFixtures) CreateTestAppointment(clinicID, patientID, professionalID, procedureID uint) (*models.Appointment, error) {
	appointment := &models.Appointment{
		UUID:           uuid.New(),
		ClinicID:       clinicID,
		PatientID:      patientID,
		ProfessionalID: professionalID,
		ProcedureID:    procedureID,
		ScheduledAt:    utils.UTCNow().Add(24 * time.Hour),
		Status:         models.AppointmentStatusScheduled,
	}

	if err := tf.DB.DB.Create(appointment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test appointment: %w", err)
	}
	return appointment, nil
}

// CreateTestCommissionRule creates an active percentage rule for the beneficiary
func (tf *TestFixtures) CreateTestCommissionRule(clinicID uint, beneficiaryType commission.BeneficiaryType, beneficiaryID *uint, value float64) (*models.CommissionRule, error) {
	rule := &models.CommissionRule{
		ClinicID:        clinicID,
		Name:            fmt.Sprintf("Test Rule %d", mathrand.Intn(100000)),
		BeneficiaryType: beneficiaryType,
		BeneficiaryID:   beneficiaryID,
		CalculationType: commission.CalculationPercentage,
		CalculationUnit: commission.UnitAppointment,
		Value:           value,
		Priority:        1,
		IsActive:        utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create test commission rule: %w", err)
	}
	return rule, nil
}

// GenerateSecureToken returns a URL-safe random token
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates an active session for the user
func (tf *TestFixtures) CreateTestSession(userID uint) (*models.UserSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.UserSession{
		CorrelationID: uuid.New(),
		UserID:        userID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}
	return session, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(userID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}
	return audit, nil
}

// ClinicScenario bundles the entities most appointment tests need
type ClinicScenario struct {
	Clinic       *models.Clinic
	Owner        *models.User
	Professional *models.StaffMember
	Seller       *models.StaffMember
	Receptionist *models.StaffMember
	Patient      *models.Patient
	Procedure    *models.Procedure
}

// CreateClinicScenario creates a clinic with one of everything
func (tf *TestFixtures) CreateClinicScenario() (*ClinicScenario, error) {
	clinic, err := tf.CreateTestClinic()
	if err != nil {
		return nil, err
	}
	owner, err := tf.CreateTestUser(clinic.ID, models.UserRoleOwner)
	if err != nil {
		return nil, err
	}
	professional, err := tf.CreateTestStaffMember(clinic.ID, models.StaffRoleProfessional)
	if err != nil {
		return nil, err
	}
	seller, err := tf.CreateTestStaffMember(clinic.ID, models.StaffRoleSeller)
	if err != nil {
		return nil, err
	}
	receptionist, err := tf.CreateTestStaffMember(clinic.ID, models.StaffRoleReceptionist)
	if err != nil {
		return nil, err
	}
	patient, err := tf.CreateTestPatient(clinic.ID)
	if err != nil {
		return nil, err
	}
	procedure, err := tf.CreateTestProcedure(clinic.ID)
	if err != nil {
		return nil, err
	}

	return &ClinicScenario{
		Clinic:       clinic,
		Owner:        owner,
		Professional: professional,
		Seller:       seller,
		Receptionist: receptionist,
		Patient:      patient,
		Procedure:    procedure,
	}, nil
}
