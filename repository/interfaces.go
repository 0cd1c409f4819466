// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ClinicRepository defines operations for clinics
type ClinicRepository interface {
	Repository[models.Clinic, models.ClinicFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Clinic, error)
}

// StaffMemberRepository defines operations for staff members
type StaffMemberRepository interface {
	Repository[models.StaffMember, models.StaffMemberFilter]
	ByUUID(ctx context.Context, uuid string) (*models.StaffMember, error)
	ListByClinic(ctx context.Context, clinicID uint, role *models.StaffRole) ([]*models.StaffMember, error)
}

// PatientRepository defines operations for patients
type PatientRepository interface {
	Repository[models.Patient, models.PatientFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Patient, error)
	ByDocument(ctx context.Context, clinicID uint, document string) (*models.Patient, error)
	SearchByName(ctx context.Context, clinicID uint, name string, limit, offset int) ([]*models.Patient, error)
}

// ProcedureRepository defines operations for procedures
type ProcedureRepository interface {
	Repository[models.Procedure, models.ProcedureFilter]
	ByCode(ctx context.Context, clinicID uint, code string) (*models.Procedure, error)
	ListActiveByClinic(ctx context.Context, clinicID uint) ([]*models.Procedure, error)
}

// AppointmentRepository defines operations for appointments
type AppointmentRepository interface {
	Repository[models.Appointment, models.AppointmentFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Appointment, error)
	ListByClinicAndRange(ctx context.Context, clinicID uint, from, to time.Time, limit, offset int) ([]*models.Appointment, error)
	Update(ctx context.Context, appointment *models.Appointment) error
}

// CommissionRuleRepository defines operations for commission rules. It also
// satisfies commission.RuleSource so the engine can read rules directly.
type CommissionRuleRepository interface {
	Repository[models.CommissionRule, models.CommissionRuleFilter]
	ListActiveByClinic(ctx context.Context, clinicID uint) ([]*models.CommissionRule, error)
	ActiveRulesForClinic(ctx context.Context, clinicID uint) ([]commission.Rule, error)
	Update(ctx context.Context, rule *models.CommissionRule) error
	Deactivate(ctx context.Context, ruleID uint) error
}

// CommissionCalculationRepository defines operations for commission calculations
type CommissionCalculationRepository interface {
	Repository[models.CommissionCalculation, models.CommissionCalculationFilter]
	ByUUID(ctx context.Context, uuid string) (*models.CommissionCalculation, error)
	ListNonCancelledByAppointment(ctx context.Context, appointmentID uint) ([]*models.CommissionCalculation, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID uint, from, to time.Time) ([]*models.CommissionCalculation, error)
	ListByClinicAndRange(ctx context.Context, clinicID uint, from, to time.Time, status *commission.Status) ([]*models.CommissionCalculation, error)
	Update(ctx context.Context, calculation *models.CommissionCalculation) error
}

// TransactionRepository defines operations for ledger transactions
type TransactionRepository interface {
	Repository[models.Transaction, models.TransactionFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.Transaction, error)
	ByCorrelationID(ctx context.Context, correlationID uuid.UUID) ([]*models.Transaction, error)
	ListByClinicAndRange(ctx context.Context, clinicID uint, from, to time.Time, limit, offset int) ([]*models.Transaction, error)
	SumByClinicAndRange(ctx context.Context, clinicID uint, txType models.TransactionType, from, to time.Time) (float64, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUUID(ctx context.Context, uuid string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// UserSessionRepository defines operations for user sessions
type UserSessionRepository interface {
	Repository[models.UserSession, models.UserSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.UserSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.UserSession, error)
	ListActiveSessionsByUser(ctx context.Context, userID uint) ([]*models.UserSession, error)
	ExpireSession(ctx context.Context, sessionID uint) error
	ExpireAllUserSessions(ctx context.Context, userID uint) error
	CleanupExpiredSessions(ctx context.Context) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	ListFinancialEvents(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
