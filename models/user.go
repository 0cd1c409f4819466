package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents what a user may do in the system
type UserRole string

const (
	UserRoleOwner    UserRole = "owner"    // Clinic owner, full access
	UserRoleManager  UserRole = "manager"  // Manages rules, payments, and reports
	UserRoleOperator UserRole = "operator" // Schedules and completes appointments
)

// User is an account that can sign in and operate a clinic
type User struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`
	ClinicID uint      `gorm:"not null;index:idx_users_clinic_id" json:"clinic_id"`
	Clinic   Clinic    `gorm:"foreignKey:ClinicID;references:ID" json:"clinic,omitempty"`

	FullName     string   `gorm:"size:255;not null" json:"full_name"`
	Email        string   `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"` // Never serialize password hash
	Role         UserRole `gorm:"type:varchar(20);not null;default:'operator'" json:"role"`

	IsActive *bool `gorm:"default:true;index:idx_users_is_active" json:"is_active"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `gorm:"index:idx_users_last_login_at" json:"last_login_at,omitempty"`

	Sessions  []UserSession `gorm:"foreignKey:UserID" json:"-"`
	AuditLogs []AuditLog    `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	ClinicID        *uint
	Email           *string
	Role            *UserRole
	IsActive        *bool
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	LastLoginAfter  *time.Time
	LastLoginBefore *time.Time
}

func (u *User) IsOwner() bool {
	return u.Role == UserRoleOwner
}

// CanManageRules reports whether the user may create, edit, or deactivate
// commission rules and mark commissions paid.
func (u *User) CanManageRules() bool {
	return u.Role == UserRoleOwner || u.Role == UserRoleManager
}
