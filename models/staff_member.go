package models

import (
	"time"

	"github.com/google/uuid"
)

// StaffRole represents the role of a staff member within a clinic
type StaffRole string

const (
	StaffRoleProfessional StaffRole = "professional" // Performs procedures
	StaffRoleSeller       StaffRole = "seller"       // Sells treatment packages
	StaffRoleReceptionist StaffRole = "receptionist" // Front desk
)

type StaffMember struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_staff_members_uuid" json:"uuid"`
	ClinicID uint      `gorm:"not null;index:idx_staff_members_clinic_id" json:"clinic_id"`
	Clinic   Clinic    `gorm:"foreignKey:ClinicID;references:ID" json:"clinic,omitempty"`

	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Role     StaffRole `gorm:"type:varchar(20);not null;index:idx_staff_members_role" json:"role"`

	// Professional registration (CRM, CRO, etc.), only for professionals
	RegistrationNumber *string `gorm:"size:30" json:"registration_number,omitempty"`
	Specialty          *string `gorm:"size:100" json:"specialty,omitempty"`

	Phone *string `gorm:"size:20" json:"phone,omitempty"`
	Email *string `gorm:"size:255" json:"email,omitempty"`

	IsActive *bool `gorm:"default:true;index:idx_staff_members_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (StaffMember) TableName() string {
	return "staff_members"
}

// StaffMemberFilter represents filter criteria for staff member queries
type StaffMemberFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	ClinicID      *uint
	Role          *StaffRole
	FullName      *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (s *StaffMember) IsProfessional() bool {
	return s.Role == StaffRoleProfessional
}

func (s *StaffMember) IsSeller() bool {
	return s.Role == StaffRoleSeller
}

func (s *StaffMember) IsReceptionist() bool {
	return s.Role == StaffRoleReceptionist
}
