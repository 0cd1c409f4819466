// Package models contains domain entities and business models for the clinic management system
package models

import (
	"time"

	"github.com/google/uuid"
)

type Clinic struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_clinics_uuid" json:"uuid"`
	Name string    `gorm:"size:255;not null" json:"name"`

	// Contact and address
	Phone      *string `gorm:"size:20" json:"phone,omitempty"`
	Email      *string `gorm:"size:255" json:"email,omitempty"`
	Address    *string `gorm:"size:255" json:"address,omitempty"`
	City       *string `gorm:"size:100" json:"city,omitempty"`
	State      *string `gorm:"size:2" json:"state,omitempty"`
	PostalCode *string `gorm:"size:10" json:"postal_code,omitempty"`

	IsActive *bool `gorm:"default:true;index:idx_clinics_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_clinics_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	StaffMembers    []StaffMember    `gorm:"foreignKey:ClinicID" json:"-"`
	Patients        []Patient        `gorm:"foreignKey:ClinicID" json:"-"`
	Procedures      []Procedure      `gorm:"foreignKey:ClinicID" json:"-"`
	Appointments    []Appointment    `gorm:"foreignKey:ClinicID" json:"-"`
	CommissionRules []CommissionRule `gorm:"foreignKey:ClinicID" json:"-"`
}

func (Clinic) TableName() string {
	return "clinics"
}

// ClinicFilter represents filter criteria for clinic queries
type ClinicFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	City          *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
