package models

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_patients_uuid" json:"uuid"`
	ClinicID uint      `gorm:"not null;index:idx_patients_clinic_id" json:"clinic_id"`
	Clinic   Clinic    `gorm:"foreignKey:ClinicID;references:ID" json:"clinic,omitempty"`

	FullName  string     `gorm:"size:255;not null;index:idx_patients_full_name" json:"full_name"`
	Document  *string    `gorm:"size:14;index:idx_patients_document" json:"document,omitempty"`
	Phone     *string    `gorm:"size:20" json:"phone,omitempty"`
	Email     *string    `gorm:"size:255" json:"email,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Notes     *string    `gorm:"type:text" json:"notes,omitempty"`

	IsActive *bool `gorm:"default:true;index:idx_patients_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Appointments []Appointment `gorm:"foreignKey:PatientID" json:"-"`
}

func (Patient) TableName() string {
	return "patients"
}

// PatientFilter represents filter criteria for patient queries
type PatientFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	ClinicID      *uint
	FullName      *string
	Document      *string
	Phone         *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
