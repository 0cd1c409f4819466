package models

import (
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type Appointment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UUID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_appointments_uuid" json:"uuid"`
	ClinicID uint      `gorm:"not null;index:idx_appointments_clinic_id" json:"clinic_id"`
	Clinic   Clinic    `gorm:"foreignKey:ClinicID;references:ID" json:"clinic,omitempty"`

	PatientID uint    `gorm:"not null;index:idx_appointments_patient_id" json:"patient_id"`
	Patient   Patient `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`

	ProfessionalID uint        `gorm:"not null;index:idx_appointments_professional_id" json:"professional_id"`
	Professional   StaffMember `gorm:"foreignKey:ProfessionalID;references:ID" json:"professional,omitempty"`

	ProcedureID uint      `gorm:"not null;index:idx_appointments_procedure_id" json:"procedure_id"`
	Procedure   Procedure `gorm:"foreignKey:ProcedureID;references:ID" json:"procedure,omitempty"`

	ScheduledAt time.Time         `gorm:"not null;index:idx_appointments_scheduled_at" json:"scheduled_at"`
	Status      AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index:idx_appointments_status" json:"status"`
	Notes       *string           `gorm:"type:text" json:"notes,omitempty"`

	// Completion metadata, set when the appointment transitions to completed
	CompletedAt   *time.Time                `json:"completed_at,omitempty"`
	ServiceValue  *float64                  `gorm:"type:numeric(12,2)" json:"service_value,omitempty"`
	Quantity      *int                      `json:"quantity,omitempty"`
	PaymentMethod *commission.PaymentMethod `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	SellerID      *uint                     `gorm:"index:idx_appointments_seller_id" json:"seller_id,omitempty"`
	Seller        *StaffMember              `gorm:"foreignKey:SellerID;references:ID" json:"seller,omitempty"`
	ReceptionID   *uint                     `json:"reception_id,omitempty"`
	Receptionist  *StaffMember              `gorm:"foreignKey:ReceptionID;references:ID" json:"receptionist,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_appointments_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	CommissionCalculations []CommissionCalculation `gorm:"foreignKey:AppointmentID" json:"-"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// AppointmentFilter represents filter criteria for appointment queries
type AppointmentFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	ClinicID        *uint
	PatientID       *uint
	ProfessionalID  *uint
	ProcedureID     *uint
	SellerID        *uint
	Status          *AppointmentStatus
	ScheduledAfter  *time.Time
	ScheduledBefore *time.Time
	CompletedAfter  *time.Time
	CompletedBefore *time.Time
}

func (a *Appointment) IsScheduled() bool {
	return a.Status == AppointmentStatusScheduled
}

func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// CanBeCompleted reports whether the appointment may transition to completed.
// Cancelled appointments stay cancelled. An already completed appointment may
// be completed again once its commission records are cancelled, which the
// flow checks separately.
func (a *Appointment) CanBeCompleted() bool {
	return a.Status != AppointmentStatusCancelled
}

func (a *Appointment) CanBeCancelled() bool {
	return a.Status == AppointmentStatusScheduled
}
