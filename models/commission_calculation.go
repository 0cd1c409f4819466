package models

import (
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/google/uuid"
)

// CommissionCalculation is one commission owed to one beneficiary for one
// completed appointment. Rule parameters are snapshotted at completion time
// so later rule edits never rewrite history.
type CommissionCalculation struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_commission_calculations_uuid" json:"uuid"`

	ClinicID uint   `gorm:"not null;index:idx_commission_calculations_clinic_id" json:"clinic_id"`
	Clinic   Clinic `gorm:"foreignKey:ClinicID;references:ID" json:"clinic,omitempty"`

	// A partial unique index over (appointment_id, beneficiary_type,
	// beneficiary_id) WHERE status <> 'cancelled' is created in migration;
	// gorm tags cannot express the predicate
	AppointmentID uint `gorm:"not null;index:idx_commission_calculations_appointment_id" json:"appointment_id"`
	Appointment   Appointment `gorm:"foreignKey:AppointmentID;references:ID" json:"appointment,omitempty"`

	BeneficiaryType commission.BeneficiaryType `gorm:"type:varchar(20);not null;index:idx_commission_calculations_beneficiary_type" json:"beneficiary_type"`
	BeneficiaryID   uint                       `gorm:"not null;index:idx_commission_calculations_beneficiary_id" json:"beneficiary_id"`
	Beneficiary     StaffMember                `gorm:"foreignKey:BeneficiaryID;references:ID" json:"beneficiary,omitempty"`

	// Snapshot of the appointment and the rule at firing time
	ProfessionalID uint                       `gorm:"not null;index:idx_commission_calculations_professional_id" json:"professional_id"`
	ProcedureCode  string                     `gorm:"size:100;not null" json:"procedure_code"`
	ServiceValue   float64                    `gorm:"type:numeric(12,2);not null" json:"service_value"`
	Quantity       int                        `gorm:"not null;default:1" json:"quantity"`
	RuleID         uint                       `gorm:"not null;index:idx_commission_calculations_rule_id" json:"rule_id"`
	RuleType       commission.CalculationType `gorm:"type:varchar(20);not null" json:"rule_type"`
	RuleUnit       commission.CalculationUnit `gorm:"type:varchar(20);not null" json:"rule_unit"`
	RuleValue      float64                    `gorm:"type:numeric(12,2);not null" json:"rule_value"`

	Amount float64           `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status commission.Status `gorm:"type:varchar(20);not null;default:'pending';index:idx_commission_calculations_status" json:"status"`

	ServiceDate time.Time  `gorm:"not null;index:idx_commission_calculations_service_date" json:"service_date"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_commission_calculations_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (CommissionCalculation) TableName() string {
	return "commission_calculations"
}

// CommissionCalculationFilter represents filter criteria for commission calculation queries
type CommissionCalculationFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	ClinicID        *uint
	AppointmentID   *uint
	BeneficiaryType *commission.BeneficiaryType
	BeneficiaryID   *uint
	ProfessionalID  *uint
	ProcedureCode   *string
	RuleID          *uint
	Status          *commission.Status
	ServiceAfter    *time.Time
	ServiceBefore   *time.Time
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}

func (c *CommissionCalculation) IsPending() bool {
	return c.Status == commission.StatusPending
}

func (c *CommissionCalculation) IsPaid() bool {
	return c.Status == commission.StatusPaid
}

func (c *CommissionCalculation) IsCancelled() bool {
	return c.Status == commission.StatusCancelled
}

// CanBePaid reports whether the record may transition to paid. Paid is
// terminal and cancelled records never come back.
func (c *CommissionCalculation) CanBePaid() bool {
	return c.Status == commission.StatusPending
}

func (c *CommissionCalculation) CanBeCancelled() bool {
	return c.Status == commission.StatusPending
}

// MarkAsPaid transitions the record to paid at the given time.
func (c *CommissionCalculation) MarkAsPaid(at time.Time) {
	c.Status = commission.StatusPaid
	c.PaidAt = &at
}

// MarkAsCancelled transitions the record to cancelled at the given time.
func (c *CommissionCalculation) MarkAsCancelled(at time.Time) {
	c.Status = commission.StatusCancelled
	c.CancelledAt = &at
}

// AsRecord converts the stored row into the engine's representation for
// aggregation.
func (c *CommissionCalculation) AsRecord() commission.Record {
	return commission.Record{
		AppointmentID:   c.AppointmentID,
		ClinicID:        c.ClinicID,
		ProfessionalID:  c.ProfessionalID,
		Beneficiary:     c.BeneficiaryType,
		BeneficiaryID:   c.BeneficiaryID,
		BeneficiaryName: c.Beneficiary.FullName,
		Procedure:       c.ProcedureCode,
		ServiceValue:    c.ServiceValue,
		Quantity:        c.Quantity,
		RuleID:          c.RuleID,
		RuleType:        c.RuleType,
		RuleUnit:        c.RuleUnit,
		RuleValue:       c.RuleValue,
		Amount:          c.Amount,
		Date:            c.ServiceDate,
		Status:          c.Status,
	}
}
