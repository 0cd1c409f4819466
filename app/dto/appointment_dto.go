package dto

import "time"

// ScheduleAppointmentRequest represents the request to schedule an appointment
type ScheduleAppointmentRequest struct {
	PatientID      uint      `json:"patient_id" validate:"required" example:"12"`
	ProfessionalID uint      `json:"professional_id" validate:"required" example:"7"`
	ProcedureID    uint      `json:"procedure_id" validate:"required" example:"3"`
	ScheduledAt    time.Time `json:"scheduled_at" validate:"required" example:"2024-03-04T10:00:00Z"`
	Notes          *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// CompleteAppointmentRequest represents the request to complete an appointment
// and fire commission computation. Quantity is optional and defaults to 1;
// AckMissingRule lets the operator complete even when no professional rule
// covers the appointment.
type CompleteAppointmentRequest struct {
	ServiceValue   float64 `json:"service_value" validate:"required,gt=0" example:"150.00"`
	Quantity       *int    `json:"quantity,omitempty" validate:"omitempty,gt=0" example:"2"`
	PaymentMethod  string  `json:"payment_method" validate:"required,oneof=cash credit debit pix voucher" example:"pix"`
	SellerID       *uint   `json:"seller_id,omitempty" example:"12"`
	ReceptionistID *uint   `json:"receptionist_id,omitempty" example:"20"`
	AckMissingRule bool    `json:"ack_missing_rule,omitempty" example:"false"`
}

// AppointmentDTO represents an appointment in API responses
type AppointmentDTO struct {
	ID               uint       `json:"id" example:"100"`
	UUID             string     `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ClinicID         uint       `json:"clinic_id" example:"1"`
	PatientID        uint       `json:"patient_id" example:"12"`
	PatientName      string     `json:"patient_name" example:"Joana Lima"`
	ProfessionalID   uint       `json:"professional_id" example:"7"`
	ProfessionalName string     `json:"professional_name" example:"Dra. Ana"`
	ProcedureID      uint       `json:"procedure_id" example:"3"`
	ProcedureCode    string     `json:"procedure_code" example:"botox"`
	ProcedureName    string     `json:"procedure_name" example:"Botox facial"`
	ScheduledAt      time.Time  `json:"scheduled_at"`
	Status           string     `json:"status" example:"scheduled"`
	Notes            *string    `json:"notes,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	ServiceValue     *float64   `json:"service_value,omitempty" example:"150.00"`
	Quantity         *int       `json:"quantity,omitempty" example:"2"`
	PaymentMethod    *string    `json:"payment_method,omitempty" example:"pix"`
	SellerID         *uint      `json:"seller_id,omitempty"`
	ReceptionistID   *uint      `json:"receptionist_id,omitempty"`
	CreatedAt        string     `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// ValidationIssueDTO represents one pre-completion validation finding
type ValidationIssueDTO struct {
	Code        string `json:"code" example:"NO_RULE"`
	Message     string `json:"message" example:"no active commission rule covers procedure \"botox\" for this professional"`
	Overridable bool   `json:"overridable" example:"true"`
}

// CommissionRecordDTO represents one commission produced by a completion
type CommissionRecordDTO struct {
	ID              uint    `json:"id" example:"55"`
	UUID            string  `json:"uuid,omitempty"`
	AppointmentID   uint    `json:"appointment_id" example:"100"`
	BeneficiaryType string  `json:"beneficiary_type" example:"professional"`
	BeneficiaryID   uint    `json:"beneficiary_id" example:"7"`
	BeneficiaryName string  `json:"beneficiary_name" example:"Dra. Ana"`
	RuleID          uint    `json:"rule_id" example:"2"`
	RuleType        string  `json:"rule_type" example:"percentage"`
	RuleUnit        string  `json:"rule_unit" example:"appointment"`
	RuleValue       float64 `json:"rule_value" example:"40"`
	ServiceValue    float64 `json:"service_value" example:"150.00"`
	Quantity        int     `json:"quantity" example:"1"`
	Amount          float64 `json:"amount" example:"60.00"`
	Status          string  `json:"status" example:"pending"`
	ServiceDate     string  `json:"service_date" example:"2024-03-04T10:00:00Z"`
}

// CompleteAppointmentResponse represents the outcome of completing an appointment
type CompleteAppointmentResponse struct {
	Appointment AppointmentDTO        `json:"appointment"`
	Commissions []CommissionRecordDTO `json:"commissions"`
	Revenue     TransactionDTO        `json:"revenue"`
	Expenses    []TransactionDTO      `json:"expenses"`
}

// ValidationFailedResponse represents blocked completion attempts
type ValidationFailedResponse struct {
	Issues []ValidationIssueDTO `json:"issues"`
}

// ListAppointmentsRequest represents appointment listing filters
type ListAppointmentsRequest struct {
	From           *time.Time `query:"from"`
	To             *time.Time `query:"to"`
	ProfessionalID *uint      `query:"professional_id"`
	PatientID      *uint      `query:"patient_id"`
	Status         *string    `query:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Page           int        `query:"page" validate:"omitempty,min=1"`
	PageSize       int        `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListAppointmentsResponse represents a page of appointments
type ListAppointmentsResponse struct {
	Items    []AppointmentDTO `json:"items"`
	Total    int64            `json:"total" example:"42"`
	Page     int              `json:"page" example:"1"`
	PageSize int              `json:"page_size" example:"20"`
}
