package dto

import "time"

// StaffMemberDTO represents a staff member in API responses
type StaffMemberDTO struct {
	ID                 uint    `json:"id" example:"7"`
	UUID               string  `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ClinicID           uint    `json:"clinic_id" example:"1"`
	FullName           string  `json:"full_name" example:"Dra. Ana"`
	Role               string  `json:"role" example:"professional"`
	RegistrationNumber *string `json:"registration_number,omitempty" example:"CRM-12345"`
	Specialty          *string `json:"specialty,omitempty" example:"Dermatologia"`
	IsActive           *bool   `json:"is_active" example:"true"`
}

// CreateStaffMemberRequest represents the request to register a staff member
type CreateStaffMemberRequest struct {
	FullName           string  `json:"full_name" validate:"required,min=3,max=255" example:"Dra. Ana"`
	Role               string  `json:"role" validate:"required,oneof=professional seller receptionist" example:"professional"`
	RegistrationNumber *string `json:"registration_number,omitempty" validate:"omitempty,max=30"`
	Specialty          *string `json:"specialty,omitempty" validate:"omitempty,max=100"`
	Phone              *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email              *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

// PatientDTO represents a patient in API responses
type PatientDTO struct {
	ID        uint       `json:"id" example:"12"`
	UUID      string     `json:"uuid"`
	ClinicID  uint       `json:"clinic_id" example:"1"`
	FullName  string     `json:"full_name" example:"Joana Lima"`
	Document  *string    `json:"document,omitempty" example:"12345678901"`
	Phone     *string    `json:"phone,omitempty"`
	Email     *string    `json:"email,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	IsActive  *bool      `json:"is_active" example:"true"`
}

// CreatePatientRequest represents the request to register a patient
type CreatePatientRequest struct {
	FullName  string     `json:"full_name" validate:"required,min=3,max=255" example:"Joana Lima"`
	Document  *string    `json:"document,omitempty" validate:"omitempty,max=14"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email,max=255"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Notes     *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ProcedureDTO represents a price table entry in API responses
type ProcedureDTO struct {
	ID             uint    `json:"id" example:"3"`
	ClinicID       uint    `json:"clinic_id" example:"1"`
	Code           string  `json:"code" example:"botox"`
	Name           string  `json:"name" example:"Botox facial"`
	SuggestedPrice float64 `json:"suggested_price" example:"150.00"`
	Currency       string  `json:"currency" example:"BRL"`
	DefaultUnit    string  `json:"default_unit" example:"ml"`
	Description    *string `json:"description,omitempty"`
	IsActive       *bool   `json:"is_active" example:"true"`
}

// CreateProcedureRequest represents the request to add a price table entry
type CreateProcedureRequest struct {
	Code           string  `json:"code" validate:"required,min=2,max=100" example:"botox"`
	Name           string  `json:"name" validate:"required,min=3,max=255" example:"Botox facial"`
	SuggestedPrice float64 `json:"suggested_price" validate:"required,gt=0" example:"150.00"`
	DefaultUnit    string  `json:"default_unit,omitempty" validate:"omitempty,oneof=appointment ml arch session unit" example:"ml"`
	Description    *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}
