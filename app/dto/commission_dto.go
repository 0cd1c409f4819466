package dto

import "time"

// CreateCommissionRuleRequest represents the request to create a commission rule.
// Nil match filters mean "matches any"; Priority 0 lets the server derive one
// from the rule's specificity.
type CreateCommissionRuleRequest struct {
	Name            string  `json:"name" validate:"required,min=3,max=255" example:"Botox 40% para Dra. Ana"`
	BeneficiaryType string  `json:"beneficiary_type" validate:"required,oneof=professional seller reception" example:"professional"`
	BeneficiaryID   *uint   `json:"beneficiary_id,omitempty" example:"7"`
	ProfessionalID  *uint   `json:"professional_id,omitempty" example:"7"`
	ProcedureCode   *string `json:"procedure_code,omitempty" validate:"omitempty,max=100" example:"botox"`
	DayOfWeek       *int    `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6" example:"2"`
	CalculationType string  `json:"calculation_type" validate:"required,oneof=percentage fixed" example:"percentage"`
	CalculationUnit string  `json:"calculation_unit,omitempty" validate:"omitempty,oneof=appointment ml arch session unit" example:"appointment"`
	Value           float64 `json:"value" validate:"required,gt=0" example:"40"`
	Priority        int     `json:"priority,omitempty" validate:"omitempty,min=0" example:"16"`
}

// UpdateCommissionRuleRequest represents the request to update a commission rule
type UpdateCommissionRuleRequest struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Value    *float64 `json:"value,omitempty" validate:"omitempty,gt=0"`
	Priority *int     `json:"priority,omitempty" validate:"omitempty,min=0"`
	IsActive *bool    `json:"is_active,omitempty"`
}

// CommissionRuleDTO represents a commission rule in API responses
type CommissionRuleDTO struct {
	ID              uint    `json:"id" example:"2"`
	ClinicID        uint    `json:"clinic_id" example:"1"`
	Name            string  `json:"name" example:"Botox 40% para Dra. Ana"`
	BeneficiaryType string  `json:"beneficiary_type" example:"professional"`
	BeneficiaryID   *uint   `json:"beneficiary_id,omitempty" example:"7"`
	ProfessionalID  *uint   `json:"professional_id,omitempty" example:"7"`
	ProcedureCode   *string `json:"procedure_code,omitempty" example:"botox"`
	DayOfWeek       *int    `json:"day_of_week,omitempty" example:"2"`
	CalculationType string  `json:"calculation_type" example:"percentage"`
	CalculationUnit string  `json:"calculation_unit" example:"appointment"`
	Value           float64 `json:"value" example:"40"`
	Priority        int     `json:"priority" example:"16"`
	Specificity     int     `json:"specificity" example:"36"`
	IsActive        *bool   `json:"is_active" example:"true"`
	CreatedAt       string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// ListCommissionRulesRequest represents rule listing filters
type ListCommissionRulesRequest struct {
	BeneficiaryType *string `query:"beneficiary_type" validate:"omitempty,oneof=professional seller reception"`
	IsActive        *bool   `query:"is_active"`
	Page            int     `query:"page" validate:"omitempty,min=1"`
	PageSize        int     `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListCommissionRulesResponse represents a page of commission rules
type ListCommissionRulesResponse struct {
	Items    []CommissionRuleDTO `json:"items"`
	Total    int64               `json:"total" example:"8"`
	Page     int                 `json:"page" example:"1"`
	PageSize int                 `json:"page_size" example:"20"`
}

// ListCommissionsRequest represents commission record listing filters
type ListCommissionsRequest struct {
	From            *time.Time `query:"from"`
	To              *time.Time `query:"to"`
	BeneficiaryID   *uint      `query:"beneficiary_id"`
	BeneficiaryType *string    `query:"beneficiary_type" validate:"omitempty,oneof=professional seller reception"`
	Status          *string    `query:"status" validate:"omitempty,oneof=pending paid cancelled"`
	Page            int        `query:"page" validate:"omitempty,min=1"`
	PageSize        int        `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListCommissionsResponse represents a page of commission records
type ListCommissionsResponse struct {
	Items    []CommissionRecordDTO `json:"items"`
	Total    int64                 `json:"total" example:"17"`
	Page     int                   `json:"page" example:"1"`
	PageSize int                   `json:"page_size" example:"20"`
}

// CommissionSummaryRequest represents the reporting window for summaries
type CommissionSummaryRequest struct {
	From time.Time `query:"from" validate:"required"`
	To   time.Time `query:"to" validate:"required"`
}

// CommissionSummaryDTO represents one beneficiary's totals over a window
type CommissionSummaryDTO struct {
	BeneficiaryType string  `json:"beneficiary_type" example:"professional"`
	BeneficiaryID   uint    `json:"beneficiary_id" example:"7"`
	BeneficiaryName string  `json:"beneficiary_name" example:"Dra. Ana"`
	Appointments    int     `json:"appointments" example:"12"`
	TotalRevenue    float64 `json:"total_revenue" example:"1800.00"`
	TotalCommission float64 `json:"total_commission" example:"720.00"`
	PendingAmount   float64 `json:"pending_amount" example:"120.00"`
	PaidAmount      float64 `json:"paid_amount" example:"600.00"`
	EffectiveRate   float64 `json:"effective_rate" example:"40"`
}

// CommissionSummaryResponse represents the summary report
type CommissionSummaryResponse struct {
	From      time.Time              `json:"from"`
	To        time.Time              `json:"to"`
	Summaries []CommissionSummaryDTO `json:"summaries"`
}
