package dto

import "time"

// TransactionDTO represents a ledger entry in API responses
type TransactionDTO struct {
	ID            uint    `json:"id" example:"301"`
	UUID          string  `json:"uuid,omitempty"`
	CorrelationID string  `json:"correlation_id,omitempty"`
	Type          string  `json:"type" example:"income"`
	Category      string  `json:"category" example:"service_revenue"`
	Amount        float64 `json:"amount" example:"150.00"`
	Currency      string  `json:"currency" example:"BRL"`
	PaymentMethod *string `json:"payment_method,omitempty" example:"pix"`
	AppointmentID *uint   `json:"appointment_id,omitempty" example:"100"`
	BeneficiaryID *uint   `json:"beneficiary_id,omitempty" example:"7"`
	Description   string  `json:"description" example:"Service revenue: botox by Dra. Ana"`
	EntryDate     string  `json:"entry_date" example:"2024-03-04T10:00:00Z"`
}

// ListTransactionsRequest represents ledger listing filters
type ListTransactionsRequest struct {
	From     *time.Time `query:"from"`
	To       *time.Time `query:"to"`
	Type     *string    `query:"type" validate:"omitempty,oneof=income expense"`
	Page     int        `query:"page" validate:"omitempty,min=1"`
	PageSize int        `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListTransactionsResponse represents a page of ledger entries
type ListTransactionsResponse struct {
	Items    []TransactionDTO `json:"items"`
	Total    int64            `json:"total" example:"120"`
	Page     int              `json:"page" example:"1"`
	PageSize int              `json:"page_size" example:"20"`
}

// FinanceSummaryRequest represents the reporting window for the cash summary
type FinanceSummaryRequest struct {
	From time.Time `query:"from" validate:"required"`
	To   time.Time `query:"to" validate:"required"`
}

// FinanceSummaryResponse represents aggregated ledger totals over a window
type FinanceSummaryResponse struct {
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	TotalIncome  float64   `json:"total_income" example:"4500.00"`
	TotalExpense float64   `json:"total_expense" example:"1350.00"`
	NetResult    float64   `json:"net_result" example:"3150.00"`
}

// RecordAdjustmentRequest represents a manual ledger adjustment
type RecordAdjustmentRequest struct {
	Type        string    `json:"type" validate:"required,oneof=income expense" example:"expense"`
	Amount      float64   `json:"amount" validate:"required,gt=0" example:"80.00"`
	Description string    `json:"description" validate:"required,min=3,max=2000" example:"Compra de material descartavel"`
	EntryDate   time.Time `json:"entry_date" validate:"required"`
}
