package models

import (
	"encoding/json"
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionType represents the direction of a ledger entry
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"  // Service revenue
	TransactionTypeExpense TransactionType = "expense" // Commission payouts and costs
)

// TransactionCategory classifies what the entry is about
type TransactionCategory string

const (
	TransactionCategoryServiceRevenue TransactionCategory = "service_revenue"
	TransactionCategoryCommission     TransactionCategory = "commission"
	TransactionCategoryAdjustment     TransactionCategory = "adjustment"
)

// Transaction represents an immutable ledger entry of a clinic
type Transaction struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CorrelationID uuid.UUID `gorm:"type:uuid;index;not null" json:"correlation_id"` // Links entries of one completion

	ClinicID uint   `gorm:"not null;index" json:"clinic_id"`
	Clinic   Clinic `gorm:"foreignKey:ClinicID;references:ID" json:"clinic,omitempty"`

	Type     TransactionType     `gorm:"type:varchar(10);not null;index" json:"type"`
	Category TransactionCategory `gorm:"type:varchar(30);not null;index" json:"category"`
	Amount   float64             `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency string              `gorm:"type:varchar(3);not null;default:'BRL'" json:"currency"`

	PaymentMethod *commission.PaymentMethod `gorm:"type:varchar(20);index" json:"payment_method,omitempty"`

	// Source references, nil for manual adjustments
	AppointmentID           *uint `gorm:"index" json:"appointment_id,omitempty"`
	CommissionCalculationID *uint `gorm:"index" json:"commission_calculation_id,omitempty"`
	BeneficiaryID           *uint `gorm:"index" json:"beneficiary_id,omitempty"`

	Description string          `gorm:"type:text" json:"description"`
	Metadata    json.RawMessage `gorm:"type:jsonb;default:'{}'" json:"metadata"`

	EntryDate time.Time `gorm:"not null;index" json:"entry_date"`

	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate ensures UUID and CorrelationID are set
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == uuid.Nil {
		t.UUID = uuid.New()
	}
	if t.CorrelationID == uuid.Nil {
		t.CorrelationID = uuid.New()
	}
	return nil
}

func (t *Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}

func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}

// SignedAmount returns the amount with expenses negated, for balance sums.
func (t *Transaction) SignedAmount() float64 {
	if t.IsExpense() {
		return -t.Amount
	}
	return t.Amount
}

// TransactionFilter represents filter criteria for transaction queries
type TransactionFilter struct {
	ID                      *uint                     `json:"id,omitempty"`
	UUID                    *uuid.UUID                `json:"uuid,omitempty"`
	CorrelationID           *uuid.UUID                `json:"correlation_id,omitempty"`
	ClinicID                *uint                     `json:"clinic_id,omitempty"`
	Type                    *TransactionType          `json:"type,omitempty"`
	Category                *TransactionCategory      `json:"category,omitempty"`
	PaymentMethod           *commission.PaymentMethod `json:"payment_method,omitempty"`
	AppointmentID           *uint                     `json:"appointment_id,omitempty"`
	CommissionCalculationID *uint                     `json:"commission_calculation_id,omitempty"`
	BeneficiaryID           *uint                     `json:"beneficiary_id,omitempty"`
	EntryAfter              *time.Time                `json:"entry_after,omitempty"`
	EntryBefore             *time.Time                `json:"entry_before,omitempty"`
	CreatedAfter            *time.Time                `json:"created_after,omitempty"`
	CreatedBefore           *time.Time                `json:"created_before,omitempty"`
}
