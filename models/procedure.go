package models

import (
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/utils"
)

type Procedure struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClinicID uint   `gorm:"not null;index:idx_procedures_clinic_id;uniqueIndex:uk_procedures_clinic_code" json:"clinic_id"`
	Clinic   Clinic `gorm:"foreignKey:ClinicID;references:ID" json:"clinic,omitempty"`

	// Code is the stable identifier commission rules match against;
	// Name is the display label and may change freely.
	Code string `gorm:"size:100;not null;uniqueIndex:uk_procedures_clinic_code" json:"code"`
	Name string `gorm:"size:255;not null" json:"name"`

	// SuggestedPrice pre-fills the service value at completion time; the
	// operator can still override it per appointment.
	SuggestedPrice float64                    `gorm:"type:numeric(12,2);not null" json:"suggested_price"`
	Currency       string                     `gorm:"type:varchar(3);not null;default:'BRL'" json:"currency"`
	DefaultUnit    commission.CalculationUnit `gorm:"type:varchar(20);not null;default:'appointment'" json:"default_unit"`

	Description *string `gorm:"type:text" json:"description,omitempty"`
	IsActive    *bool   `gorm:"default:true;index:idx_procedures_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Procedure) TableName() string {
	return "procedures"
}

// PriceOrDefault returns the table price, or utils.DefaultServiceValue for
// entries that predate the price requirement.
func (p *Procedure) PriceOrDefault() float64 {
	if p.SuggestedPrice > 0 {
		return p.SuggestedPrice
	}
	return utils.DefaultServiceValue
}

// ProcedureFilter represents filter criteria for procedure queries
type ProcedureFilter struct {
	ID            *uint
	ClinicID      *uint
	Code          *string
	Name          *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
