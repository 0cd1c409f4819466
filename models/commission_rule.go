package models

import (
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
)

// CommissionRule is the stored form of an engine rule. NULL in
// professional_id, procedure_code, or day_of_week means the filter matches
// any value; AsRule translates that into the engine's selectors.
type CommissionRule struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ClinicID uint   `gorm:"not null;index:idx_commission_rules_clinic_id" json:"clinic_id"`
	Clinic   Clinic `gorm:"foreignKey:ClinicID;references:ID" json:"clinic,omitempty"`

	Name string `gorm:"size:255;not null" json:"name"`

	BeneficiaryType commission.BeneficiaryType `gorm:"type:varchar(20);not null;index:idx_commission_rules_beneficiary_type" json:"beneficiary_type"`
	BeneficiaryID   *uint                      `gorm:"index:idx_commission_rules_beneficiary_id" json:"beneficiary_id,omitempty"`
	Beneficiary     *StaffMember               `gorm:"foreignKey:BeneficiaryID;references:ID" json:"beneficiary,omitempty"`

	// Match filters; NULL matches anything
	ProfessionalID *uint        `gorm:"index:idx_commission_rules_professional_id" json:"professional_id,omitempty"`
	Professional   *StaffMember `gorm:"foreignKey:ProfessionalID;references:ID" json:"professional,omitempty"`
	ProcedureCode  *string      `gorm:"size:100;index:idx_commission_rules_procedure_code" json:"procedure_code,omitempty"`
	DayOfWeek      *int         `gorm:"check:day_of_week BETWEEN 0 AND 6" json:"day_of_week,omitempty"`

	CalculationType commission.CalculationType `gorm:"type:varchar(20);not null" json:"calculation_type"`
	CalculationUnit commission.CalculationUnit `gorm:"type:varchar(20);not null;default:'appointment'" json:"calculation_unit"`
	Value           float64                    `gorm:"type:numeric(12,2);not null;check:value > 0" json:"value"`

	Priority int   `gorm:"not null;index:idx_commission_rules_priority" json:"priority"`
	IsActive *bool `gorm:"default:true;index:idx_commission_rules_is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (CommissionRule) TableName() string {
	return "commission_rules"
}

// CommissionRuleFilter represents filter criteria for commission rule queries
type CommissionRuleFilter struct {
	ID              *uint
	ClinicID        *uint
	BeneficiaryType *commission.BeneficiaryType
	BeneficiaryID   *uint
	ProfessionalID  *uint
	ProcedureCode   *string
	DayOfWeek       *int
	IsActive        *bool
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
}

// AsRule converts the stored row into the engine's representation.
func (r *CommissionRule) AsRule() commission.Rule {
	rule := commission.Rule{
		ID:            r.ID,
		ClinicID:      r.ClinicID,
		Beneficiary:   r.BeneficiaryType,
		BeneficiaryID: r.BeneficiaryID,
		Professional:  commission.Any[uint](),
		Procedure:     commission.Any[string](),
		Day:           commission.Any[time.Weekday](),
		Type:          r.CalculationType,
		Unit:          r.CalculationUnit,
		Value:         r.Value,
		Priority:      r.Priority,
		Active:        r.IsActive != nil && *r.IsActive,
	}
	if r.ProfessionalID != nil {
		rule.Professional = commission.Only(*r.ProfessionalID)
	}
	if r.ProcedureCode != nil {
		rule.Procedure = commission.Only(*r.ProcedureCode)
	}
	if r.DayOfWeek != nil {
		rule.Day = commission.Only(time.Weekday(*r.DayOfWeek))
	}
	return rule
}
