package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       *uint           `gorm:"index:idx_audit_user_id" json:"user_id,omitempty"`
	User         *User           `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	ClinicID     *uint           `gorm:"index:idx_audit_clinic_id" json:"clinic_id,omitempty"`
	Action       string          `gorm:"size:100;not null;index:idx_audit_action" json:"action"`
	Description  *string         `gorm:"type:text" json:"description,omitempty"`
	IPAddress    *string         `gorm:"type:inet;index:idx_audit_ip_address" json:"ip_address,omitempty"`
	UserAgent    *string         `gorm:"type:text" json:"user_agent,omitempty"`
	RequestID    *string         `gorm:"size:255;index:idx_audit_request_id" json:"request_id,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb;index:idx_audit_metadata,type:gin" json:"metadata,omitempty"`
	Success      *bool           `gorm:"default:true;index:idx_audit_success" json:"success"`
	ErrorMessage *string         `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_audit_created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}

// Audit action constants
const (
	AuditActionLoginSuccess          = "login_success"
	AuditActionLoginFailed           = "login_failed"
	AuditActionLogout                = "logout"
	AuditActionSessionCreated        = "session_created"
	AuditActionSessionExpired        = "session_expired"
	AuditActionAppointmentScheduled  = "appointment_scheduled"
	AuditActionAppointmentCompleted  = "appointment_completed"
	AuditActionAppointmentCancelled  = "appointment_cancelled"
	AuditActionCommissionRuleCreated = "commission_rule_created"
	AuditActionCommissionRuleUpdated = "commission_rule_updated"
	AuditActionCommissionRuleRemoved = "commission_rule_removed"
	AuditActionCommissionPaid        = "commission_paid"
	AuditActionCommissionCancelled   = "commission_cancelled"
	AuditActionTransactionRecorded   = "transaction_recorded"
)

// AuditLogFilter represents filter criteria for audit log queries
type AuditLogFilter struct {
	ID            *uint
	UserID        *uint
	ClinicID      *uint
	Action        *string
	Success       *bool
	IPAddress     *string
	RequestID     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (a *AuditLog) IsFailed() bool {
	return a.Success != nil && !*a.Success
}

func (a *AuditLog) IsFinancialEvent() bool {
	financialActions := map[string]bool{
		AuditActionAppointmentCompleted: true,
		AuditActionCommissionPaid:       true,
		AuditActionCommissionCancelled:  true,
		AuditActionTransactionRecorded:  true,
	}
	return financialActions[a.Action]
}
