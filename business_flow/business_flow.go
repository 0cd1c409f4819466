// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/models"
)

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	Location   *LocationInfo     `json:"location,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// LocationInfo holds geographical location information
type LocationInfo struct {
	Country   string `json:"country,omitempty"`
	Region    string `json:"region,omitempty"`
	City      string `json:"city,omitempty"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetLocation sets location information
func (cm *ClientMetadata) SetLocation(location *LocationInfo) {
	cm.Location = location
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToAuthUserDTO converts a user model to AuthUserDTO for authentication responses
func ToAuthUserDTO(user models.User) dto.AuthUserDTO {
	return dto.AuthUserDTO{
		ID:         user.ID,
		UUID:       user.UUID.String(),
		ClinicID:   user.ClinicID,
		ClinicName: user.Clinic.Name,
		FullName:   user.FullName,
		Email:      user.Email,
		Role:       string(user.Role),
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
	}
}

func ToUserSessionDTO(session models.UserSession) dto.UserSessionDTO {
	return dto.UserSessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToAppointmentDTO converts an appointment model to its API representation.
// Patient, Professional, and Procedure must be preloaded for the name fields.
func ToAppointmentDTO(appointment models.Appointment) dto.AppointmentDTO {
	out := dto.AppointmentDTO{
		ID:               appointment.ID,
		UUID:             appointment.UUID.String(),
		ClinicID:         appointment.ClinicID,
		PatientID:        appointment.PatientID,
		PatientName:      appointment.Patient.FullName,
		ProfessionalID:   appointment.ProfessionalID,
		ProfessionalName: appointment.Professional.FullName,
		ProcedureID:      appointment.ProcedureID,
		ProcedureCode:    appointment.Procedure.Code,
		ProcedureName:    appointment.Procedure.Name,
		ScheduledAt:      appointment.ScheduledAt,
		Status:           string(appointment.Status),
		Notes:            appointment.Notes,
		CompletedAt:      appointment.CompletedAt,
		ServiceValue:     appointment.ServiceValue,
		Quantity:         appointment.Quantity,
		SellerID:         appointment.SellerID,
		ReceptionistID:   appointment.ReceptionID,
		CreatedAt:        appointment.CreatedAt.Format(time.RFC3339),
	}
	if appointment.PaymentMethod != nil {
		method := string(*appointment.PaymentMethod)
		out.PaymentMethod = &method
	}
	return out
}

// ToCommissionRuleDTO converts a commission rule model to its API representation
func ToCommissionRuleDTO(rule models.CommissionRule) dto.CommissionRuleDTO {
	return dto.CommissionRuleDTO{
		ID:              rule.ID,
		ClinicID:        rule.ClinicID,
		Name:            rule.Name,
		BeneficiaryType: string(rule.BeneficiaryType),
		BeneficiaryID:   rule.BeneficiaryID,
		ProfessionalID:  rule.ProfessionalID,
		ProcedureCode:   rule.ProcedureCode,
		DayOfWeek:       rule.DayOfWeek,
		CalculationType: string(rule.CalculationType),
		CalculationUnit: string(rule.CalculationUnit),
		Value:           rule.Value,
		Priority:        rule.Priority,
		Specificity:     rule.AsRule().Specificity(),
		IsActive:        rule.IsActive,
		CreatedAt:       rule.CreatedAt.Format(time.RFC3339),
	}
}

// ToCommissionRecordDTO converts a stored commission calculation to its API representation
func ToCommissionRecordDTO(calc models.CommissionCalculation) dto.CommissionRecordDTO {
	return dto.CommissionRecordDTO{
		ID:              calc.ID,
		UUID:            calc.UUID.String(),
		AppointmentID:   calc.AppointmentID,
		BeneficiaryType: string(calc.BeneficiaryType),
		BeneficiaryID:   calc.BeneficiaryID,
		BeneficiaryName: calc.Beneficiary.FullName,
		RuleID:          calc.RuleID,
		RuleType:        string(calc.RuleType),
		RuleUnit:        string(calc.RuleUnit),
		RuleValue:       calc.RuleValue,
		ServiceValue:    calc.ServiceValue,
		Quantity:        calc.Quantity,
		Amount:          calc.Amount,
		Status:          string(calc.Status),
		ServiceDate:     calc.ServiceDate.Format(time.RFC3339),
	}
}

// ToTransactionDTO converts a ledger entry to its API representation
func ToTransactionDTO(tx models.Transaction) dto.TransactionDTO {
	out := dto.TransactionDTO{
		ID:            tx.ID,
		UUID:          tx.UUID.String(),
		CorrelationID: tx.CorrelationID.String(),
		Type:          string(tx.Type),
		Category:      string(tx.Category),
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		AppointmentID: tx.AppointmentID,
		BeneficiaryID: tx.BeneficiaryID,
		Description:   tx.Description,
		EntryDate:     tx.EntryDate.Format(time.RFC3339),
	}
	if tx.PaymentMethod != nil {
		method := string(*tx.PaymentMethod)
		out.PaymentMethod = &method
	}
	return out
}

// ToCommissionSummaryDTO converts an aggregated beneficiary summary to its API representation
func ToCommissionSummaryDTO(summary commission.Summary) dto.CommissionSummaryDTO {
	return dto.CommissionSummaryDTO{
		BeneficiaryType: string(summary.Beneficiary),
		BeneficiaryID:   summary.BeneficiaryID,
		BeneficiaryName: summary.BeneficiaryName,
		Appointments:    summary.Appointments,
		TotalRevenue:    summary.TotalRevenue,
		TotalCommission: summary.TotalCommission,
		PendingAmount:   summary.PendingAmount,
		PaidAmount:      summary.PaidAmount,
		EffectiveRate:   summary.EffectiveRate,
	}
}

// ToStaffMemberDTO converts a staff member model to its API representation
func ToStaffMemberDTO(member models.StaffMember) dto.StaffMemberDTO {
	return dto.StaffMemberDTO{
		ID:                 member.ID,
		UUID:               member.UUID.String(),
		ClinicID:           member.ClinicID,
		FullName:           member.FullName,
		Role:               string(member.Role),
		RegistrationNumber: member.RegistrationNumber,
		Specialty:          member.Specialty,
		IsActive:           member.IsActive,
	}
}

// ToPatientDTO converts a patient model to its API representation
func ToPatientDTO(patient models.Patient) dto.PatientDTO {
	return dto.PatientDTO{
		ID:        patient.ID,
		UUID:      patient.UUID.String(),
		ClinicID:  patient.ClinicID,
		FullName:  patient.FullName,
		Document:  patient.Document,
		Phone:     patient.Phone,
		Email:     patient.Email,
		BirthDate: patient.BirthDate,
		IsActive:  patient.IsActive,
	}
}

// ToProcedureDTO converts a procedure model to its API representation
func ToProcedureDTO(procedure models.Procedure) dto.ProcedureDTO {
	return dto.ProcedureDTO{
		ID:             procedure.ID,
		ClinicID:       procedure.ClinicID,
		Code:           procedure.Code,
		Name:           procedure.Name,
		SuggestedPrice: procedure.PriceOrDefault(),
		Currency:       procedure.Currency,
		DefaultUnit:    string(procedure.DefaultUnit),
		Description:    procedure.Description,
		IsActive:       procedure.IsActive,
	}
}
