// Package businessflow contains the core business logic and use cases for clinic workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrPermissionDenied   = errors.New("permission denied")

	// Clinic-related errors
	ErrClinicNotFound      = errors.New("clinic not found")
	ErrClinicInactive      = errors.New("clinic is inactive")
	ErrStaffMemberNotFound = errors.New("staff member not found")
	ErrStaffMemberInactive = errors.New("staff member is inactive")
	ErrStaffRoleMismatch   = errors.New("staff member has a different role")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrProcedureNotFound   = errors.New("procedure not found")
	ErrProcedureCodeExists = errors.New("procedure code already exists")

	// Appointment-related errors
	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrAppointmentAccessDenied  = errors.New("appointment access denied")
	ErrAppointmentNotCompetable = errors.New("appointment cannot be completed")
	ErrAppointmentNotCancelable = errors.New("appointment cannot be cancelled")
	ErrAppointmentInPast        = errors.New("appointment cannot be scheduled in the past")
	ErrServiceValueRequired     = errors.New("service value must be positive")
	ErrQuantityInvalid          = errors.New("quantity must be positive")
	ErrPaymentMethodInvalid     = errors.New("payment method is invalid")
	ErrDuplicateCommission      = errors.New("appointment already has live commission records")
	ErrNoCommissionRuleMatched  = errors.New("no commission rule covers this appointment")

	// Commission rule errors
	ErrCommissionRuleNotFound     = errors.New("commission rule not found")
	ErrCommissionRuleAccessDenied = errors.New("commission rule access denied")
	ErrRuleValueInvalid           = errors.New("rule value must be positive")
	ErrRuleBeneficiaryInvalid     = errors.New("rule beneficiary type is invalid")
	ErrRuleCalculationInvalid     = errors.New("rule calculation type is invalid")
	ErrRuleUnitInvalid            = errors.New("rule calculation unit is invalid")
	ErrRuleDayOutOfRange          = errors.New("rule day of week must be between 0 and 6")
	ErrRulePercentageOutOfRange   = errors.New("percentage value must be between 0 and 100")

	// Commission record errors
	ErrCommissionNotFound    = errors.New("commission record not found")
	ErrCommissionNotPending  = errors.New("commission record is not pending")
	ErrCommissionAlreadyPaid = errors.New("commission record is already paid")

	// Finance errors
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAmountInvalid       = errors.New("amount must be positive")

	// Cache errors
	ErrCacheNotAvailable = errors.New("cache not available")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

func IsClinicNotFound(err error) bool {
	return errors.Is(err, ErrClinicNotFound)
}

func IsClinicInactive(err error) bool {
	return errors.Is(err, ErrClinicInactive)
}

func IsStaffMemberNotFound(err error) bool {
	return errors.Is(err, ErrStaffMemberNotFound)
}

func IsStaffMemberInactive(err error) bool {
	return errors.Is(err, ErrStaffMemberInactive)
}

func IsStaffRoleMismatch(err error) bool {
	return errors.Is(err, ErrStaffRoleMismatch)
}

func IsPatientNotFound(err error) bool {
	return errors.Is(err, ErrPatientNotFound)
}

func IsProcedureNotFound(err error) bool {
	return errors.Is(err, ErrProcedureNotFound)
}

func IsProcedureCodeExists(err error) bool {
	return errors.Is(err, ErrProcedureCodeExists)
}

func IsAppointmentNotFound(err error) bool {
	return errors.Is(err, ErrAppointmentNotFound)
}

func IsAppointmentAccessDenied(err error) bool {
	return errors.Is(err, ErrAppointmentAccessDenied)
}

func IsAppointmentNotCompetable(err error) bool {
	return errors.Is(err, ErrAppointmentNotCompetable)
}

func IsAppointmentNotCancelable(err error) bool {
	return errors.Is(err, ErrAppointmentNotCancelable)
}

func IsAppointmentInPast(err error) bool {
	return errors.Is(err, ErrAppointmentInPast)
}

func IsServiceValueRequired(err error) bool {
	return errors.Is(err, ErrServiceValueRequired)
}

func IsQuantityInvalid(err error) bool {
	return errors.Is(err, ErrQuantityInvalid)
}

func IsPaymentMethodInvalid(err error) bool {
	return errors.Is(err, ErrPaymentMethodInvalid)
}

func IsDuplicateCommission(err error) bool {
	return errors.Is(err, ErrDuplicateCommission)
}

func IsNoCommissionRuleMatched(err error) bool {
	return errors.Is(err, ErrNoCommissionRuleMatched)
}

func IsCommissionRuleNotFound(err error) bool {
	return errors.Is(err, ErrCommissionRuleNotFound)
}

func IsCommissionRuleAccessDenied(err error) bool {
	return errors.Is(err, ErrCommissionRuleAccessDenied)
}

func IsRuleValueInvalid(err error) bool {
	return errors.Is(err, ErrRuleValueInvalid)
}

func IsRuleBeneficiaryInvalid(err error) bool {
	return errors.Is(err, ErrRuleBeneficiaryInvalid)
}

func IsRuleCalculationInvalid(err error) bool {
	return errors.Is(err, ErrRuleCalculationInvalid)
}

func IsRuleUnitInvalid(err error) bool {
	return errors.Is(err, ErrRuleUnitInvalid)
}

func IsRuleDayOutOfRange(err error) bool {
	return errors.Is(err, ErrRuleDayOutOfRange)
}

func IsRulePercentageOutOfRange(err error) bool {
	return errors.Is(err, ErrRulePercentageOutOfRange)
}

func IsCommissionNotFound(err error) bool {
	return errors.Is(err, ErrCommissionNotFound)
}

func IsCommissionNotPending(err error) bool {
	return errors.Is(err, ErrCommissionNotPending)
}

func IsCommissionAlreadyPaid(err error) bool {
	return errors.Is(err, ErrCommissionAlreadyPaid)
}

func IsTransactionNotFound(err error) bool {
	return errors.Is(err, ErrTransactionNotFound)
}

func IsAmountInvalid(err error) bool {
	return errors.Is(err, ErrAmountInvalid)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}
