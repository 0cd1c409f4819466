// Package businessflow contains the core business logic and use cases for appointment workflows
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/config"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/repository"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// AppointmentFlow handles scheduling, completion, and cancellation of appointments.
// Completion is where commissions are computed and the ledger is written.
type AppointmentFlow interface {
	Schedule(ctx context.Context, clinicID, userID uint, request *dto.ScheduleAppointmentRequest, metadata *ClientMetadata) (*dto.AppointmentDTO, error)
	List(ctx context.Context, clinicID uint, request *dto.ListAppointmentsRequest) (*dto.ListAppointmentsResponse, error)
	Get(ctx context.Context, clinicID, appointmentID uint) (*dto.AppointmentDTO, error)
	Cancel(ctx context.Context, clinicID, userID, appointmentID uint, metadata *ClientMetadata) (*dto.AppointmentDTO, error)
	Complete(ctx context.Context, clinicID, userID, appointmentID uint, request *dto.CompleteAppointmentRequest, metadata *ClientMetadata) (*dto.CompleteAppointmentResponse, *dto.ValidationFailedResponse, error)
}

// AppointmentFlowImpl implements the appointment business flow
type AppointmentFlowImpl struct {
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	staffRepo       repository.StaffMemberRepository
	procedureRepo   repository.ProcedureRepository
	ruleRepo        repository.CommissionRuleRepository
	calcRepo        repository.CommissionCalculationRepository
	transactionRepo repository.TransactionRepository
	auditRepo       repository.AuditLogRepository
	rules           *ruleCache
	db              *gorm.DB
}

// NewAppointmentFlow creates a new appointment flow instance
func NewAppointmentFlow(
	appointmentRepo repository.AppointmentRepository,
	patientRepo repository.PatientRepository,
	staffRepo repository.StaffMemberRepository,
	procedureRepo repository.ProcedureRepository,
	ruleRepo repository.CommissionRuleRepository,
	calcRepo repository.CommissionCalculationRepository,
	transactionRepo repository.TransactionRepository,
	auditRepo repository.AuditLogRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	db *gorm.DB,
) AppointmentFlow {
	return &AppointmentFlowImpl{
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		staffRepo:       staffRepo,
		procedureRepo:   procedureRepo,
		ruleRepo:        ruleRepo,
		calcRepo:        calcRepo,
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		rules:           newRuleCache(rc, cacheConfig, ruleRepo),
		db:              db,
	}
}

// Schedule books a new appointment after validating that the patient,
// professional, and procedure all belong to the clinic and are active
func (f *AppointmentFlowImpl) Schedule(ctx context.Context, clinicID, userID uint, request *dto.ScheduleAppointmentRequest, metadata *ClientMetadata) (*dto.AppointmentDTO, error) {
	var appointment *models.Appointment

	resp, err := f.WithAppointmentTransaction(ctx, func(ctx context.Context) (*dto.AppointmentDTO, error) {
		patient, err := f.patientRepo.ByID(ctx, request.PatientID)
		if err != nil {
			return nil, err
		}
		if patient == nil || patient.ClinicID != clinicID {
			return nil, ErrPatientNotFound
		}
		if !utils.IsTrue(patient.IsActive) {
			return nil, ErrPatientNotFound
		}

		professional, err := f.loadStaff(ctx, clinicID, request.ProfessionalID, models.StaffRoleProfessional)
		if err != nil {
			return nil, err
		}

		procedure, err := f.procedureRepo.ByID(ctx, request.ProcedureID)
		if err != nil {
			return nil, err
		}
		if procedure == nil || procedure.ClinicID != clinicID {
			return nil, ErrProcedureNotFound
		}
		if !utils.IsTrue(procedure.IsActive) {
			return nil, ErrProcedureNotFound
		}

		if request.ScheduledAt.Before(utils.UTCNow()) {
			return nil, ErrAppointmentInPast
		}

		appointment = &models.Appointment{
			UUID:           uuid.New(),
			ClinicID:       clinicID,
			PatientID:      patient.ID,
			ProfessionalID: professional.ID,
			ProcedureID:    procedure.ID,
			ScheduledAt:    request.ScheduledAt,
			Status:         models.AppointmentStatusScheduled,
			Notes:          request.Notes,
		}
		if err := f.appointmentRepo.Save(ctx, appointment); err != nil {
			return nil, err
		}

		appointment.Patient = *patient
		appointment.Professional = *professional
		appointment.Procedure = *procedure

		out := ToAppointmentDTO(*appointment)
		return &out, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Appointment scheduling failed: %s", err.Error())
		_ = f.LogAppointmentEvent(ctx, userID, clinicID, models.AuditActionAppointmentScheduled, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SCHEDULE_APPOINTMENT_FAILED", "Appointment scheduling failed", err)
	}

	msg := fmt.Sprintf("Appointment scheduled: %d", resp.ID)
	_ = f.LogAppointmentEvent(ctx, userID, clinicID, models.AuditActionAppointmentScheduled, msg, true, nil, metadata)

	return resp, nil
}

// List returns a page of the clinic's appointments
func (f *AppointmentFlowImpl) List(ctx context.Context, clinicID uint, request *dto.ListAppointmentsRequest) (*dto.ListAppointmentsResponse, error) {
	page, pageSize, err := normalizePage(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_APPOINTMENTS_VALIDATION_FAILED", "Invalid pagination", err)
	}
	if request.From != nil && request.To != nil && request.From.After(*request.To) {
		return nil, NewBusinessError("LIST_APPOINTMENTS_VALIDATION_FAILED", "Invalid date range", ErrStartDateAfterEndDate)
	}

	filter := models.AppointmentFilter{
		ClinicID:        &clinicID,
		PatientID:       request.PatientID,
		ProfessionalID:  request.ProfessionalID,
		ScheduledAfter:  request.From,
		ScheduledBefore: request.To,
	}
	if request.Status != nil {
		filter.Status = utils.ToPtr(models.AppointmentStatus(*request.Status))
	}

	appointments, err := f.appointmentRepo.ByFilter(ctx, filter, "", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_APPOINTMENTS_FAILED", "Failed to list appointments", err)
	}
	total, err := f.appointmentRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_APPOINTMENTS_FAILED", "Failed to count appointments", err)
	}

	items := make([]dto.AppointmentDTO, 0, len(appointments))
	for _, appointment := range appointments {
		items = append(items, ToAppointmentDTO(*appointment))
	}

	return &dto.ListAppointmentsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Get returns a single appointment of the clinic
func (f *AppointmentFlowImpl) Get(ctx context.Context, clinicID, appointmentID uint) (*dto.AppointmentDTO, error) {
	appointment, err := f.loadAppointment(ctx, clinicID, appointmentID)
	if err != nil {
		return nil, NewBusinessError("GET_APPOINTMENT_FAILED", "Failed to load appointment", err)
	}
	out := ToAppointmentDTO(*appointment)
	return &out, nil
}

// Cancel transitions a scheduled appointment to cancelled
func (f *AppointmentFlowImpl) Cancel(ctx context.Context, clinicID, userID, appointmentID uint, metadata *ClientMetadata) (*dto.AppointmentDTO, error) {
	resp, err := f.WithAppointmentTransaction(ctx, func(ctx context.Context) (*dto.AppointmentDTO, error) {
		appointment, err := f.loadAppointment(ctx, clinicID, appointmentID)
		if err != nil {
			return nil, err
		}
		if !appointment.CanBeCancelled() {
			return nil, ErrAppointmentNotCancelable
		}

		appointment.Status = models.AppointmentStatusCancelled
		if err := f.appointmentRepo.Update(ctx, appointment); err != nil {
			return nil, err
		}

		out := ToAppointmentDTO(*appointment)
		return &out, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Appointment cancellation failed: %s", err.Error())
		_ = f.LogAppointmentEvent(ctx, userID, clinicID, models.AuditActionAppointmentCancelled, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CANCEL_APPOINTMENT_FAILED", "Appointment cancellation failed", err)
	}

	msg := fmt.Sprintf("Appointment cancelled: %d", appointmentID)
	_ = f.LogAppointmentEvent(ctx, userID, clinicID, models.AuditActionAppointmentCancelled, msg, true, nil, metadata)

	return resp, nil
}

// Complete transitions an appointment to completed, computes every commission
// the active rule set owes for it, and writes one revenue plus N expense
// ledger entries, all atomically. A second return value carries validation
// issues when completion is blocked rather than failed.
func (f *AppointmentFlowImpl) Complete(ctx context.Context, clinicID, userID, appointmentID uint, request *dto.CompleteAppointmentRequest, metadata *ClientMetadata) (*dto.CompleteAppointmentResponse, *dto.ValidationFailedResponse, error) {
	if request.ServiceValue <= 0 {
		return nil, nil, NewBusinessError("COMPLETE_VALIDATION_FAILED", "Service value must be positive", ErrServiceValueRequired)
	}
	if request.Quantity != nil && *request.Quantity <= 0 {
		return nil, nil, NewBusinessError("COMPLETE_VALIDATION_FAILED", "Quantity must be positive", ErrQuantityInvalid)
	}
	paymentMethod := commission.PaymentMethod(request.PaymentMethod)
	if !commission.ValidPaymentMethod(paymentMethod) {
		return nil, nil, NewBusinessError("COMPLETE_VALIDATION_FAILED", "Payment method is invalid", ErrPaymentMethodInvalid)
	}

	var resp *dto.CompleteAppointmentResponse
	var validation *dto.ValidationFailedResponse

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		appointment, err := f.loadAppointment(ctx, clinicID, appointmentID)
		if err != nil {
			return err
		}
		if !appointment.CanBeCompleted() {
			return ErrAppointmentNotCompetable
		}

		seller, receptionist, err := f.loadAssignedStaff(ctx, clinicID, request)
		if err != nil {
			return err
		}

		existing, err := f.calcRepo.ListNonCancelledByAppointment(ctx, appointment.ID)
		if err != nil {
			return err
		}
		existingRecords := make([]commission.Record, 0, len(existing))
		for _, calc := range existing {
			existingRecords = append(existingRecords, calc.AsRecord())
		}

		rules, err := f.rules.ActiveRules(ctx, clinicID)
		if err != nil {
			return err
		}

		matchCtx := commission.MatchContext{
			ClinicID:       clinicID,
			ProfessionalID: appointment.ProfessionalID,
			Procedure:      appointment.Procedure.Code,
			Date:           appointment.ScheduledAt,
		}
		blocking := commission.ValidateCompletion(existingRecords, rules, matchCtx).Blocking(request.AckMissingRule)
		if len(blocking) > 0 {
			issues := make([]dto.ValidationIssueDTO, 0, len(blocking))
			for _, issue := range blocking {
				issues = append(issues, dto.ValidationIssueDTO{
					Code:        string(issue.Code),
					Message:     issue.Message,
					Overridable: issue.Overridable,
				})
			}
			validation = &dto.ValidationFailedResponse{Issues: issues}
			for _, issue := range blocking {
				if issue.Code == commission.IssueDuplicate {
					return ErrDuplicateCommission
				}
			}
			return ErrNoCommissionRuleMatched
		}

		input := commission.CompletionInput{
			Appointment: commission.Appointment{
				ID:               appointment.ID,
				ClinicID:         clinicID,
				ProfessionalID:   appointment.ProfessionalID,
				ProfessionalName: appointment.Professional.FullName,
				Procedure:        appointment.Procedure.Code,
				Date:             appointment.ScheduledAt,
			},
			ServiceValue:  request.ServiceValue,
			Quantity:      request.Quantity,
			PaymentMethod: paymentMethod,
			Rules:         rules,
			Seller:        seller,
			Receptionist:  receptionist,
		}
		result, err := commission.CompleteAppointment(input)
		if err != nil {
			return err
		}

		quantity := 1
		if request.Quantity != nil {
			quantity = *request.Quantity
		}

		// Persist commission records
		calculations := make([]*models.CommissionCalculation, 0, len(result.Records))
		for _, record := range result.Records {
			calculations = append(calculations, &models.CommissionCalculation{
				UUID:            uuid.New(),
				ClinicID:        clinicID,
				AppointmentID:   appointment.ID,
				BeneficiaryType: record.Beneficiary,
				BeneficiaryID:   record.BeneficiaryID,
				ProfessionalID:  record.ProfessionalID,
				ProcedureCode:   record.Procedure,
				ServiceValue:    record.ServiceValue,
				Quantity:        record.Quantity,
				RuleID:          record.RuleID,
				RuleType:        record.RuleType,
				RuleUnit:        record.RuleUnit,
				RuleValue:       record.RuleValue,
				Amount:          record.Amount,
				Status:          record.Status,
				ServiceDate:     record.Date,
			})
		}
		if len(calculations) > 0 {
			if err := f.calcRepo.SaveBatch(ctx, calculations); err != nil {
				return err
			}
		}

		// Write ledger entries linked through one correlation ID
		correlationID := uuid.New()
		now := utils.UTCNow()

		revenue := &models.Transaction{
			UUID:          uuid.New(),
			CorrelationID: correlationID,
			ClinicID:      clinicID,
			Type:          models.TransactionTypeIncome,
			Category:      models.TransactionCategoryServiceRevenue,
			Amount:        result.Revenue.Amount,
			Currency:      utils.BRLCurrency,
			PaymentMethod: &paymentMethod,
			AppointmentID: &appointment.ID,
			Description:   result.Revenue.Description,
			EntryDate:     now,
		}
		if err := f.transactionRepo.Save(ctx, revenue); err != nil {
			return err
		}

		expenses := make([]*models.Transaction, 0, len(result.Expenses))
		for i, entry := range result.Expenses {
			expense := &models.Transaction{
				UUID:                    uuid.New(),
				CorrelationID:           correlationID,
				ClinicID:                clinicID,
				Type:                    models.TransactionTypeExpense,
				Category:                models.TransactionCategoryCommission,
				Amount:                  entry.Amount,
				Currency:                utils.BRLCurrency,
				AppointmentID:           &appointment.ID,
				CommissionCalculationID: &calculations[i].ID,
				BeneficiaryID:           utils.ToPtr(entry.BeneficiaryID),
				Description:             entry.Description,
				EntryDate:               now,
			}
			if err := f.transactionRepo.Save(ctx, expense); err != nil {
				return err
			}
			expenses = append(expenses, expense)
		}

		// Stamp the completion metadata on the appointment
		appointment.Status = models.AppointmentStatusCompleted
		appointment.CompletedAt = &now
		appointment.ServiceValue = &request.ServiceValue
		appointment.Quantity = &quantity
		appointment.PaymentMethod = &paymentMethod
		appointment.SellerID = request.SellerID
		appointment.ReceptionID = request.ReceptionistID
		if err := f.appointmentRepo.Update(ctx, appointment); err != nil {
			return err
		}

		commissionDTOs := make([]dto.CommissionRecordDTO, 0, len(result.Records))
		for i, record := range result.Records {
			name := record.BeneficiaryName
			if name == "" {
				if member, err := f.staffRepo.ByID(ctx, record.BeneficiaryID); err == nil && member != nil {
					name = member.FullName
				}
			}
			commissionDTOs = append(commissionDTOs, dto.CommissionRecordDTO{
				ID:              calculations[i].ID,
				UUID:            calculations[i].UUID.String(),
				AppointmentID:   appointment.ID,
				BeneficiaryType: string(record.Beneficiary),
				BeneficiaryID:   record.BeneficiaryID,
				BeneficiaryName: name,
				RuleID:          record.RuleID,
				RuleType:        string(record.RuleType),
				RuleUnit:        string(record.RuleUnit),
				RuleValue:       record.RuleValue,
				ServiceValue:    record.ServiceValue,
				Quantity:        record.Quantity,
				Amount:          record.Amount,
				Status:          string(record.Status),
				ServiceDate:     record.Date.Format(time.RFC3339),
			})
		}

		expenseDTOs := make([]dto.TransactionDTO, 0, len(expenses))
		for _, expense := range expenses {
			expenseDTOs = append(expenseDTOs, ToTransactionDTO(*expense))
		}

		resp = &dto.CompleteAppointmentResponse{
			Appointment: ToAppointmentDTO(*appointment),
			Commissions: commissionDTOs,
			Revenue:     ToTransactionDTO(*revenue),
			Expenses:    expenseDTOs,
		}
		return nil
	})

	if err != nil {
		if validation != nil {
			for _, issue := range validation.Issues {
				completionsBlockedTotal.WithLabelValues(issue.Code).Inc()
			}
			return nil, validation, NewBusinessError("COMPLETE_BLOCKED", "Appointment completion blocked by validation", err)
		}

		errMsg := fmt.Sprintf("Appointment completion failed: %s", err.Error())
		_ = f.LogAppointmentEvent(ctx, userID, clinicID, models.AuditActionAppointmentCompleted, errMsg, false, &errMsg, metadata)

		return nil, nil, NewBusinessError("COMPLETE_APPOINTMENT_FAILED", "Appointment completion failed", err)
	}

	appointmentsCompletedTotal.Inc()
	for _, record := range resp.Commissions {
		commissionRecordsTotal.WithLabelValues(record.BeneficiaryType).Inc()
		commissionAmountTotal.WithLabelValues(record.BeneficiaryType).Add(record.Amount)
	}

	msg := fmt.Sprintf("Appointment completed: %d, commissions: %d", appointmentID, len(resp.Commissions))
	_ = f.LogAppointmentEvent(ctx, userID, clinicID, models.AuditActionAppointmentCompleted, msg, true, nil, metadata)

	return resp, nil, nil
}

// Private helper methods

// loadAppointment fetches one appointment with its relations, scoped to the clinic
func (f *AppointmentFlowImpl) loadAppointment(ctx context.Context, clinicID, appointmentID uint) (*models.Appointment, error) {
	filter := models.AppointmentFilter{ID: &appointmentID}
	appointments, err := f.appointmentRepo.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(appointments) == 0 {
		return nil, ErrAppointmentNotFound
	}
	appointment := appointments[0]
	if appointment.ClinicID != clinicID {
		return nil, ErrAppointmentAccessDenied
	}
	return appointment, nil
}

// loadStaff fetches a staff member, requiring clinic ownership, the given
// role, and an active record
func (f *AppointmentFlowImpl) loadStaff(ctx context.Context, clinicID, staffID uint, role models.StaffRole) (*models.StaffMember, error) {
	member, err := f.staffRepo.ByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.ClinicID != clinicID {
		return nil, ErrStaffMemberNotFound
	}
	if member.Role != role {
		return nil, ErrStaffRoleMismatch
	}
	if !utils.IsTrue(member.IsActive) {
		return nil, ErrStaffMemberInactive
	}
	return member, nil
}

func (f *AppointmentFlowImpl) loadAssignedStaff(ctx context.Context, clinicID uint, request *dto.CompleteAppointmentRequest) (seller, receptionist *commission.Staff, err error) {
	if request.SellerID != nil {
		member, err := f.loadStaff(ctx, clinicID, *request.SellerID, models.StaffRoleSeller)
		if err != nil {
			return nil, nil, err
		}
		seller = &commission.Staff{ID: member.ID, Name: member.FullName}
	}
	if request.ReceptionistID != nil {
		member, err := f.loadStaff(ctx, clinicID, *request.ReceptionistID, models.StaffRoleReceptionist)
		if err != nil {
			return nil, nil, err
		}
		receptionist = &commission.Staff{ID: member.ID, Name: member.FullName}
	}
	return seller, receptionist, nil
}

func (f *AppointmentFlowImpl) LogAppointmentEvent(ctx context.Context, userID, clinicID uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       &userID,
		ClinicID:     &clinicID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(utils.RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return f.auditRepo.Save(ctx, audit)
}

func (f *AppointmentFlowImpl) WithAppointmentTransaction(ctx context.Context, fn func(context.Context) (*dto.AppointmentDTO, error)) (*dto.AppointmentDTO, error) {
	var result *dto.AppointmentDTO
	var fnErr error

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

// normalizePage applies defaults and bounds for paging parameters
func normalizePage(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}
