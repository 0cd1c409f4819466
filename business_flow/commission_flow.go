// Package businessflow contains the core business logic and use cases for commission workflows
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/app/services"
	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/config"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/repository"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CommissionFlow handles rule management, commission record transitions, and
// beneficiary reporting
type CommissionFlow interface {
	CreateRule(ctx context.Context, clinicID, userID uint, request *dto.CreateCommissionRuleRequest, metadata *ClientMetadata) (*dto.CommissionRuleDTO, error)
	UpdateRule(ctx context.Context, clinicID, userID, ruleID uint, request *dto.UpdateCommissionRuleRequest, metadata *ClientMetadata) (*dto.CommissionRuleDTO, error)
	DeactivateRule(ctx context.Context, clinicID, userID, ruleID uint, metadata *ClientMetadata) error
	ListRules(ctx context.Context, clinicID uint, request *dto.ListCommissionRulesRequest) (*dto.ListCommissionRulesResponse, error)
	ListCommissions(ctx context.Context, clinicID uint, request *dto.ListCommissionsRequest) (*dto.ListCommissionsResponse, error)
	MarkPaid(ctx context.Context, clinicID, userID, calculationID uint, metadata *ClientMetadata) (*dto.CommissionRecordDTO, error)
	CancelCommission(ctx context.Context, clinicID, userID, calculationID uint, metadata *ClientMetadata) (*dto.CommissionRecordDTO, error)
	Summarize(ctx context.Context, clinicID uint, request *dto.CommissionSummaryRequest) (*dto.CommissionSummaryResponse, error)
	ExportSummaries(ctx context.Context, clinicID uint, request *dto.CommissionSummaryRequest) (filename string, content []byte, err error)
}

// CommissionFlowImpl implements the commission business flow
type CommissionFlowImpl struct {
	ruleRepo      repository.CommissionRuleRepository
	calcRepo      repository.CommissionCalculationRepository
	staffRepo     repository.StaffMemberRepository
	userRepo      repository.UserRepository
	auditRepo     repository.AuditLogRepository
	reportService services.ReportService
	rules         *ruleCache
	db            *gorm.DB
}

// NewCommissionFlow creates a new commission flow instance
func NewCommissionFlow(
	ruleRepo repository.CommissionRuleRepository,
	calcRepo repository.CommissionCalculationRepository,
	staffRepo repository.StaffMemberRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditLogRepository,
	reportService services.ReportService,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	db *gorm.DB,
) CommissionFlow {
	return &CommissionFlowImpl{
		ruleRepo:      ruleRepo,
		calcRepo:      calcRepo,
		staffRepo:     staffRepo,
		userRepo:      userRepo,
		auditRepo:     auditRepo,
		reportService: reportService,
		rules:         newRuleCache(rc, cacheConfig, ruleRepo),
		db:            db,
	}
}

// CreateRule validates and stores a new commission rule. A zero priority gets
// the specificity-derived default, so narrower rules outrank broader ones
// without the operator thinking about numbers.
func (f *CommissionFlowImpl) CreateRule(ctx context.Context, clinicID, userID uint, request *dto.CreateCommissionRuleRequest, metadata *ClientMetadata) (*dto.CommissionRuleDTO, error) {
	if err := f.requireRuleManager(ctx, clinicID, userID); err != nil {
		return nil, NewBusinessError("CREATE_RULE_PERMISSION_DENIED", "Not allowed to manage commission rules", err)
	}

	rule := &models.CommissionRule{
		ClinicID:        clinicID,
		Name:            request.Name,
		BeneficiaryType: commission.BeneficiaryType(request.BeneficiaryType),
		BeneficiaryID:   request.BeneficiaryID,
		ProfessionalID:  request.ProfessionalID,
		ProcedureCode:   request.ProcedureCode,
		DayOfWeek:       request.DayOfWeek,
		CalculationType: commission.CalculationType(request.CalculationType),
		CalculationUnit: commission.UnitAppointment,
		Value:           request.Value,
		Priority:        request.Priority,
		IsActive:        utils.ToPtr(true),
	}
	if request.CalculationUnit != "" {
		rule.CalculationUnit = commission.CalculationUnit(request.CalculationUnit)
	}
	if rule.Priority == 0 {
		rule.Priority = commission.DefaultPriority(rule.AsRule())
	}

	if err := f.validateRule(ctx, clinicID, rule); err != nil {
		return nil, NewBusinessError("CREATE_RULE_VALIDATION_FAILED", "Commission rule validation failed", err)
	}

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		return f.ruleRepo.Save(ctx, rule)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Commission rule creation failed: %s", err.Error())
		_ = f.LogCommissionEvent(ctx, userID, clinicID, models.AuditActionCommissionRuleCreated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CREATE_RULE_FAILED", "Commission rule creation failed", err)
	}

	f.rules.Invalidate(ctx, clinicID)

	msg := fmt.Sprintf("Commission rule created: %d (%s)", rule.ID, rule.Name)
	_ = f.LogCommissionEvent(ctx, userID, clinicID, models.AuditActionCommissionRuleCreated, msg, true, nil, metadata)

	out := ToCommissionRuleDTO(*rule)
	return &out, nil
}

// UpdateRule changes the mutable fields of an existing rule. Match filters
// are immutable; replacing the shape of a rule means creating a new one.
func (f *CommissionFlowImpl) UpdateRule(ctx context.Context, clinicID, userID, ruleID uint, request *dto.UpdateCommissionRuleRequest, metadata *ClientMetadata) (*dto.CommissionRuleDTO, error) {
	if err := f.requireRuleManager(ctx, clinicID, userID); err != nil {
		return nil, NewBusinessError("UPDATE_RULE_PERMISSION_DENIED", "Not allowed to manage commission rules", err)
	}

	var rule *models.CommissionRule

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		var err error
		rule, err = f.loadRule(ctx, clinicID, ruleID)
		if err != nil {
			return err
		}

		if request.Name != nil {
			rule.Name = *request.Name
		}
		if request.Value != nil {
			rule.Value = *request.Value
		}
		if request.Priority != nil {
			rule.Priority = *request.Priority
		}
		if request.IsActive != nil {
			rule.IsActive = request.IsActive
		}

		if err := f.validateRule(ctx, clinicID, rule); err != nil {
			return err
		}

		return f.ruleRepo.Update(ctx, rule)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Commission rule update failed: %s", err.Error())
		_ = f.LogCommissionEvent(ctx, userID, clinicID, models.AuditActionCommissionRuleUpdated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("UPDATE_RULE_FAILED", "Commission rule update failed", err)
	}

	f.rules.Invalidate(ctx, clinicID)

	msg := fmt.Sprintf("Commission rule updated: %d", ruleID)
	_ = f.LogCommissionEvent(ctx, userID, clinicID, models.AuditActionCommissionRuleUpdated, msg, true, nil, metadata)

	out := ToCommissionRuleDTO(*rule)
	return &out, nil
}

// DeactivateRule retires a rule from future completions. Existing records
// keep their snapshots, so history is untouched.
func (f *CommissionFlowImpl) DeactivateRule(ctx context.Context, clinicID, userID, ruleID uint, metadata *ClientMetadata) error {
	if err := f.requireRuleManager(ctx, clinicID, userID); err != nil {
		return NewBusinessError("REMOVE_RULE_PERMISSION_DENIED", "Not allowed to manage commission rules", err)
	}

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		rule, err := f.loadRule(ctx, clinicID, ruleID)
		if err != nil {
			return err
		}
		return f.ruleRepo.Deactivate(ctx, rule.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Commission rule removal failed: %s", err.Error())
		_ = f.LogCommissionEvent(ctx, userID, clinicID, models.AuditActionCommissionRuleRemoved, errMsg, false, &errMsg, metadata)

		return NewBusinessError("REMOVE_RULE_FAILED", "Commission rule removal failed", err)
	}

	f.rules.Invalidate(ctx, clinicID)

	msg := fmt.Sprintf("Commission rule removed: %d", ruleID)
	_ = f.LogCommissionEvent(ctx, userID, clinicID, models.AuditActionCommissionRuleRemoved, msg, true, nil, metadata)

	return nil
}

// ListRules returns a page of the clinic's commission rules
func (f *CommissionFlowImpl) ListRules(ctx context.Context, clinicID uint, request *dto.ListCommissionRulesRequest) (*dto.ListCommissionRulesResponse, error) {
	page, pageSize, err := normalizePage(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_RULES_VALIDATION_FAILED", "Invalid pagination", err)
	}

	filter := models.CommissionRuleFilter{
		ClinicID: &clinicID,
		IsActive: request.IsActive,
	}
	if request.BeneficiaryType != nil {
		filter.BeneficiaryType = utils.ToPtr(commission.BeneficiaryType(*request.BeneficiaryType))
	}

	rules, err := f.ruleRepo.ByFilter(ctx, filter, "priority DESC, id", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_RULES_FAILED", "Failed to list commission rules", err)
	}
	total, err := f.ruleRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_RULES_FAILED", "Failed to count commission rules", err)
	}

	items := make([]dto.CommissionRuleDTO, 0, len(rules))
	for _, rule := range rules {
		items = append(items, ToCommissionRuleDTO(*rule))
	}

	return &dto.ListCommissionRulesResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ListCommissions returns a page of the clinic's commission records
func (f *CommissionFlowImpl) ListCommissions(ctx context.Context, clinicID uint, request *dto.ListCommissionsRequest) (*dto.ListCommissionsResponse, error) {
	page, pageSize, err := normalizePage(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_COMMISSIONS_VALIDATION_FAILED", "Invalid pagination", err)
	}
	if request.From != nil && request.To != nil && request.From.After(*request.To) {
		return nil, NewBusinessError("LIST_COMMISSIONS_VALIDATION_FAILED", "Invalid date range", ErrStartDateAfterEndDate)
	}

	filter := models.CommissionCalculationFilter{
		ClinicID:      &clinicID,
		BeneficiaryID: request.BeneficiaryID,
		ServiceAfter:  request.From,
		ServiceBefore: request.To,
	}
	if request.BeneficiaryType != nil {
		filter.BeneficiaryType = utils.ToPtr(commission.BeneficiaryType(*request.BeneficiaryType))
	}
	if request.Status != nil {
		filter.Status = utils.ToPtr(commission.Status(*request.Status))
	}

	calculations, err := f.calcRepo.ByFilter(ctx, filter, "", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_COMMISSIONS_FAILED", "Failed to list commission records", err)
	}
	total, err := f.calcRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_COMMISSIONS_FAILED", "Failed to count commission records", err)
	}

	items := make([]dto.CommissionRecordDTO, 0, len(calculations))
	for _, calc := range calculations {
		items = append(items, ToCommissionRecordDTO(*calc))
	}

	return &dto.ListCommissionsResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// MarkPaid transitions a pending commission record to paid
func (f *CommissionFlowImpl) MarkPaid(ctx context.Context, clinicID, userID, calculationID uint, metadata *ClientMetadata) (*dto.CommissionRecordDTO, error) {
	if err := f.requireRuleManager(ctx, clinicID, userID); err != nil {
		return nil, NewBusinessError("PAY_COMMISSION_PERMISSION_DENIED", "Not allowed to pay commissions", err)
	}

	var calc *models.CommissionCalculation

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		var err error
		calc, err = f.loadCalculation(ctx, clinicID, calculationID)
		if err != nil {
			return err
		}
		if calc.IsPaid() {
			return ErrCommissionAlreadyPaid
		}
		if !calc.CanBePaid() {
			return ErrCommissionNotPending
		}

		calc.MarkAsPaid(utils.UTCNow())
		return f.calcRepo.Update(ctx, calc)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Commission payment failed: %s", err.Error())
		_ = f.LogCommissionEvent(ctx, userID, clinicID, models.AuditActionCommissionPaid, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("PAY_COMMISSION_FAILED", "Commission payment failed", err)
	}

	msg := fmt.Sprintf("Commission paid: %d, amount: %.2f", calc.ID, calc.Amount)
	_ = f.LogCommissionEvent(ctx, userID, clinicID, models.AuditActionCommissionPaid, msg, true, nil, metadata)

	out := ToCommissionRecordDTO(*calc)
	return &out, nil
}

// CancelCommission transitions a pending commission record to cancelled,
// which also unblocks re-completing its appointment
func (f *CommissionFlowImpl) CancelCommission(ctx context.Context, clinicID, userID, calculationID uint, metadata *ClientMetadata) (*dto.CommissionRecordDTO, error) {
	if err := f.requireRuleManager(ctx, clinicID, userID); err != nil {
		return nil, NewBusinessError("CANCEL_COMMISSION_PERMISSION_DENIED", "Not allowed to cancel commissions", err)
	}

	var calc *models.CommissionCalculation

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		var err error
		calc, err = f.loadCalculation(ctx, clinicID, calculationID)
		if err != nil {
			return err
		}
		if !calc.CanBeCancelled() {
			return ErrCommissionNotPending
		}

		calc.MarkAsCancelled(utils.UTCNow())
		return f.calcRepo.Update(ctx, calc)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Commission cancellation failed: %s", err.Error())
		_ = f.LogCommissionEvent(ctx, userID, clinicID, models.AuditActionCommissionCancelled, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("CANCEL_COMMISSION_FAILED", "Commission cancellation failed", err)
	}

	msg := fmt.Sprintf("Commission cancelled: %d", calc.ID)
	_ = f.LogCommissionEvent(ctx, userID, clinicID, models.AuditActionCommissionCancelled, msg, true, nil, metadata)

	out := ToCommissionRecordDTO(*calc)
	return &out, nil
}

// Summarize aggregates non-cancelled commission records per beneficiary over
// the reporting window
func (f *CommissionFlowImpl) Summarize(ctx context.Context, clinicID uint, request *dto.CommissionSummaryRequest) (*dto.CommissionSummaryResponse, error) {
	summaries, err := f.summarize(ctx, clinicID, request.From, request.To)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CommissionSummaryDTO, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, ToCommissionSummaryDTO(summary))
	}

	return &dto.CommissionSummaryResponse{
		From:      request.From,
		To:        request.To,
		Summaries: items,
	}, nil
}

// ExportSummaries renders the summary report as an Excel workbook
func (f *CommissionFlowImpl) ExportSummaries(ctx context.Context, clinicID uint, request *dto.CommissionSummaryRequest) (string, []byte, error) {
	summaries, err := f.summarize(ctx, clinicID, request.From, request.To)
	if err != nil {
		return "", nil, err
	}

	filename, content, err := f.reportService.CommissionSummaryWorkbook(request.From, request.To, summaries)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_SUMMARY_FAILED", "Failed to build summary workbook", err)
	}
	return filename, content, nil
}

// Private helper methods

func (f *CommissionFlowImpl) summarize(ctx context.Context, clinicID uint, from, to time.Time) ([]commission.Summary, error) {
	if from.After(to) {
		return nil, NewBusinessError("SUMMARY_VALIDATION_FAILED", "Invalid date range", ErrStartDateAfterEndDate)
	}

	calculations, err := f.calcRepo.ListByClinicAndRange(ctx, clinicID, from, to, nil)
	if err != nil {
		return nil, NewBusinessError("SUMMARY_FAILED", "Failed to load commission records", err)
	}

	// Cancelled records are history, not money owed
	records := make([]commission.Record, 0, len(calculations))
	for _, calc := range calculations {
		if calc.IsCancelled() {
			continue
		}
		records = append(records, calc.AsRecord())
	}

	return commission.Summarize(records), nil
}

// requireRuleManager loads the acting user and checks rule management permission
func (f *CommissionFlowImpl) requireRuleManager(ctx context.Context, clinicID, userID uint) error {
	user, err := f.userRepo.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.ClinicID != clinicID {
		return ErrUserNotFound
	}
	if !user.CanManageRules() {
		return ErrPermissionDenied
	}
	return nil
}

func (f *CommissionFlowImpl) loadRule(ctx context.Context, clinicID, ruleID uint) (*models.CommissionRule, error) {
	rule, err := f.ruleRepo.ByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrCommissionRuleNotFound
	}
	if rule.ClinicID != clinicID {
		return nil, ErrCommissionRuleAccessDenied
	}
	return rule, nil
}

func (f *CommissionFlowImpl) loadCalculation(ctx context.Context, clinicID, calculationID uint) (*models.CommissionCalculation, error) {
	calc, err := f.calcRepo.ByID(ctx, calculationID)
	if err != nil {
		return nil, err
	}
	if calc == nil || calc.ClinicID != clinicID {
		return nil, ErrCommissionNotFound
	}
	return calc, nil
}

// validateRule enforces the structural invariants of a rule before it is stored
func (f *CommissionFlowImpl) validateRule(ctx context.Context, clinicID uint, rule *models.CommissionRule) error {
	switch rule.BeneficiaryType {
	case commission.BeneficiaryProfessional, commission.BeneficiarySeller, commission.BeneficiaryReception:
	default:
		return ErrRuleBeneficiaryInvalid
	}

	switch rule.CalculationType {
	case commission.CalculationPercentage:
		if rule.Value <= 0 || rule.Value > 100 {
			return ErrRulePercentageOutOfRange
		}
	case commission.CalculationFixed:
		if rule.Value <= 0 {
			return ErrRuleValueInvalid
		}
	default:
		return ErrRuleCalculationInvalid
	}

	switch rule.CalculationUnit {
	case commission.UnitAppointment, commission.UnitMl, commission.UnitArch, commission.UnitSession, commission.UnitUnit:
	default:
		return ErrRuleUnitInvalid
	}

	if rule.DayOfWeek != nil && (*rule.DayOfWeek < 0 || *rule.DayOfWeek > 6) {
		return ErrRuleDayOutOfRange
	}

	if rule.BeneficiaryID != nil {
		role := beneficiaryStaffRole(rule.BeneficiaryType)
		if err := f.checkStaff(ctx, clinicID, *rule.BeneficiaryID, role); err != nil {
			return err
		}
	}
	if rule.ProfessionalID != nil {
		if err := f.checkStaff(ctx, clinicID, *rule.ProfessionalID, models.StaffRoleProfessional); err != nil {
			return err
		}
	}

	return nil
}

func (f *CommissionFlowImpl) checkStaff(ctx context.Context, clinicID, staffID uint, role models.StaffRole) error {
	member, err := f.staffRepo.ByID(ctx, staffID)
	if err != nil {
		return err
	}
	if member == nil || member.ClinicID != clinicID {
		return ErrStaffMemberNotFound
	}
	if member.Role != role {
		return ErrStaffRoleMismatch
	}
	return nil
}

func beneficiaryStaffRole(beneficiary commission.BeneficiaryType) models.StaffRole {
	switch beneficiary {
	case commission.BeneficiarySeller:
		return models.StaffRoleSeller
	case commission.BeneficiaryReception:
		return models.StaffRoleReceptionist
	default:
		return models.StaffRoleProfessional
	}
}

func (f *CommissionFlowImpl) LogCommissionEvent(ctx context.Context, userID, clinicID uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
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
