package handlers

import (
	"log"
	"time"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/app/middleware"
	businessflow "github.com/amirphl/Shirahama-Clinic/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// CommissionHandlerInterface defines the contract for commission handlers
type CommissionHandlerInterface interface {
	CreateRule(c fiber.Ctx) error
	UpdateRule(c fiber.Ctx) error
	DeactivateRule(c fiber.Ctx) error
	ListRules(c fiber.Ctx) error
	ListCommissions(c fiber.Ctx) error
	MarkPaid(c fiber.Ctx) error
	CancelCommission(c fiber.Ctx) error
	Summarize(c fiber.Ctx) error
	ExportSummary(c fiber.Ctx) error
}

// CommissionHandler handles commission rule and record HTTP requests
type CommissionHandler struct {
	commissionFlow businessflow.CommissionFlow
	validator      *validator.Validate
}

func (h *CommissionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CommissionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewCommissionHandler creates a new commission handler
func NewCommissionHandler(commissionFlow businessflow.CommissionFlow) *CommissionHandler {
	return &CommissionHandler{
		commissionFlow: commissionFlow,
		validator:      validator.New(),
	}
}

func (h *CommissionHandler) identity(c fiber.Ctx) (clinicID, userID uint, err error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return 0, 0, h.ErrorResponse(c, fiber.StatusUnauthorized, "User ID not found in context", "MISSING_USER_ID", nil)
	}
	clinicID, ok = middleware.GetClinicIDFromContext(c)
	if !ok {
		return 0, 0, h.ErrorResponse(c, fiber.StatusUnauthorized, "Clinic ID not found in context", "MISSING_CLINIC_ID", nil)
	}
	return clinicID, userID, nil
}

func (h *CommissionHandler) ruleError(c fiber.Ctx, err error, fallbackMsg, fallbackCode string) error {
	if businessflow.IsPermissionDenied(err) {
		return h.ErrorResponse(c, fiber.StatusForbidden, "Only owners and managers can manage commission rules", dto.ErrorPermissionDenied, nil)
	}
	if businessflow.IsCommissionRuleNotFound(err) || businessflow.IsCommissionRuleAccessDenied(err) {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Commission rule not found", "RULE_NOT_FOUND", nil)
	}
	if businessflow.IsRuleBeneficiaryInvalid(err) || businessflow.IsRuleCalculationInvalid(err) ||
		businessflow.IsRuleUnitInvalid(err) || businessflow.IsRuleDayOutOfRange(err) ||
		businessflow.IsRuleValueInvalid(err) || businessflow.IsRulePercentageOutOfRange(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Rule definition is invalid", "INVALID_RULE", nil)
	}
	if businessflow.IsStaffMemberNotFound(err) || businessflow.IsStaffRoleMismatch(err) || businessflow.IsStaffMemberInactive(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Rule references an invalid staff member", "INVALID_RULE_STAFF", nil)
	}

	log.Println(fallbackMsg, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMsg, fallbackCode, nil)
}

// CreateRule handles commission rule creation
// @Summary Create Commission Rule
// @Description Create a commission rule for the clinic (owners and managers only)
// @Tags Commissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommissionRuleRequest true "Rule definition"
// @Success 201 {object} dto.APIResponse{data=dto.CommissionRuleDTO} "Rule created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/commission-rules [post]
func (h *CommissionHandler) CreateRule(c fiber.Ctx) error {
	clinicID, userID, err := h.identity(c)
	if err != nil {
		return err
	}

	var req dto.CreateCommissionRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.commissionFlow.CreateRule(createRequestContext(c, "/api/v1/commission-rules"), clinicID, userID, &req, clientMetadata(c))
	if err != nil {
		return h.ruleError(c, err, "Rule creation failed", "CREATE_RULE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Commission rule created", result)
}

// UpdateRule handles commission rule updates
// @Summary Update Commission Rule
// @Description Update a rule's name, value, priority, or active flag. Match filters are immutable.
// @Tags Commissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rule ID"
// @Param request body dto.UpdateCommissionRuleRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.CommissionRuleDTO} "Rule updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Failure 404 {object} dto.APIResponse "Rule not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/commission-rules/{id} [put]
func (h *CommissionHandler) UpdateRule(c fiber.Ctx) error {
	clinicID, userID, err := h.identity(c)
	if err != nil {
		return err
	}

	ruleID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid rule ID", "INVALID_RULE_ID", nil)
	}

	var req dto.UpdateCommissionRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.commissionFlow.UpdateRule(createRequestContext(c, "/api/v1/commission-rules/:id"), clinicID, userID, ruleID, &req, clientMetadata(c))
	if err != nil {
		return h.ruleError(c, err, "Rule update failed", "UPDATE_RULE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Commission rule updated", result)
}

// DeactivateRule handles commission rule deactivation
// @Summary Deactivate Commission Rule
// @Description Deactivate a rule so it no longer matches future completions
// @Tags Commissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Rule ID"
// @Success 200 {object} dto.APIResponse "Rule deactivated"
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Failure 404 {object} dto.APIResponse "Rule not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/commission-rules/{id} [delete]
func (h *CommissionHandler) DeactivateRule(c fiber.Ctx) error {
	clinicID, userID, err := h.identity(c)
	if err != nil {
		return err
	}

	ruleID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid rule ID", "INVALID_RULE_ID", nil)
	}

	err = h.commissionFlow.DeactivateRule(createRequestContext(c, "/api/v1/commission-rules/:id"), clinicID, userID, ruleID, clientMetadata(c))
	if err != nil {
		return h.ruleError(c, err, "Rule deactivation failed", "DEACTIVATE_RULE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Commission rule deactivated", fiber.Map{
		"rule_id":     ruleID,
		"deactivated": true,
	})
}

// ListRules handles commission rule listing
// @Summary List Commission Rules
// @Description List the clinic's commission rules ordered by priority
// @Tags Commissions
// @Produce json
// @Security BearerAuth
// @Param beneficiary_type query string false "Beneficiary filter" Enums(professional, seller, reception)
// @Param is_active query bool false "Active filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListCommissionRulesResponse} "Rules"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/commission-rules [get]
func (h *CommissionHandler) ListRules(c fiber.Ctx) error {
	clinicID, _, err := h.identity(c)
	if err != nil {
		return err
	}

	req := dto.ListCommissionRulesRequest{
		BeneficiaryType: parseStringQuery(c, "beneficiary_type"),
		IsActive:        parseBoolQuery(c, "is_active"),
		Page:            parseIntQuery(c, "page", 1),
		PageSize:        parseIntQuery(c, "page_size", 20),
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.commissionFlow.ListRules(createRequestContext(c, "/api/v1/commission-rules"), clinicID, &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "INVALID_FILTERS", nil)
		}

		log.Println("List rules failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list rules", "LIST_RULES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Commission rules retrieved", result)
}

// ListCommissions handles commission record listing
// @Summary List Commissions
// @Description List commission records filtered by window, beneficiary, or status
// @Tags Commissions
// @Produce json
// @Security BearerAuth
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Param beneficiary_id query int false "Beneficiary filter"
// @Param beneficiary_type query string false "Beneficiary type filter" Enums(professional, seller, reception)
// @Param status query string false "Status filter" Enums(pending, paid, cancelled)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListCommissionsResponse} "Commission records"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/commissions [get]
func (h *CommissionHandler) ListCommissions(c fiber.Ctx) error {
	clinicID, _, err := h.identity(c)
	if err != nil {
		return err
	}

	req := dto.ListCommissionsRequest{
		From:            parseTimeQuery(c, "from"),
		To:              parseTimeQuery(c, "to"),
		BeneficiaryID:   parseUintQuery(c, "beneficiary_id"),
		BeneficiaryType: parseStringQuery(c, "beneficiary_type"),
		Status:          parseStringQuery(c, "status"),
		Page:            parseIntQuery(c, "page", 1),
		PageSize:        parseIntQuery(c, "page_size", 20),
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.commissionFlow.ListCommissions(createRequestContext(c, "/api/v1/commissions"), clinicID, &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) || businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filters", "INVALID_FILTERS", nil)
		}

		log.Println("List commissions failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list commissions", "LIST_COMMISSIONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Commissions retrieved", result)
}

// MarkPaid handles commission payment
// @Summary Mark Commission Paid
// @Description Mark a pending commission record as paid (owners and managers only)
// @Tags Commissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Commission record ID"
// @Success 200 {object} dto.APIResponse{data=dto.CommissionRecordDTO} "Commission paid"
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Failure 404 {object} dto.APIResponse "Commission not found"
// @Failure 409 {object} dto.APIResponse "Commission not pending"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/commissions/{id}/pay [post]
func (h *CommissionHandler) MarkPaid(c fiber.Ctx) error {
	clinicID, userID, err := h.identity(c)
	if err != nil {
		return err
	}

	calculationID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid commission ID", "INVALID_COMMISSION_ID", nil)
	}

	result, err := h.commissionFlow.MarkPaid(createRequestContext(c, "/api/v1/commissions/:id/pay"), clinicID, userID, calculationID, clientMetadata(c))
	if err != nil {
		if businessflow.IsPermissionDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only owners and managers can pay commissions", dto.ErrorPermissionDenied, nil)
		}
		if businessflow.IsCommissionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Commission not found", "COMMISSION_NOT_FOUND", nil)
		}
		if businessflow.IsCommissionAlreadyPaid(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Commission is already paid", "COMMISSION_ALREADY_PAID", nil)
		}
		if businessflow.IsCommissionNotPending(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Commission is not pending", "COMMISSION_NOT_PENDING", nil)
		}

		log.Println("Mark commission paid failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Commission payment failed", "MARK_PAID_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Commission marked as paid", result)
}

// CancelCommission handles commission cancellation
// @Summary Cancel Commission
// @Description Cancel a pending commission record (owners and managers only)
// @Tags Commissions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Commission record ID"
// @Success 200 {object} dto.APIResponse{data=dto.CommissionRecordDTO} "Commission cancelled"
// @Failure 403 {object} dto.APIResponse "Permission denied"
// @Failure 404 {object} dto.APIResponse "Commission not found"
// @Failure 409 {object} dto.APIResponse "Commission not pending"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/commissions/{id}/cancel [post]
func (h *CommissionHandler) CancelCommission(c fiber.Ctx) error {
	clinicID, userID, err := h.identity(c)
	if err != nil {
		return err
	}

	calculationID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid commission ID", "INVALID_COMMISSION_ID", nil)
	}

	result, err := h.commissionFlow.CancelCommission(createRequestContext(c, "/api/v1/commissions/:id/cancel"), clinicID, userID, calculationID, clientMetadata(c))
	if err != nil {
		if businessflow.IsPermissionDenied(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Only owners and managers can cancel commissions", dto.ErrorPermissionDenied, nil)
		}
		if businessflow.IsCommissionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Commission not found", "COMMISSION_NOT_FOUND", nil)
		}
		if businessflow.IsCommissionAlreadyPaid(err) || businessflow.IsCommissionNotPending(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Commission is not pending", "COMMISSION_NOT_PENDING", nil)
		}

		log.Println("Cancel commission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Commission cancellation failed", "CANCEL_COMMISSION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Commission cancelled", result)
}

func (h *CommissionHandler) summaryWindow(c fiber.Ctx) (*dto.CommissionSummaryRequest, error) {
	from := parseTimeQuery(c, "from")
	to := parseTimeQuery(c, "to")
	if from == nil || to == nil {
		return nil, h.ErrorResponse(c, fiber.StatusBadRequest, "from and to are required (RFC3339)", "INVALID_WINDOW", nil)
	}
	return &dto.CommissionSummaryRequest{From: *from, To: *to}, nil
}

// Summarize handles the commission summary report
// @Summary Commission Summary
// @Description Aggregate commissions per beneficiary over a reporting window
// @Tags Commissions
// @Produce json
// @Security BearerAuth
// @Param from query string true "Window start (RFC3339)"
// @Param to query string true "Window end (RFC3339)"
// @Success 200 {object} dto.APIResponse{data=dto.CommissionSummaryResponse} "Summary"
// @Failure 400 {object} dto.APIResponse "Invalid window"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/commissions/summary [get]
func (h *CommissionHandler) Summarize(c fiber.Ctx) error {
	clinicID, _, err := h.identity(c)
	if err != nil {
		return err
	}

	req, err := h.summaryWindow(c)
	if err != nil {
		return err
	}

	result, err := h.commissionFlow.Summarize(createRequestContext(c, "/api/v1/commissions/summary"), clinicID, req)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid reporting window", "INVALID_WINDOW", nil)
		}

		log.Println("Commission summary failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Summary generation failed", "SUMMARY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Summary generated", result)
}

// ExportSummary handles the commission summary spreadsheet export
// @Summary Export Commission Summary
// @Description Download the commission summary as an Excel workbook
// @Tags Commissions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param from query string true "Window start (RFC3339)"
// @Param to query string true "Window end (RFC3339)"
// @Success 200 {file} binary "Workbook"
// @Failure 400 {object} dto.APIResponse "Invalid window"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/commissions/summary/export [get]
func (h *CommissionHandler) ExportSummary(c fiber.Ctx) error {
	clinicID, _, err := h.identity(c)
	if err != nil {
		return err
	}

	req, err := h.summaryWindow(c)
	if err != nil {
		return err
	}

	ctx := createRequestContextWithTimeout(c, "/api/v1/commissions/summary/export", 60*time.Second)
	filename, content, err := h.commissionFlow.ExportSummaries(ctx, clinicID, req)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid reporting window", "INVALID_WINDOW", nil)
		}

		log.Println("Commission summary export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Export failed", "EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(content)
}
