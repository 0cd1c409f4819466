package handlers

import (
	"log"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/app/middleware"
	businessflow "github.com/amirphl/Shirahama-Clinic/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// FinanceHandlerInterface defines the contract for finance handlers
type FinanceHandlerInterface interface {
	ListTransactions(c fiber.Ctx) error
	Summary(c fiber.Ctx) error
	RecordAdjustment(c fiber.Ctx) error
}

// FinanceHandler handles clinic ledger HTTP requests
type FinanceHandler struct {
	financeFlow businessflow.FinanceFlow
	validator   *validator.Validate
}

func (h *FinanceHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *FinanceHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewFinanceHandler creates a new finance handler
func NewFinanceHandler(financeFlow businessflow.FinanceFlow) *FinanceHandler {
	return &FinanceHandler{
		financeFlow: financeFlow,
		validator:   validator.New(),
	}
}

func (h *FinanceHandler) identity(c fiber.Ctx) (clinicID, userID uint, err error) {
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

// ListTransactions handles ledger listing
// @Summary List Transactions
// @Description List the clinic's ledger entries filtered by window and type
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Param type query string false "Entry type" Enums(income, expense)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListTransactionsResponse} "Ledger entries"
// @Failure 400 {object} dto.APIResponse "Invalid filters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/transactions [get]
func (h *FinanceHandler) ListTransactions(c fiber.Ctx) error {
	clinicID, _, err := h.identity(c)
	if err != nil {
		return err
	}

	req := dto.ListTransactionsRequest{
		From:     parseTimeQuery(c, "from"),
		To:       parseTimeQuery(c, "to"),
		Type:     parseStringQuery(c, "type"),
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.financeFlow.ListTransactions(createRequestContext(c, "/api/v1/transactions"), clinicID, &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) || businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filters", "INVALID_FILTERS", nil)
		}

		log.Println("List transactions failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list transactions", "LIST_TRANSACTIONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Transactions retrieved", result)
}

// Summary handles the cash summary report
// @Summary Finance Summary
// @Description Aggregate income and expense totals over a reporting window
// @Tags Finance
// @Produce json
// @Security BearerAuth
// @Param from query string true "Window start (RFC3339)"
// @Param to query string true "Window end (RFC3339)"
// @Success 200 {object} dto.APIResponse{data=dto.FinanceSummaryResponse} "Summary"
// @Failure 400 {object} dto.APIResponse "Invalid window"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/transactions/summary [get]
func (h *FinanceHandler) Summary(c fiber.Ctx) error {
	clinicID, _, err := h.identity(c)
	if err != nil {
		return err
	}

	from := parseTimeQuery(c, "from")
	to := parseTimeQuery(c, "to")
	if from == nil || to == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "from and to are required (RFC3339)", "INVALID_WINDOW", nil)
	}

	req := dto.FinanceSummaryRequest{From: *from, To: *to}
	result, err := h.financeFlow.Summary(createRequestContext(c, "/api/v1/transactions/summary"), clinicID, &req)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid reporting window", "INVALID_WINDOW", nil)
		}

		log.Println("Finance summary failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Summary generation failed", "FINANCE_SUMMARY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Summary generated", result)
}

// RecordAdjustment handles manual ledger adjustments
// @Summary Record Adjustment
// @Description Record a manual income or expense entry outside the appointment flow
// @Tags Finance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RecordAdjustmentRequest true "Adjustment data"
// @Success 201 {object} dto.APIResponse{data=dto.TransactionDTO} "Adjustment recorded"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/transactions [post]
func (h *FinanceHandler) RecordAdjustment(c fiber.Ctx) error {
	clinicID, userID, err := h.identity(c)
	if err != nil {
		return err
	}

	var req dto.RecordAdjustmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.financeFlow.RecordAdjustment(createRequestContext(c, "/api/v1/transactions"), clinicID, userID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsAmountInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Adjustment data is invalid", "INVALID_ADJUSTMENT", nil)
		}

		log.Println("Record adjustment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Adjustment recording failed", "ADJUSTMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Adjustment recorded", result)
}
