package handlers

import (
	"log"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/app/middleware"
	businessflow "github.com/amirphl/Shirahama-Clinic/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// AppointmentHandlerInterface defines the contract for appointment handlers
type AppointmentHandlerInterface interface {
	Schedule(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Cancel(c fiber.Ctx) error
	Complete(c fiber.Ctx) error
}

// AppointmentHandler handles appointment-related HTTP requests
type AppointmentHandler struct {
	appointmentFlow businessflow.AppointmentFlow
	validator       *validator.Validate
}

func (h *AppointmentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AppointmentHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointmentFlow businessflow.AppointmentFlow) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentFlow: appointmentFlow,
		validator:       validator.New(),
	}
}

func (h *AppointmentHandler) identity(c fiber.Ctx) (clinicID, userID uint, err error) {
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

// Schedule handles appointment scheduling
// @Summary Schedule Appointment
// @Description Schedule an appointment for a patient with a professional
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ScheduleAppointmentRequest true "Appointment data"
// @Success 201 {object} dto.APIResponse{data=dto.AppointmentDTO} "Appointment scheduled"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Patient, professional, or procedure not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/appointments [post]
func (h *AppointmentHandler) Schedule(c fiber.Ctx) error {
	clinicID, userID, err := h.identity(c)
	if err != nil {
		return err
	}

	var req dto.ScheduleAppointmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.appointmentFlow.Schedule(createRequestContext(c, "/api/v1/appointments"), clinicID, userID, &req, clientMetadata(c))
	if err != nil {
		if businessflow.IsPatientNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Patient not found", "PATIENT_NOT_FOUND", nil)
		}
		if businessflow.IsStaffMemberNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Professional not found", "PROFESSIONAL_NOT_FOUND", nil)
		}
		if businessflow.IsStaffRoleMismatch(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Staff member is not a professional", "STAFF_ROLE_MISMATCH", nil)
		}
		if businessflow.IsStaffMemberInactive(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Professional is inactive", "PROFESSIONAL_INACTIVE", nil)
		}
		if businessflow.IsProcedureNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Procedure not found", "PROCEDURE_NOT_FOUND", nil)
		}
		if businessflow.IsAppointmentInPast(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Appointment cannot be scheduled in the past", "APPOINTMENT_IN_PAST", nil)
		}

		log.Println("Schedule appointment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Appointment scheduling failed", "SCHEDULE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Appointment scheduled", result)
}

// List handles appointment listing with filters
// @Summary List Appointments
// @Description List the clinic's appointments filtered by window, professional, patient, or status
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Param professional_id query int false "Professional filter"
// @Param patient_id query int false "Patient filter"
// @Param status query string false "Status filter" Enums(scheduled, completed, cancelled)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListAppointmentsResponse} "Appointments"
// @Failure 400 {object} dto.APIResponse "Invalid filters"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/appointments [get]
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	clinicID, _, err := h.identity(c)
	if err != nil {
		return err
	}

	req := dto.ListAppointmentsRequest{
		From:           parseTimeQuery(c, "from"),
		To:             parseTimeQuery(c, "to"),
		ProfessionalID: parseUintQuery(c, "professional_id"),
		PatientID:      parseUintQuery(c, "patient_id"),
		Status:         parseStringQuery(c, "status"),
		Page:           parseIntQuery(c, "page", 1),
		PageSize:       parseIntQuery(c, "page_size", 20),
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.appointmentFlow.List(createRequestContext(c, "/api/v1/appointments"), clinicID, &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) || businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid filters", "INVALID_FILTERS", nil)
		}

		log.Println("List appointments failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list appointments", "LIST_APPOINTMENTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Appointments retrieved", result)
}

// Get handles fetching a single appointment
// @Summary Get Appointment
// @Description Get one appointment by ID
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} dto.APIResponse{data=dto.AppointmentDTO} "Appointment"
// @Failure 404 {object} dto.APIResponse "Appointment not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/appointments/{id} [get]
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	clinicID, _, err := h.identity(c)
	if err != nil {
		return err
	}

	appointmentID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid appointment ID", "INVALID_APPOINTMENT_ID", nil)
	}

	result, err := h.appointmentFlow.Get(createRequestContext(c, "/api/v1/appointments/:id"), clinicID, appointmentID)
	if err != nil {
		if businessflow.IsAppointmentNotFound(err) || businessflow.IsAppointmentAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Appointment not found", "APPOINTMENT_NOT_FOUND", nil)
		}

		log.Println("Get appointment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get appointment", "GET_APPOINTMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Appointment retrieved", result)
}

// Cancel handles appointment cancellation
// @Summary Cancel Appointment
// @Description Cancel a scheduled appointment
// @Tags Appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} dto.APIResponse{data=dto.AppointmentDTO} "Appointment cancelled"
// @Failure 404 {object} dto.APIResponse "Appointment not found"
// @Failure 409 {object} dto.APIResponse "Appointment cannot be cancelled"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/appointments/{id}/cancel [post]
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	clinicID, userID, err := h.identity(c)
	if err != nil {
		return err
	}

	appointmentID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid appointment ID", "INVALID_APPOINTMENT_ID", nil)
	}

	result, err := h.appointmentFlow.Cancel(createRequestContext(c, "/api/v1/appointments/:id/cancel"), clinicID, userID, appointmentID, clientMetadata(c))
	if err != nil {
		if businessflow.IsAppointmentNotFound(err) || businessflow.IsAppointmentAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Appointment not found", "APPOINTMENT_NOT_FOUND", nil)
		}
		if businessflow.IsAppointmentNotCancelable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Appointment cannot be cancelled", "APPOINTMENT_NOT_CANCELABLE", nil)
		}

		log.Println("Cancel appointment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Appointment cancellation failed", "CANCEL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Appointment cancelled", result)
}

// Complete handles appointment completion and commission computation
// @Summary Complete Appointment
// @Description Complete an appointment, computing commissions and writing ledger entries atomically
// @Tags Appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param request body dto.CompleteAppointmentRequest true "Completion data"
// @Success 200 {object} dto.APIResponse{data=dto.CompleteAppointmentResponse} "Appointment completed"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Appointment not found"
// @Failure 409 {object} dto.APIResponse "Appointment cannot be completed"
// @Failure 422 {object} dto.APIResponse "Completion blocked by validation"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/appointments/{id}/complete [post]
func (h *AppointmentHandler) Complete(c fiber.Ctx) error {
	clinicID, userID, err := h.identity(c)
	if err != nil {
		return err
	}

	appointmentID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid appointment ID", "INVALID_APPOINTMENT_ID", nil)
	}

	var req dto.CompleteAppointmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, validation, err := h.appointmentFlow.Complete(createRequestContext(c, "/api/v1/appointments/:id/complete"), clinicID, userID, appointmentID, &req, clientMetadata(c))
	if err != nil {
		if validation != nil {
			return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "Completion blocked by validation", "COMPLETION_BLOCKED", validation)
		}
		if businessflow.IsAppointmentNotFound(err) || businessflow.IsAppointmentAccessDenied(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Appointment not found", "APPOINTMENT_NOT_FOUND", nil)
		}
		if businessflow.IsAppointmentNotCompetable(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Appointment cannot be completed", "APPOINTMENT_NOT_COMPLETABLE", nil)
		}
		if businessflow.IsServiceValueRequired(err) || businessflow.IsQuantityInvalid(err) || businessflow.IsPaymentMethodInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid completion data", "INVALID_COMPLETION_DATA", nil)
		}
		if businessflow.IsStaffMemberNotFound(err) || businessflow.IsStaffRoleMismatch(err) || businessflow.IsStaffMemberInactive(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Assigned staff member is invalid", "INVALID_ASSIGNED_STAFF", nil)
		}

		log.Println("Complete appointment failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Appointment completion failed", "COMPLETE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Appointment completed", result)
}
