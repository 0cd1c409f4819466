package handlers

import (
	"log"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/app/middleware"
	businessflow "github.com/amirphl/Shirahama-Clinic/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// ClinicHandlerInterface defines the contract for clinic registry handlers
type ClinicHandlerInterface interface {
	CreateStaffMember(c fiber.Ctx) error
	ListStaffMembers(c fiber.Ctx) error
	CreatePatient(c fiber.Ctx) error
	SearchPatients(c fiber.Ctx) error
	CreateProcedure(c fiber.Ctx) error
	ListProcedures(c fiber.Ctx) error
}

// ClinicHandler handles staff, patient, and procedure registry HTTP requests
type ClinicHandler struct {
	clinicFlow businessflow.ClinicFlow
	validator  *validator.Validate
}

func (h *ClinicHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ClinicHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewClinicHandler creates a new clinic registry handler
func NewClinicHandler(clinicFlow businessflow.ClinicFlow) *ClinicHandler {
	return &ClinicHandler{
		clinicFlow: clinicFlow,
		validator:  validator.New(),
	}
}

func (h *ClinicHandler) clinicID(c fiber.Ctx) (uint, error) {
	clinicID, ok := middleware.GetClinicIDFromContext(c)
	if !ok {
		return 0, h.ErrorResponse(c, fiber.StatusUnauthorized, "Clinic ID not found in context", "MISSING_CLINIC_ID", nil)
	}
	return clinicID, nil
}

// CreateStaffMember handles staff member registration
// @Summary Create Staff Member
// @Description Register a professional, seller, or receptionist in the clinic
// @Tags Clinic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStaffMemberRequest true "Staff member data"
// @Success 201 {object} dto.APIResponse{data=dto.StaffMemberDTO} "Staff member created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/staff [post]
func (h *ClinicHandler) CreateStaffMember(c fiber.Ctx) error {
	clinicID, err := h.clinicID(c)
	if err != nil {
		return err
	}

	var req dto.CreateStaffMemberRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.clinicFlow.CreateStaffMember(createRequestContext(c, "/api/v1/staff"), clinicID, &req)
	if err != nil {
		if businessflow.IsStaffRoleMismatch(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Staff role is invalid", "INVALID_STAFF_ROLE", nil)
		}

		log.Println("Create staff member failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Staff member creation failed", "CREATE_STAFF_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Staff member created", result)
}

// ListStaffMembers handles staff listing
// @Summary List Staff Members
// @Description List the clinic's staff, optionally filtered by role
// @Tags Clinic
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter" Enums(professional, seller, receptionist)
// @Success 200 {object} dto.APIResponse{data=[]dto.StaffMemberDTO} "Staff members"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/staff [get]
func (h *ClinicHandler) ListStaffMembers(c fiber.Ctx) error {
	clinicID, err := h.clinicID(c)
	if err != nil {
		return err
	}

	result, err := h.clinicFlow.ListStaffMembers(createRequestContext(c, "/api/v1/staff"), clinicID, parseStringQuery(c, "role"))
	if err != nil {
		log.Println("List staff members failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list staff members", "LIST_STAFF_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Staff members retrieved", result)
}

// CreatePatient handles patient registration
// @Summary Create Patient
// @Description Register a patient in the clinic
// @Tags Clinic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePatientRequest true "Patient data"
// @Success 201 {object} dto.APIResponse{data=dto.PatientDTO} "Patient created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/patients [post]
func (h *ClinicHandler) CreatePatient(c fiber.Ctx) error {
	clinicID, err := h.clinicID(c)
	if err != nil {
		return err
	}

	var req dto.CreatePatientRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.clinicFlow.CreatePatient(createRequestContext(c, "/api/v1/patients"), clinicID, &req)
	if err != nil {
		log.Println("Create patient failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Patient creation failed", "CREATE_PATIENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Patient created", result)
}

// SearchPatients handles patient lookup by name
// @Summary Search Patients
// @Description Search the clinic's patients by name fragment
// @Tags Clinic
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name fragment"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=[]dto.PatientDTO} "Patients"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/patients [get]
func (h *ClinicHandler) SearchPatients(c fiber.Ctx) error {
	clinicID, err := h.clinicID(c)
	if err != nil {
		return err
	}

	name := c.Query("name")
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 20)

	result, err := h.clinicFlow.SearchPatients(createRequestContext(c, "/api/v1/patients"), clinicID, name, page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "INVALID_FILTERS", nil)
		}

		log.Println("Search patients failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to search patients", "SEARCH_PATIENTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Patients retrieved", result)
}

// CreateProcedure handles price table entries
// @Summary Create Procedure
// @Description Add a procedure to the clinic's price table. Codes are unique per clinic.
// @Tags Clinic
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateProcedureRequest true "Procedure data"
// @Success 201 {object} dto.APIResponse{data=dto.ProcedureDTO} "Procedure created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Procedure code already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/procedures [post]
func (h *ClinicHandler) CreateProcedure(c fiber.Ctx) error {
	clinicID, err := h.clinicID(c)
	if err != nil {
		return err
	}

	var req dto.CreateProcedureRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	result, err := h.clinicFlow.CreateProcedure(createRequestContext(c, "/api/v1/procedures"), clinicID, &req)
	if err != nil {
		if businessflow.IsProcedureCodeExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Procedure code already exists", "PROCEDURE_CODE_EXISTS", nil)
		}

		log.Println("Create procedure failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Procedure creation failed", "CREATE_PROCEDURE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Procedure created", result)
}

// ListProcedures handles price table listing
// @Summary List Procedures
// @Description List the clinic's active price table
// @Tags Clinic
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ProcedureDTO} "Procedures"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/procedures [get]
func (h *ClinicHandler) ListProcedures(c fiber.Ctx) error {
	clinicID, err := h.clinicID(c)
	if err != nil {
		return err
	}

	result, err := h.clinicFlow.ListProcedures(createRequestContext(c, "/api/v1/procedures"), clinicID)
	if err != nil {
		log.Println("List procedures failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list procedures", "LIST_PROCEDURES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Procedures retrieved", result)
}
