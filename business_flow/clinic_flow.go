// Package businessflow contains the core business logic and use cases for clinic registry workflows
package businessflow

import (
	"context"

	"github.com/amirphl/Shirahama-Clinic/app/dto"
	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/repository"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClinicFlow handles the clinic's registries: staff members, patients, and
// the procedure price table
type ClinicFlow interface {
	CreateStaffMember(ctx context.Context, clinicID uint, request *dto.CreateStaffMemberRequest) (*dto.StaffMemberDTO, error)
	ListStaffMembers(ctx context.Context, clinicID uint, role *string) ([]dto.StaffMemberDTO, error)
	CreatePatient(ctx context.Context, clinicID uint, request *dto.CreatePatientRequest) (*dto.PatientDTO, error)
	SearchPatients(ctx context.Context, clinicID uint, name string, page, pageSize int) ([]dto.PatientDTO, error)
	CreateProcedure(ctx context.Context, clinicID uint, request *dto.CreateProcedureRequest) (*dto.ProcedureDTO, error)
	ListProcedures(ctx context.Context, clinicID uint) ([]dto.ProcedureDTO, error)
}

// ClinicFlowImpl implements the clinic registry business flow
type ClinicFlowImpl struct {
	staffRepo     repository.StaffMemberRepository
	patientRepo   repository.PatientRepository
	procedureRepo repository.ProcedureRepository
	db            *gorm.DB
}

// NewClinicFlow creates a new clinic registry flow instance
func NewClinicFlow(
	staffRepo repository.StaffMemberRepository,
	patientRepo repository.PatientRepository,
	procedureRepo repository.ProcedureRepository,
	db *gorm.DB,
) ClinicFlow {
	return &ClinicFlowImpl{
		staffRepo:     staffRepo,
		patientRepo:   patientRepo,
		procedureRepo: procedureRepo,
		db:            db,
	}
}

// CreateStaffMember registers a staff member in the clinic
func (f *ClinicFlowImpl) CreateStaffMember(ctx context.Context, clinicID uint, request *dto.CreateStaffMemberRequest) (*dto.StaffMemberDTO, error) {
	member := &models.StaffMember{
		UUID:               uuid.New(),
		ClinicID:           clinicID,
		FullName:           request.FullName,
		Role:               models.StaffRole(request.Role),
		RegistrationNumber: request.RegistrationNumber,
		Specialty:          request.Specialty,
		Phone:              request.Phone,
		Email:              request.Email,
		IsActive:           utils.ToPtr(true),
	}

	switch member.Role {
	case models.StaffRoleProfessional, models.StaffRoleSeller, models.StaffRoleReceptionist:
	default:
		return nil, NewBusinessError("CREATE_STAFF_VALIDATION_FAILED", "Staff role is invalid", ErrStaffRoleMismatch)
	}

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		return f.staffRepo.Save(ctx, member)
	})
	if err != nil {
		return nil, NewBusinessError("CREATE_STAFF_FAILED", "Staff member creation failed", err)
	}

	out := ToStaffMemberDTO(*member)
	return &out, nil
}

// ListStaffMembers returns the clinic's staff, optionally filtered by role
func (f *ClinicFlowImpl) ListStaffMembers(ctx context.Context, clinicID uint, role *string) ([]dto.StaffMemberDTO, error) {
	var staffRole *models.StaffRole
	if role != nil && *role != "" {
		staffRole = utils.ToPtr(models.StaffRole(*role))
	}

	members, err := f.staffRepo.ListByClinic(ctx, clinicID, staffRole)
	if err != nil {
		return nil, NewBusinessError("LIST_STAFF_FAILED", "Failed to list staff members", err)
	}

	items := make([]dto.StaffMemberDTO, 0, len(members))
	for _, member := range members {
		items = append(items, ToStaffMemberDTO(*member))
	}
	return items, nil
}

// CreatePatient registers a patient in the clinic
func (f *ClinicFlowImpl) CreatePatient(ctx context.Context, clinicID uint, request *dto.CreatePatientRequest) (*dto.PatientDTO, error) {
	patient := &models.Patient{
		UUID:      uuid.New(),
		ClinicID:  clinicID,
		FullName:  request.FullName,
		Document:  request.Document,
		Phone:     request.Phone,
		Email:     request.Email,
		BirthDate: request.BirthDate,
		Notes:     request.Notes,
		IsActive:  utils.ToPtr(true),
	}

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		return f.patientRepo.Save(ctx, patient)
	})
	if err != nil {
		return nil, NewBusinessError("CREATE_PATIENT_FAILED", "Patient creation failed", err)
	}

	out := ToPatientDTO(*patient)
	return &out, nil
}

// SearchPatients looks patients up by name fragment
func (f *ClinicFlowImpl) SearchPatients(ctx context.Context, clinicID uint, name string, page, pageSize int) ([]dto.PatientDTO, error) {
	page, pageSize, err := normalizePage(page, pageSize)
	if err != nil {
		return nil, NewBusinessError("SEARCH_PATIENTS_VALIDATION_FAILED", "Invalid pagination", err)
	}

	patients, err := f.patientRepo.SearchByName(ctx, clinicID, name, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("SEARCH_PATIENTS_FAILED", "Failed to search patients", err)
	}

	items := make([]dto.PatientDTO, 0, len(patients))
	for _, patient := range patients {
		items = append(items, ToPatientDTO(*patient))
	}
	return items, nil
}

// CreateProcedure adds an entry to the clinic's price table. Codes are unique
// per clinic because commission rules match against them.
func (f *ClinicFlowImpl) CreateProcedure(ctx context.Context, clinicID uint, request *dto.CreateProcedureRequest) (*dto.ProcedureDTO, error) {
	existing, err := f.procedureRepo.ByCode(ctx, clinicID, request.Code)
	if err != nil {
		return nil, NewBusinessError("CREATE_PROCEDURE_FAILED", "Failed to check procedure code", err)
	}
	if existing != nil {
		return nil, NewBusinessError("CREATE_PROCEDURE_VALIDATION_FAILED", "Procedure code already exists", ErrProcedureCodeExists)
	}

	procedure := &models.Procedure{
		ClinicID:       clinicID,
		Code:           request.Code,
		Name:           request.Name,
		SuggestedPrice: request.SuggestedPrice,
		Currency:       utils.BRLCurrency,
		DefaultUnit:    commission.UnitAppointment,
		Description:    request.Description,
		IsActive:       utils.ToPtr(true),
	}
	if request.DefaultUnit != "" {
		procedure.DefaultUnit = commission.CalculationUnit(request.DefaultUnit)
	}

	err = repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		return f.procedureRepo.Save(ctx, procedure)
	})
	if err != nil {
		return nil, NewBusinessError("CREATE_PROCEDURE_FAILED", "Procedure creation failed", err)
	}

	out := ToProcedureDTO(*procedure)
	return &out, nil
}

// ListProcedures returns the clinic's active price table
func (f *ClinicFlowImpl) ListProcedures(ctx context.Context, clinicID uint) ([]dto.ProcedureDTO, error) {
	procedures, err := f.procedureRepo.ListActiveByClinic(ctx, clinicID)
	if err != nil {
		return nil, NewBusinessError("LIST_PROCEDURES_FAILED", "Failed to list procedures", err)
	}

	items := make([]dto.ProcedureDTO, 0, len(procedures))
	for _, procedure := range procedures {
		items = append(items, ToProcedureDTO(*procedure))
	}
	return items, nil
}
