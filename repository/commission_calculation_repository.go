package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/models"
	"gorm.io/gorm"
)

// CommissionCalculationRepositoryImpl implements CommissionCalculationRepository interface
type CommissionCalculationRepositoryImpl struct {
	*BaseRepository[models.CommissionCalculation, models.CommissionCalculationFilter]
}

// NewCommissionCalculationRepository creates a new commission calculation repository
func NewCommissionCalculationRepository(db *gorm.DB) CommissionCalculationRepository {
	return &CommissionCalculationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CommissionCalculation, models.CommissionCalculationFilter](db),
	}
}

// ByUUID finds a commission calculation by UUID
func (r *CommissionCalculationRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.CommissionCalculation, error) {
	db := r.getDB(ctx)
	var calculation models.CommissionCalculation
	err := db.Where("uuid = ?", uuid).Preload("Beneficiary").Last(&calculation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &calculation, nil
}

// ListNonCancelledByAppointment retrieves the live commission records of an
// appointment. Cancelled records never block a re-completion, so they are
// excluded here.
func (r *CommissionCalculationRepositoryImpl) ListNonCancelledByAppointment(ctx context.Context, appointmentID uint) ([]*models.CommissionCalculation, error) {
	db := r.getDB(ctx)
	var calculations []*models.CommissionCalculation
	err := db.Where("appointment_id = ? AND status <> ?", appointmentID, commission.StatusCancelled).
		Find(&calculations).Error
	if err != nil {
		return nil, err
	}
	return calculations, nil
}

// ListByBeneficiary retrieves a beneficiary's records with service date within [from, to)
func (r *CommissionCalculationRepositoryImpl) ListByBeneficiary(ctx context.Context, beneficiaryID uint, from, to time.Time) ([]*models.CommissionCalculation, error) {
	db := r.getDB(ctx)
	var calculations []*models.CommissionCalculation
	err := db.Where("beneficiary_id = ? AND service_date >= ? AND service_date < ?", beneficiaryID, from, to).
		Order("service_date").
		Preload("Beneficiary").
		Find(&calculations).Error
	if err != nil {
		return nil, err
	}
	return calculations, nil
}

// ListByClinicAndRange retrieves a clinic's records with service date within
// [from, to), optionally restricted to one status
func (r *CommissionCalculationRepositoryImpl) ListByClinicAndRange(ctx context.Context, clinicID uint, from, to time.Time, status *commission.Status) ([]*models.CommissionCalculation, error) {
	db := r.getDB(ctx)
	var calculations []*models.CommissionCalculation

	query := db.Where("clinic_id = ? AND service_date >= ? AND service_date < ?", clinicID, from, to)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	err := query.Order("service_date").Preload("Beneficiary").Find(&calculations).Error
	if err != nil {
		return nil, err
	}
	return calculations, nil
}

// Update persists changes to an existing calculation
func (r *CommissionCalculationRepositoryImpl) Update(ctx context.Context, calculation *models.CommissionCalculation) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(calculation).Error
	if err != nil {
		return err
	}
	return nil
}

// ByFilter retrieves commission calculations based on filter criteria
func (r *CommissionCalculationRepositoryImpl) ByFilter(ctx context.Context, filter models.CommissionCalculationFilter, orderBy string, limit, offset int) ([]*models.CommissionCalculation, error) {
	db := r.getDB(ctx)
	var calculations []*models.CommissionCalculation

	query := db.Model(&models.CommissionCalculation{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("service_date DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Preload("Beneficiary").Find(&calculations).Error
	if err != nil {
		return nil, err
	}
	return calculations, nil
}

// Count returns the number of commission calculations matching the filter
func (r *CommissionCalculationRepositoryImpl) Count(ctx context.Context, filter models.CommissionCalculationFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.CommissionCalculation{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any commission calculation matching the filter exists
func (r *CommissionCalculationRepositoryImpl) Exists(ctx context.Context, filter models.CommissionCalculationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *CommissionCalculationRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommissionCalculationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.AppointmentID != nil {
		query = query.Where("appointment_id = ?", *filter.AppointmentID)
	}
	if filter.BeneficiaryType != nil {
		query = query.Where("beneficiary_type = ?", *filter.BeneficiaryType)
	}
	if filter.BeneficiaryID != nil {
		query = query.Where("beneficiary_id = ?", *filter.BeneficiaryID)
	}
	if filter.ProfessionalID != nil {
		query = query.Where("professional_id = ?", *filter.ProfessionalID)
	}
	if filter.ProcedureCode != nil {
		query = query.Where("procedure_code = ?", *filter.ProcedureCode)
	}
	if filter.RuleID != nil {
		query = query.Where("rule_id = ?", *filter.RuleID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ServiceAfter != nil {
		query = query.Where("service_date >= ?", *filter.ServiceAfter)
	}
	if filter.ServiceBefore != nil {
		query = query.Where("service_date <= ?", *filter.ServiceBefore)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return query
}
