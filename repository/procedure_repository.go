package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Shirahama-Clinic/models"
	"gorm.io/gorm"
)

// ProcedureRepositoryImpl implements ProcedureRepository interface
type ProcedureRepositoryImpl struct {
	*BaseRepository[models.Procedure, models.ProcedureFilter]
}

// NewProcedureRepository creates a new procedure repository
func NewProcedureRepository(db *gorm.DB) ProcedureRepository {
	return &ProcedureRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Procedure, models.ProcedureFilter](db),
	}
}

// ByCode finds a procedure by its code within a clinic
func (r *ProcedureRepositoryImpl) ByCode(ctx context.Context, clinicID uint, code string) (*models.Procedure, error) {
	db := r.getDB(ctx)
	var procedure models.Procedure
	err := db.Where("clinic_id = ? AND code = ?", clinicID, code).Last(&procedure).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &procedure, nil
}

// ListActiveByClinic retrieves the active price table of a clinic
func (r *ProcedureRepositoryImpl) ListActiveByClinic(ctx context.Context, clinicID uint) ([]*models.Procedure, error) {
	db := r.getDB(ctx)
	var procedures []*models.Procedure
	err := db.Where("clinic_id = ? AND is_active = ?", clinicID, true).Order("name").Find(&procedures).Error
	if err != nil {
		return nil, err
	}
	return procedures, nil
}

// ByFilter retrieves procedures based on filter criteria
func (r *ProcedureRepositoryImpl) ByFilter(ctx context.Context, filter models.ProcedureFilter, orderBy string, limit, offset int) ([]*models.Procedure, error) {
	db := r.getDB(ctx)
	var procedures []*models.Procedure

	query := db.Model(&models.Procedure{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("name")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&procedures).Error
	if err != nil {
		return nil, err
	}
	return procedures, nil
}

// Count returns the number of procedures matching the filter
func (r *ProcedureRepositoryImpl) Count(ctx context.Context, filter models.ProcedureFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.Procedure{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any procedure matching the filter exists
func (r *ProcedureRepositoryImpl) Exists(ctx context.Context, filter models.ProcedureFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *ProcedureRepositoryImpl) applyFilter(query *gorm.DB, filter models.ProcedureFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.Code != nil {
		query = query.Where("code = ?", *filter.Code)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return query
}
