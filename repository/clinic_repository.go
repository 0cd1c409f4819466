package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Shirahama-Clinic/models"
	"gorm.io/gorm"
)

// ClinicRepositoryImpl implements ClinicRepository interface
type ClinicRepositoryImpl struct {
	*BaseRepository[models.Clinic, models.ClinicFilter]
}

// NewClinicRepository creates a new clinic repository
func NewClinicRepository(db *gorm.DB) ClinicRepository {
	return &ClinicRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Clinic, models.ClinicFilter](db),
	}
}

// ByUUID finds a clinic by UUID
func (r *ClinicRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Clinic, error) {
	db := r.getDB(ctx)
	var clinic models.Clinic
	err := db.Where("uuid = ?", uuid).Last(&clinic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &clinic, nil
}

// ByFilter retrieves clinics based on filter criteria
func (r *ClinicRepositoryImpl) ByFilter(ctx context.Context, filter models.ClinicFilter, orderBy string, limit, offset int) ([]*models.Clinic, error) {
	db := r.getDB(ctx)
	var clinics []*models.Clinic

	query := db.Model(&models.Clinic{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("created_at DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&clinics).Error
	if err != nil {
		return nil, err
	}
	return clinics, nil
}

// Count returns the number of clinics matching the filter
func (r *ClinicRepositoryImpl) Count(ctx context.Context, filter models.ClinicFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.Clinic{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any clinic matching the filter exists
func (r *ClinicRepositoryImpl) Exists(ctx context.Context, filter models.ClinicFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *ClinicRepositoryImpl) applyFilter(query *gorm.DB, filter models.ClinicFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.City != nil {
		query = query.Where("city = ?", *filter.City)
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
