package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Shirahama-Clinic/models"
	"gorm.io/gorm"
)

// StaffMemberRepositoryImpl implements StaffMemberRepository interface
type StaffMemberRepositoryImpl struct {
	*BaseRepository[models.StaffMember, models.StaffMemberFilter]
}

// NewStaffMemberRepository creates a new staff member repository
func NewStaffMemberRepository(db *gorm.DB) StaffMemberRepository {
	return &StaffMemberRepositoryImpl{
		BaseRepository: NewBaseRepository[models.StaffMember, models.StaffMemberFilter](db),
	}
}

// ByUUID finds a staff member by UUID
func (r *StaffMemberRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.StaffMember, error) {
	db := r.getDB(ctx)
	var staff models.StaffMember
	err := db.Where("uuid = ?", uuid).Last(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

// ListByClinic retrieves staff members of a clinic, optionally restricted to one role
func (r *StaffMemberRepositoryImpl) ListByClinic(ctx context.Context, clinicID uint, role *models.StaffRole) ([]*models.StaffMember, error) {
	db := r.getDB(ctx)
	var staff []*models.StaffMember

	query := db.Where("clinic_id = ? AND is_active = ?", clinicID, true)
	if role != nil {
		query = query.Where("role = ?", *role)
	}

	err := query.Order("full_name").Find(&staff).Error
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// ByFilter retrieves staff members based on filter criteria
func (r *StaffMemberRepositoryImpl) ByFilter(ctx context.Context, filter models.StaffMemberFilter, orderBy string, limit, offset int) ([]*models.StaffMember, error) {
	db := r.getDB(ctx)
	var staff []*models.StaffMember

	query := db.Model(&models.StaffMember{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("full_name")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&staff).Error
	if err != nil {
		return nil, err
	}
	return staff, nil
}

// Count returns the number of staff members matching the filter
func (r *StaffMemberRepositoryImpl) Count(ctx context.Context, filter models.StaffMemberFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.StaffMember{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any staff member matching the filter exists
func (r *StaffMemberRepositoryImpl) Exists(ctx context.Context, filter models.StaffMemberFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *StaffMemberRepositoryImpl) applyFilter(query *gorm.DB, filter models.StaffMemberFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.FullName != nil {
		query = query.Where("full_name = ?", *filter.FullName)
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
