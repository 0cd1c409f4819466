package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Shirahama-Clinic/models"
	"gorm.io/gorm"
)

// PatientRepositoryImpl implements PatientRepository interface
type PatientRepositoryImpl struct {
	*BaseRepository[models.Patient, models.PatientFilter]
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &PatientRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Patient, models.PatientFilter](db),
	}
}

// ByUUID finds a patient by UUID
func (r *PatientRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Patient, error) {
	db := r.getDB(ctx)
	var patient models.Patient
	err := db.Where("uuid = ?", uuid).Last(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// ByDocument finds a patient by document within a clinic
func (r *PatientRepositoryImpl) ByDocument(ctx context.Context, clinicID uint, document string) (*models.Patient, error) {
	db := r.getDB(ctx)
	var patient models.Patient
	err := db.Where("clinic_id = ? AND document = ?", clinicID, document).Last(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// SearchByName retrieves patients whose name contains the given fragment
func (r *PatientRepositoryImpl) SearchByName(ctx context.Context, clinicID uint, name string, limit, offset int) ([]*models.Patient, error) {
	db := r.getDB(ctx)
	var patients []*models.Patient

	query := db.Where("clinic_id = ? AND full_name ILIKE ?", clinicID, "%"+name+"%").Order("full_name")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

// ByFilter retrieves patients based on filter criteria
func (r *PatientRepositoryImpl) ByFilter(ctx context.Context, filter models.PatientFilter, orderBy string, limit, offset int) ([]*models.Patient, error) {
	db := r.getDB(ctx)
	var patients []*models.Patient

	query := db.Model(&models.Patient{})
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

	err := query.Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

// Count returns the number of patients matching the filter
func (r *PatientRepositoryImpl) Count(ctx context.Context, filter models.PatientFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.Patient{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any patient matching the filter exists
func (r *PatientRepositoryImpl) Exists(ctx context.Context, filter models.PatientFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *PatientRepositoryImpl) applyFilter(query *gorm.DB, filter models.PatientFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.FullName != nil {
		query = query.Where("full_name = ?", *filter.FullName)
	}
	if filter.Document != nil {
		query = query.Where("document = ?", *filter.Document)
	}
	if filter.Phone != nil {
		query = query.Where("phone = ?", *filter.Phone)
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
