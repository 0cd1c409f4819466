package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amirphl/Shirahama-Clinic/models"
	"gorm.io/gorm"
)

// AppointmentRepositoryImpl implements AppointmentRepository interface
type AppointmentRepositoryImpl struct {
	*BaseRepository[models.Appointment, models.AppointmentFilter]
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &AppointmentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Appointment, models.AppointmentFilter](db),
	}
}

// ByUUID finds an appointment by UUID
func (r *AppointmentRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Appointment, error) {
	db := r.getDB(ctx)
	var appointment models.Appointment
	err := db.Where("uuid = ?", uuid).
		Preload("Patient").
		Preload("Professional").
		Preload("Procedure").
		Last(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// ListByClinicAndRange retrieves appointments of a clinic scheduled within [from, to)
func (r *AppointmentRepositoryImpl) ListByClinicAndRange(ctx context.Context, clinicID uint, from, to time.Time, limit, offset int) ([]*models.Appointment, error) {
	db := r.getDB(ctx)
	var appointments []*models.Appointment

	query := db.Where("clinic_id = ? AND scheduled_at >= ? AND scheduled_at < ?", clinicID, from, to).
		Order("scheduled_at").
		Preload("Patient").
		Preload("Professional").
		Preload("Procedure")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// Update persists changes to an existing appointment
func (r *AppointmentRepositoryImpl) Update(ctx context.Context, appointment *models.Appointment) error {
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

	err = db.Save(appointment).Error
	if err != nil {
		return err
	}
	return nil
}

// ByFilter retrieves appointments based on filter criteria
func (r *AppointmentRepositoryImpl) ByFilter(ctx context.Context, filter models.AppointmentFilter, orderBy string, limit, offset int) ([]*models.Appointment, error) {
	db := r.getDB(ctx)
	var appointments []*models.Appointment

	query := db.Model(&models.Appointment{}).
		Preload("Patient").
		Preload("Professional").
		Preload("Procedure")
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("scheduled_at DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// Count returns the number of appointments matching the filter
func (r *AppointmentRepositoryImpl) Count(ctx context.Context, filter models.AppointmentFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.Appointment{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any appointment matching the filter exists
func (r *AppointmentRepositoryImpl) Exists(ctx context.Context, filter models.AppointmentFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *AppointmentRepositoryImpl) applyFilter(query *gorm.DB, filter models.AppointmentFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
	}
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.ProfessionalID != nil {
		query = query.Where("professional_id = ?", *filter.ProfessionalID)
	}
	if filter.ProcedureID != nil {
		query = query.Where("procedure_id = ?", *filter.ProcedureID)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ScheduledAfter != nil {
		query = query.Where("scheduled_at >= ?", *filter.ScheduledAfter)
	}
	if filter.ScheduledBefore != nil {
		query = query.Where("scheduled_at <= ?", *filter.ScheduledBefore)
	}
	if filter.CompletedAfter != nil {
		query = query.Where("completed_at >= ?", *filter.CompletedAfter)
	}
	if filter.CompletedBefore != nil {
		query = query.Where("completed_at <= ?", *filter.CompletedBefore)
	}
	return query
}
