package repository

import (
	"context"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/models"
	"gorm.io/gorm"
)

// CommissionRuleRepositoryImpl implements CommissionRuleRepository interface
type CommissionRuleRepositoryImpl struct {
	*BaseRepository[models.CommissionRule, models.CommissionRuleFilter]
}

// NewCommissionRuleRepository creates a new commission rule repository
func NewCommissionRuleRepository(db *gorm.DB) CommissionRuleRepository {
	return &CommissionRuleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CommissionRule, models.CommissionRuleFilter](db),
	}
}

// ListActiveByClinic retrieves the active rules of a clinic ordered by priority
func (r *CommissionRuleRepositoryImpl) ListActiveByClinic(ctx context.Context, clinicID uint) ([]*models.CommissionRule, error) {
	db := r.getDB(ctx)
	var rules []*models.CommissionRule
	err := db.Where("clinic_id = ? AND is_active = ?", clinicID, true).
		Order("priority DESC, id").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// ActiveRulesForClinic loads the active rules of a clinic in the engine's
// representation. Satisfies commission.RuleSource.
func (r *CommissionRuleRepositoryImpl) ActiveRulesForClinic(ctx context.Context, clinicID uint) ([]commission.Rule, error) {
	stored, err := r.ListActiveByClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	rules := make([]commission.Rule, 0, len(stored))
	for _, s := range stored {
		rules = append(rules, s.AsRule())
	}
	return rules, nil
}

// Update persists changes to an existing rule
func (r *CommissionRuleRepositoryImpl) Update(ctx context.Context, rule *models.CommissionRule) error {
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

	err = db.Save(rule).Error
	if err != nil {
		return err
	}
	return nil
}

// Deactivate soft-disables a rule; firing history keeps its snapshots
func (r *CommissionRuleRepositoryImpl) Deactivate(ctx context.Context, ruleID uint) error {
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

	err = db.Model(&models.CommissionRule{}).Where("id = ?", ruleID).Update("is_active", false).Error
	if err != nil {
		return err
	}
	return nil
}

// ByFilter retrieves commission rules based on filter criteria
func (r *CommissionRuleRepositoryImpl) ByFilter(ctx context.Context, filter models.CommissionRuleFilter, orderBy string, limit, offset int) ([]*models.CommissionRule, error) {
	db := r.getDB(ctx)
	var rules []*models.CommissionRule

	query := db.Model(&models.CommissionRule{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("priority DESC, id")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// Count returns the number of commission rules matching the filter
func (r *CommissionRuleRepositoryImpl) Count(ctx context.Context, filter models.CommissionRuleFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.CommissionRule{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any commission rule matching the filter exists
func (r *CommissionRuleRepositoryImpl) Exists(ctx context.Context, filter models.CommissionRuleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *CommissionRuleRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommissionRuleFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ClinicID != nil {
		query = query.Where("clinic_id = ?", *filter.ClinicID)
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
	if filter.DayOfWeek != nil {
		query = query.Where("day_of_week = ?", *filter.DayOfWeek)
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
