package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Nopass0/hh-autopilot/internal/models"
)

var ErrVacancyNotFound = errors.New("vacancy not found")

type VacancyRepository struct {
	db *gorm.DB
}

func NewVacancyRepository(db *gorm.DB) *VacancyRepository {
	return &VacancyRepository{db: db}
}

// Create inserts a newly discovered vacancy.
func (r *VacancyRepository) Create(ctx context.Context, vacancy *models.Vacancy) error {
	if err := r.db.WithContext(ctx).Create(vacancy).Error; err != nil {
		return fmt.Errorf("failed to create vacancy: %w", err)
	}
	return nil
}

// GetByID retrieves a vacancy by its local id.
func (r *VacancyRepository) GetByID(ctx context.Context, id string) (*models.Vacancy, error) {
	var vacancy models.Vacancy
	result := r.db.WithContext(ctx).First(&vacancy, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrVacancyNotFound
		}
		return nil, fmt.Errorf("failed to get vacancy: %w", result.Error)
	}
	return &vacancy, nil
}

// GetByExternalID retrieves a vacancy by its platform id.
func (r *VacancyRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Vacancy, error) {
	var vacancy models.Vacancy
	result := r.db.WithContext(ctx).First(&vacancy, "external_id = ?", externalID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrVacancyNotFound
		}
		return nil, fmt.Errorf("failed to get vacancy: %w", result.Error)
	}
	return &vacancy, nil
}

// ExistsByExternalID is the dedup probe used by the search cycle.
func (r *VacancyRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Vacancy{}).
		Where("external_id = ?", externalID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check vacancy existence: %w", result.Error)
	}
	return count > 0, nil
}

// ListByStatuses returns vacancies currently in any of the given statuses.
func (r *VacancyRepository) ListByStatuses(ctx context.Context, statuses ...string) ([]models.Vacancy, error) {
	var vacancies []models.Vacancy
	result := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("found_at ASC").
		Find(&vacancies)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list vacancies: %w", result.Error)
	}
	return vacancies, nil
}

// NewestFoundAt returns the discovery time of the most recently found
// vacancy, or nil when the store is empty.
func (r *VacancyRepository) NewestFoundAt(ctx context.Context) (*time.Time, error) {
	var vacancy models.Vacancy
	result := r.db.WithContext(ctx).Order("found_at DESC").First(&vacancy)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get newest vacancy: %w", result.Error)
	}
	return &vacancy.FoundAt, nil
}

// AdvanceStatus moves a vacancy to a new status only when the transition is
// forward under the lifecycle ordering. Regressions reported by the platform
// are silently dropped; the return value reports whether the update happened.
func (r *VacancyRepository) AdvanceStatus(ctx context.Context, id string, status string) (bool, error) {
	var vacancy models.Vacancy
	if err := r.db.WithContext(ctx).First(&vacancy, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrVacancyNotFound
		}
		return false, fmt.Errorf("failed to get vacancy: %w", err)
	}

	if !models.CanAdvance(vacancy.Status, status) {
		return false, nil
	}

	result := r.db.WithContext(ctx).Model(&models.Vacancy{}).
		Where("id = ? AND status = ?", id, vacancy.Status).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to advance vacancy status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// MarkApplied records a successful submission.
func (r *VacancyRepository) MarkApplied(ctx context.Context, id string, appliedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Vacancy{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.VacancyStatusApplied,
			"applied_at": appliedAt,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark vacancy applied: %w", result.Error)
	}
	return nil
}
