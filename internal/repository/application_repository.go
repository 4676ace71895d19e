package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nopass0/hh-autopilot/internal/models"
)

var ErrApplicationNotFound = errors.New("application not found")

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create records the single submitted application for a vacancy.
func (r *ApplicationRepository) Create(ctx context.Context, application *models.ApplicationResponse) error {
	if err := r.db.WithContext(ctx).Create(application).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// GetByVacancyID returns the application for a vacancy, if any.
func (r *ApplicationRepository) GetByVacancyID(ctx context.Context, vacancyID string) (*models.ApplicationResponse, error) {
	var application models.ApplicationResponse
	result := r.db.WithContext(ctx).First(&application, "vacancy_id = ?", vacancyID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", result.Error)
	}
	return &application, nil
}

// UpdateSendStatus changes the only mutable field of an application.
func (r *ApplicationRepository) UpdateSendStatus(ctx context.Context, id, sendStatus string) error {
	result := r.db.WithContext(ctx).Model(&models.ApplicationResponse{}).
		Where("id = ?", id).
		Update("send_status", sendStatus)
	if result.Error != nil {
		return fmt.Errorf("failed to update send status: %w", result.Error)
	}
	return nil
}
