package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Nopass0/hh-autopilot/internal/models"
)

var ErrNegotiationNotFound = errors.New("negotiation not found")

type NegotiationRepository struct {
	db *gorm.DB
}

func NewNegotiationRepository(db *gorm.DB) *NegotiationRepository {
	return &NegotiationRepository{db: db}
}

// Create inserts a negotiation thread for a freshly submitted application.
func (r *NegotiationRepository) Create(ctx context.Context, negotiation *models.Negotiation) error {
	if err := r.db.WithContext(ctx).Create(negotiation).Error; err != nil {
		return fmt.Errorf("failed to create negotiation: %w", err)
	}
	return nil
}

// GetByExternalID retrieves a negotiation by its platform id.
func (r *NegotiationRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Negotiation, error) {
	var negotiation models.Negotiation
	result := r.db.WithContext(ctx).First(&negotiation, "external_id = ?", externalID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNegotiationNotFound
		}
		return nil, fmt.Errorf("failed to get negotiation: %w", result.Error)
	}
	return &negotiation, nil
}

// ListOpen returns negotiations whose vacancy has not been rejected.
func (r *NegotiationRepository) ListOpen(ctx context.Context) ([]models.Negotiation, error) {
	var negotiations []models.Negotiation
	result := r.db.WithContext(ctx).
		Joins("JOIN vacancy ON vacancy.id = negotiation.vacancy_id").
		Where("vacancy.status <> ?", models.VacancyStatusRejected).
		Order("negotiation.created_at ASC").
		Find(&negotiations)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list open negotiations: %w", result.Error)
	}
	return negotiations, nil
}

// SetBotFlags records the oracle's bot/human classification of the thread.
func (r *NegotiationRepository) SetBotFlags(ctx context.Context, id string, isBot, humanConfirmed bool) error {
	result := r.db.WithContext(ctx).Model(&models.Negotiation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_bot":          isBot,
			"human_confirmed": humanConfirmed,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to set bot flags: %w", result.Error)
	}
	return nil
}

// MarkTelegramInvited sets the one-shot hand-off flag. The flag is never
// cleared, so the update only ever flips false to true.
func (r *NegotiationRepository) MarkTelegramInvited(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&models.Negotiation{}).
		Where("id = ? AND telegram_invited = ?", id, false).
		Updates(map[string]interface{}{
			"telegram_invited": true,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark telegram invited: %w", result.Error)
	}
	return nil
}

// IncrementUnread bumps the unread counter and the last-message timestamp.
func (r *NegotiationRepository) IncrementUnread(ctx context.Context, id string, lastMessageAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Negotiation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"unread_count":    gorm.Expr("unread_count + 1"),
			"last_message_at": lastMessageAt,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to increment unread count: %w", result.Error)
	}
	return nil
}
