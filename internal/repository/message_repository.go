package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Nopass0/hh-autopilot/internal/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append stores a chat message. Messages carrying an external id are
// deduplicated against the ledger; the return value reports whether a row was
// actually inserted. Locally-authored messages (nil external id) always
// insert.
func (r *MessageRepository) Append(ctx context.Context, message *models.ChatMessage) (bool, error) {
	if message.ExternalID != nil {
		exists, err := r.ExistsByExternalID(ctx, *message.ExternalID)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(message)
	if result.Error != nil {
		return false, fmt.Errorf("failed to append message: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ExistsByExternalID reports whether a platform message id is already stored.
func (r *MessageRepository) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("external_id = ?", externalID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check message existence: %w", result.Error)
	}
	return count > 0, nil
}

// History returns the negotiation's message ledger in chronological order.
func (r *MessageRepository) History(ctx context.Context, negotiationID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	result := r.db.WithContext(ctx).
		Where("negotiation_id = ?", negotiationID).
		Order("created_at ASC").
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load message history: %w", result.Error)
	}
	return messages, nil
}
