package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Nopass0/hh-autopilot/internal/models"
)

var ErrNoToken = errors.New("no auth token stored")

type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Latest returns the most recently saved token pair.
func (r *TokenRepository) Latest(ctx context.Context) (*models.AuthToken, error) {
	var token models.AuthToken
	result := r.db.WithContext(ctx).Order("created_at DESC").First(&token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to get latest token: %w", result.Error)
	}
	return &token, nil
}

// Save appends a new token pair. Old pairs are kept as history.
func (r *TokenRepository) Save(ctx context.Context, token *models.AuthToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
