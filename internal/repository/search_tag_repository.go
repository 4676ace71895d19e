package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Nopass0/hh-autopilot/internal/models"
)

type SearchTagRepository struct {
	db *gorm.DB
}

func NewSearchTagRepository(db *gorm.DB) *SearchTagRepository {
	return &SearchTagRepository{db: db}
}

// ListActive returns active tags in creation order.
func (r *SearchTagRepository) ListActive(ctx context.Context) ([]models.SearchTag, error) {
	var tags []models.SearchTag
	result := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&tags)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list active tags: %w", result.Error)
	}
	return tags, nil
}

// Create inserts a tag; an existing tag with the same query is left as is.
func (r *SearchTagRepository) Create(ctx context.Context, tag *models.SearchTag) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "query"}},
			DoNothing: true,
		}).
		Create(tag)
	if result.Error != nil {
		return fmt.Errorf("failed to create search tag: %w", result.Error)
	}
	return nil
}

// RecordSearch bumps the search counters for a tag after a search run.
func (r *SearchTagRepository) RecordSearch(ctx context.Context, query string, vacanciesFound int) error {
	result := r.db.WithContext(ctx).Model(&models.SearchTag{}).
		Where("query = ?", query).
		Updates(map[string]interface{}{
			"times_searched":  gorm.Expr("times_searched + 1"),
			"vacancies_found": gorm.Expr("vacancies_found + ?", vacanciesFound),
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record tag search: %w", result.Error)
	}
	return nil
}

// RecordApplication bumps the applications counter for a tag.
func (r *SearchTagRepository) RecordApplication(ctx context.Context, query string) error {
	result := r.db.WithContext(ctx).Model(&models.SearchTag{}).
		Where("query = ?", query).
		Updates(map[string]interface{}{
			"applications_sent": gorm.Expr("applications_sent + 1"),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record tag application: %w", result.Error)
	}
	return nil
}
