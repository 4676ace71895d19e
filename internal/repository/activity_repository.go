package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Nopass0/hh-autopilot/internal/models"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Log appends one event to the activity ledger.
func (r *ActivityRepository) Log(ctx context.Context, eventType, detail string, vacancyID *string) error {
	event := models.ActivityEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Detail:    detail,
		VacancyID: vacancyID,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("failed to log activity event: %w", err)
	}
	return nil
}

// Recent returns the newest ledger entries, for dashboards.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]models.ActivityEvent, error) {
	var events []models.ActivityEvent
	result := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&events)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", result.Error)
	}
	return events, nil
}

// StatsDelta carries counter increments for one daily stats upsert.
type StatsDelta struct {
	SearchesRun      int
	VacanciesFound   int
	ApplicationsSent int
	Invitations      int
	Rejections       int
	MessagesSent     int
	MessagesReceived int
}

type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Bump upserts today's aggregate row, adding the delta to the existing
// counters. Counters only ever increase.
func (r *StatsRepository) Bump(ctx context.Context, day time.Time, delta StatsDelta) error {
	row := models.DailyStats{
		Day:              day.Truncate(24 * time.Hour),
		SearchesRun:      delta.SearchesRun,
		VacanciesFound:   delta.VacanciesFound,
		ApplicationsSent: delta.ApplicationsSent,
		Invitations:      delta.Invitations,
		Rejections:       delta.Rejections,
		MessagesSent:     delta.MessagesSent,
		MessagesReceived: delta.MessagesReceived,
		UpdatedAt:        time.Now(),
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"searches_run":      gorm.Expr("daily_stats.searches_run + EXCLUDED.searches_run"),
				"vacancies_found":   gorm.Expr("daily_stats.vacancies_found + EXCLUDED.vacancies_found"),
				"applications_sent": gorm.Expr("daily_stats.applications_sent + EXCLUDED.applications_sent"),
				"invitations":       gorm.Expr("daily_stats.invitations + EXCLUDED.invitations"),
				"rejections":        gorm.Expr("daily_stats.rejections + EXCLUDED.rejections"),
				"messages_sent":     gorm.Expr("daily_stats.messages_sent + EXCLUDED.messages_sent"),
				"messages_received": gorm.Expr("daily_stats.messages_received + EXCLUDED.messages_received"),
				"updated_at":        time.Now(),
			}),
		}).
		Create(&row)
	if result.Error != nil {
		return fmt.Errorf("failed to bump daily stats: %w", result.Error)
	}
	return nil
}

// GetDay reads one aggregate row, for reporting UIs.
func (r *StatsRepository) GetDay(ctx context.Context, day time.Time) (*models.DailyStats, error) {
	var stats models.DailyStats
	result := r.db.WithContext(ctx).First(&stats, "day = ?", day.Truncate(24*time.Hour))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", result.Error)
	}
	return &stats, nil
}
