package models

import "time"

// SearchTag is a persisted search query string with lifetime counters.
// Tags come from configuration or from the oracle's tag generation; they are
// deactivated by hand, never deleted automatically.
type SearchTag struct {
	ID               string    `gorm:"column:id;primaryKey"`
	Query            string    `gorm:"column:query;uniqueIndex"`
	Active           bool      `gorm:"column:active;index"`
	TimesSearched    int       `gorm:"column:times_searched"`
	VacanciesFound   int       `gorm:"column:vacancies_found"`
	ApplicationsSent int       `gorm:"column:applications_sent"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (SearchTag) TableName() string {
	return "search_tag"
}
