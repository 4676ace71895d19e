package models

import "time"

// Activity event type constants
const (
	EventSearchRun       = "search_run"
	EventVacancyFound    = "vacancy_found"
	EventVacancySkipped  = "vacancy_skipped"
	EventApplicationSent = "application_sent"
	EventStatusChanged   = "status_changed"
	EventMessageReceived = "message_received"
	EventMessageSent     = "message_sent"
	EventAutoResponse    = "auto_response"
	EventHandOff         = "hand_off"
	EventTagGenerated    = "tag_generated"
	EventError           = "error"
)

// ActivityEvent is one row of the append-only activity ledger. The ledger is
// observability only; nothing in the pipeline reads it back.
type ActivityEvent struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Type      string    `gorm:"column:type;index"`
	Detail    string    `gorm:"column:detail"`
	VacancyID *string   `gorm:"column:vacancy_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

// TableName specifies the table name for GORM
func (ActivityEvent) TableName() string {
	return "activity_event"
}

// DailyStats holds one aggregate row per calendar day. Counters only ever
// increment; the row is upserted at the end of each relevant operation.
type DailyStats struct {
	Day              time.Time `gorm:"column:day;primaryKey"`
	SearchesRun      int       `gorm:"column:searches_run"`
	VacanciesFound   int       `gorm:"column:vacancies_found"`
	ApplicationsSent int       `gorm:"column:applications_sent"`
	Invitations      int       `gorm:"column:invitations"`
	Rejections       int       `gorm:"column:rejections"`
	MessagesSent     int       `gorm:"column:messages_sent"`
	MessagesReceived int       `gorm:"column:messages_received"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (DailyStats) TableName() string {
	return "daily_stats"
}
