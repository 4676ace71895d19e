package models

import "time"

// Chat message author constants
const (
	AuthorApplicant = "applicant"
	AuthorEmployer  = "employer"
)

// Application send status constants
const (
	SendStatusSent   = "sent"
	SendStatusFailed = "failed"
)

// ApplicationResponse is the single submitted application for a vacancy.
// Created exactly once at submission time; only SendStatus changes afterward.
type ApplicationResponse struct {
	ID            string    `gorm:"column:id;primaryKey"`
	VacancyID     string    `gorm:"column:vacancy_id;uniqueIndex"`
	NegotiationID string    `gorm:"column:negotiation_id"`
	CoverLetter   string    `gorm:"column:cover_letter"`
	SendStatus    string    `gorm:"column:send_status"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ApplicationResponse) TableName() string {
	return "application_response"
}

// Negotiation is the employer conversation thread attached to one
// application. ExternalID matches the platform's negotiation id.
// TelegramInvited is one-shot: once set it is never cleared.
type Negotiation struct {
	ID              string     `gorm:"column:id;primaryKey"`
	ExternalID      string     `gorm:"column:external_id;uniqueIndex"`
	VacancyID       string     `gorm:"column:vacancy_id;index"`
	Employer        string     `gorm:"column:employer"`
	IsBot           bool       `gorm:"column:is_bot"`
	HumanConfirmed  bool       `gorm:"column:human_confirmed"`
	TelegramInvited bool       `gorm:"column:telegram_invited"`
	UnreadCount     int        `gorm:"column:unread_count"`
	LastMessageAt   *time.Time `gorm:"column:last_message_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Negotiation) TableName() string {
	return "negotiation"
}

// ChatMessage is one message inside a negotiation. ExternalID is nil for
// locally-authored outgoing messages; when present it is the dedup key.
type ChatMessage struct {
	ID             string    `gorm:"column:id;primaryKey"`
	NegotiationID  string    `gorm:"column:negotiation_id;index"`
	ExternalID     *string   `gorm:"column:external_id;uniqueIndex"`
	Author         string    `gorm:"column:author"`
	Text           string    `gorm:"column:text"`
	IsAutoResponse bool      `gorm:"column:is_auto_response"`
	Sentiment      *string   `gorm:"column:sentiment"`
	Intent         *string   `gorm:"column:intent"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ChatMessage) TableName() string {
	return "chat_message"
}
