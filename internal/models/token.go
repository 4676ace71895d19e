package models

import "time"

// AuthToken is one access/refresh token pair for the recruitment platform
// account. Rows are append-only: a refresh inserts a new pair and leaves the
// old one in place as history.
type AuthToken struct {
	ID           string    `gorm:"column:id;primaryKey"`
	AccessToken  string    `gorm:"column:access_token"`
	RefreshToken string    `gorm:"column:refresh_token"`
	ExpiresAt    time.Time `gorm:"column:expires_at"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

// TableName specifies the table name for GORM
func (AuthToken) TableName() string {
	return "auth_token"
}
