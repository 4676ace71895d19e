package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Vacancy status constants
const (
	VacancyStatusFound    = "found"
	VacancyStatusSkipped  = "skipped"
	VacancyStatusApplied  = "applied"
	VacancyStatusViewed   = "viewed"
	VacancyStatusInvited  = "invited"
	VacancyStatusRejected = "rejected"
)

// Recommendation constants (oracle output)
const (
	RecommendationApply = "apply"
	RecommendationMaybe = "maybe"
	RecommendationSkip  = "skip"
)

// statusRank orders vacancy statuses for the forward-only transition rule.
// found and skipped share the lowest rank; invited and rejected are both
// terminal and never replace each other.
var statusRank = map[string]int{
	VacancyStatusFound:    0,
	VacancyStatusSkipped:  0,
	VacancyStatusApplied:  1,
	VacancyStatusViewed:   2,
	VacancyStatusInvited:  3,
	VacancyStatusRejected: 3,
}

// StatusRank returns the ordering rank of a vacancy status, or -1 for an
// unknown status.
func StatusRank(status string) int {
	rank, ok := statusRank[status]
	if !ok {
		return -1
	}
	return rank
}

// CanAdvance reports whether a vacancy may move from one status to another.
// Transitions are one-directional; a remote read that would regress a local
// record is rejected here. Terminal states (invited, rejected) never change.
func CanAdvance(from, to string) bool {
	fromRank := StatusRank(from)
	toRank := StatusRank(to)
	if fromRank < 0 || toRank < 0 {
		return false
	}
	return toRank > fromRank
}

// StringList stores a list of strings in a PostgreSQL JSONB column. Oracle
// list outputs (match reasons, concerns) are decoded once at the store
// boundary instead of being re-parsed by every reader.
type StringList []string

// Value implements driver.Valuer for StringList
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(l))
}

// Scan implements sql.Scanner for StringList
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, l)
}

// Vacancy represents one discovered posting on the recruitment platform.
// ExternalID is the dedup key: at most one row per platform vacancy id.
type Vacancy struct {
	ID               string     `gorm:"column:id;primaryKey"`
	ExternalID       string     `gorm:"column:external_id;uniqueIndex"`
	Title            string     `gorm:"column:title"`
	Employer         string     `gorm:"column:employer"`
	SalaryFrom       *int       `gorm:"column:salary_from"`
	SalaryTo         *int       `gorm:"column:salary_to"`
	SalaryCurrency   *string    `gorm:"column:salary_currency"`
	Description      string     `gorm:"column:description"`
	URL              string     `gorm:"column:url"`
	Status           string     `gorm:"column:status;index"`
	Score            int        `gorm:"column:score"`
	Priority         int        `gorm:"column:priority"`
	Recommendation   string     `gorm:"column:recommendation"`
	MatchReasons     StringList `gorm:"column:match_reasons;type:jsonb"`
	Concerns         StringList `gorm:"column:concerns;type:jsonb"`
	SalaryAssessment string     `gorm:"column:salary_assessment"`
	FoundAt          time.Time  `gorm:"column:found_at"`
	AppliedAt        *time.Time `gorm:"column:applied_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Vacancy) TableName() string {
	return "vacancy"
}
