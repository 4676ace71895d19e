package service

import (
	"context"
	"time"

	"github.com/Nopass0/hh-autopilot/internal/headhunter"
	"github.com/Nopass0/hh-autopilot/internal/models"
	"github.com/Nopass0/hh-autopilot/internal/oracle"
	"github.com/Nopass0/hh-autopilot/internal/repository"
)

// PlatformClient is the recruitment platform surface the services consume.
type PlatformClient interface {
	SearchVacancies(ctx context.Context, token, query string, params headhunter.SearchParams) ([]headhunter.VacancySummary, error)
	GetVacancy(ctx context.Context, token, vacancyID string) (*headhunter.VacancyDetail, error)
	Apply(ctx context.Context, token, vacancyID, resumeID, coverLetter string) (string, error)
	ListNegotiations(ctx context.Context, token string) ([]headhunter.NegotiationSummary, error)
	ListMessages(ctx context.Context, token, negotiationID string) ([]headhunter.Message, error)
	SendMessage(ctx context.Context, token, negotiationID, text string) error
}

// Oracle is the language-model surface. All capabilities are unreliable;
// services substitute conservative defaults on failure.
type Oracle interface {
	EvaluateVacancy(ctx context.Context, vacancy oracle.VacancyInfo, resume string) (*oracle.Evaluation, error)
	WriteCoverLetter(ctx context.Context, vacancy oracle.VacancyInfo, resume string, contact oracle.ContactInfo) (string, error)
	ClassifyMessage(ctx context.Context, messageText string, history []string) (*oracle.Classification, error)
	DraftReply(ctx context.Context, messageText, resume, vacancyTitle string) (string, error)
	DraftIntro(ctx context.Context, coverLetter string, contact oracle.ContactInfo) (string, error)
	GenerateSearchTags(ctx context.Context, resume string) ([]string, error)
}

// VacancyStore persists discovered postings.
type VacancyStore interface {
	Create(ctx context.Context, vacancy *models.Vacancy) error
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.Vacancy, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Vacancy, error)
	ListByStatuses(ctx context.Context, statuses ...string) ([]models.Vacancy, error)
	NewestFoundAt(ctx context.Context) (*time.Time, error)
	AdvanceStatus(ctx context.Context, id string, status string) (bool, error)
	MarkApplied(ctx context.Context, id string, appliedAt time.Time) error
}

// ApplicationStore persists submitted applications.
type ApplicationStore interface {
	Create(ctx context.Context, application *models.ApplicationResponse) error
}

// NegotiationStore persists conversation threads.
type NegotiationStore interface {
	Create(ctx context.Context, negotiation *models.Negotiation) error
	GetByExternalID(ctx context.Context, externalID string) (*models.Negotiation, error)
	ListOpen(ctx context.Context) ([]models.Negotiation, error)
	SetBotFlags(ctx context.Context, id string, isBot, humanConfirmed bool) error
	MarkTelegramInvited(ctx context.Context, id string) error
	IncrementUnread(ctx context.Context, id string, lastMessageAt time.Time) error
}

// MessageStore persists the per-negotiation message ledger.
type MessageStore interface {
	Append(ctx context.Context, message *models.ChatMessage) (bool, error)
	ExistsByExternalID(ctx context.Context, externalID string) (bool, error)
	History(ctx context.Context, negotiationID string) ([]models.ChatMessage, error)
}

// TagStore persists search tags.
type TagStore interface {
	ListActive(ctx context.Context) ([]models.SearchTag, error)
	Create(ctx context.Context, tag *models.SearchTag) error
	RecordSearch(ctx context.Context, query string, vacanciesFound int) error
	RecordApplication(ctx context.Context, query string) error
}

// Ledger appends to the activity event log.
type Ledger interface {
	Log(ctx context.Context, eventType, detail string, vacancyID *string) error
}

// StatsStore upserts daily aggregate counters.
type StatsStore interface {
	Bump(ctx context.Context, day time.Time, delta repository.StatsDelta) error
}

// Notifier pushes pipeline alerts to the candidate's direct channel.
type Notifier interface {
	NotifyHandOff(employer, vacancyTitle string) error
	NotifyApplication(vacancyTitle, employer string, score int) error
}
