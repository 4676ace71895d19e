package service

import (
	"context"
	"errors"
	"time"

	"github.com/Nopass0/hh-autopilot/internal/headhunter"
	"github.com/Nopass0/hh-autopilot/internal/models"
	"github.com/Nopass0/hh-autopilot/internal/oracle"
	"github.com/Nopass0/hh-autopilot/internal/repository"
)

var errUnexpectedCall = errors.New("unexpected call")

type sentMessage struct {
	negotiationID string
	text          string
}

type mockPlatform struct {
	searchFunc       func(query string, params headhunter.SearchParams) ([]headhunter.VacancySummary, error)
	vacancyFunc      func(vacancyID string) (*headhunter.VacancyDetail, error)
	applyFunc        func(vacancyID, resumeID, coverLetter string) (string, error)
	negotiationsFunc func() ([]headhunter.NegotiationSummary, error)
	messagesFunc     func(negotiationID string) ([]headhunter.Message, error)
	sendFunc         func(negotiationID, text string) error

	applyCalls int
	sent       []sentMessage
}

func (m *mockPlatform) SearchVacancies(ctx context.Context, token, query string, params headhunter.SearchParams) ([]headhunter.VacancySummary, error) {
	if m.searchFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.searchFunc(query, params)
}

func (m *mockPlatform) GetVacancy(ctx context.Context, token, vacancyID string) (*headhunter.VacancyDetail, error) {
	if m.vacancyFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.vacancyFunc(vacancyID)
}

func (m *mockPlatform) Apply(ctx context.Context, token, vacancyID, resumeID, coverLetter string) (string, error) {
	m.applyCalls++
	if m.applyFunc == nil {
		return "", errUnexpectedCall
	}
	return m.applyFunc(vacancyID, resumeID, coverLetter)
}

func (m *mockPlatform) ListNegotiations(ctx context.Context, token string) ([]headhunter.NegotiationSummary, error) {
	if m.negotiationsFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.negotiationsFunc()
}

func (m *mockPlatform) ListMessages(ctx context.Context, token, negotiationID string) ([]headhunter.Message, error) {
	if m.messagesFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.messagesFunc(negotiationID)
}

func (m *mockPlatform) SendMessage(ctx context.Context, token, negotiationID, text string) error {
	if m.sendFunc != nil {
		if err := m.sendFunc(negotiationID, text); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, sentMessage{negotiationID: negotiationID, text: text})
	return nil
}

type mockOracle struct {
	evaluateFunc func(vacancy oracle.VacancyInfo) (*oracle.Evaluation, error)
	letterFunc   func(vacancy oracle.VacancyInfo) (string, error)
	classifyFunc func(messageText string, history []string) (*oracle.Classification, error)
	replyFunc    func(messageText, vacancyTitle string) (string, error)
	introFunc    func(coverLetter string) (string, error)
	tagsFunc     func(resume string) ([]string, error)

	classifyCalls int
}

func (m *mockOracle) EvaluateVacancy(ctx context.Context, vacancy oracle.VacancyInfo, resume string) (*oracle.Evaluation, error) {
	if m.evaluateFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.evaluateFunc(vacancy)
}

func (m *mockOracle) WriteCoverLetter(ctx context.Context, vacancy oracle.VacancyInfo, resume string, contact oracle.ContactInfo) (string, error) {
	if m.letterFunc == nil {
		return "", errUnexpectedCall
	}
	return m.letterFunc(vacancy)
}

func (m *mockOracle) ClassifyMessage(ctx context.Context, messageText string, history []string) (*oracle.Classification, error) {
	m.classifyCalls++
	if m.classifyFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.classifyFunc(messageText, history)
}

func (m *mockOracle) DraftReply(ctx context.Context, messageText, resume, vacancyTitle string) (string, error) {
	if m.replyFunc == nil {
		return "", errUnexpectedCall
	}
	return m.replyFunc(messageText, vacancyTitle)
}

func (m *mockOracle) DraftIntro(ctx context.Context, coverLetter string, contact oracle.ContactInfo) (string, error) {
	if m.introFunc == nil {
		return "", errUnexpectedCall
	}
	return m.introFunc(coverLetter)
}

func (m *mockOracle) GenerateSearchTags(ctx context.Context, resume string) ([]string, error) {
	if m.tagsFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.tagsFunc(resume)
}

// memVacancyStore is an in-memory VacancyStore with the same advance
// semantics as the database repository.
type memVacancyStore struct {
	vacancies []*models.Vacancy
}

func (s *memVacancyStore) Create(ctx context.Context, vacancy *models.Vacancy) error {
	copied := *vacancy
	s.vacancies = append(s.vacancies, &copied)
	return nil
}

func (s *memVacancyStore) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	for _, v := range s.vacancies {
		if v.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memVacancyStore) GetByID(ctx context.Context, id string) (*models.Vacancy, error) {
	for _, v := range s.vacancies {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, repository.ErrVacancyNotFound
}

func (s *memVacancyStore) GetByExternalID(ctx context.Context, externalID string) (*models.Vacancy, error) {
	for _, v := range s.vacancies {
		if v.ExternalID == externalID {
			return v, nil
		}
	}
	return nil, repository.ErrVacancyNotFound
}

func (s *memVacancyStore) ListByStatuses(ctx context.Context, statuses ...string) ([]models.Vacancy, error) {
	var out []models.Vacancy
	for _, v := range s.vacancies {
		for _, status := range statuses {
			if v.Status == status {
				out = append(out, *v)
				break
			}
		}
	}
	return out, nil
}

func (s *memVacancyStore) NewestFoundAt(ctx context.Context) (*time.Time, error) {
	var newest *time.Time
	for _, v := range s.vacancies {
		if newest == nil || v.FoundAt.After(*newest) {
			t := v.FoundAt
			newest = &t
		}
	}
	return newest, nil
}

func (s *memVacancyStore) AdvanceStatus(ctx context.Context, id string, status string) (bool, error) {
	v, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if !models.CanAdvance(v.Status, status) {
		return false, nil
	}
	v.Status = status
	return true, nil
}

func (s *memVacancyStore) MarkApplied(ctx context.Context, id string, appliedAt time.Time) error {
	v, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	v.Status = models.VacancyStatusApplied
	v.AppliedAt = &appliedAt
	return nil
}

type memApplicationStore struct {
	applications []models.ApplicationResponse
}

func (s *memApplicationStore) Create(ctx context.Context, application *models.ApplicationResponse) error {
	s.applications = append(s.applications, *application)
	return nil
}

type memNegotiationStore struct {
	negotiations []*models.Negotiation
}

func (s *memNegotiationStore) Create(ctx context.Context, negotiation *models.Negotiation) error {
	copied := *negotiation
	s.negotiations = append(s.negotiations, &copied)
	return nil
}

func (s *memNegotiationStore) GetByExternalID(ctx context.Context, externalID string) (*models.Negotiation, error) {
	for _, n := range s.negotiations {
		if n.ExternalID == externalID {
			return n, nil
		}
	}
	return nil, repository.ErrNegotiationNotFound
}

func (s *memNegotiationStore) ListOpen(ctx context.Context) ([]models.Negotiation, error) {
	out := make([]models.Negotiation, 0, len(s.negotiations))
	for _, n := range s.negotiations {
		out = append(out, *n)
	}
	return out, nil
}

func (s *memNegotiationStore) SetBotFlags(ctx context.Context, id string, isBot, humanConfirmed bool) error {
	for _, n := range s.negotiations {
		if n.ID == id {
			n.IsBot = isBot
			n.HumanConfirmed = humanConfirmed
			return nil
		}
	}
	return repository.ErrNegotiationNotFound
}

func (s *memNegotiationStore) MarkTelegramInvited(ctx context.Context, id string) error {
	for _, n := range s.negotiations {
		if n.ID == id {
			n.TelegramInvited = true
			return nil
		}
	}
	return repository.ErrNegotiationNotFound
}

func (s *memNegotiationStore) IncrementUnread(ctx context.Context, id string, lastMessageAt time.Time) error {
	for _, n := range s.negotiations {
		if n.ID == id {
			n.UnreadCount++
			n.LastMessageAt = &lastMessageAt
			return nil
		}
	}
	return repository.ErrNegotiationNotFound
}

type memMessageStore struct {
	messages []models.ChatMessage
}

func (s *memMessageStore) Append(ctx context.Context, message *models.ChatMessage) (bool, error) {
	if message.ExternalID != nil {
		exists, _ := s.ExistsByExternalID(ctx, *message.ExternalID)
		if exists {
			return false, nil
		}
	}
	s.messages = append(s.messages, *message)
	return true, nil
}

func (s *memMessageStore) ExistsByExternalID(ctx context.Context, externalID string) (bool, error) {
	for _, m := range s.messages {
		if m.ExternalID != nil && *m.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memMessageStore) History(ctx context.Context, negotiationID string) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range s.messages {
		if m.NegotiationID == negotiationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type memTagStore struct {
	tags []*models.SearchTag
}

func (s *memTagStore) ListActive(ctx context.Context) ([]models.SearchTag, error) {
	var out []models.SearchTag
	for _, t := range s.tags {
		if t.Active {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memTagStore) Create(ctx context.Context, tag *models.SearchTag) error {
	for _, t := range s.tags {
		if t.Query == tag.Query {
			return nil
		}
	}
	copied := *tag
	s.tags = append(s.tags, &copied)
	return nil
}

func (s *memTagStore) RecordSearch(ctx context.Context, query string, vacanciesFound int) error {
	for _, t := range s.tags {
		if t.Query == query {
			t.TimesSearched++
			t.VacanciesFound += vacanciesFound
		}
	}
	return nil
}

func (s *memTagStore) RecordApplication(ctx context.Context, query string) error {
	for _, t := range s.tags {
		if t.Query == query {
			t.ApplicationsSent++
		}
	}
	return nil
}

type ledgerEntry struct {
	eventType string
	detail    string
	vacancyID *string
}

type memLedger struct {
	entries []ledgerEntry
}

func (l *memLedger) Log(ctx context.Context, eventType, detail string, vacancyID *string) error {
	l.entries = append(l.entries, ledgerEntry{eventType: eventType, detail: detail, vacancyID: vacancyID})
	return nil
}

func (l *memLedger) count(eventType string) int {
	n := 0
	for _, e := range l.entries {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}

type memStats struct {
	total repository.StatsDelta
}

func (s *memStats) Bump(ctx context.Context, day time.Time, delta repository.StatsDelta) error {
	s.total.SearchesRun += delta.SearchesRun
	s.total.VacanciesFound += delta.VacanciesFound
	s.total.ApplicationsSent += delta.ApplicationsSent
	s.total.Invitations += delta.Invitations
	s.total.Rejections += delta.Rejections
	s.total.MessagesSent += delta.MessagesSent
	s.total.MessagesReceived += delta.MessagesReceived
	return nil
}

type mockNotifier struct {
	handOffs     []string
	applications []string
}

func (n *mockNotifier) NotifyHandOff(employer, vacancyTitle string) error {
	n.handOffs = append(n.handOffs, vacancyTitle)
	return nil
}

func (n *mockNotifier) NotifyApplication(vacancyTitle, employer string, score int) error {
	n.applications = append(n.applications, vacancyTitle)
	return nil
}
