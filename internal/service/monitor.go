package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Nopass0/hh-autopilot/internal/headhunter"
	"github.com/Nopass0/hh-autopilot/internal/models"
	"github.com/Nopass0/hh-autopilot/internal/oracle"
	"github.com/Nopass0/hh-autopilot/internal/repository"
)

// Monitor polls negotiation statuses and conducts the employer
// conversations: classification, bot auto-replies, and the one-shot Telegram
// hand-off.
type Monitor struct {
	platform     PlatformClient
	oracle       Oracle
	vacancies    VacancyStore
	negotiations NegotiationStore
	messages     MessageStore
	ledger       Ledger
	stats        StatsStore
	profile      *ProfileProvider
	notifier     Notifier

	now func() time.Time
}

func NewMonitor(
	platform PlatformClient,
	oracleClient Oracle,
	vacancies VacancyStore,
	negotiations NegotiationStore,
	messages MessageStore,
	ledger Ledger,
	stats StatsStore,
	profile *ProfileProvider,
	notifier Notifier,
) *Monitor {
	return &Monitor{
		platform:     platform,
		oracle:       oracleClient,
		vacancies:    vacancies,
		negotiations: negotiations,
		messages:     messages,
		ledger:       ledger,
		stats:        stats,
		profile:      profile,
		notifier:     notifier,
		now:          time.Now,
	}
}

// PollStatuses reads the remote negotiation list and applies forward-only
// transitions to the local vacancies. A remote state that would regress a
// local record is ignored.
func (m *Monitor) PollStatuses(ctx context.Context, token string) error {
	summaries, err := m.platform.ListNegotiations(ctx, token)
	if err != nil {
		if errors.Is(err, headhunter.ErrUnauthorized) {
			return err
		}
		log.Printf("Failed to list negotiations: %v", err)
		return nil
	}

	for _, summary := range summaries {
		status := mapNegotiationState(summary)
		if status == "" {
			continue
		}

		negotiation, err := m.negotiations.GetByExternalID(ctx, summary.ID)
		if err != nil {
			// Negotiations opened outside the pipeline are not ours
			continue
		}

		advanced, err := m.vacancies.AdvanceStatus(ctx, negotiation.VacancyID, status)
		if err != nil {
			if errors.Is(err, repository.ErrVacancyNotFound) {
				continue
			}
			return err
		}
		if !advanced {
			continue
		}

		log.Printf("Vacancy %s advanced to %s", negotiation.VacancyID, status)
		_ = m.ledger.Log(ctx, models.EventStatusChanged, status, &negotiation.VacancyID)
		switch status {
		case models.VacancyStatusInvited:
			_ = m.stats.Bump(ctx, m.now(), repository.StatsDelta{Invitations: 1})
		case models.VacancyStatusRejected:
			_ = m.stats.Bump(ctx, m.now(), repository.StatsDelta{Rejections: 1})
		}
	}

	return nil
}

// mapNegotiationState translates a remote negotiation state into the local
// vacancy lifecycle. Unknown states map to no transition at all.
func mapNegotiationState(summary headhunter.NegotiationSummary) string {
	switch summary.State.ID {
	case "invitation":
		return models.VacancyStatusInvited
	case "discard":
		return models.VacancyStatusRejected
	case "response":
		if summary.ViewedByOpponent {
			return models.VacancyStatusViewed
		}
		return ""
	}
	return ""
}

// ProcessMessages fetches new messages for every open negotiation and
// handles them: dedup by external id, classification, bot auto-replies, and
// hand-off.
func (m *Monitor) ProcessMessages(ctx context.Context, token string) error {
	open, err := m.negotiations.ListOpen(ctx)
	if err != nil {
		return err
	}

	resume := m.profile.Resume()
	for i := range open {
		if err := m.processNegotiation(ctx, token, &open[i], resume); err != nil {
			return err
		}
	}
	return nil
}

func (m *Monitor) processNegotiation(ctx context.Context, token string, negotiation *models.Negotiation, resume string) error {
	remote, err := m.platform.ListMessages(ctx, token, negotiation.ExternalID)
	if err != nil {
		if errors.Is(err, headhunter.ErrUnauthorized) {
			return err
		}
		log.Printf("Failed to list messages for negotiation %s: %v", negotiation.ExternalID, err)
		return nil
	}

	vacancyTitle := negotiation.Employer
	if vacancy, err := m.vacancies.GetByID(ctx, negotiation.VacancyID); err == nil {
		vacancyTitle = vacancy.Title
	}

	for _, msg := range remote {
		if msg.ID == "" {
			continue
		}
		exists, err := m.messages.ExistsByExternalID(ctx, msg.ID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		externalID := msg.ID
		if msg.Author.ParticipantType != "employer" {
			// Our own messages sent through another client: store verbatim
			stored := models.ChatMessage{
				ID:            uuid.New().String(),
				NegotiationID: negotiation.ID,
				ExternalID:    &externalID,
				Author:        models.AuthorApplicant,
				Text:          msg.Text,
			}
			if _, err := m.messages.Append(ctx, &stored); err != nil {
				return err
			}
			continue
		}

		if err := m.processEmployerMessage(ctx, token, negotiation, vacancyTitle, externalID, msg.Text, resume); err != nil {
			return err
		}
	}
	return nil
}

func (m *Monitor) processEmployerMessage(ctx context.Context, token string, negotiation *models.Negotiation, vacancyTitle, externalID, text, resume string) error {
	history, err := m.messages.History(ctx, negotiation.ID)
	if err != nil {
		return err
	}
	lines := make([]string, 0, len(history))
	for _, h := range history {
		lines = append(lines, h.Author+": "+h.Text)
	}

	cls, err := m.oracle.ClassifyMessage(ctx, text, lines)
	if err != nil {
		// Conservative default: store the message, take no automatic action
		log.Printf("Classification failed for negotiation %s: %v", negotiation.ExternalID, err)
		cls = &oracle.Classification{Sentiment: "neutral", Intent: "unknown"}
	}

	// Any automatic reply goes out before the inbound message is stored. A
	// failed draft or send leaves the message unstored, so the next tick
	// selects it again and retries.
	var reply string
	handingOff := false
	switch {
	case cls.IsBot:
		reply, err = m.oracle.DraftReply(ctx, text, resume, vacancyTitle)
		if err != nil {
			log.Printf("Reply generation failed for negotiation %s: %v", negotiation.ExternalID, err)
			return nil
		}
	case cls.ShouldHandOff && !negotiation.TelegramInvited:
		handingOff = true
		reply, err = m.oracle.DraftReply(ctx, text, resume, vacancyTitle)
		if err != nil {
			log.Printf("Hand-off reply generation failed for negotiation %s: %v", negotiation.ExternalID, err)
			reply = "Thank you for your message."
		}
		if contact := m.profile.Contact(); contact.Telegram != "" {
			reply = fmt.Sprintf("%s\n\nFor a faster conversation you can reach me directly on Telegram: %s", reply, contact.Telegram)
		}
	}
	if reply != "" {
		if err := m.platform.SendMessage(ctx, token, negotiation.ExternalID, reply); err != nil {
			log.Printf("Reply send failed for negotiation %s: %v", negotiation.ExternalID, err)
			return nil
		}
	}

	sentiment := cls.Sentiment
	intent := cls.Intent
	stored := models.ChatMessage{
		ID:            uuid.New().String(),
		NegotiationID: negotiation.ID,
		ExternalID:    &externalID,
		Author:        models.AuthorEmployer,
		Text:          text,
		Sentiment:     &sentiment,
		Intent:        &intent,
	}
	inserted, err := m.messages.Append(ctx, &stored)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	_ = m.negotiations.IncrementUnread(ctx, negotiation.ID, m.now())
	_ = m.stats.Bump(ctx, m.now(), repository.StatsDelta{MessagesReceived: 1})
	_ = m.ledger.Log(ctx, models.EventMessageReceived, fmt.Sprintf("%s: %s", intent, truncate(text, 120)), &negotiation.VacancyID)
	_ = m.negotiations.SetBotFlags(ctx, negotiation.ID, cls.IsBot, cls.IsHumanRecruiter)

	if reply == "" {
		return nil
	}

	sent := models.ChatMessage{
		ID:             uuid.New().String(),
		NegotiationID:  negotiation.ID,
		Author:         models.AuthorApplicant,
		Text:           reply,
		IsAutoResponse: true,
	}
	if _, err := m.messages.Append(ctx, &sent); err != nil {
		return err
	}
	_ = m.stats.Bump(ctx, m.now(), repository.StatsDelta{MessagesSent: 1})

	if handingOff {
		// One-shot: the flag goes up with the first delivered invitation
		if err := m.negotiations.MarkTelegramInvited(ctx, negotiation.ID); err != nil {
			return err
		}
		negotiation.TelegramInvited = true
		log.Printf("Handed off negotiation %s to Telegram", negotiation.ExternalID)
		_ = m.ledger.Log(ctx, models.EventHandOff, vacancyTitle, &negotiation.VacancyID)
		if m.notifier != nil {
			_ = m.notifier.NotifyHandOff(negotiation.Employer, vacancyTitle)
		}
		return nil
	}

	log.Printf("Auto-replied to bot in negotiation %s", negotiation.ExternalID)
	_ = m.ledger.Log(ctx, models.EventAutoResponse, vacancyTitle, &negotiation.VacancyID)
	return nil
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
