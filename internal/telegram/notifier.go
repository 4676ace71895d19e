package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier pushes pipeline alerts to the candidate's own Telegram chat.
// A nil Notifier is valid and drops every message, so the pipeline runs
// unchanged when Telegram is not configured.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewNotifier(token string, chatID int64) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Notifier{
		api:    api,
		chatID: chatID,
	}, nil
}

// NotifyHandOff tells the candidate a negotiation was handed off to them.
func (n *Notifier) NotifyHandOff(employer, vacancyTitle string) error {
	if n == nil {
		return nil
	}
	text := fmt.Sprintf("🤝 Hand-off: %s (%s) looks promising. The employer was invited to continue with you directly.", vacancyTitle, employer)
	return n.send(text)
}

// NotifyApplication tells the candidate an application went out.
func (n *Notifier) NotifyApplication(vacancyTitle, employer string, score int) error {
	if n == nil {
		return nil
	}
	text := fmt.Sprintf("📨 Applied to %s at %s (score %d/100)", vacancyTitle, employer, score)
	return n.send(text)
}

func (n *Notifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
