package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/expense-tracker/internal/budget"
)

// MessageSender is the part of the Telegram bot API used for alerts.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

var _ MessageSender = (*bot.Bot)(nil)

// TelegramPublisher posts alerts to a single operator chat.
type TelegramPublisher struct {
	sender MessageSender
	chatID int64
}

// NewTelegramPublisher creates a bot client for token. The token is not
// checked against the API until the first alert is sent.
func NewTelegramPublisher(token string, chatID int64) (*TelegramPublisher, error) {
	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return NewTelegramPublisherWithSender(b, chatID), nil
}

// NewTelegramPublisherWithSender creates a TelegramPublisher on a custom
// sender, mainly for tests.
func NewTelegramPublisherWithSender(sender MessageSender, chatID int64) *TelegramPublisher {
	return &TelegramPublisher{sender: sender, chatID: chatID}
}

// Notify sends the alert message.
func (p *TelegramPublisher) Notify(ctx context.Context, alert budget.Alert) error {
	_, err := p.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    p.chatID,
		Text:      "<b>Budget alert</b>\n" + html.EscapeString(alert.Message()),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}
	return nil
}
