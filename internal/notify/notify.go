// Package notify pushes short operator notifications. The only transport is
// Telegram; watch mode uses it to flag new work-queue entries.
package notify

import (
	"fmt"
	"os"

	"gopkg.in/telebot.v3"
)

// Client sends a plain-text notification to the operator.
type Client interface {
	Send(text string) error
}

// Telegram sends via a bot token to a fixed chat.
type Telegram struct {
	bot    *telebot.Bot
	chatID int64
}

// NewTelegram builds a send-only Telegram client. The token comes from the
// TELEGRAM_TOKEN environment variable; no poller is started.
func NewTelegram(chatID int64) (*Telegram, error) {
	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat_id is not configured")
	}

	bot, err := telebot.NewBot(telebot.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Send(text string) error {
	_, err := t.bot.Send(telebot.ChatID(t.chatID), text)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
