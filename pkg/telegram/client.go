package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers operator notifications: the daily pick after ranking and
// the outcome of each promotion attempt. Stage services treat a nil Notifier
// as notifications disabled.
type Notifier interface {
	SendMessage(text string) error
}

// client sends notifications to a single Telegram chat.
type client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a Telegram notifier for the configured bot token and
// chat.
func NewClient(botToken string, chatID int64) (Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// SendMessage sends one Markdown-formatted message to the configured chat.
// The formatter functions in this package produce the message bodies.
func (c *client) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.bot.Send(msg)
	return err
}
