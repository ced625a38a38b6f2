// Package telegram is the notification gateway. Delivery is fire-and-forget:
// a failed send is logged and never reaches the scrape loop.
package telegram

import (
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/anton-sementsov/parser-upw/internal/models"
)

const (
	descriptionLimit = 800
	separator        = "---"
)

type Bot struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, chatID: chatID}, nil
}

// NotifyNewJob sends a formatted message for a freshly inserted record.
func (b *Bot) NotifyNewJob(record models.JobRecord) {
	msg := tgbotapi.NewMessage(b.chatID, FormatJobMessage(record))
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("⚠️ Failed to send Telegram notification for job %s: %v", record.ID, err)
		return
	}
	log.Printf("📨 Telegram notification sent for `%s`", record.Title)
}

// FormatJobMessage renders the notification body: title, URL, short posted
// date and the description truncated to 800 characters, framed and joined by
// "---" separator lines.
func FormatJobMessage(record models.JobRecord) string {
	description := record.Description
	if runes := []rune(description); len(runes) > descriptionLimit {
		description = string(runes[:descriptionLimit]) + "…"
	}

	lines := []string{
		separator,
		record.Title,
		separator,
		record.URL,
		separator,
		shortDate(record.PostedAt),
		separator,
		description,
		separator,
	}
	return strings.Join(lines, "\n")
}

func shortDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
