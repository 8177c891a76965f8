package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/calbot/calbot/pkg/calendar"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const maxDescriptionLen = 100

// Sender is the part of tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts reminder and agenda messages to one channel.
type TelegramNotifier struct {
	sender   Sender
	chatID   int64
	leadTime time.Duration
	webURL   string
}

func NewTelegramNotifier(sender Sender, chatID int64, leadTime time.Duration, webURL string) *TelegramNotifier {
	return &TelegramNotifier{
		sender:   sender,
		chatID:   chatID,
		leadTime: leadTime,
		webURL:   webURL,
	}
}

func (n *TelegramNotifier) Notify(_ context.Context, event calendar.Event) error {
	msg := tgbotapi.NewMessage(n.chatID, n.reminderText(event))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := n.sender.Send(msg); err != nil {
		return &NotifyError{EventID: event.ID, Err: err}
	}
	log.Debugf("Reminder message sent to chat %d for event %s", n.chatID, event.ID)
	return nil
}

func (n *TelegramNotifier) reminderText(event calendar.Event) string {
	var sb strings.Builder
	sb.WriteString("🔔 *Event reminder*\n")
	sb.WriteString(fmt.Sprintf("*%s*\n", event.Title))
	sb.WriteString(fmt.Sprintf("📅 %s\n", formatEventTime(event)))
	sb.WriteString(fmt.Sprintf("⏰ Starts in about %d minutes\n", int(n.leadTime.Minutes())))
	if event.Location != "" {
		sb.WriteString(fmt.Sprintf("📍 %s\n", event.Location))
	}
	if event.Description != "" {
		sb.WriteString(fmt.Sprintf("📝 %s\n", truncate(event.Description, maxDescriptionLen)))
	}
	appendCalendarLink(&sb, n.webURL)
	return sb.String()
}

// SendAgenda posts the list of a day's events, used by the daily digest.
func (n *TelegramNotifier) SendAgenda(_ context.Context, day time.Time, events []calendar.Event) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Agenda for %s*\n", day.Format("01/02 (Mon)")))
	if len(events) == 0 {
		sb.WriteString("No events scheduled for today.\n")
	}
	for _, event := range events {
		if event.AllDay {
			sb.WriteString(fmt.Sprintf("🕐 all day — %s\n", event.Title))
		} else {
			sb.WriteString(fmt.Sprintf("🕐 %s — %s\n", event.StartTime.Format("15:04"), event.Title))
		}
	}
	appendCalendarLink(&sb, n.webURL)

	msg := tgbotapi.NewMessage(n.chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	if _, err := n.sender.Send(msg); err != nil {
		return fmt.Errorf("sending daily agenda: %w", err)
	}
	return nil
}

func formatEventTime(event calendar.Event) string {
	if event.AllDay {
		return event.StartTime.Format("01/02") + " (all day)"
	}
	return event.StartTime.Format("01/02 15:04")
}

func appendCalendarLink(sb *strings.Builder, webURL string) {
	if webURL != "" {
		sb.WriteString(fmt.Sprintf("🔗 [Open Google Calendar](%s)\n", webURL))
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
