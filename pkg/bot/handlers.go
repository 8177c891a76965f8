package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/calbot/calbot/internal/utils"
	"github.com/calbot/calbot/pkg/calendar"
	"github.com/calbot/calbot/pkg/notifier"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const (
	defaultListDays     = 7
	maxListedEvents     = 10
	deleteSearchHorizon = 30 * 24 * time.Hour
)

// Handler processes chat commands against the shared calendar. It never
// touches the reminder scheduler.
type Handler struct {
	sender   notifier.Sender
	cal      calendar.Calendar
	clock    utils.Clock
	location *time.Location
	webURL   string
}

func NewHandler(sender notifier.Sender, cal calendar.Calendar, location *time.Location, webURL string) *Handler {
	return &Handler{
		sender:   sender,
		cal:      cal,
		clock:    utils.SystemClock{},
		location: location,
		webURL:   webURL,
	}
}

func (h *Handler) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	log.Debugf("Command /%s from %s in chat %d", msg.Command(), msg.From.UserName, msg.Chat.ID)

	switch msg.Command() {
	case "add":
		h.cmdAdd(ctx, msg)
	case "list":
		h.cmdList(ctx, msg)
	case "delete":
		h.cmdDelete(ctx, msg)
	case "today":
		h.cmdToday(ctx, msg)
	case "start", "help":
		h.cmdHelp(msg)
	default:
		h.reply(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func (h *Handler) cmdAdd(ctx context.Context, msg *tgbotapi.Message) {
	args := msg.CommandArguments()
	event, err := ParseEventSpec(args, h.clock.Now(), h.location)
	if err != nil {
		log.Warnf("rejected event input %q: %v", args, err)
		h.reply(msg.Chat.ID, "❌ Could not add the event. Expected format:\n/add YYYY-MM-DD HH:MM-HH:MM title")
		return
	}

	created, err := h.cal.CreateEvent(ctx, event)
	if err != nil {
		log.Errorf("failed to create event %q: %v", event.Title, err)
		h.reply(msg.Chat.ID, "❌ Something went wrong while adding the event.")
		return
	}

	var sb strings.Builder
	sb.WriteString("✅ *Event added*\n")
	sb.WriteString(fmt.Sprintf("*%s*\n", created.Title))
	sb.WriteString(fmt.Sprintf("📅 %s\n", created.StartTime.Format(time.DateOnly)))
	sb.WriteString(fmt.Sprintf("🕐 %s - %s\n", created.StartTime.Format("15:04"), created.EndTime.Format("15:04")))
	h.appendCalendarLink(&sb)
	h.reply(msg.Chat.ID, sb.String())
}

func (h *Handler) cmdList(ctx context.Context, msg *tgbotapi.Message) {
	days := defaultListDays
	if args := strings.TrimSpace(msg.CommandArguments()); args != "" {
		parsed, err := strconv.Atoi(args)
		if err != nil || parsed < 1 {
			h.reply(msg.Chat.ID, "Usage: /list [days], e.g. /list 7")
			return
		}
		days = parsed
	}

	now := h.clock.Now()
	events, err := h.cal.ListUpcoming(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		log.Errorf("failed to list events: %v", err)
		h.reply(msg.Chat.ID, "❌ Could not fetch events from the calendar.")
		return
	}
	if len(events) == 0 {
		h.reply(msg.Chat.ID, "📅 No upcoming events.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Events in the next %d days*\n", days))
	for i, event := range events {
		if i == maxListedEvents {
			sb.WriteString(fmt.Sprintf("… and %d more\n", len(events)-maxListedEvents))
			break
		}
		if event.AllDay {
			sb.WriteString(fmt.Sprintf("%s — %s (all day)\n", event.StartTime.Format("01/02"), event.Title))
		} else {
			sb.WriteString(fmt.Sprintf("%s — %s\n", event.StartTime.Format("01/02 15:04"), event.Title))
		}
	}
	h.appendCalendarLink(&sb)
	h.reply(msg.Chat.ID, sb.String())
}

func (h *Handler) cmdDelete(ctx context.Context, msg *tgbotapi.Message) {
	title := strings.TrimSpace(msg.CommandArguments())
	if title == "" {
		h.reply(msg.Chat.ID, "Usage: /delete <event title>")
		return
	}

	event, err := h.cal.FindByTitle(ctx, title, deleteSearchHorizon)
	if errors.Is(err, calendar.ErrEventNotFound) {
		h.reply(msg.Chat.ID, fmt.Sprintf("❌ No upcoming event titled “%s” found.", title))
		return
	}
	if err != nil {
		log.Errorf("failed to look up event %q: %v", title, err)
		h.reply(msg.Chat.ID, "❌ Could not search the calendar.")
		return
	}

	if err := h.cal.DeleteEvent(ctx, event.ID); err != nil {
		log.Errorf("failed to delete event %s: %v", event.ID, err)
		h.reply(msg.Chat.ID, "❌ Something went wrong while deleting the event.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Deleted “%s”.\n", event.Title))
	h.appendCalendarLink(&sb)
	h.reply(msg.Chat.ID, sb.String())
}

func (h *Handler) cmdToday(ctx context.Context, msg *tgbotapi.Message) {
	now := h.clock.Now().In(h.location)
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.location)
	events, err := h.cal.ListUpcoming(ctx, startOfDay, startOfDay.AddDate(0, 0, 1))
	if err != nil {
		log.Errorf("failed to list today's events: %v", err)
		h.reply(msg.Chat.ID, "❌ Could not fetch events from the calendar.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Today %s*\n", now.Format("01/02 (Mon)")))
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
	h.appendCalendarLink(&sb)
	h.reply(msg.Chat.ID, sb.String())
}

func (h *Handler) cmdHelp(msg *tgbotapi.Message) {
	today := h.clock.Now().In(h.location).Format(time.DateOnly)

	var sb strings.Builder
	sb.WriteString("📅 *Calendar bot*\n")
	sb.WriteString("I manage the shared Google Calendar and remind this channel before events start.\n\n")
	sb.WriteString(fmt.Sprintf("/add <date> <start>-<end> <title> — add an event\ne.g. `/add %s 10:00-11:00 Team meeting`\n\n", today))
	sb.WriteString("/list [days] — show upcoming events (default 7 days)\n\n")
	sb.WriteString("/delete <title> — delete an upcoming event by title\n\n")
	sb.WriteString("/today — show today's agenda\n")
	h.appendCalendarLink(&sb)
	h.reply(msg.Chat.ID, sb.String())
}

func (h *Handler) appendCalendarLink(sb *strings.Builder) {
	if h.webURL != "" {
		sb.WriteString(fmt.Sprintf("🔗 [Open Google Calendar](%s)\n", h.webURL))
	}
}

func (h *Handler) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := h.sender.Send(msg); err != nil {
		log.Errorf("failed to send reply to chat %d: %v", chatID, err)
	}
}
