package app

import (
	"context"
	"fmt"
	"time"

	"github.com/calbot/calbot/internal/config"
	"github.com/calbot/calbot/pkg/bot"
	"github.com/calbot/calbot/pkg/calendar"
	"github.com/calbot/calbot/pkg/digest"
	"github.com/calbot/calbot/pkg/google"
	"github.com/calbot/calbot/pkg/notifier"
	"github.com/calbot/calbot/pkg/reminder"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Dependencies holds all services of the application.
type Dependencies struct {
	Location *time.Location

	BotAPI     *tgbotapi.BotAPI
	BotHandler *bot.Handler

	Calendar       calendar.Calendar
	GoogleCalendar *google.Calendar

	Notifier  *notifier.TelegramNotifier
	Scheduler *reminder.Scheduler
	Digest    *digest.Service
}

// BuildDependencies initializes and wires all application services.
func BuildDependencies(ctx context.Context, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", cfg.Timezone, err)
	}
	deps.Location = location

	service, err := google.NewCalendarService(ctx, cfg.Google.CredentialsFile, cfg.Google.DelegatedUser)
	if err != nil {
		return nil, err
	}
	deps.GoogleCalendar = google.NewCalendar(service, cfg.Google.CalendarId, location)
	deps.Calendar = deps.GoogleCalendar

	deps.BotAPI, err = bot.NewBot(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	deps.BotHandler = bot.NewHandler(deps.BotAPI, deps.Calendar, location, cfg.Google.WebUrl)

	deps.Notifier = notifier.NewTelegramNotifier(deps.BotAPI, cfg.Telegram.ChannelId, cfg.Reminder.LeadTime, cfg.Google.WebUrl)
	deps.Scheduler = reminder.NewScheduler(deps.Calendar, deps.Notifier, reminder.Config{
		LeadTime:     cfg.Reminder.LeadTime,
		PollInterval: cfg.Reminder.PollInterval,
		Slop:         cfg.Reminder.Slop,
		Retention:    cfg.Reminder.Retention,
		FetchTimeout: cfg.Reminder.FetchTimeout,
	})

	if cfg.Digest.Enabled {
		deps.Digest, err = digest.NewService(deps.Calendar, deps.Notifier, location, cfg.Digest.SendAt)
		if err != nil {
			return nil, err
		}
	}

	return deps, nil
}
