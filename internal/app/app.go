package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/calbot/calbot/internal/config"
	"github.com/calbot/calbot/pkg/bot"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, the calendar client, the bot, and the
// reminder scheduler lifecycle.
type Application struct {
	cfg  config.Application
	deps *Dependencies
}

// NewApplication constructs the full application, ready to Run().
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}
	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram.token is not configured")
	}
	if cfg.Telegram.ChannelId == 0 {
		return nil, fmt.Errorf("telegram.channelid is not configured")
	}

	deps, err := BuildDependencies(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Application{cfg: cfg, deps: deps}, nil
}

// Run starts the reminder scheduler, the daily digest when enabled, and the
// bot update loop, then blocks until SIGINT/SIGTERM. Shutdown cancels the
// in-flight tick; losing partial notification state is safe.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.deps.GoogleCalendar.Verify(ctx); err != nil {
		return err
	}

	go a.deps.Scheduler.Run(ctx)
	if a.deps.Digest != nil {
		go a.deps.Digest.Run(ctx)
	}

	bot.Run(ctx, a.deps.BotAPI, a.deps.BotHandler)
	log.Info("Shutdown complete")
	return nil
}
