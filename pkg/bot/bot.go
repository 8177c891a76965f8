package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// NewBot connects to the Telegram API and registers the command menu.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to Telegram: %w", err)
	}

	commands := []tgbotapi.BotCommand{
		{Command: "add", Description: "Add an event: /add YYYY-MM-DD HH:MM-HH:MM title"},
		{Command: "list", Description: "Show upcoming events"},
		{Command: "delete", Description: "Delete an event by title"},
		{Command: "today", Description: "Show today's agenda"},
		{Command: "help", Description: "Show help"},
	}
	if _, err := api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return nil, fmt.Errorf("registering bot commands: %w", err)
	}

	log.Infof("Bot authorized as @%s", api.Self.UserName)
	return api, nil
}

// Run reads updates until ctx is cancelled, dispatching commands to handler.
// Non-command messages are ignored.
func Run(ctx context.Context, api *tgbotapi.BotAPI, handler *Handler) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			log.Info("Bot update loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			handler.HandleCommand(ctx, update.Message)
		}
	}
}
