package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Alias1177/CoinSignal/internal/app"
	"github.com/Alias1177/CoinSignal/internal/config"
	"github.com/Alias1177/CoinSignal/internal/logger"
	"github.com/Alias1177/CoinSignal/internal/report"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxTopN = 10

const helpText = `Crypto signal bot.

/signals [N] - analyse the top N assets by market cap (1-10)
/help - show this message`

// Bot answers commands and runs the pipeline on demand.
type Bot struct {
	api     *tgbotapi.BotAPI
	app     *app.App
	sender  *report.TelegramSender
	running chan struct{} // single slot, one run at a time
	logger  zerolog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if _, err := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logger")
	}

	if cfg.TelegramBotToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	// Initialize Telegram bot
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	log.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot := &Bot{
		api:     api,
		app:     app.New(cfg),
		sender:  report.NewTelegramSender(api, cfg.TelegramChatIDs),
		running: make(chan struct{}, 1),
		logger:  log.With().Str("component", "tgbot").Logger(),
	}

	// Setup update configuration
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			log.Info().Msg("Shutting down")
			return
		case update := <-updates:
			if update.Message != nil && update.Message.IsCommand() {
				bot.handleCommand(ctx, update.Message)
			}
		}
	}
}

// handleCommand processes incoming commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	b.logger.Info().Int64("chat_id", chatID).Str("command", message.Command()).Msg("Command received")

	switch message.Command() {
	case "start", "help":
		b.reply(chatID, helpText)
	case "signals":
		topN, err := parseTopN(message.CommandArguments(), b.app.Config.TopN)
		if err != nil {
			b.reply(chatID, err.Error())
			return
		}

		select {
		case b.running <- struct{}{}:
		default:
			b.reply(chatID, "A run is already in progress, please try again shortly.")
			return
		}

		b.reply(chatID, fmt.Sprintf("Analysing the top %d assets...", topN))
		go func() {
			defer func() { <-b.running }()
			b.runSignals(ctx, chatID, topN)
		}()
	default:
		b.reply(chatID, "Unknown command. Use /help.")
	}
}

func (b *Bot) runSignals(ctx context.Context, chatID int64, topN int) {
	runCtx, cancel := context.WithTimeout(ctx, b.app.Config.RunTimeout)
	defer cancel()

	records, err := b.app.Orchestrator.Run(runCtx, topN)
	if err != nil {
		b.logger.Warn().Err(err).Int("records", len(records)).Msg("Run did not complete")
	}

	text := report.RenderHTML(records, time.Now())
	if err := b.sender.SendTo(ctx, chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send report")
		b.reply(chatID, "Sorry, there was an error. Please try again later.")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
	}
}

// parseTopN reads the optional /signals argument.
func parseTopN(args string, fallback int) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		if fallback > maxTopN {
			return maxTopN, nil
		}
		return fallback, nil
	}

	n, err := strconv.Atoi(args)
	if err != nil || n < 1 || n > maxTopN {
		return 0, fmt.Errorf("usage: /signals [N], where N is between 1 and %d", maxTopN)
	}
	return n, nil
}
