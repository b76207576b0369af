package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxMessageLength is Telegram's limit for one text message
const MaxMessageLength = 4096

// MessageSender is the part of tgbotapi.BotAPI used for delivery.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender delivers reports to a fixed set of chats.
type TelegramSender struct {
	bot     MessageSender
	chatIDs []int64
	logger  zerolog.Logger
}

// NewTelegramSender creates a sender for the given chats
func NewTelegramSender(bot MessageSender, chatIDs []int64) *TelegramSender {
	return &TelegramSender{
		bot:     bot,
		chatIDs: chatIDs,
		logger:  log.With().Str("component", "telegram_sender").Logger(),
	}
}

// Send delivers text to every chat, split into messages Telegram accepts.
// Failures for one chat do not stop delivery to the others.
func (s *TelegramSender) Send(ctx context.Context, text string) error {
	chunks := SplitMessage(text, MaxMessageLength)
	var errs []error

	for _, chatID := range s.chatIDs {
		if err := s.sendChunks(ctx, chatID, chunks); err != nil {
			s.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to deliver report")
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			continue
		}
		s.logger.Info().Int64("chat_id", chatID).Int("messages", len(chunks)).Msg("Report delivered")
	}

	return errors.Join(errs...)
}

// SendTo delivers text to a single chat.
func (s *TelegramSender) SendTo(ctx context.Context, chatID int64, text string) error {
	return s.sendChunks(ctx, chatID, SplitMessage(text, MaxMessageLength))
}

func (s *TelegramSender) sendChunks(ctx context.Context, chatID int64, chunks []string) error {
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := s.bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// SplitMessage splits text at line boundaries into chunks of at most limit
// characters. A single line longer than limit is cut hard.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if size > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if size+n <= limit {
			current.WriteString(line)
			size += n
			continue
		}
		flush()

		runes := []rune(line)
		for len(runes) > limit {
			chunks = append(chunks, string(runes[:limit]))
			runes = runes[limit:]
		}
		current.WriteString(string(runes))
		size = len(runes)
	}
	flush()

	return chunks
}
