// Package notify delivers accepted signals to chat channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alias1177/fxsignal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Telegram allows about 30 messages per second per bot
const sendInterval = 50 * time.Millisecond

// Sender is the part of tgbotapi.BotAPI the notifier uses
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram broadcasts signals to a fixed list of chats
type Telegram struct {
	bot     Sender
	chatIDs []int64
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewTelegram connects a bot with the given token
func NewTelegram(token string, chatIDs []int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}
	return NewTelegramWithSender(bot, chatIDs), nil
}

// NewTelegramWithSender builds a notifier around an existing sender
func NewTelegramWithSender(bot Sender, chatIDs []int64) *Telegram {
	return &Telegram{
		bot:     bot,
		chatIDs: chatIDs,
		limiter: rate.NewLimiter(rate.Every(sendInterval), 1),
		logger:  log.With().Str("component", "telegram_notifier").Logger(),
	}
}

// Notify sends the signal text to every chat. Failures for one chat do not
// stop delivery to the others.
func (t *Telegram) Notify(ctx context.Context, s models.TradingSignal) error {
	text := s.Text()

	var errs []error
	sent := 0
	for _, chatID := range t.chatIDs {
		if err := t.limiter.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}

		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			t.logger.Error().Err(err).Int64("chat_id", chatID).Str("signal_id", s.ID).Msg("Failed to send signal")
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
			continue
		}
		sent++
	}

	t.logger.Info().
		Str("signal_id", s.ID).
		Str("symbol", s.Symbol).
		Int("sent", sent).
		Int("failed", len(t.chatIDs)-sent).
		Msg("Signal broadcast")

	return errors.Join(errs...)
}

// Log writes signals to the application log. Used when no chat channel is configured.
type Log struct {
	logger zerolog.Logger
}

// NewLog creates a log notifier
func NewLog() *Log {
	return &Log{logger: log.With().Str("component", "log_notifier").Logger()}
}

// Notify logs the signal line
func (l *Log) Notify(_ context.Context, s models.TradingSignal) error {
	l.logger.Info().Str("signal_id", s.ID).Msg(s.Text())
	return nil
}
