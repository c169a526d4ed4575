// Package logsink mirrors runtime events into a designated Telegram chat,
// filtered by the severity threshold stored alongside the profile data, and
// wraps the handler pipeline with error classification.
package logsink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"nexus_bot/internal/domain"
	"nexus_bot/internal/logging"
	"nexus_bot/internal/store"
)

// User-facing apologies per error category. The category flavors the tone
// only; none of the categories are retried here.
const (
	msgTransportFailure   = "Telegram delivery problem. The administrator has been notified."
	msgPersistenceFailure = "Storage problem. The administrator has been notified."
	msgUnexpectedFailure  = "Internal error. The administrator has been notified."
)

// Sender is the subset of Telegram client behavior the sink needs.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// SettingsSource yields the stored forwarding threshold and destination.
type SettingsSource interface {
	Get(ctx context.Context) (*domain.LogSettings, error)
}

// Handler is a message handler that reports failures instead of swallowing
// them, so the sink can classify and surface them.
type Handler func(ctx context.Context, b *bot.Bot, update *models.Update) error

// Sink writes every event to the process log and conditionally forwards it to
// the configured log chat.
type Sink struct {
	api            Sender
	settings       SettingsSource
	fallbackChatID int64
	logger         *logrus.Entry

	// now is overridable for tests.
	now func() time.Time
}

// New constructs a Sink. fallbackChatID receives forwarded events while no
// settings row exists yet.
func New(api Sender, settings SettingsSource, fallbackChatID int64, logger *logrus.Entry) *Sink {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Sink{
		api:            api,
		settings:       settings,
		fallbackChatID: fallbackChatID,
		logger:         logger,
		now:            time.Now,
	}
}

// Emit writes the message to the process log and forwards it to the log chat
// when its severity is at or above the stored threshold. A broken log channel
// must never crash the pipeline it observes, so every send failure ends up in
// the process log only.
func (s *Sink) Emit(ctx context.Context, level domain.Level, message string) {
	s.logLocal(level, message)

	threshold := domain.LevelDebug
	chatID := s.fallbackChatID

	settings, err := s.settings.Get(ctx)
	switch {
	case err == nil:
		threshold = settings.Level
		if settings.ChatID != 0 {
			chatID = settings.ChatID
		}
	case errors.Is(err, store.ErrNotFound):
		// No settings yet: forward everything to the fallback chat.
	default:
		s.logger.WithError(err).Error("failed to load log settings")
	}

	if level.Severity() < threshold.Severity() {
		return
	}
	if chatID == 0 {
		return
	}

	formatted := fmt.Sprintf("[%s] %s\nTimestamp: %s", level, message, s.now().Format("2006-01-02 15:04:05"))

	_, err = s.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      bot.EscapeMarkdown(formatted),
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to forward log event to telegram")
	}
}

// Guard wraps a handler: it records the inbound update, classifies any error
// the handler reports into transport/persistence/unexpected, mirrors the full
// detail through Emit, and sends one category-flavored apology to the user.
// Errors never propagate past the guard; the event loop always continues.
func (s *Sink) Guard(next Handler) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		s.recordUpdate(ctx, update)

		err := next(ctx, b, update)
		if err == nil {
			return
		}

		var label, apology string
		switch {
		case errors.Is(err, domain.ErrTransport):
			label = "[Telegram API error]"
			apology = msgTransportFailure
		case errors.Is(err, domain.ErrPersistence):
			label = "[Database error]"
			apology = msgPersistenceFailure
		default:
			label = "[Unexpected error]"
			apology = msgUnexpectedFailure
		}

		s.Emit(ctx, domain.LevelError, fmt.Sprintf("%s: %v", label, err))
		s.apologize(ctx, update, apology)
	}
}

func (s *Sink) recordUpdate(ctx context.Context, update *models.Update) {
	if update == nil {
		return
	}

	switch {
	case update.Message != nil:
		text := update.Message.Text
		if text == "" {
			text = "[MEDIA]"
		}
		s.Emit(ctx, domain.LevelDebug, fmt.Sprintf("[EVENT:Message] Text: %s", text))
	case update.CallbackQuery != nil:
		s.Emit(ctx, domain.LevelDebug, fmt.Sprintf("[EVENT:Callback] Data: %s", update.CallbackQuery.Data))
	default:
		s.Emit(ctx, domain.LevelDebug, "[EVENT:Unknown]")
	}
}

func (s *Sink) apologize(ctx context.Context, update *models.Update, text string) {
	chatID := updateChatID(update)
	if chatID == 0 {
		return
	}

	_, err := s.api.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		s.logger.WithError(err).WithField("chat_id", chatID).Warn("failed to notify user about handler failure")
	}
}

func updateChatID(update *models.Update) int64 {
	if update == nil {
		return 0
	}

	if update.Message != nil {
		return update.Message.Chat.ID
	}

	if update.CallbackQuery != nil {
		msg := update.CallbackQuery.Message
		switch msg.Type {
		case models.MaybeInaccessibleMessageTypeMessage:
			if msg.Message != nil {
				return msg.Message.Chat.ID
			}
		case models.MaybeInaccessibleMessageTypeInaccessibleMessage:
			if msg.InaccessibleMessage != nil {
				return msg.InaccessibleMessage.Chat.ID
			}
		}
	}

	return 0
}

func (s *Sink) logLocal(level domain.Level, message string) {
	switch level {
	case domain.LevelDebug:
		s.logger.Debug(message)
	case domain.LevelInfo:
		s.logger.Info(message)
	default:
		s.logger.Error(message)
	}
}
