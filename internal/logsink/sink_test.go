package logsink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"nexus_bot/internal/domain"
	"nexus_bot/internal/store"
)

const (
	settingsChatID int64 = -2000
	fallbackChatID int64 = -3000
)

type sentMessage struct {
	chatID    int64
	text      string
	parseMode models.ParseMode
}

type fakeSender struct {
	sent    []sentMessage
	sendErr error
}

func (f *fakeSender) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}

	f.sent = append(f.sent, sentMessage{
		chatID:    params.ChatID.(int64),
		text:      params.Text,
		parseMode: params.ParseMode,
	})
	return &models.Message{ID: len(f.sent)}, nil
}

type fakeSettings struct {
	settings *domain.LogSettings
	err      error
}

func (f *fakeSettings) Get(ctx context.Context) (*domain.LogSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

func newTestSink(sender *fakeSender, settings *fakeSettings) *Sink {
	sink := New(sender, settings, fallbackChatID, nil)
	sink.now = func() time.Time {
		return time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	}
	return sink
}

func TestEmitRespectsThreshold(t *testing.T) {
	tests := []struct {
		threshold domain.Level
		level     domain.Level
		forwarded bool
	}{
		{domain.LevelError, domain.LevelDebug, false},
		{domain.LevelError, domain.LevelInfo, false},
		{domain.LevelError, domain.LevelError, true},
		{domain.LevelInfo, domain.LevelInfo, true},
		{domain.LevelDebug, domain.LevelDebug, true},
		{domain.LevelInfo, domain.LevelError, true},
	}

	for _, tt := range tests {
		sender := &fakeSender{}
		sink := newTestSink(sender, &fakeSettings{
			settings: &domain.LogSettings{ID: 1, ChatID: settingsChatID, Level: tt.threshold},
		})

		sink.Emit(context.Background(), tt.level, "something happened")

		if tt.forwarded && len(sender.sent) != 1 {
			t.Fatalf("threshold %s level %s: expected forward, got %d sends", tt.threshold, tt.level, len(sender.sent))
		}
		if !tt.forwarded && len(sender.sent) != 0 {
			t.Fatalf("threshold %s level %s: expected local-only, got %d sends", tt.threshold, tt.level, len(sender.sent))
		}
		if tt.forwarded && sender.sent[0].chatID != settingsChatID {
			t.Fatalf("expected forward to configured chat, got %d", sender.sent[0].chatID)
		}
	}
}

func TestEmitDefaultsWithoutSettings(t *testing.T) {
	sender := &fakeSender{}
	sink := newTestSink(sender, &fakeSettings{err: store.ErrNotFound})

	sink.Emit(context.Background(), domain.LevelDebug, "early boot event")

	if len(sender.sent) != 1 {
		t.Fatalf("expected debug event forwarded with no settings row, got %d sends", len(sender.sent))
	}
	if sender.sent[0].chatID != fallbackChatID {
		t.Fatalf("expected fallback chat %d, got %d", fallbackChatID, sender.sent[0].chatID)
	}
}

func TestEmitEscapesMarkup(t *testing.T) {
	sender := &fakeSender{}
	sink := newTestSink(sender, &fakeSettings{
		settings: &domain.LogSettings{ID: 1, ChatID: settingsChatID, Level: domain.LevelDebug},
	})

	sink.Emit(context.Background(), domain.LevelError, "value_with*markup[chars]")

	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}

	text := sender.sent[0].text
	for _, fragment := range []string{`\[ERROR\]`, `value\_with\*markup\[chars\]`} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected escaped fragment %q in %q", fragment, text)
		}
	}
	if sender.sent[0].parseMode != models.ParseModeMarkdown {
		t.Fatalf("expected MarkdownV2 parse mode, got %q", sender.sent[0].parseMode)
	}
}

func TestEmitSwallowsSendFailures(t *testing.T) {
	sender := &fakeSender{sendErr: errors.New("chat is gone")}
	sink := newTestSink(sender, &fakeSettings{
		settings: &domain.LogSettings{ID: 1, ChatID: settingsChatID, Level: domain.LevelDebug},
	})

	// Must not panic or propagate.
	sink.Emit(context.Background(), domain.LevelError, "event during outage")
}

func TestGuardClassifiesErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		apology string
	}{
		{"transport", domain.Transport(errors.New("send failed")), msgTransportFailure},
		{"persistence", domain.Persistence(errors.New("db down")), msgPersistenceFailure},
		{"unexpected", errors.New("nil pointer somewhere"), msgUnexpectedFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			sink := newTestSink(sender, &fakeSettings{
				settings: &domain.LogSettings{ID: 1, ChatID: settingsChatID, Level: domain.LevelError},
			})

			handler := sink.Guard(func(ctx context.Context, b *bot.Bot, update *models.Update) error {
				return fmt.Errorf("handling start: %w", tt.err)
			})

			update := &models.Update{
				Message: &models.Message{
					ID:   1,
					Chat: models.Chat{ID: 777},
					Text: "/start",
				},
			}

			handler(context.Background(), nil, update)

			if len(sender.sent) != 2 {
				t.Fatalf("expected error forward plus apology, got %d sends", len(sender.sent))
			}

			forward := sender.sent[0]
			if forward.chatID != settingsChatID {
				t.Fatalf("expected error forwarded to log chat, got %d", forward.chatID)
			}

			apology := sender.sent[1]
			if apology.chatID != 777 {
				t.Fatalf("expected apology in origin chat, got %d", apology.chatID)
			}
			if apology.text != tt.apology {
				t.Fatalf("expected apology %q, got %q", tt.apology, apology.text)
			}
		})
	}
}

func TestGuardPassesCleanHandlers(t *testing.T) {
	sender := &fakeSender{}
	sink := newTestSink(sender, &fakeSettings{
		settings: &domain.LogSettings{ID: 1, ChatID: settingsChatID, Level: domain.LevelError},
	})

	invoked := false
	handler := sink.Guard(func(ctx context.Context, b *bot.Bot, update *models.Update) error {
		invoked = true
		return nil
	})

	handler(context.Background(), nil, &models.Update{
		Message: &models.Message{ID: 1, Chat: models.Chat{ID: 1}, Text: "hi"},
	})

	if !invoked {
		t.Fatalf("expected wrapped handler to run")
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no sends for a clean handler at ERROR threshold, got %d", len(sender.sent))
	}
}
