package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"nexus_bot/internal/domain"
)

func TestLogSettingsGetMissing(t *testing.T) {
	manager := newTestManager(t)
	repo := NewLogSettings(manager.DB())

	_, err := repo.Get(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first SetLevel, got %v", err)
	}
}

func TestLogSettingsSetLevelCreatesAndUpdates(t *testing.T) {
	manager := newTestManager(t)
	repo := NewLogSettings(manager.DB())
	ctx := context.Background()

	if err := repo.SetLevel(ctx, domain.LevelInfo, -900); err != nil {
		t.Fatalf("SetLevel returned error: %v", err)
	}

	settings, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if settings.Level != domain.LevelInfo {
		t.Fatalf("expected level INFO, got %s", settings.Level)
	}
	if settings.ChatID != -900 {
		t.Fatalf("expected chat id -900, got %d", settings.ChatID)
	}

	if err := repo.SetLevel(ctx, domain.LevelError, -901); err != nil {
		t.Fatalf("second SetLevel returned error: %v", err)
	}

	settings, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if settings.Level != domain.LevelError {
		t.Fatalf("expected level ERROR after update, got %s", settings.Level)
	}
	// The destination chat is set on creation and kept on level updates.
	if settings.ChatID != -900 {
		t.Fatalf("expected original chat id to be kept, got %d", settings.ChatID)
	}
}

func TestLogSettingsSetLevelSurvivesCreateRace(t *testing.T) {
	manager := newTestManager(t)
	db := manager.DB()
	repo := NewLogSettings(db)
	ctx := context.Background()

	// Land a competing first write between the existence check and the
	// insert, so the repository's own create hits the duplicate key.
	injected := false
	err := db.Callback().Create().Before("gorm:create").Register("settings_race", func(tx *gorm.DB) {
		if injected {
			return
		}
		if _, ok := tx.Statement.Dest.(*domain.LogSettings); !ok {
			return
		}
		injected = true
		db.Exec("INSERT INTO log_settings (id, chat_id, level, updated_at) VALUES (?, ?, ?, ?)",
			domain.LogSettingsID, int64(-700), string(domain.LevelInfo), time.Now().UTC())
	})
	if err != nil {
		t.Fatalf("failed to register create callback: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Callback().Create().Remove("settings_race")
	})

	if err := repo.SetLevel(ctx, domain.LevelError, -900); err != nil {
		t.Fatalf("expected racing SetLevel to succeed, got %v", err)
	}
	if !injected {
		t.Fatalf("expected competing insert to run before the repository create")
	}

	settings, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if settings.Level != domain.LevelError {
		t.Fatalf("expected level ERROR after racing update, got %s", settings.Level)
	}
	// The winner's destination chat is kept, as on any later level update.
	if settings.ChatID != -700 {
		t.Fatalf("expected winner's chat id to be kept, got %d", settings.ChatID)
	}
}

func TestLogSettingsRejectsUnknownLevel(t *testing.T) {
	manager := newTestManager(t)
	repo := NewLogSettings(manager.DB())
	ctx := context.Background()

	if err := repo.SetLevel(ctx, domain.Level("BOGUS"), -1); err == nil {
		t.Fatalf("expected unsupported level to error")
	}

	if _, err := repo.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected settings to remain absent after rejected level, got %v", err)
	}
}
