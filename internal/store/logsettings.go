package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nexus_bot/internal/domain"
)

// LogSettings persists the single log-forwarding settings row.
type LogSettings struct {
	db *gorm.DB
}

// NewLogSettings constructs a LogSettings repository over the shared handle.
func NewLogSettings(db *gorm.DB) *LogSettings {
	return &LogSettings{db: db}
}

// Get fetches the settings row. Returns ErrNotFound when no level has been
// configured yet; the log sink falls back to its defaults in that case.
func (r *LogSettings) Get(ctx context.Context) (*domain.LogSettings, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("log settings repository is not initialized")
	}

	var settings domain.LogSettings
	err := r.db.WithContext(ctx).
		Where("id = ?", domain.LogSettingsID).
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, domain.Persistence(fmt.Errorf("find log settings: %w", err))
	}

	return &settings, nil
}

// SetLevel stores the forwarding threshold and destination chat, creating the
// settings row on first use.
func (r *LogSettings) SetLevel(ctx context.Context, level domain.Level, chatID int64) error {
	if r == nil || r.db == nil {
		return errors.New("log settings repository is not initialized")
	}
	if level.Severity() < 0 {
		return fmt.Errorf("unsupported log level %q", level)
	}

	now := time.Now().UTC()

	settings, err := r.Get(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}

		fresh := domain.LogSettings{
			ID:        domain.LogSettingsID,
			ChatID:    chatID,
			Level:     level,
			UpdatedAt: now,
		}
		createErr := r.db.WithContext(ctx).Create(&fresh).Error
		if createErr == nil {
			return nil
		}
		if !errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return domain.Persistence(fmt.Errorf("create log settings: %w", createErr))
		}

		// A concurrent first write won the race; update the winner's row.
		settings, err = r.Get(ctx)
		if err != nil {
			return err
		}
	}

	settings.Level = level
	settings.UpdatedAt = now
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return domain.Persistence(fmt.Errorf("update log settings: %w", err))
	}

	return nil
}
