package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nexus_bot/internal/domain"
)

// ProfileAttrs carries the platform-supplied attributes used to populate a
// profile on first contact.
type ProfileAttrs struct {
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	IsPremium    bool
}

// Profiles persists and retrieves Telegram profiles.
type Profiles struct {
	db *gorm.DB
}

// NewProfiles constructs a Profiles repository over the shared handle.
func NewProfiles(db *gorm.DB) *Profiles {
	return &Profiles{db: db}
}

// GetOrCreate resolves the profile for the Telegram ID, creating it with the
// supplied attributes and the default role when absent. A duplicate-key
// violation from a racing create is resolved by re-fetching the winner.
func (r *Profiles) GetOrCreate(ctx context.Context, telegramID int64, attrs ProfileAttrs) (*domain.Profile, bool, error) {
	if r == nil || r.db == nil {
		return nil, false, errors.New("profiles repository is not initialized")
	}
	if telegramID == 0 {
		return nil, false, errors.New("telegram id is required")
	}

	profile, err := r.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return profile, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	firstName := attrs.FirstName
	if firstName == "" {
		firstName = fmt.Sprintf("User_%d", telegramID)
	}

	fresh := domain.Profile{
		TelegramID:   telegramID,
		Username:     attrs.Username,
		FirstName:    firstName,
		LastName:     attrs.LastName,
		LanguageCode: attrs.LanguageCode,
		IsPremium:    attrs.IsPremium,
		Role:         domain.RoleSingle,
	}

	if err := r.db.WithContext(ctx).Create(&fresh).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, fetchErr := r.GetByTelegramID(ctx, telegramID)
			if fetchErr != nil {
				return nil, false, fetchErr
			}
			return existing, false, nil
		}
		return nil, false, domain.Persistence(fmt.Errorf("create profile: %w", err))
	}

	return &fresh, true, nil
}

// GetByTelegramID fetches a profile by its Telegram ID.
func (r *Profiles) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Profile, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("profiles repository is not initialized")
	}

	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, domain.Persistence(fmt.Errorf("find profile: %w", err))
	}

	return &profile, nil
}

// SetBirthday stores the profile's birthday.
func (r *Profiles) SetBirthday(ctx context.Context, telegramID int64, birthday time.Time) error {
	return r.updateField(ctx, telegramID, "birthday", birthday)
}

// SetEmail stores the profile's email address.
func (r *Profiles) SetEmail(ctx context.Context, telegramID int64, email string) error {
	return r.updateField(ctx, telegramID, "email", email)
}

// SetPhone stores the profile's phone number.
func (r *Profiles) SetPhone(ctx context.Context, telegramID int64, phone string) error {
	return r.updateField(ctx, telegramID, "phone", phone)
}

// SetFullDisplayName stores the profile's preferred display name.
func (r *Profiles) SetFullDisplayName(ctx context.Context, telegramID int64, name string) error {
	return r.updateField(ctx, telegramID, "full_display_name", name)
}

// SetRole stores the profile's role ordinal.
func (r *Profiles) SetRole(ctx context.Context, telegramID int64, role domain.Role) error {
	return r.updateField(ctx, telegramID, "role", role)
}

func (r *Profiles) updateField(ctx context.Context, telegramID int64, column string, value any) error {
	if r == nil || r.db == nil {
		return errors.New("profiles repository is not initialized")
	}

	tx := r.db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("telegram_id = ?", telegramID).
		Update(column, value)
	if tx.Error != nil {
		return domain.Persistence(fmt.Errorf("update profile %s: %w", column, tx.Error))
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Count returns the number of stored profiles; used by the health endpoint.
func (r *Profiles) Count(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("profiles repository is not initialized")
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Profile{}).Count(&count).Error; err != nil {
		return 0, domain.Persistence(fmt.Errorf("count profiles: %w", err))
	}

	return count, nil
}
