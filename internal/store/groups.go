package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nexus_bot/internal/domain"
)

// Groups persists and retrieves group records.
type Groups struct {
	db *gorm.DB
}

// NewGroups constructs a Groups repository over the shared handle.
func NewGroups(db *gorm.DB) *Groups {
	return &Groups{db: db}
}

// GetOrCreate resolves the group for the Telegram chat ID, creating it when
// absent. The creating caller becomes the implicit owner. A duplicate-key
// violation from a racing create is resolved by re-fetching the winner.
func (r *Groups) GetOrCreate(ctx context.Context, telegramID int64, title string, kind domain.ChatKind, ownerID int64) (*domain.Group, bool, error) {
	if r == nil || r.db == nil {
		return nil, false, errors.New("groups repository is not initialized")
	}
	if telegramID == 0 {
		return nil, false, errors.New("telegram chat id is required")
	}

	group, err := r.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return group, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	if title == "" {
		title = fmt.Sprintf("Group_%d", telegramID)
	}
	if kind == "" {
		kind = domain.KindPrivate
	}

	fresh := domain.Group{
		TelegramID: telegramID,
		Title:      title,
		Kind:       kind,
		OwnerID:    ownerID,
	}

	if err := r.db.WithContext(ctx).Create(&fresh).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, fetchErr := r.GetByTelegramID(ctx, telegramID)
			if fetchErr != nil {
				return nil, false, fetchErr
			}
			return existing, false, nil
		}
		return nil, false, domain.Persistence(fmt.Errorf("create group: %w", err))
	}

	return &fresh, true, nil
}

// GetByTelegramID fetches a group by its Telegram chat ID.
func (r *Groups) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Group, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("groups repository is not initialized")
	}

	var group domain.Group
	err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, domain.Persistence(fmt.Errorf("find group: %w", err))
	}

	return &group, nil
}

// SetDescription stores the group description.
func (r *Groups) SetDescription(ctx context.Context, telegramID int64, description string) error {
	if r == nil || r.db == nil {
		return errors.New("groups repository is not initialized")
	}

	tx := r.db.WithContext(ctx).
		Model(&domain.Group{}).
		Where("telegram_id = ?", telegramID).
		Update("description", description)
	if tx.Error != nil {
		return domain.Persistence(fmt.Errorf("update group description: %w", tx.Error))
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Members returns the profiles holding a membership in the group.
func (r *Groups) Members(ctx context.Context, groupTelegramID int64) ([]domain.Profile, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("groups repository is not initialized")
	}

	var members []domain.Profile
	err := r.db.WithContext(ctx).
		Joins("JOIN memberships ON memberships.profile_id = profiles.telegram_id").
		Where("memberships.group_id = ?", groupTelegramID).
		Order("memberships.joined_at").
		Find(&members).Error
	if err != nil {
		return nil, domain.Persistence(fmt.Errorf("list group members: %w", err))
	}

	return members, nil
}

// Count returns the number of stored groups; used by the health endpoint.
func (r *Groups) Count(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("groups repository is not initialized")
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Group{}).Count(&count).Error; err != nil {
		return 0, domain.Persistence(fmt.Errorf("count groups: %w", err))
	}

	return count, nil
}
