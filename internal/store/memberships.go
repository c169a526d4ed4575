package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nexus_bot/internal/domain"
)

// Memberships persists the profile-to-group relation.
type Memberships struct {
	db *gorm.DB
}

// NewMemberships constructs a Memberships repository over the shared handle.
func NewMemberships(db *gorm.DB) *Memberships {
	return &Memberships{db: db}
}

// IsMember reports whether the profile already belongs to the group.
func (r *Memberships) IsMember(ctx context.Context, profileID, groupID int64) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("memberships repository is not initialized")
	}

	var membership domain.Membership
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND group_id = ?", profileID, groupID).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, domain.Persistence(fmt.Errorf("check membership: %w", err))
	}

	return true, nil
}

// Add inserts the membership row and increments the group's participant
// counter in one transaction. A duplicate-key violation means a concurrent
// insert won the race: the caller is already a member, so it is reported as
// not-added with no error and the counter is left untouched.
func (r *Memberships) Add(ctx context.Context, profileID, groupID int64, isOwner bool) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("memberships repository is not initialized")
	}
	if profileID == 0 || groupID == 0 {
		return false, errors.New("profile id and group id are required")
	}

	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		membership := domain.Membership{
			ProfileID: profileID,
			GroupID:   groupID,
			IsOwner:   isOwner,
			JoinedAt:  time.Now().UTC(),
		}

		if err := tx.Create(&membership).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return domain.Persistence(fmt.Errorf("insert membership: %w", err))
		}

		added = true

		err := tx.Model(&domain.Group{}).
			Where("telegram_id = ?", groupID).
			UpdateColumn("participants_count", gorm.Expr("participants_count + 1")).Error
		if err != nil {
			return domain.Persistence(fmt.Errorf("increment participant count: %w", err))
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return added, nil
}
