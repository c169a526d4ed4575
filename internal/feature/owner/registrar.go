// Package owner provides startup helpers for ensuring the configured bot
// owner profile exists with the admin role.
package owner

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"nexus_bot/internal/domain"
	"nexus_bot/internal/logging"
	"nexus_bot/internal/store"
)

type profileStore interface {
	GetOrCreate(ctx context.Context, telegramID int64, attrs store.ProfileAttrs) (*domain.Profile, bool, error)
	SetRole(ctx context.Context, telegramID int64, role domain.Role) error
}

// Registrar bootstraps the configured bot owner profile.
type Registrar struct {
	profiles profileStore
	logger   *logrus.Entry
}

// NewRegistrar constructs a Registrar for the provided profile store.
func NewRegistrar(profiles profileStore, logger *logrus.Entry) *Registrar {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Registrar{
		profiles: profiles,
		logger:   logger,
	}
}

// EnsureOwner resolves the owner profile, creating it when absent, and
// promotes it to admin when it holds a lower role. Profiles already at admin
// are left untouched; the bootstrap never demotes anyone.
func (r *Registrar) EnsureOwner(ctx context.Context, ownerID int64) error {
	if r == nil || r.profiles == nil {
		return errors.New("owner registrar is not initialized")
	}
	if ownerID == 0 {
		return errors.New("owner id is required")
	}

	profile, created, err := r.profiles.GetOrCreate(ctx, ownerID, store.ProfileAttrs{FirstName: "Owner"})
	if err != nil {
		return fmt.Errorf("ensure owner profile: %w", err)
	}

	promoted := false
	if profile.Role < domain.RoleAdmin {
		if err := r.profiles.SetRole(ctx, ownerID, domain.RoleAdmin); err != nil {
			return fmt.Errorf("promote owner: %w", err)
		}
		promoted = true
	}

	r.logger.WithFields(logging.Fields{
		"event":    "owner_bootstrap",
		"owner_id": ownerID,
		"created":  created,
		"promoted": promoted,
	}).Info("ensured bot owner")

	return nil
}
