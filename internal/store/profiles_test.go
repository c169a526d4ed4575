package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"nexus_bot/internal/domain"
)

func TestProfilesGetOrCreate(t *testing.T) {
	manager := newTestManager(t)
	repo := NewProfiles(manager.DB())
	ctx := context.Background()

	attrs := ProfileAttrs{
		Username:     "jdoe",
		FirstName:    "John",
		LastName:     "Doe",
		LanguageCode: "en",
		IsPremium:    true,
	}

	profile, created, err := repo.GetOrCreate(ctx, 111, attrs)
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}
	if !created {
		t.Fatalf("expected first resolve to create the profile")
	}
	if profile.Role != domain.RoleSingle {
		t.Fatalf("expected default role single, got %s", profile.Role)
	}
	if profile.FirstName != "John" || profile.Username != "jdoe" {
		t.Fatalf("expected platform attributes to be stored, got %+v", profile)
	}

	again, created, err := repo.GetOrCreate(ctx, 111, ProfileAttrs{})
	if err != nil {
		t.Fatalf("second GetOrCreate returned error: %v", err)
	}
	if created {
		t.Fatalf("expected second resolve to reuse the record")
	}
	if again.ID != profile.ID {
		t.Fatalf("expected the same record, got ids %d and %d", profile.ID, again.ID)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one profile, got %d", count)
	}
}

func TestProfilesGetOrCreateFallbackName(t *testing.T) {
	manager := newTestManager(t)
	repo := NewProfiles(manager.DB())

	profile, _, err := repo.GetOrCreate(context.Background(), 222, ProfileAttrs{})
	if err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}

	if profile.FirstName != "User_222" {
		t.Fatalf("expected fallback first name, got %q", profile.FirstName)
	}
}

func TestProfilesFieldSetters(t *testing.T) {
	manager := newTestManager(t)
	repo := NewProfiles(manager.DB())
	ctx := context.Background()

	if _, _, err := repo.GetOrCreate(ctx, 333, ProfileAttrs{FirstName: "Eve"}); err != nil {
		t.Fatalf("GetOrCreate returned error: %v", err)
	}

	birthday := time.Date(1990, time.March, 21, 0, 0, 0, 0, time.UTC)
	if err := repo.SetBirthday(ctx, 333, birthday); err != nil {
		t.Fatalf("SetBirthday returned error: %v", err)
	}
	if err := repo.SetEmail(ctx, 333, "eve@example.com"); err != nil {
		t.Fatalf("SetEmail returned error: %v", err)
	}
	if err := repo.SetPhone(ctx, 333, "+123456789"); err != nil {
		t.Fatalf("SetPhone returned error: %v", err)
	}
	if err := repo.SetFullDisplayName(ctx, 333, "Eve the Admin"); err != nil {
		t.Fatalf("SetFullDisplayName returned error: %v", err)
	}
	if err := repo.SetRole(ctx, 333, domain.RoleAdmin); err != nil {
		t.Fatalf("SetRole returned error: %v", err)
	}

	profile, err := repo.GetByTelegramID(ctx, 333)
	if err != nil {
		t.Fatalf("GetByTelegramID returned error: %v", err)
	}

	if profile.Birthday == nil || !profile.Birthday.Equal(birthday) {
		t.Fatalf("expected birthday %v, got %v", birthday, profile.Birthday)
	}
	if profile.Email != "eve@example.com" {
		t.Fatalf("expected email to be stored, got %q", profile.Email)
	}
	if profile.Phone != "+123456789" {
		t.Fatalf("expected phone to be stored, got %q", profile.Phone)
	}
	if profile.FullDisplayName != "Eve the Admin" {
		t.Fatalf("expected display name to be stored, got %q", profile.FullDisplayName)
	}
	if profile.Role != domain.RoleAdmin {
		t.Fatalf("expected role admin, got %s", profile.Role)
	}
}

func TestProfilesSetterOnMissingProfile(t *testing.T) {
	manager := newTestManager(t)
	repo := NewProfiles(manager.DB())

	err := repo.SetEmail(context.Background(), 999, "ghost@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing profile, got %v", err)
	}
}

func TestProfilesGetByTelegramIDMissing(t *testing.T) {
	manager := newTestManager(t)
	repo := NewProfiles(manager.DB())

	_, err := repo.GetByTelegramID(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
