package store

import (
	"context"
	"path/filepath"
	"testing"

	"nexus_bot/internal/config"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	cfg := config.Config{DatabasePath: filepath.Join(t.TempDir(), "test.sqlite")}

	manager, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	if err := manager.Migrate(); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	t.Cleanup(func() {
		_ = manager.Close()
	})

	return manager
}

func TestManagerPing(t *testing.T) {
	manager := newTestManager(t)

	if err := manager.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

func TestManagerMigrateIsIdempotent(t *testing.T) {
	manager := newTestManager(t)

	if err := manager.Migrate(); err != nil {
		t.Fatalf("second Migrate returned error: %v", err)
	}
}
