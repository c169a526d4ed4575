// Package store encapsulates database access: the gorm/sqlite manager and the
// repositories built on top of it.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"nexus_bot/internal/config"
	"nexus_bot/internal/domain"
)

// ErrNotFound is returned by lookups when no record matches. It is not a
// persistence-category failure; callers handle it as a normal outcome.
var ErrNotFound = errors.New("record not found")

// openDB is overridable for tests.
var openDB = func(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// Manager owns the database handle shared by all repositories.
type Manager struct {
	db *gorm.DB
}

// NewManager opens the sqlite database referenced by the configuration.
// TranslateError is enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func NewManager(cfg config.Config) (*Manager, error) {
	db, err := openDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", cfg.DatabasePath, err)
	}

	return &Manager{db: db}, nil
}

// Migrate creates or updates the schema for every persistent model.
func (m *Manager) Migrate() error {
	if m == nil || m.db == nil {
		return errors.New("store manager is not initialized")
	}

	if err := m.db.AutoMigrate(
		&domain.Profile{},
		&domain.Group{},
		&domain.Membership{},
		&domain.LogSettings{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	return nil
}

// DB returns the underlying gorm handle.
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Ping verifies database connectivity; used by the health endpoint.
func (m *Manager) Ping(ctx context.Context) error {
	if m == nil || m.db == nil {
		return errors.New("store manager is not initialized")
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql handle: %w", err)
	}

	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (m *Manager) Close() error {
	if m == nil || m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql handle: %w", err)
	}

	return sqlDB.Close()
}
