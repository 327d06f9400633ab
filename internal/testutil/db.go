// Package testutil wires throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/pkg/bcrypt"
	"github.com/sefazor/eventreg-backend/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to t. A single
// connection serializes transactions the way row locks would in Postgres.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()[:8]
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", name)

	db, err := database.NewDatabase(dsn, database.Options{
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the given role and password.
func CreateUser(t testing.TB, db *gorm.DB, role models.Role, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.HashPasswordWithCost(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Name:     gofakeit.Name(),
		Email:    uuid.NewString()[:8] + "." + gofakeit.Email(),
		Password: hash,
		Role:     role,
	}
	if err := db.WithContext(context.Background()).Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// CreateEvent inserts an event owned by creator.
func CreateEvent(t testing.TB, db *gorm.DB, creator *models.User, slots int) *models.Event {
	t.Helper()

	event := &models.Event{
		Title:       gofakeit.LoremIpsumSentence(4),
		Description: gofakeit.LoremIpsumSentence(12),
		Slots:       slots,
		CreatedBy:   creator.ID,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}
