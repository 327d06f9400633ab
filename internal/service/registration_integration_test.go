package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/repository"
	"github.com/sefazor/eventreg-backend/internal/testutil"
	"github.com/sefazor/eventreg-backend/pkg/database"
	"github.com/sefazor/eventreg-backend/pkg/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("eventreg"),
		tcpostgres.WithUsername("eventreg"),
		tcpostgres.WithPassword("eventreg"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.NewDatabase(dsn, database.Options{MaxOpenConns: 20, MaxIdleConns: 5, LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresConcurrentRegistration(t *testing.T) {
	const (
		attempts = 40
		slots    = 7
	)

	db := setupPostgres(t)
	ctx := context.Background()

	registrations := NewRegistrationService(
		db,
		repository.NewEventRepository(db),
		repository.NewRegistrationRepository(db),
		qrcode.NewQRService("", 0),
		nil,
		zap.NewNop(),
	)

	admin := testutil.CreateUser(t, db, models.RoleAdmin, "secret123")
	event := testutil.CreateEvent(t, db, admin, slots)

	users := make([]*models.User, attempts)
	for i := range users {
		users[i] = testutil.CreateUser(t, db, models.RoleUser, "secret123")
	}

	var succeeded, full atomic.Int32
	var g errgroup.Group
	for _, user := range users {
		g.Go(func() error {
			_, err := registrations.Register(ctx, event.ID, user)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrEventFull):
				full.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(slots), succeeded.Load())
	assert.Equal(t, int32(attempts-slots), full.Load())

	var stored models.Event
	require.NoError(t, db.First(&stored, event.ID).Error)
	assert.Equal(t, 0, stored.Slots)

	var tickets int64
	require.NoError(t, db.Model(&models.Registration{}).Where("event_id = ?", event.ID).
		Distinct("ticket_code").Count(&tickets).Error)
	assert.Equal(t, int64(slots), tickets)
}

func TestPostgresDuplicateRegistrationRace(t *testing.T) {
	const attempts = 10

	db := setupPostgres(t)
	ctx := context.Background()

	registrations := NewRegistrationService(
		db,
		repository.NewEventRepository(db),
		repository.NewRegistrationRepository(db),
		qrcode.NewQRService("", 0),
		nil,
		zap.NewNop(),
	)

	admin := testutil.CreateUser(t, db, models.RoleAdmin, "secret123")
	user := testutil.CreateUser(t, db, models.RoleUser, "secret123")
	event := testutil.CreateEvent(t, db, admin, 100)

	var succeeded atomic.Int32
	var g errgroup.Group
	for range attempts {
		g.Go(func() error {
			_, err := registrations.Register(ctx, event.ID, user)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ErrAlreadyRegistered):
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded.Load())

	var stored models.Event
	require.NoError(t, db.First(&stored, event.ID).Error)
	assert.Equal(t, 99, stored.Slots)
}
