package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRegisterIssuesTicket(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "secret123")
	user := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	event := testutil.CreateEvent(t, s.db, admin, 3)

	registration, err := s.registrations.Register(ctx, event.ID, user)
	require.NoError(t, err)

	parsed, err := uuid.Parse(registration.TicketCode)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Equal(t, user.ID, registration.UserID)
	assert.Equal(t, event.ID, registration.EventID)

	stored, err := s.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Slots)
}

func TestRegisterLastSlot(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "secret123")
	alice := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	bob := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	event := testutil.CreateEvent(t, s.db, admin, 1)

	_, err := s.registrations.Register(ctx, event.ID, alice)
	require.NoError(t, err)

	_, err = s.registrations.Register(ctx, event.ID, bob)
	assert.ErrorIs(t, err, ErrEventFull)

	stored, err := s.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Slots)

	codes, err := s.registrations.registrationRepo.TicketCodesByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, codes, 1)
}

func TestRegisterFullEventCreatesNothing(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "secret123")
	user := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	event := testutil.CreateEvent(t, s.db, admin, 0)

	_, err := s.registrations.Register(ctx, event.ID, user)
	assert.ErrorIs(t, err, ErrEventFull)

	registrations, err := s.registrations.ListUserRegistrations(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, registrations)
}

func TestRegisterTwice(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "secret123")
	user := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	event := testutil.CreateEvent(t, s.db, admin, 5)

	_, err := s.registrations.Register(ctx, event.ID, user)
	require.NoError(t, err)

	_, err = s.registrations.Register(ctx, event.ID, user)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	stored, err := s.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Slots)
}

func TestRegisterUnknownEvent(t *testing.T) {
	s := newServices(t)
	user := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")

	_, err := s.registrations.Register(context.Background(), 404, user)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestRegisterConcurrentOversubscription(t *testing.T) {
	const (
		attempts = 12
		slots    = 4
	)

	s := newServices(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "secret123")
	event := testutil.CreateEvent(t, s.db, admin, slots)

	users := make([]*models.User, attempts)
	for i := range users {
		users[i] = testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	}

	var succeeded, full atomic.Int32
	tickets := make([]string, attempts)

	var g errgroup.Group
	for i, user := range users {
		g.Go(func() error {
			registration, err := s.registrations.Register(ctx, event.ID, user)
			switch {
			case err == nil:
				succeeded.Add(1)
				tickets[i] = registration.TicketCode
				return nil
			case errors.Is(err, ErrEventFull):
				full.Add(1)
				return nil
			default:
				return err
			}
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(slots), succeeded.Load())
	assert.Equal(t, int32(attempts-slots), full.Load())

	stored, err := s.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Slots)

	seen := map[string]bool{}
	for _, ticket := range tickets {
		if ticket == "" {
			continue
		}
		assert.False(t, seen[ticket], "duplicate ticket %s", ticket)
		seen[ticket] = true
	}
	assert.Len(t, seen, slots)
}

func TestListUserRegistrations(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "secret123")
	user := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	other := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	first := testutil.CreateEvent(t, s.db, admin, 5)
	second := testutil.CreateEvent(t, s.db, admin, 5)

	_, err := s.registrations.Register(ctx, first.ID, user)
	require.NoError(t, err)
	_, err = s.registrations.Register(ctx, second.ID, user)
	require.NoError(t, err)
	_, err = s.registrations.Register(ctx, first.ID, other)
	require.NoError(t, err)

	registrations, err := s.registrations.ListUserRegistrations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, registrations, 2)
	assert.Equal(t, first.ID, registrations[0].EventID)
	assert.Equal(t, second.ID, registrations[1].EventID)
}

func TestVerifyTicket(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "secret123")
	user := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	event := testutil.CreateEvent(t, s.db, admin, 5)

	registration, err := s.registrations.Register(ctx, event.ID, user)
	require.NoError(t, err)

	found, err := s.registrations.VerifyTicket(ctx, registration.TicketCode)
	require.NoError(t, err)
	assert.Equal(t, registration.ID, found.ID)

	_, err = s.registrations.VerifyTicket(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrTicketNotFound)

	_, err = s.registrations.VerifyTicket(ctx, "not-a-ticket")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestTicketQRCodeAccess(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, s.db, models.RoleAdmin, "secret123")
	owner := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	stranger := testutil.CreateUser(t, s.db, models.RoleUser, "secret123")
	event := testutil.CreateEvent(t, s.db, admin, 5)

	registration, err := s.registrations.Register(ctx, event.ID, owner)
	require.NoError(t, err)

	png, err := s.registrations.TicketQRCode(ctx, registration.TicketCode, owner.ID, owner.Role)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	_, err = s.registrations.TicketQRCode(ctx, registration.TicketCode, admin.ID, admin.Role)
	assert.NoError(t, err)

	_, err = s.registrations.TicketQRCode(ctx, registration.TicketCode, stranger.ID, stranger.Role)
	assert.ErrorIs(t, err, ErrForbidden)
}
