package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/service"
	jwtPkg "github.com/sefazor/eventreg-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[uint]*models.User

func (s stubUsers) GetUser(ctx context.Context, id uint) (*models.User, error) {
	if user, ok := s[id]; ok {
		return user, nil
	}
	return nil, service.ErrUserNotFound
}

func newTestApp(tokens *jwtPkg.Manager, users UserLookup) *fiber.App {
	app := fiber.New()
	app.Get("/me", AuthMiddleware(tokens, users), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).Email + ":" + string(CurrentRole(c)))
	})
	app.Get("/admin", AuthMiddleware(tokens, users), RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func request(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	tokens := jwtPkg.NewManager("secret", time.Hour, "eventreg")
	users := stubUsers{
		1: {ID: 1, Email: "user@example.com", Role: models.RoleUser},
		2: {ID: 2, Email: "admin@example.com", Role: models.RoleAdmin},
	}
	app := newTestApp(tokens, users)

	userToken, err := tokens.GenerateToken(1, "user")
	require.NoError(t, err)
	adminToken, err := tokens.GenerateToken(2, "admin")
	require.NoError(t, err)
	ghostToken, err := tokens.GenerateToken(3, "user")
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, request(t, app, "/me", userToken))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", ""))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", "garbage"))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/me", ghostToken))

	assert.Equal(t, fiber.StatusForbidden, request(t, app, "/admin", userToken))
	assert.Equal(t, fiber.StatusNoContent, request(t, app, "/admin", adminToken))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/admin", ""))
}

func TestRequireRoleTrustsTokenRole(t *testing.T) {
	tokens := jwtPkg.NewManager("secret", time.Hour, "eventreg")
	// Demoted after the token was issued.
	users := stubUsers{5: {ID: 5, Email: "former@example.com", Role: models.RoleUser}}
	app := newTestApp(tokens, users)

	token, err := tokens.GenerateToken(5, "admin")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, request(t, app, "/admin", token))
}

func TestAuthMiddlewareRejectsForeignSignature(t *testing.T) {
	tokens := jwtPkg.NewManager("secret", time.Hour, "eventreg")
	app := newTestApp(tokens, stubUsers{1: {ID: 1, Email: "user@example.com"}})

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtPkg.Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(1),
			Issuer:    "eventreg",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := forged.SignedString([]byte("not-the-secret"))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "/admin", signed))
}

type failingUsers struct{}

func (failingUsers) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return nil, errors.New("database unavailable")
}

func TestAuthMiddlewarePropagatesLookupFailure(t *testing.T) {
	tokens := jwtPkg.NewManager("secret", time.Hour, "eventreg")
	app := newTestApp(tokens, failingUsers{})

	token, err := tokens.GenerateToken(1, "user")
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, request(t, app, "/me", token))
}
