package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/service"
	jwtPkg "github.com/sefazor/eventreg-backend/pkg/jwt"
)

const (
	localUser = "user"
	localRole = "role"
)

// UserLookup loads the account a token was issued to.
type UserLookup interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware accepts "Authorization: Bearer <token>" and stores the
// account and the token role in the request locals.
func AuthMiddleware(tokens *jwtPkg.Manager, users UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := jwtPkg.TokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return unauthorized(c, "Not authenticated")
		}

		claims, err := tokens.ValidateToken(token)
		if err != nil {
			return unauthorized(c, "Invalid token")
		}

		userID, err := claims.UserID()
		if err != nil {
			return unauthorized(c, "Invalid token")
		}

		user, err := users.GetUser(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				return unauthorized(c, "User not found")
			}
			return err
		}

		c.Locals(localUser, user)
		c.Locals(localRole, models.NormalizeRole(claims.Role))
		return c.Next()
	}
}

// RequireRole rejects callers whose token role is not role. It must run after
// AuthMiddleware.
func RequireRole(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentRole(c) != role {
			return c.Status(fiber.StatusForbidden).JSON(models.ErrorResponse("Not enough permissions"))
		}
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

func CurrentRole(c *fiber.Ctx) models.Role {
	role, _ := c.Locals(localRole).(models.Role)
	return role
}

func unauthorized(c *fiber.Ctx, detail string) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse(detail))
}
