package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/repository"
	"github.com/sefazor/eventreg-backend/pkg/bcrypt"
	jwtPkg "github.com/sefazor/eventreg-backend/pkg/jwt"
	"github.com/sefazor/eventreg-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const TokenType = "bearer"

type AuthService struct {
	db        *gorm.DB
	userRepo  *repository.UserRepository
	tokens    *jwtPkg.Manager
	validator *utils.Validator
	logger    *zap.Logger
}

func NewAuthService(db *gorm.DB, userRepo *repository.UserRepository, tokens *jwtPkg.Manager, validator *utils.Validator, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:        db,
		userRepo:  userRepo,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
	}
}

// Register creates an ordinary user. The role is never taken from input.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: hashedPassword,
		Role:     models.RoleUser,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		exists, err := users.EmailExists(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return ErrEmailExists
		}

		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and returns a signed bearer token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	if !bcrypt.VerifyHash(user.Password) {
		s.logger.Error("stored password is not a bcrypt hash", zap.Uint("user_id", user.ID))
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		s.logger.Debug("login failed", zap.Uint("user_id", user.ID))
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("token generation failed: %w", err)
	}
	return token, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates an admin account, or promotes the existing account with
// that email. The password of an existing account is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, req models.RegisterRequest) (*models.User, bool, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, false, err
	}

	var (
		admin   *models.User
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		existing, err := users.GetByEmail(ctx, req.Email)
		switch {
		case err == nil:
			if !existing.IsAdmin() {
				if err := users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
					return fmt.Errorf("promote user: %w", err)
				}
				existing.Role = models.RoleAdmin
			}
			admin = existing
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load user: %w", err)
		}

		hashedPassword, err := bcrypt.HashPassword(req.Password)
		if err != nil {
			return err
		}
		admin = &models.User{
			Name:     strings.TrimSpace(req.Name),
			Email:    req.Email,
			Password: hashedPassword,
			Role:     models.RoleAdmin,
		}
		if err := users.Create(ctx, admin); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailExists
			}
			return fmt.Errorf("create admin: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("admin ensured", zap.Uint("user_id", admin.ID), zap.Bool("created", created))
	return admin, created, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
