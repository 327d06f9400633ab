package cmd

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/eventreg-backend/internal/config"
	"github.com/sefazor/eventreg-backend/internal/handler"
	"github.com/sefazor/eventreg-backend/internal/middleware"
	"github.com/sefazor/eventreg-backend/internal/repository"
	"github.com/sefazor/eventreg-backend/internal/router"
	"github.com/sefazor/eventreg-backend/internal/service"
	"github.com/sefazor/eventreg-backend/pkg/database"
	"github.com/sefazor/eventreg-backend/pkg/email"
	jwtPkg "github.com/sefazor/eventreg-backend/pkg/jwt"
	"github.com/sefazor/eventreg-backend/pkg/qrcode"
	"github.com/sefazor/eventreg-backend/pkg/storage"
	"github.com/sefazor/eventreg-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type application struct {
	app      *fiber.App
	auth     *service.AuthService
	delivery *service.TicketDelivery
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewDatabase(cfg.Database.URL, database.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

func newAuthService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *service.AuthService {
	tokens := jwtPkg.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)
	return service.NewAuthService(db, repository.NewUserRepository(db), tokens, utils.NewValidator(), logger)
}

func buildApplication(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*application, error) {
	validator := utils.NewValidator()
	tokens := jwtPkg.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	qr := qrcode.NewQRService(cfg.Ticket.BaseURL, cfg.Ticket.QRSize)
	delivery, err := newTicketDelivery(ctx, cfg, qr, logger)
	if err != nil {
		return nil, err
	}

	// Services
	authService := service.NewAuthService(db, userRepo, tokens, validator, logger)
	eventService := service.NewEventService(db, eventRepo, registrationRepo, announcementRepo, delivery, validator, logger)
	registrationService := service.NewRegistrationService(db, eventRepo, registrationRepo, qr, delivery, logger)
	announcementService := service.NewAnnouncementService(db, eventRepo, announcementRepo, validator, logger)

	app := router.New(cfg, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Event:        handler.NewEventHandler(eventService),
		Registration: handler.NewRegistrationHandler(registrationService),
		Announcement: handler.NewAnnouncementHandler(announcementService),
		Health:       handler.NewHealthHandler(db),
	}, middleware.AuthMiddleware(tokens, authService), logger)

	return &application{app: app, auth: authService, delivery: delivery}, nil
}

// newTicketDelivery returns nil when neither e-mail nor storage is configured.
func newTicketDelivery(ctx context.Context, cfg *config.Config, qr *qrcode.QRService, logger *zap.Logger) (*service.TicketDelivery, error) {
	var (
		mailer  service.TicketMailer
		archive storage.StorageService
	)

	if cfg.EmailEnabled() {
		mailer = email.NewEmailService(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, logger)
		logger.Info("ticket e-mails enabled", zap.String("from", cfg.Email.FromAddress))
	}
	if cfg.StorageEnabled() {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.R2)
		if err != nil {
			return nil, fmt.Errorf("ticket storage: %w", err)
		}
		archive = s3Storage
		logger.Info("ticket QR archive enabled", zap.String("bucket", cfg.R2.Bucket), zap.Bool("public", cfg.R2.PublicURL != ""))
	}

	if mailer == nil && archive == nil {
		return nil, nil
	}
	return service.NewTicketDelivery(qr, mailer, archive, cfg.Ticket.DeliveryTimeout, logger), nil
}
