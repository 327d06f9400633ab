package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sefazor/eventreg-backend/internal/config"
	"github.com/sefazor/eventreg-backend/internal/handler"
	"github.com/sefazor/eventreg-backend/internal/metrics"
	"github.com/sefazor/eventreg-backend/internal/middleware"
	"github.com/sefazor/eventreg-backend/internal/models"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Event        *handler.EventHandler
	Registration *handler.RegistrationHandler
	Announcement *handler.AnnouncementHandler
	Health       *handler.HealthHandler
}

// New builds the HTTP application. authenticate must resolve the bearer token
// into the request locals (see middleware.AuthMiddleware).
func New(cfg *config.Config, h Handlers, authenticate fiber.Handler, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "eventreg",
		BodyLimit:             cfg.Server.BodyLimit,
		ErrorHandler:          handler.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))
	app.Use(fiberLogger.New())
	app.Use(metrics.Middleware())
	if cfg.RateLimit.Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit.Max,
			Expiration: cfg.RateLimit.Expiration,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse("Too many requests"))
			},
		}))
	}

	admin := middleware.RequireRole(models.RoleAdmin)

	app.Get("/healthz", h.Health.Health)
	app.Get("/metrics", metrics.Handler())

	// Accounts
	app.Post("/register", h.Auth.Register)
	app.Post("/login", h.Auth.Login)
	app.Get("/me", authenticate, h.Auth.Me)

	// Events
	app.Get("/events", h.Event.ListEvents)
	app.Get("/events/:id", h.Event.GetEvent)
	app.Post("/create-event", authenticate, admin, h.Event.CreateEvent)
	app.Put("/update-event/:id", authenticate, admin, h.Event.UpdateEvent)
	app.Delete("/delete-event/:id", authenticate, admin, h.Event.DeleteEvent)

	// Registrations and tickets
	app.Post("/register-event/:id", authenticate, h.Registration.RegisterForEvent)
	app.Get("/my-registrations", authenticate, h.Registration.MyRegistrations)
	app.Get("/tickets/:code", authenticate, admin, h.Registration.VerifyTicket)
	app.Get("/tickets/:code/qr", authenticate, h.Registration.TicketQRCode)

	// Announcements
	app.Post("/events/:id/announcements", authenticate, admin, h.Announcement.CreateAnnouncement)
	app.Get("/events/:id/announcements", h.Announcement.ListAnnouncements)

	return app
}
