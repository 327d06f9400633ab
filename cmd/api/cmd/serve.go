package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serverPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

The server loads configuration from the environment, migrates the schema,
bootstraps an admin account when ADMIN_EMAIL and ADMIN_PASSWORD are set and
shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverPort, "port", "", "listen port (default: $PORT or 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverPort != "" {
		cfg.Server.Port = serverPort
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := buildApplication(ctx, cfg, db, logger)
	if err != nil {
		return err
	}

	if cfg.AdminBootstrapEnabled() {
		bootstrapCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_, created, err := application.auth.EnsureAdmin(bootstrapCtx, models.RegisterRequest{
			Name:     cfg.AdminBootstrap.Name,
			Email:    cfg.AdminBootstrap.Email,
			Password: cfg.AdminBootstrap.Password,
		})
		cancel()
		if err != nil {
			logger.Error("admin bootstrap failed", zap.Error(err))
		} else {
			logger.Info("admin bootstrap complete", zap.String("email", cfg.AdminBootstrap.Email), zap.Bool("created", created))
		}
	}

	addr := ":" + cfg.Server.Port
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", addr))
		return application.app.Listen(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return application.app.ShutdownWithTimeout(shutdownTimeout)
	})

	err = g.Wait()
	drainDeliveries(application.delivery, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// drainDeliveries waits for in-flight ticket deliveries after the listener
// has stopped accepting requests.
func drainDeliveries(delivery *service.TicketDelivery, logger *zap.Logger) {
	if delivery == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := delivery.Wait(ctx); err != nil {
		logger.Warn("ticket deliveries still running at exit", zap.Error(err))
	}
}
