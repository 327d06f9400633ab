package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/spf13/cobra"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing one",
	Long: `Create an admin account, or promote the account registered with --email.
The password of an existing account is not changed.

Example:
  eventreg create-admin --email root@example.com --password changeme`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreateAdmin(cmd)
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name for a new account")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin e-mail (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password for a new account (required)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
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

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	admin, created, err := newAuthService(cfg, db, logger).EnsureAdmin(ctx, models.RegisterRequest{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
	})
	if err != nil {
		return err
	}

	action := "ensured"
	if created {
		action = "created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s: id=%d email=%s\n", action, admin.ID, admin.Email)
	return nil
}
