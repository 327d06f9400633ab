package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type ServerConfig struct {
	Port           string
	AllowedOrigins string
	BodyLimit      int
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	JWTExpiry time.Duration
}

// AdminBootstrapConfig creates or promotes an admin account at startup when
// both Email and Password are set.
type AdminBootstrapConfig struct {
	Name     string
	Email    string
	Password string
}

type RateLimitConfig struct {
	Max        int
	Expiration time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

type EmailConfig struct {
	ResendAPIKey string
	FromAddress  string
	FromName     string
}

// R2Config points at an S3 compatible bucket used to archive ticket QR codes.
type R2Config struct {
	AccountID       string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	// PublicURL serves archived QR codes to ticket holders. Without it the
	// ticket e-mail carries no QR link.
	PublicURL string
}

type TicketConfig struct {
	BaseURL         string
	QRSize          int
	DeliveryTimeout time.Duration
}

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Auth           AuthConfig
	AdminBootstrap AdminBootstrapConfig
	RateLimit      RateLimitConfig
	Logging        LoggingConfig
	Email          EmailConfig
	R2             R2Config
	Ticket         TicketConfig
	Environment    string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.Server.Port = getEnv("PORT", "8080")
	cfg.Server.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	cfg.Server.BodyLimit = getEnvInt("BODY_LIMIT_BYTES", 1024*1024)

	cfg.Database.URL = getEnv("DATABASE_URL", "")
	cfg.Database.MaxOpenConns = getEnvInt("DATABASE_MAX_CONNECTIONS", 25)
	cfg.Database.MaxIdleConns = getEnvInt("DATABASE_MAX_IDLE_CONNECTIONS", 5)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.Auth.JWTIssuer = getEnv("JWT_ISSUER", "eventreg")
	cfg.Auth.JWTExpiry = time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 7*24)) * time.Hour

	cfg.AdminBootstrap.Name = getEnv("ADMIN_NAME", "Administrator")
	cfg.AdminBootstrap.Email = getEnv("ADMIN_EMAIL", "")
	cfg.AdminBootstrap.Password = getEnv("ADMIN_PASSWORD", "")

	cfg.RateLimit.Max = getEnvInt("RATE_LIMIT_PER_MINUTE", 60)
	cfg.RateLimit.Expiration = time.Minute

	cfg.Logging.Level = getEnv("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnv("LOG_FORMAT", "json")

	cfg.Email.ResendAPIKey = getEnv("RESEND_API_KEY", "")
	cfg.Email.FromAddress = getEnv("EMAIL_FROM_ADDRESS", "")
	cfg.Email.FromName = getEnv("EMAIL_FROM_NAME", "Event Registration")

	cfg.R2.AccountID = getEnv("R2_ACCOUNT_ID", "")
	cfg.R2.Endpoint = getEnv("R2_ENDPOINT", "")
	cfg.R2.AccessKeyID = getEnv("R2_ACCESS_KEY_ID", "")
	cfg.R2.SecretAccessKey = getEnv("R2_SECRET_ACCESS_KEY", "")
	cfg.R2.Bucket = getEnv("R2_BUCKET", "")
	cfg.R2.Region = getEnv("R2_REGION", "auto")
	cfg.R2.PublicURL = getEnv("R2_PUBLIC_URL", "")

	cfg.Ticket.BaseURL = getEnv("TICKET_BASE_URL", "http://localhost:8080/tickets/")
	cfg.Ticket.QRSize = getEnvInt("TICKET_QR_SIZE", 256)
	cfg.Ticket.DeliveryTimeout = time.Duration(getEnvInt("TICKET_DELIVERY_TIMEOUT_SECONDS", 30)) * time.Second

	cfg.Environment = getEnv("ENVIRONMENT", "development")

	if cfg.Ticket.DeliveryTimeout <= 0 {
		cfg.Ticket.DeliveryTimeout = 30 * time.Second
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Auth.JWTExpiry <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY_HOURS must be positive")
	}
	return cfg, nil
}

// EmailEnabled reports whether ticket e-mails can be sent.
func (c *Config) EmailEnabled() bool {
	return c.Email.ResendAPIKey != "" && c.Email.FromAddress != ""
}

// StorageEnabled reports whether ticket QR codes are archived to R2/S3.
func (c *Config) StorageEnabled() bool {
	return c.R2.Bucket != "" && c.R2.AccessKeyID != "" && c.R2.SecretAccessKey != "" &&
		(c.R2.AccountID != "" || c.R2.Endpoint != "")
}

func (c *Config) AdminBootstrapEnabled() bool {
	return c.AdminBootstrap.Email != "" && c.AdminBootstrap.Password != ""
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
