// Package config loads runtime configuration from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Env      string
	LogLevel string
	Version  string

	HTTP     HTTPConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Site     SiteConfig
	Uploads  UploadConfig
	Admin    AdminConfig
	Worker   WorkerConfig
}

// HTTPConfig holds HTTP server related options.
type HTTPConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// SMTPConfig holds outgoing mail settings.
type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	FromName  string
	FromEmail string
}

// SiteConfig holds public URLs used inside e-mails.
type SiteConfig struct {
	SiteURL string
	APIURL  string
}

// UploadConfig holds file storage settings.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// AdminConfig holds the back-office credential and token settings.
type AdminConfig struct {
	Username     string
	PasswordHash string
	Password     string
	JWTSecret    string
	JWTTTL       time.Duration

	// EphemeralSecret is set when development mode generated JWTSecret.
	// Tokens then stop validating on restart.
	EphemeralSecret bool
}

// WorkerConfig holds background job settings.
type WorkerConfig struct {
	RelayInServer      bool
	OutboxPollInterval time.Duration
	LedgerSweepCron    string
	OutboxPruneCron    string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		// a missing .env is fine when the environment is set directly
		_ = godotenv.Load()
	}

	siteURL := getEnv("NEXT_PUBLIC_SITE_URL", "http://localhost:3000")

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Version:  getEnv("APP_VERSION", "dev"),
		HTTP: HTTPConfig{
			Port:           getEnv("HTTP_PORT", "8080"),
			ReadTimeout:    getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", siteURL)),
		},
		Database: DatabaseConfig{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getEnv("DB_NAME", "confhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25)),
		},
		SMTP: SMTPConfig{
			Host:      os.Getenv("SMTP_HOST"),
			Port:      getEnvInt("SMTP_PORT", 587),
			User:      os.Getenv("SMTP_USER"),
			Password:  os.Getenv("SMTP_PASSWORD"),
			FromName:  getEnv("SMTP_FROM_NAME", "Conference Secretariat"),
			FromEmail: os.Getenv("SMTP_FROM_EMAIL"),
		},
		Site: SiteConfig{
			SiteURL: siteURL,
			APIURL:  getEnv("NEXT_PUBLIC_API_URL", "http://localhost:8080"),
		},
		Uploads: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", "public/uploads"),
			MaxBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			Password:     os.Getenv("ADMIN_PASSWORD"),
			JWTSecret:    os.Getenv("JWT_SECRET"),
			JWTTTL:       getEnvDuration("JWT_TTL", 12*time.Hour),
		},
		Worker: WorkerConfig{
			RelayInServer:      getEnvBool("MAIL_RELAY_IN_SERVER", true),
			OutboxPollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", 5*time.Second),
			LedgerSweepCron:    getEnv("LEDGER_SWEEP_CRON", "0 2 * * *"),
			OutboxPruneCron:    getEnv("OUTBOX_PRUNE_CRON", "30 3 * * *"),
		},
	}

	if cfg.SMTP.FromEmail == "" {
		cfg.SMTP.FromEmail = cfg.SMTP.User
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.HTTP.Port == "" {
		return errors.New("HTTP_PORT must not be empty")
	}

	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
		return errors.New("DB_HOST and DB_NAME (or DATABASE_URL) must be provided")
	}

	if c.Admin.Username == "" {
		return errors.New("ADMIN_USERNAME must not be empty")
	}
	if c.Admin.PasswordHash == "" && c.Admin.Password == "" {
		return errors.New("ADMIN_PASSWORD_HASH or ADMIN_PASSWORD must be provided")
	}

	if c.Admin.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET must be provided")
		}
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("generate development JWT secret: %w", err)
		}
		c.Admin.JWTSecret = secret
		c.Admin.EphemeralSecret = true
	}

	if c.Uploads.Dir == "" {
		return errors.New("UPLOAD_DIR must not be empty")
	}
	if c.Uploads.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}

	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// SMTPEnabled reports whether real mail delivery is configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.User != ""
}

// DSN returns the pgx connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
