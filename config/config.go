// Package config loads the whole application configuration in one place.
//
// Values come from environment variables; a .env file in the working
// directory is loaded first when present, which keeps local development
// simple while production relies on the real environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every configuration value, grouped by concern.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Seed     SeedConfig
	CORS     CORSConfig
	Email    EmailConfig
	Log      LogConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string // e.g. ./data/blooddonor.db
}

// JWTConfig holds token settings.
type JWTConfig struct {
	// Secret signs and verifies every token. Empty means main generates a
	// random key at start, so tokens do not survive a restart.
	Secret string
	// ExpirationMs is the token TTL in milliseconds.
	ExpirationMs int64
}

// TTL returns ExpirationMs as a duration.
func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpirationMs) * time.Millisecond
}

// AuthConfig holds request authentication settings.
type AuthConfig struct {
	// PublicRoutes are path substrings that skip token processing.
	PublicRoutes []string
	// StoreTimeout bounds the principal lookup done for every request.
	StoreTimeout time.Duration
	// LoginMaxAttempts per LoginWindow per client IP.
	LoginMaxAttempts int
	LoginWindow      time.Duration
	// TrustedProxies (IPs or CIDRs) may set X-Forwarded-For / X-Real-IP.
	// Empty means the connection's remote host is the client IP.
	TrustedProxies []string
	// AllowRoleSelection lets public registration pick its own role.
	// Off, every registered account is ROLE_USER.
	AllowRoleSelection bool
}

// SeedConfig controls the sample data inserted at start.
type SeedConfig struct {
	Enabled bool
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
}

// EmailConfig configures blood request alert mails. All three values must be
// set for alerts to be sent.
type EmailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AlertEmail   string
}

// Enabled reports whether alert mails can be sent.
func (c EmailConfig) Enabled() bool {
	return c.ResendAPIKey != "" && c.FromEmail != "" && c.AlertEmail != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// DefaultPublicRoutes are the registration/login, ping and health endpoints.
var DefaultPublicRoutes = []string{"/api/auth/", "/api/test/ping", "/api/health"}

// Load builds a Config from the environment.
func Load() (*Config, error) {
	// Missing .env is fine; production sets real variables.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	expirationMs, err := strconv.ParseInt(getEnv("JWT_EXPIRATION_MS", "86400000"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MS: %w", err)
	}
	if expirationMs <= 0 {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MS: must be positive, got %d", expirationMs)
	}

	storeTimeoutMs, err := strconv.Atoi(getEnv("AUTH_STORE_TIMEOUT_MS", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_STORE_TIMEOUT_MS: %w", err)
	}
	if storeTimeoutMs <= 0 {
		return nil, fmt.Errorf("invalid AUTH_STORE_TIMEOUT_MS: must be positive, got %d", storeTimeoutMs)
	}

	loginMax, err := strconv.Atoi(getEnv("LOGIN_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_MAX_ATTEMPTS: %w", err)
	}

	loginWindow, err := strconv.Atoi(getEnv("LOGIN_WINDOW_SECONDS", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_WINDOW_SECONDS: %w", err)
	}

	allowRoles, err := strconv.ParseBool(getEnv("AUTH_ALLOW_ROLE_SELECTION", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_ALLOW_ROLE_SELECTION: %w", err)
	}

	seed, err := strconv.ParseBool(getEnv("SEED_DATA", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_DATA: %w", err)
	}

	publicRoutes := DefaultPublicRoutes
	if v, ok := os.LookupEnv("PUBLIC_ROUTES"); ok {
		publicRoutes = splitList(v)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/blooddonor.db"),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", ""),
			ExpirationMs: expirationMs,
		},
		Auth: AuthConfig{
			PublicRoutes:     publicRoutes,
			StoreTimeout:     time.Duration(storeTimeoutMs) * time.Millisecond,
			LoginMaxAttempts: loginMax,
			LoginWindow:      time.Duration(loginWindow) * time.Second,
			TrustedProxies:   splitList(getEnv("TRUSTED_PROXIES", "")),

			AllowRoleSelection: allowRoles,
		},
		Seed: SeedConfig{Enabled: seed},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			FromEmail:    getEnv("RESEND_FROM", ""),
			AlertEmail:   getEnv("ALERT_EMAIL", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

// Addr returns the listen address, e.g. "0.0.0.0:8080".
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// splitList splits a comma separated value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
