// Package config reads process configuration from the environment.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strings"
	"time"

	"campus/internal/auth/session"
	"campus/pkg/platform/middleware/metadata"
)

// MinSigningKeyLength is enforced outside development.
const MinSigningKeyLength = 32

const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config holds everything main needs to wire the server.
type Config struct {
	Addr        string
	Environment string
	LogLevel    slog.Level

	JWTSigningKey string
	// GeneratedKey is set when no key was configured and a random one was made.
	GeneratedKey bool
	JWTIssuer    string
	SessionTTL   time.Duration

	SessionTransport  session.Mode
	SessionCookieName string

	DatabaseURL    string
	UIUpstreamURL  string
	TrustedProxies []netip.Prefix

	SeedAdminEmail    string
	SeedAdminPassword string

	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// Production reports whether production-grade guarantees apply.
func (c *Config) Production() bool {
	return c.Environment == EnvProduction || c.Environment == EnvStaging
}

var (
	ErrMissingSigningKey = errors.New("JWT_SIGNING_KEY is required outside development")
	ErrWeakSigningKey    = fmt.Errorf("JWT_SIGNING_KEY must be at least %d bytes", MinSigningKeyLength)
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (*Config, error) {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Addr:              valueOr(getenv("APP_ADDR"), ":8080"),
		Environment:       strings.ToLower(valueOr(getenv("APP_ENV"), EnvDevelopment)),
		JWTIssuer:         valueOr(getenv("JWT_ISSUER"), "campus"),
		SessionCookieName: valueOr(getenv("SESSION_COOKIE_NAME"), session.DefaultCookieName),
		DatabaseURL:       getenv("DATABASE_URL"),
		UIUpstreamURL:     getenv("UI_UPSTREAM_URL"),
		SeedAdminEmail:    strings.TrimSpace(getenv("SEED_ADMIN_EMAIL")),
		SeedAdminPassword: getenv("SEED_ADMIN_PASSWORD"),
		MaxBodyBytes:      1 << 20,
	}

	switch cfg.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return nil, fmt.Errorf("unknown APP_ENV %q", cfg.Environment)
	}

	var err error
	if cfg.LogLevel, err = parseLevel(getenv("LOG_LEVEL")); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = parseDuration(getenv("SESSION_TTL"), time.Hour, "SESSION_TTL"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration(getenv("REQUEST_TIMEOUT"), 15*time.Second, "REQUEST_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.SessionTransport, err = session.ParseMode(getenv("SESSION_TRANSPORT")); err != nil {
		return nil, err
	}
	if cfg.TrustedProxies, err = metadata.ParseTrustedProxies(getenv("TRUSTED_PROXIES")); err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}
	if err := cfg.loadSigningKey(getenv("JWT_SIGNING_KEY")); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSigningKey refuses to run production without a strong key. Development
// gets a random per-process key so no shared default ever exists.
func (c *Config) loadSigningKey(key string) error {
	switch {
	case key == "" && c.Production():
		return ErrMissingSigningKey
	case key == "":
		buf := make([]byte, MinSigningKeyLength)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate signing key: %w", err)
		}
		c.JWTSigningKey = base64.RawStdEncoding.EncodeToString(buf)
		c.GeneratedKey = true
	case len(key) < MinSigningKeyLength && c.Production():
		return ErrWeakSigningKey
	default:
		c.JWTSigningKey = key
	}
	return nil
}

func valueOr(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}

func parseDuration(raw string, fallback time.Duration, name string) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return d, nil
}

func parseLevel(raw string) (slog.Level, error) {
	if raw == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
