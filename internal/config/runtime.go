package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "funnelwerk.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTTTL           = "12h"
	defaultCRMTimeout       = "10s"
	defaultCRMRetryMax      = "0"
	defaultProgressDebounce = "500ms"
	defaultAdminEmail       = "admin@funnelwerk.de"
	defaultAdminPassword    = "change-me-admin-password"
)

// RuntimeConfig is the full process configuration, loaded from ENV once at
// startup and validated eagerly so a misconfigured deployment fails fast.
type RuntimeConfig struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret string
	JWTTTL    time.Duration

	// CRM intake webhook. CRMRetryMax 0 means a single attempt per submit;
	// the visitor drives retries.
	CRMWebhookURL string
	CRMTimeout    time.Duration
	CRMRetryMax   int

	// Quiet interval before partial progress is written out.
	ProgressDebounce time.Duration

	AdminEmail    string
	AdminPassword string
}

func Load() (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.CRMWebhookURL = strings.TrimSpace(os.Getenv("CRM_WEBHOOK_URL"))
	cfg.AdminEmail = strings.TrimSpace(getEnv("ADMIN_EMAIL", defaultAdminEmail))
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", defaultAdminPassword)

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.CRMTimeout, err = parseDurationEnv("CRM_TIMEOUT", defaultCRMTimeout)
	if err != nil {
		return nil, err
	}

	cfg.CRMRetryMax, err = parseIntEnv("CRM_RETRY_MAX", defaultCRMRetryMax)
	if err != nil {
		return nil, err
	}

	cfg.ProgressDebounce, err = parseDurationEnv("PROGRESS_DEBOUNCE", defaultProgressDebounce)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *RuntimeConfig) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.CRMTimeout <= 0 {
		return fmt.Errorf("CRM_TIMEOUT must be > 0")
	}
	if cfg.CRMRetryMax < 0 {
		return fmt.Errorf("CRM_RETRY_MAX must be >= 0")
	}
	if cfg.ProgressDebounce < 0 {
		return fmt.Errorf("PROGRESS_DEBOUNCE must be >= 0")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.AdminPassword, defaultAdminPassword) {
			return fmt.Errorf("in prod/release ADMIN_PASSWORD must be set and not default")
		}
		if cfg.CRMWebhookURL == "" {
			return fmt.Errorf("in prod/release CRM_WEBHOOK_URL must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
