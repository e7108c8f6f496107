// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// AIConfig provides settings for the Gemini-backed classifier and humanizer.
type AIConfig interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	IsHumanizerEnabled() bool
}

// SessionConfig provides settings for the conversation session store.
type SessionConfig interface {
	GetSessionTTL() time.Duration
	GetRedisURL() string
	IsRedisEnabled() bool
}

// CatalogConfig provides settings for the vehicle catalog source.
type CatalogConfig interface {
	GetCatalogPath() string
}

// CompanyInfoConfig provides settings for the company info corpus.
type CompanyInfoConfig interface {
	GetCompanyInfoPath() string
}

// WhatsAppConfig provides settings for the outbound WhatsApp gateway.
type WhatsAppConfig interface {
	GetWhatsAppGatewayURL() string
	GetWhatsAppAccountSID() string
	GetWhatsAppAuthToken() string
	GetWhatsAppFromNumber() string
	IsWhatsAppEnabled() bool
}

// WebhookConfig provides settings for the inbound messaging webhook.
type WebhookConfig interface {
	GetWebhookToken() string
	IsWebhookAsync() bool
}

// SchedulerConfig provides settings for background task scheduling.
type SchedulerConfig interface {
	GetRedisURL() string
	GetSessionCleanupInterval() time.Duration
}

// RateLimitConfig provides settings for the assistant rate limiter.
type RateLimitConfig interface {
	GetRateLimitPerMinute() float64
	GetRateLimitBurst() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                    string
	HTTPAddr               string
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	GeminiAPIKey           string
	GeminiModel            string
	HumanizerEnabled       bool
	SessionTTL             time.Duration
	RedisURL               string
	CatalogPath            string
	CompanyInfoPath        string
	WhatsAppGatewayURL     string
	WhatsAppAccountSID     string
	WhatsAppAuthToken      string
	WhatsAppFromNumber     string
	WebhookToken           string
	WebhookAsync           bool
	SessionCleanupInterval time.Duration
	RateLimitPerMinute     float64
	RateLimitBurst         int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// AIConfig implementation
func (c *Config) GetGeminiAPIKey() string  { return c.GeminiAPIKey }
func (c *Config) GetGeminiModel() string   { return c.GeminiModel }
func (c *Config) IsHumanizerEnabled() bool { return c.HumanizerEnabled }

// SessionConfig implementation
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) IsRedisEnabled() bool         { return c.RedisURL != "" }

// CatalogConfig implementation
func (c *Config) GetCatalogPath() string { return c.CatalogPath }

// CompanyInfoConfig implementation
func (c *Config) GetCompanyInfoPath() string { return c.CompanyInfoPath }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppGatewayURL() string { return c.WhatsAppGatewayURL }
func (c *Config) GetWhatsAppAccountSID() string { return c.WhatsAppAccountSID }
func (c *Config) GetWhatsAppAuthToken() string  { return c.WhatsAppAuthToken }
func (c *Config) GetWhatsAppFromNumber() string { return c.WhatsAppFromNumber }
func (c *Config) IsWhatsAppEnabled() bool {
	return c.WhatsAppGatewayURL != "" && c.WhatsAppAccountSID != ""
}

// WebhookConfig implementation
func (c *Config) GetWebhookToken() string { return c.WebhookToken }
func (c *Config) IsWebhookAsync() bool    { return c.WebhookAsync }

// SchedulerConfig implementation
func (c *Config) GetSessionCleanupInterval() time.Duration { return c.SessionCleanupInterval }

// RateLimitConfig implementation
func (c *Config) GetRateLimitPerMinute() float64 { return c.RateLimitPerMinute }
func (c *Config) GetRateLimitBurst() int         { return c.RateLimitBurst }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		HumanizerEnabled:       strings.EqualFold(getEnv("HUMANIZER_ENABLED", "true"), "true"),
		SessionTTL:             mustDuration(getEnv("SESSION_TTL", "30m")),
		RedisURL:               getEnv("REDIS_URL", ""),
		CatalogPath:            getEnv("CATALOG_PATH", "resources/vehicle_catalog.csv"),
		CompanyInfoPath:        getEnv("COMPANY_INFO_PATH", ""),
		WhatsAppGatewayURL:     getEnv("WHATSAPP_GATEWAY_URL", ""),
		WhatsAppAccountSID:     getEnv("WHATSAPP_ACCOUNT_SID", ""),
		WhatsAppAuthToken:      getEnv("WHATSAPP_AUTH_TOKEN", ""),
		WhatsAppFromNumber:     getEnv("WHATSAPP_FROM_NUMBER", ""),
		WebhookToken:           getEnv("WEBHOOK_TOKEN", ""),
		WebhookAsync:           strings.EqualFold(getEnv("WEBHOOK_ASYNC", "false"), "true"),
		SessionCleanupInterval: mustDuration(getEnv("SESSION_CLEANUP_INTERVAL", "5m")),
		RateLimitPerMinute:     mustFloat64(getEnv("RATE_LIMIT_PER_MINUTE", "30")),
		RateLimitBurst:         mustInt(getEnv("RATE_LIMIT_BURST", "10")),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration")
	}
	if cfg.WebhookAsync && !cfg.IsWhatsAppEnabled() {
		return nil, fmt.Errorf("WEBHOOK_ASYNC requires the WhatsApp gateway to be configured")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat64(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
