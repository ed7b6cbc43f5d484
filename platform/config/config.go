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

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// WebhookConfig provides settings for inbound webhook authentication.
type WebhookConfig interface {
	// GetWebhookSharedSecret returns the shared secret compared against the
	// X-Webhook-Secret header. An empty value means accept-if-unconfigured,
	// which is a documented permissive default, not a recommendation.
	GetWebhookSharedSecret() string
}

// SchedulerConfig provides settings for the asynq job scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// DedupConfig provides settings for the idempotency guard's redis fast path.
type DedupConfig interface {
	GetRedisURL() string
	GetDedupReservationTTL() time.Duration
}

// ProviderSettings holds the per-provider enrichment dispatch policy.
type ProviderSettings struct {
	Name               string
	BaseURL            string
	APIKey             string
	RatePerSecond      float64
	RateBurst          int
	RequestTimeout     time.Duration
	MaxRetryAttempts   int
	MaxConcurrent      int64
	WaitForRateSlot    bool
	RetryBackoffBase   time.Duration
}

// EnrichmentConfig provides settings for the enrichment dispatch orchestrator.
type EnrichmentConfig interface {
	GetProviderSettings() []ProviderSettings
	GetWorkflowTimeout() time.Duration
}

// NotificationConfig provides settings for the operator notification sink.
type NotificationConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetNotifyFromAddress() string
	GetNotifyToAddress() string
	IsNotifyEmailEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	JWTAccessSecret     string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	WebhookSharedSecret string
	RedisURL            string
	RedisTLSInsecure    bool
	AsynqQueueName      string
	AsynqConcurrency    int
	DedupReservationTTL time.Duration
	WorkflowTimeout     time.Duration
	Providers           []ProviderSettings
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	NotifyFromAddress   string
	NotifyToAddress     string
	NotifyEmailEnabled  bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// WebhookConfig implementation
func (c *Config) GetWebhookSharedSecret() string { return c.WebhookSharedSecret }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// DedupConfig implementation
func (c *Config) GetDedupReservationTTL() time.Duration { return c.DedupReservationTTL }

// EnrichmentConfig implementation
func (c *Config) GetProviderSettings() []ProviderSettings { return c.Providers }
func (c *Config) GetWorkflowTimeout() time.Duration       { return c.WorkflowTimeout }

// NotificationConfig implementation
func (c *Config) GetSMTPHost() string          { return c.SMTPHost }
func (c *Config) GetSMTPPort() int             { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string      { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string      { return c.SMTPPassword }
func (c *Config) GetNotifyFromAddress() string { return c.NotifyFromAddress }
func (c *Config) GetNotifyToAddress() string   { return c.NotifyToAddress }
func (c *Config) IsNotifyEmailEnabled() bool {
	return c.NotifyEmailEnabled && c.SMTPHost != "" && c.NotifyToAddress != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTAccessSecret:     getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		WebhookSharedSecret: getEnv("WEBHOOK_SHARED_SECRET", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:    mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		DedupReservationTTL: mustDuration(getEnv("DEDUP_RESERVATION_TTL", "24h")),
		WorkflowTimeout:     mustDuration(getEnv("WORKFLOW_TIMEOUT", "5m")),
		Providers:           loadProviderSettings(),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		NotifyFromAddress:   getEnv("NOTIFY_FROM_ADDRESS", ""),
		NotifyToAddress:     getEnv("NOTIFY_TO_ADDRESS", ""),
		NotifyEmailEnabled:  strings.EqualFold(getEnv("NOTIFY_EMAIL_ENABLED", "false"), "true"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.NotifyEmailEnabled && cfg.NotifyToAddress == "" {
		return nil, fmt.Errorf("NOTIFY_TO_ADDRESS is required when NOTIFY_EMAIL_ENABLED is true")
	}

	return cfg, nil
}

// loadProviderSettings reads per-provider dispatch policy from the environment.
// A provider with no API key is loaded as unavailable; the registry order here
// is the orchestrator's fixed priority order.
func loadProviderSettings() []ProviderSettings {
	names := []string{"apollo", "hunter", "clearbit"}
	defaults := map[string]string{
		"apollo":   "https://api.apollo.io/v1",
		"hunter":   "https://api.hunter.io/v2",
		"clearbit": "https://person.clearbit.com/v2",
	}

	settings := make([]ProviderSettings, 0, len(names))
	for _, name := range names {
		prefix := "ENRICHMENT_" + strings.ToUpper(name) + "_"
		settings = append(settings, ProviderSettings{
			Name:             name,
			BaseURL:          getEnv(prefix+"BASE_URL", defaults[name]),
			APIKey:           getEnv(prefix+"API_KEY", ""),
			RatePerSecond:    mustFloat(getEnv(prefix+"RATE_PER_SECOND", "5")),
			RateBurst:        mustInt(getEnv(prefix+"RATE_BURST", "5")),
			RequestTimeout:   mustDuration(getEnv(prefix+"REQUEST_TIMEOUT", "10s")),
			MaxRetryAttempts: mustInt(getEnv(prefix+"MAX_RETRY_ATTEMPTS", "3")),
			MaxConcurrent:    int64(mustInt(getEnv(prefix+"MAX_CONCURRENT", "4"))),
			WaitForRateSlot:  strings.EqualFold(getEnv(prefix+"WAIT_FOR_RATE_SLOT", "false"), "true"),
			RetryBackoffBase: mustDuration(getEnv(prefix+"RETRY_BACKOFF_BASE", "500ms")),
		})
	}
	return settings
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

func mustFloat(value string) float64 {
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
