package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Environment string
	Server      ServerConfig
	Redis       RedisConfig
	Stripe      StripeConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Catalog     CatalogConfig
	SMTP        SMTPConfig
	NewRelic    NewRelicConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StripeConfig holds payment processor credentials and limits.
type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	SessionExpiry  time.Duration
	RequestTimeout time.Duration
}

// CORSConfig holds the frontend origin allow-list. FrontendDomain is also
// the base for the processor's success/cancel redirect URLs.
type CORSConfig struct {
	FrontendDomain string
	ExtraOrigins   []string
}

// RateLimitConfig holds the sliding-window admission limits.
type RateLimitConfig struct {
	Window        time.Duration
	GeneralLimit  int
	CheckoutLimit int
}

// CatalogConfig holds the remote product API connection settings.
type CatalogConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// SMTPConfig holds the order-confirmation mail settings. Empty Host disables
// real delivery and falls back to the log sender.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load loads configuration from the environment. A .env file in the working
// directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Stripe: StripeConfig{
			SecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SessionExpiry:  getDurationEnv("STRIPE_SESSION_EXPIRY", 30*time.Minute),
			RequestTimeout: getDurationEnv("STRIPE_TIMEOUT", 10*time.Second),
		},
		CORS: CORSConfig{
			FrontendDomain: getEnv("FRONTEND_DOMAIN", "http://localhost:5173"),
			ExtraOrigins:   getListEnv("ALLOWED_ORIGINS"),
		},
		RateLimit: RateLimitConfig{
			Window:        getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
			GeneralLimit:  getIntEnv("RATE_LIMIT_GENERAL", 100),
			CheckoutLimit: getIntEnv("RATE_LIMIT_CHECKOUT", 10),
		},
		Catalog: CatalogConfig{
			BaseURL: getEnv("PRODUCT_API_URL", ""),
			APIKey:  getEnv("PRODUCT_API_KEY", ""),
			Timeout: getDurationEnv("PRODUCT_API_TIMEOUT", 10*time.Second),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "storefront-relay"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
	}
}

// IsProduction reports whether strict production behavior (CORS origin
// enforcement, JSON logging) applies.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins returns the full CORS allow-list. Localhost dev origins are
// only included outside production.
func (c *Config) AllowedOrigins() []string {
	origins := make([]string, 0, len(c.CORS.ExtraOrigins)+3)
	if c.CORS.FrontendDomain != "" {
		origins = append(origins, c.CORS.FrontendDomain)
	}
	origins = append(origins, c.CORS.ExtraOrigins...)
	if !c.IsProduction() {
		origins = append(origins, "http://localhost:5173", "http://localhost:3000")
	}
	return origins
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
