package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration, loadable from
// environment variables (FRESHKART_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL   string `usage:"PostgreSQL connection URL (FRESHKART_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SessionSecret string `usage:"HMAC secret shared with the identity provider (FRESHKART_SESSION_SECRET)" flag:"session-secret"`
	Shipping      ShippingConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
}

// ShippingConfig controls order shipping pricing. Values are rupees.
type ShippingConfig struct {
	FreeThreshold int64 `default:"2000" usage:"Subtotal at or above which shipping is free" flag:"free-shipping-threshold"`
	FlatFee       int64 `default:"100"  usage:"Flat shipping fee below the threshold" flag:"shipping-fee"`
}

// FreeThresholdDecimal returns the threshold as a decimal amount.
func (s ShippingConfig) FreeThresholdDecimal() decimal.Decimal {
	return decimal.NewFromInt(s.FreeThreshold)
}

// FlatFeeDecimal returns the flat fee as a decimal amount.
func (s ShippingConfig) FlatFeeDecimal() decimal.Decimal {
	return decimal.NewFromInt(s.FlatFee)
}

// RateLimitConfig controls the per-client token bucket rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "FRESHKART",
		Files:     []string{"config.yaml", "/etc/freshkart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set FRESHKART_DATABASE_URL or DATABASE_URL")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret is required: set FRESHKART_SESSION_SECRET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's FRESHKART_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
