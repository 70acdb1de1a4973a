package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Sale      SaleConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string `envconfig:"HOST" default:"0.0.0.0"`
	Port            string `envconfig:"PORT" default:"3001"`
	CORSOrigin      string `envconfig:"CORS_ORIGIN" default:"*"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"10"` // seconds
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// RedisConfig holds the connection settings for the atomic store.
type RedisConfig struct {
	URL string `envconfig:"REDIS_URL" default:"redis://localhost:6379"`
}

// RateLimitConfig holds request throttling configuration.
type RateLimitConfig struct {
	Max    int           `envconfig:"RATE_LIMIT_MAX" default:"100"`
	Window time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// SaleConfig holds the sale window and product configuration.
// SALE_START_TIME and SALE_END_TIME accept RFC 3339 timestamps. When unset,
// the window defaults to opening 60 seconds after startup and closing one
// hour after startup; production deployments should set both explicitly.
type SaleConfig struct {
	StartTime    time.Time `envconfig:"SALE_START_TIME"`
	EndTime      time.Time `envconfig:"SALE_END_TIME"`
	TotalStock   int       `envconfig:"TOTAL_STOCK" default:"100"`
	ProductName  string    `envconfig:"PRODUCT_NAME" default:"Limited Edition Sneaker"`
	ProductPrice float64   `envconfig:"PRODUCT_PRICE" default:"99.99"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load parses environment variables into the Config struct, fills in the
// dynamic sale-window defaults and validates the result. Validation failures
// are startup-fatal; the window is never re-read at runtime.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if cfg.Sale.StartTime.IsZero() {
		cfg.Sale.StartTime = now.Add(60 * time.Second)
	}
	if cfg.Sale.EndTime.IsZero() {
		cfg.Sale.EndTime = now.Add(time.Hour)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Sale.EndTime.Before(c.Sale.StartTime) {
		return fmt.Errorf("sale window is inverted: start %s is after end %s",
			c.Sale.StartTime.Format(time.RFC3339), c.Sale.EndTime.Format(time.RFC3339))
	}
	if c.Sale.TotalStock < 0 {
		return fmt.Errorf("TOTAL_STOCK must not be negative, got %d", c.Sale.TotalStock)
	}
	if c.Sale.ProductPrice < 0 {
		return fmt.Errorf("PRODUCT_PRICE must not be negative, got %v", c.Sale.ProductPrice)
	}
	if c.RateLimit.Max <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", c.RateLimit.Max)
	}
	return nil
}
