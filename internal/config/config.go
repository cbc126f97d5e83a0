// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	AppPort   int    `env:"APP_PORT" envDefault:"3000"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api"`

	// Database
	Database DatabaseConfig

	// Static bearer token accepted by the admin endpoints.
	AdminToken string `env:"ADMIN_TOKEN,required"`

	// Days until an issued API key expires.
	APIKeyTTLDays int `env:"API_KEY_TTL_DAYS" envDefault:"30"`

	// Optional Redis for shared rate limit state.
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// Rate limiting for self-service registration (per client IP)
	RateLimitRegisterEnabled bool    `env:"RATE_LIMIT_REGISTER_ENABLED" envDefault:"true"`
	RateLimitRegisterRPS     float64 `env:"RATE_LIMIT_REGISTER_RPS" envDefault:"1"`
	RateLimitRegisterBurst   int     `env:"RATE_LIMIT_REGISTER_BURST" envDefault:"5"`

	// CORS configuration
	// Comma-separated list of allowed origins, or "*" for any origin.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// DatabaseConfig holds the relational store settings.
// It is parsed on its own by tools that do not need the full server config.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"postgres"`

	// URL overrides the individual connection fields when set.
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"keydesk"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	MaxConns int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns int32 `env:"DB_MIN_CONNS" envDefault:"2"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"keydesk.db"`

	AutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// ConnectionURL returns the PostgreSQL connection string.
// DATABASE_URL wins over the DB_* fields.
func (d DatabaseConfig) ConnectionURL() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{d.SSLMode}}.Encode()
	}

	return u.String()
}

// Validate checks values env tags cannot express.
func (d DatabaseConfig) Validate() error {
	switch d.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %q or %q)", d.Driver, DriverPostgres, DriverSQLite)
	}
	if d.MinConns > d.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", d.MinConns, d.MaxConns)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(cfg.APIPrefix, "/") {
		cfg.APIPrefix = "/" + cfg.APIPrefix
	}
	cfg.APIPrefix = strings.TrimSuffix(cfg.APIPrefix, "/")
	return cfg, nil
}

// LoadDatabase parses only the database settings.
func LoadDatabase() (*DatabaseConfig, error) {
	cfg := &DatabaseConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
