// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Sync     SyncConfig
	Mutation MutationConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 3001, matching the original deployment)
	Port int `env:"SERVER_PORT" default:"3001"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// SourceConfig selects and configures the persistence backend.
type SourceConfig struct {
	// Type is the backend kind: "local" (workbook file) or "remote" (default: local)
	Type string `env:"SOURCE_TYPE" default:"local"`

	// Path is the workbook file path for the local backend
	// Supports both SOURCE_PATH and WORKBOOK_PATH env vars for compatibility
	Path string `env:"SOURCE_PATH" envAlt:"WORKBOOK_PATH"`

	// RemoteURL is the document URL for the remote backend
	RemoteURL string `env:"SOURCE_REMOTE_URL"`

	// RemoteToken is an optional bearer token for the remote backend
	RemoteToken string `env:"SOURCE_REMOTE_TOKEN"`
}

// SyncConfig holds background synchronization settings.
type SyncConfig struct {
	// PollInterval is how often the source is checked for external changes
	// (default: 5s; an mtime check is cheap, a remote fetch is not)
	PollInterval time.Duration `env:"SYNC_POLL_INTERVAL" default:"5s"`
}

// MutationConfig holds sell/refill settings.
type MutationConfig struct {
	// DefaultRefillerID is logged on refills that do not name a refiller (default: REF-001)
	DefaultRefillerID string `env:"MUTATION_DEFAULT_REFILLER_ID" default:"REF-001"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}
