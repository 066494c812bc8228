// Package config provides centralized configuration management for the
// importer. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Upload    UploadConfig
	Import    ImportConfig
	Inventory InventoryConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing response (default: 5m,
	// the import step runs within the request)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// UploadConfig holds file upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// TmpDir is where uploaded files are stored until the import finishes.
	// Empty means the system temp directory.
	TmpDir string `env:"UPLOAD_TMP_DIR"`

	// AllowedExtensions is a comma-separated list of accepted file
	// extensions (default: .csv,.txt)
	AllowedExtensions []string `env:"UPLOAD_ALLOWED_EXTENSIONS" default:".csv,.txt"`
}

// ImportConfig holds CSV parsing settings.
type ImportConfig struct {
	// Separator is the field separator character (default: ";")
	Separator string `env:"IMPORT_SEPARATOR" default:";"`

	// MaxLineLength is the maximum physical line length in bytes (default: 1024)
	MaxLineLength int `env:"IMPORT_MAX_LINE_LENGTH" default:"1024"`
}

// InventoryConfig holds inventory service API settings.
type InventoryConfig struct {
	// URL is the JSON-RPC endpoint of the inventory service (required)
	URL string `env:"INVENTORY_URL" required:"true"`

	// Token is the API token sent as a bearer token
	Token string `env:"INVENTORY_TOKEN"`

	// Timeout is the per-call timeout for API requests (default: 30s)
	Timeout time.Duration `env:"INVENTORY_TIMEOUT" default:"30s"`
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

// SeparatorByte returns the configured separator as a single byte.
// Validate guarantees the separator is exactly one character.
func (c *ImportConfig) SeparatorByte() byte {
	return c.Separator[0]
}
