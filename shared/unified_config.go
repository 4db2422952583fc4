package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DatabaseConfig holds database connection pool configuration
type DatabaseConfig struct {
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	PingTimeout     time.Duration `json:"ping_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// NewDefaultDatabaseConfig returns pool settings for server databases
func NewDefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// NewSingleWriterDatabaseConfig returns pool settings for embedded databases with one writer
func NewSingleWriterDatabaseConfig() DatabaseConfig {
	config := NewDefaultDatabaseConfig()
	config.MaxOpenConns = 1
	config.MaxIdleConns = 1
	config.ConnMaxLifetime = 0
	config.ConnMaxIdleTime = 0
	return config
}

// ValidateAndApplyDefaults replaces invalid pool values with defaults
func (c *DatabaseConfig) ValidateAndApplyDefaults() {
	logger := logrus.WithField("component", "DatabaseConfig")

	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
		logger.Debug("Applied default MaxOpenConns")
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
		logger.Debug("Applied default MaxIdleConns")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 5 * time.Second
		logger.Debug("Applied default PingTimeout")
	}
}

// Apply configures the global logrus logger
func (c LoggingConfig) Apply() error {
	level := c.Level
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	logrus.SetLevel(parsed)
	logrus.SetOutput(os.Stderr)

	switch strings.ToLower(c.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q", c.Format)
	}
	return nil
}
