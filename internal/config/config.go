// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"simplefinance/internal/backend"
)

type Config struct {
	// HTTP server
	Port string

	// Service database (":memory:" keeps the original throwaway behavior)
	ServerDBPath string

	// AMQP change events (disabled when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Client backend selection
	DataBackend   string
	LocalDBPath   string
	SQLiteDBPath  string
	RemoteBaseURL string

	// Attachment files
	AttachmentsDir string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		ServerDBPath: getEnv("SERVER_DB_PATH", ":memory:"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "simplefinance"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_changes"),

		DataBackend:   getEnv("DATA_BACKEND", "local"),
		LocalDBPath:   getEnv("LOCAL_DB_PATH", "./data/expenses.kv"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/expenses.db"),
		RemoteBaseURL: getEnv("REMOTE_BASE_URL", "http://localhost:3000"),

		AttachmentsDir: getEnv("ATTACHMENTS_DIR", "./data/documents"),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !backend.Kind(c.DataBackend).IsValid() {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s %s]",
			c.DataBackend, backend.LocalBackend, backend.SQLiteBackend, backend.RemoteBackend))
	}

	switch backend.Kind(c.DataBackend) {
	case backend.LocalBackend:
		if err := ensureParentDir(c.LocalDBPath); err != nil {
			errs = append(errs, err.Error())
		}
	case backend.SQLiteBackend:
		if c.SQLiteDBPath != ":memory:" {
			if err := ensureParentDir(c.SQLiteDBPath); err != nil {
				errs = append(errs, err.Error())
			}
		}
	case backend.RemoteBackend:
		if u, err := url.Parse(c.RemoteBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("invalid remote base URL '%s'", c.RemoteBaseURL))
		}
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func ensureParentDir(path string) error {
	if path == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("cannot create database directory '%s': %v", dir, err)
			}
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
