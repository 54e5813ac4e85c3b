package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"loanschedule/internal/core"
	applog "loanschedule/internal/log"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	// Persistence
	DataBackend  string
	SaveDir      string
	StoreTimeout time.Duration

	// SQLite
	SQLiteDBPath string

	// Redis
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// Schedule
	CarryPolicy string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", BackendFile),
		SaveDir:      getEnv("SAVE_DIR", "loan_data"),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 5*time.Second),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "loan_data/loans.db"),

		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "loanschedule:"),

		CarryPolicy: getEnv("CARRY_POLICY", string(core.RoundedCarry)),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// ValidBackends lists the accepted DATA_BACKEND values.
func ValidBackends() []string {
	return []string{BackendFile, BackendSQLite, BackendRedis, BackendMemory}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	isValidBackend := false
	for _, backend := range ValidBackends() {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, ValidBackends()))
	}

	switch c.DataBackend {
	case BackendFile:
		if strings.TrimSpace(c.SaveDir) == "" {
			errors = append(errors, "save directory cannot be empty when using file backend")
		}
	case BackendSQLite:
		if strings.TrimSpace(c.SQLiteDBPath) == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendRedis:
		if _, _, err := net.SplitHostPort(c.RedisAddr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid redis address '%s': %v", c.RedisAddr, err))
		}
		if c.RedisDB < 0 || c.RedisDB > 15 {
			errors = append(errors, fmt.Sprintf("invalid redis db %d: must be between 0 and 15", c.RedisDB))
		}
	}

	if c.StoreTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid store timeout %v: must be at least 100ms", c.StoreTimeout))
	} else if c.StoreTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid store timeout %v: must be at most 5 minutes", c.StoreTimeout))
	}

	if !core.CarryPolicy(c.CarryPolicy).IsValid() {
		errors = append(errors, fmt.Sprintf("invalid carry policy '%s': must be '%s' or '%s'", c.CarryPolicy, core.RoundedCarry, core.ExactCarry))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level: %v", err))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
