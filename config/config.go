/*
Package config resolves server settings from flags and the environment.

PRECEDENCE:
  flag > environment (including a .env file) > default

ENVIRONMENT:
  ABSENCE_PORT             HTTP port (default 8080)
  ABSENCE_STORE            memory | sqlite | redis (default sqlite)
  ABSENCE_DB               SQLite path (default absence.db)
  ABSENCE_REDIS_URL        redis://host:port/db, required for the redis store
  ABSENCE_LOG_LEVEL        debug | info | warn | error (default info)
  ABSENCE_LOG_FORMAT       json | console (default json)
  ABSENCE_ALLOWED_ORIGINS  comma-separated CORS origins
  ABSENCE_BREAKER          wrap the store in a circuit breaker (default true)
  ABSENCE_FLUSH_INTERVAL   retry period for unsaved changes, 0 disables (default 1m)
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config is the resolved server configuration.
type Config struct {
	Port           int
	Store          string
	DBPath         string
	RedisURL       string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	Breaker        bool
	FlushInterval  time.Duration
}

var defaultOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// Load reads an optional .env file, then the environment, then args.
func Load(args []string) (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()
	return FromEnv(os.Getenv, args)
}

// FromEnv resolves the configuration from getenv and command-line args.
func FromEnv(getenv func(string) string, args []string) (Config, error) {
	cfg := Config{
		Port:           8080,
		Store:          StoreSQLite,
		DBPath:         "absence.db",
		LogLevel:       "info",
		LogFormat:      "json",
		AllowedOrigins: defaultOrigins,
		Breaker:        true,
		FlushInterval:  time.Minute,
	}

	if v := getenv("ABSENCE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("ABSENCE_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := getenv("ABSENCE_STORE"); v != "" {
		cfg.Store = strings.ToLower(v)
	}
	if v := getenv("ABSENCE_DB"); v != "" {
		cfg.DBPath = v
	}
	cfg.RedisURL = getenv("ABSENCE_REDIS_URL")
	if v := getenv("ABSENCE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("ABSENCE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := getenv("ABSENCE_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := getenv("ABSENCE_BREAKER"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("ABSENCE_BREAKER: %w", err)
		}
		cfg.Breaker = on
	}
	if v := getenv("ABSENCE_FLUSH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("ABSENCE_FLUSH_INTERVAL: %w", err)
		}
		cfg.FlushInterval = d
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (\":memory:\" for in-memory)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "storage driver: memory, sqlite or redis")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.FlushInterval < 0 {
		return fmt.Errorf("negative flush interval %s", c.FlushInterval)
	}
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("ABSENCE_REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
