package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Values come from environment variables, optionally seeded from a .env file
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Store    StoreConfig
	Session  SessionConfig
	CORS     CORSConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type CatalogConfig struct {
	BaseURL             string
	FetchTimeoutMS      int
	LiveRecommendations bool
	UserID              string
}

// StoreConfig selects where cart state is persisted
// Driver "none" keeps carts in memory only
type StoreConfig struct {
	Driver      string
	Path        string
	DatabaseURL string
}

// SessionConfig controls the session cookie and how long an unused cart stays in memory
// IdleTimeout and SweepInterval are in seconds
type SessionConfig struct {
	CookieName    string
	Secure        bool
	IdleTimeout   int
	SweepInterval int
}

// CORSConfig applies to /api
// Credentials are only allowed with an explicit origin list
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
}

// Store drivers
const (
	DriverNone     = "none"
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load reads configuration from environment variables
// A .env file in the working directory is applied first if present; real env vars win
func Load() (*Config, error) {
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds and validates a Config from the current environment only
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Catalog: CatalogConfig{
			BaseURL:             getEnv("CATALOG_BASE_URL", "http://localhost:8000"),
			FetchTimeoutMS:      getEnvAsInt("CATALOG_FETCH_TIMEOUT_MS", 3000),
			LiveRecommendations: getEnvAsBool("CATALOG_LIVE_RECOMMENDATIONS", false),
			UserID:              getEnv("RECOMMENDATIONS_USER_ID", "1"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getEnv("STORE_DRIVER", DriverFile)),
			Path:        getEnv("STORE_PATH", "data/carts.json"),
			DatabaseURL: getEnv("DATABASE_URL", ""),
		},
		Session: SessionConfig{
			CookieName:    getEnv("SESSION_COOKIE_NAME", "storefront_session"),
			Secure:        getEnvAsBool("SESSION_COOKIE_SECURE", false),
			IdleTimeout:   getEnvAsInt("SESSION_IDLE_TIMEOUT", 1800),
			SweepInterval: getEnvAsInt("SESSION_SWEEP_INTERVAL", 60),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid CATALOG_BASE_URL: %q", c.Catalog.BaseURL)
	}

	if c.Catalog.FetchTimeoutMS <= 0 {
		return fmt.Errorf("CATALOG_FETCH_TIMEOUT_MS must be positive, got %d", c.Catalog.FetchTimeoutMS)
	}

	switch c.Store.Driver {
	case DriverNone, DriverMemory:
	case DriverFile, DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("STORE_PATH is required for the %s store", c.Store.Driver)
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER: %s (must be none, memory, file, sqlite, or postgres)", c.Store.Driver)
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME is required")
	}

	if c.Session.IdleTimeout <= 0 || c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT and SESSION_SWEEP_INTERVAL must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ALLOW_CREDENTIALS requires explicit CORS_ALLOWED_ORIGINS, not *")
			}
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
