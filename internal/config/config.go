package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Dashboard backend configuration
	Backend BackendConfig

	// Authentication configuration
	Auth AuthConfig

	// Database configuration
	Database DatabaseConfig

	// Route table configuration
	Routes RoutesConfig

	// Logging configuration
	Logging LoggingConfig
}

// ServerConfig holds the gateway listener configuration
type ServerConfig struct {
	ListenAddr string
}

// BackendConfig holds the dashboard backend configuration
type BackendConfig struct {
	URL string
}

// AuthConfig holds cookie and header names plus the policy flags.
// It is passed explicitly to the components that need it; nothing in
// the codebase reads authentication settings from globals.
type AuthConfig struct {
	CookieName     string
	HeaderName     string
	CSRFHeaderName string
	// WriteDomains lists the domains the auth cookie is duplicated to
	// (comma-separated in the environment). Empty means host-scoped.
	WriteDomains []string
	// LoginPageEnabled disables the login redirect entirely when false.
	LoginPageEnabled bool
	// HTTPSMode reports whether the deployment serves over TLS.
	// Authentication is only enforced in HTTPS mode.
	HTTPSMode bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RoutesConfig holds the route table configuration
type RoutesConfig struct {
	// File is the YAML route table path; empty uses the built-in table.
	File string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var writeDomains []string
	for _, domain := range strings.Split(os.Getenv("COOKIE_WRITE_DOMAINS"), ",") {
		domain = strings.TrimSpace(domain)
		if domain != "" {
			writeDomains = append(writeDomains, domain)
		}
	}

	return &Config{
		Server: ServerConfig{
			ListenAddr: envOrDefault("LISTEN_ADDR", ":8080"),
		},
		Backend: BackendConfig{
			URL: envOrDefault("BACKEND_URL", "http://localhost:9090"),
		},
		Auth: AuthConfig{
			CookieName:       envOrDefault("AUTH_COOKIE_NAME", "dashgate_token"),
			HeaderName:       envOrDefault("AUTH_HEADER_NAME", "Authorization"),
			CSRFHeaderName:   envOrDefault("CSRF_HEADER_NAME", "X-CSRF-TOKEN"),
			WriteDomains:     writeDomains,
			LoginPageEnabled: boolOrDefault("LOGIN_PAGE_ENABLED", true),
			HTTPSMode:        boolOrDefault("HTTPS_MODE", false),
		},
		Database: DatabaseConfig{
			URL: envOrDefault("DATABASE_URL", "dashgate.sqlite"),
		},
		Routes: RoutesConfig{
			File: os.Getenv("ROUTES_FILE"),
		},
		Logging: LoggingConfig{
			Level:  envOrDefault("LOG_LEVEL", "info"),
			Format: envOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func boolOrDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
