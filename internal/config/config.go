// Package config provides configuration management for the OAuth gateway.
// It handles loading configuration from environment variables with sensible
// defaults and validates the configuration so the service starts safely.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FILE: Log file path (default: stdout)
//   - TLS_CERT / TLS_KEY: Optional TLS certificate pair
//
// OAuth Provider:
//   - GCP_CLIENT_SECRET_FILE: Path to the Google client secret JSON (default: gcp_secret.json)
//   - OAUTH_REDIRECT_BASE_URL: Base URL redirect URIs are built from (default: http://localhost:8080)
//
// Credential Storage:
//   - STORAGE_TYPE: Credential store backend - "file", "sqlite" or "redis" (default: file)
//   - CREDENTIALS_FILE: Debug file store path (default: ./debug_gcp_imap_creds.json)
//   - DATABASE_PATH: SQLite database file path (default: ./oauth_gateway.db)
//   - REDIS_ADDRESS: Redis server address (default: localhost:6379)
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// Mail Access:
//   - IMAP_HOST: IMAP server host (default: imap.gmail.com)
//   - IMAP_PORT: IMAP server port (default: 993)
//   - IMAP_FOLDER: Mailbox folder to operate on (default: INBOX)
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration values for the OAuth gateway.
// All fields correspond to environment variables that can be set to
// override the default values.
type Config struct {
	// Application settings
	Port     string // Server port number
	LogLevel string // Logging level (debug, info, warn, error)
	TLSCert  string // TLS certificate file, empty for plain HTTP
	TLSKey   string // TLS key file, empty for plain HTTP

	// OAuth provider settings
	GCPClientSecretFile  string // Path to the Google OAuth client secret JSON
	OAuthRedirectBaseURL string // Base URL consent redirects come back to

	// Credential storage
	StorageType     string // Store backend: "file", "sqlite" or "redis"
	CredentialsFile string // Debug JSON file path (file backend)
	DatabasePath    string // SQLite database file path (sqlite backend)
	RedisAddress    string // Redis server address (redis backend)
	RedisPassword   string // Redis authentication password
	RedisDB         int    // Redis database number (0-15)
	RedisPoolSize   int    // Redis connection pool size

	// Mail access
	IMAPHost   string // IMAP server host
	IMAPPort   int    // IMAP server port
	IMAPFolder string // Mailbox folder
}

// Load creates a new Config instance with values loaded from environment
// variables. If an environment variable is not set, the corresponding
// default value is used.
//
// This function does not validate the configuration - call Validate() on
// the returned Config before use.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		TLSCert:  getEnv("TLS_CERT", ""),
		TLSKey:   getEnv("TLS_KEY", ""),

		GCPClientSecretFile:  getEnv("GCP_CLIENT_SECRET_FILE", "gcp_secret.json"),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"),

		StorageType:     getEnv("STORAGE_TYPE", "file"),
		CredentialsFile: getEnv("CREDENTIALS_FILE", "./debug_gcp_imap_creds.json"),
		DatabasePath:    getEnv("DATABASE_PATH", "./oauth_gateway.db"),
		RedisAddress:    getEnv("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getIntEnv("REDIS_DB", 0),
		RedisPoolSize:   getIntEnv("REDIS_POOL_SIZE", 10),

		IMAPHost:   getEnv("IMAP_HOST", "imap.gmail.com"),
		IMAPPort:   getIntEnv("IMAP_PORT", 993),
		IMAPFolder: getEnv("IMAP_FOLDER", "INBOX"),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate performs validation on the configuration to ensure all required
// fields are present and all values are valid.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: must be numeric", c.Port)
	}

	switch c.StorageType {
	case "file":
		if c.CredentialsFile == "" {
			return fmt.Errorf("CREDENTIALS_FILE is required for file storage")
		}
	case "sqlite":
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for sqlite storage")
		}
	case "redis":
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is required for redis storage")
		}
		if c.RedisDB < 0 || c.RedisDB > 15 {
			return fmt.Errorf("REDIS_DB must be between 0 and 15, got %d", c.RedisDB)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}

	if c.GCPClientSecretFile == "" {
		return fmt.Errorf("GCP_CLIENT_SECRET_FILE is required")
	}
	if c.OAuthRedirectBaseURL == "" {
		return fmt.Errorf("OAUTH_REDIRECT_BASE_URL is required")
	}

	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("TLS_CERT and TLS_KEY must be set together")
	}

	if c.IMAPPort <= 0 || c.IMAPPort > 65535 {
		return fmt.Errorf("invalid IMAP_PORT: %d", c.IMAPPort)
	}

	return nil
}
