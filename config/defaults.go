// Package config provides centralized default values for the DrawIt service
package config

import (
	"log"
	"os"
	"path/filepath"
	"time"
)

// Config holds service-level configuration, loaded once at startup and
// passed into each component at construction.
type Config struct {
	Port         string
	UploadsPath  string
	UploadsURL   string
	DatabasePath string
	LibSQLURL    string
	LibSQLToken  string
	JWTSecret    string

	// AdminPasswordHash is a bcrypt hash; AdminPassword is the plaintext
	// fallback for local development.
	AdminPassword     string
	AdminPasswordHash string

	EditorURL string

	// Editor bridge liveness timings.
	ActivityTimeout time.Duration
	CheckInterval   time.Duration
	InitDelay       time.Duration

	// NonceTTL bounds how long a minted form nonce stays valid.
	NonceTTL time.Duration
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	home, _ := os.UserHomeDir()
	defaultBase := filepath.Join(home, "drawit-go-server")

	return &Config{
		Port:              getEnvString("PORT", "8080"),
		UploadsPath:       getEnvString("DRAWIT_UPLOADS_PATH", filepath.Join(defaultBase, "uploads")),
		UploadsURL:        getEnvString("DRAWIT_UPLOADS_URL", "/uploads"),
		DatabasePath:      getEnvString("DRAWIT_DB_PATH", filepath.Join(defaultBase, "drawit.db")),
		LibSQLURL:         getEnvString("LIBSQL_DATABASE_URL", ""),
		LibSQLToken:       getEnvString("LIBSQL_AUTH_TOKEN", ""),
		JWTSecret:         getEnvString("DRAWIT_JWT_SECRET", "insecure-dev-secret"),
		AdminPassword:     getEnvString("DRAWIT_ADMIN_PASSWORD", ""),
		AdminPasswordHash: getEnvString("DRAWIT_ADMIN_PASSWORD_HASH", ""),
		EditorURL:         getEnvString("DRAWIT_EDITOR_URL", "https://embed.diagrams.net/?embed=1&ui=atlas&spin=1&proto=json&configure=1"),
		ActivityTimeout:   getEnvDuration("DRAWIT_ACTIVITY_TIMEOUT", 60*time.Second),
		CheckInterval:     getEnvDuration("DRAWIT_CHECK_INTERVAL", 15*time.Second),
		InitDelay:         getEnvDuration("DRAWIT_INIT_DELAY", 10*time.Second),
		NonceTTL:          getEnvDuration("DRAWIT_NONCE_TTL", 24*time.Hour),
	}
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}
