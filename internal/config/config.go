package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Env         string
	Port        string
	JWTSecret   string
	Database    DatabaseConfig
	Marketplace MarketplaceConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// MarketplaceConfig holds the external ERP marketplace connection settings.
// Sync stays disabled when URL is empty.
type MarketplaceConfig struct {
	URL      string
	Database string
	Username string
	Password string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "3001"),
		JWTSecret: jwtSecret,
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "kopitrace"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Marketplace: MarketplaceConfig{
			URL:      os.Getenv("MARKETPLACE_URL"),
			Database: getEnv("MARKETPLACE_DB", "marketplace"),
			Username: os.Getenv("MARKETPLACE_USERNAME"),
			Password: os.Getenv("MARKETPLACE_PASSWORD"),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
