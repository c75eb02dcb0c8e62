package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the ml service
type Config struct {
	// Server configuration
	Port           string
	AllowedOrigins string

	// Google Vision configuration
	GoogleCredentialsPath string

	// Upload limits
	MaxUploadMB int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigins:        getEnv("ALLOWED_ORIGINS", "*"),
		GoogleCredentialsPath: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		MaxUploadMB:           getIntEnv("MAX_UPLOAD_MB", 10),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
