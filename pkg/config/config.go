package config

import (
	"fmt"
	"os"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	MailPassword string

	JWTSecret    string
	SecuritySalt string

	LogLevel string
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:       getEnvOrDefault("PORT", "8080"),
		Env:        getEnvOrDefault("APP_ENV", "development"),
		DBHost:     getEnvOrDefault("DB_HOST", "postgres"),
		DBPort:     getEnvOrDefault("DB_PORT", "5432"),
		DBUser:     getEnvOrDefault("DB_USER", "program"),
		DBPassword: getEnvOrDefault("DB_PASSWORD", "test"),
		DBName:     getEnvOrDefault("DB_NAME", "inventory"),
		SMTPHost:   getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:   getEnvOrDefault("SMTP_PORT", "465"),
		SMTPUser:   getEnvOrDefault("SMTP_USER", "alphagammawebmaster@gmail.com"),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "info"),
	}

	// Required environment variables
	if cfg.MailPassword = os.Getenv("MAIL_PASSWORD"); cfg.MailPassword == "" {
		return nil, fmt.Errorf("MAIL_PASSWORD environment variable is required")
	}
	if cfg.JWTSecret = os.Getenv("JWT_SECRET"); cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.SecuritySalt = os.Getenv("SECURITY_SALT"); cfg.SecuritySalt == "" {
		return nil, fmt.Errorf("SECURITY_SALT environment variable is required")
	}

	return cfg, nil
}

// getEnvOrDefault returns environment variable value or default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
