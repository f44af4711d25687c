package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the civic reports service
type Config struct {
	// Server configuration
	Port string

	// Database configuration; persistence is optional and the catalog
	// runs in memory when disabled.
	DBEnabled  bool
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// RabbitMQ configuration; empty URL disables event publishing.
	AMQPUrl      string
	AMQPExchange string

	// Auth configuration
	JWTSecret string

	// SendGrid configuration; empty key disables notifications.
	SendGridAPIKey    string
	SendGridFromName  string
	SendGridFromEmail string
	NotifyEmail       string

	// Report configuration
	MaxImages         int
	GeocodeTimeoutSec int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		DBEnabled:  getBoolEnv("DB_ENABLED", false),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "civicreports"),

		AMQPUrl:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "civicreports.events"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Civic Reports"),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "reports@example.com"),
		NotifyEmail:       getEnv("NOTIFY_EMAIL", ""),

		MaxImages:         getIntEnv("MAX_IMAGES", 5),
		GeocodeTimeoutSec: getIntEnv("GEOCODE_TIMEOUT_SEC", 10),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
