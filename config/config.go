package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Booking    BookingConfig
	Cloudinary CloudinaryConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type BookingConfig struct {
	// CompletionRequiresElapsed gates confirmed->completed behind the
	// service end date having passed. Off by default.
	CompletionRequiresElapsed bool
	// PendingExpiryCheck is how often the expiration job scans for stale
	// pending bookings, in seconds.
	PendingExpiryCheckSeconds int
}

type CloudinaryConfig struct {
	URL    string
	Folder string
}

var AppConfig *Config

func Load() {
	AppConfig = &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "cureliah_db"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-this-in-production"),
			ExpiryHours: getEnvAsInt("JWT_EXPIRY_HOURS", 24),
		},
		Booking: BookingConfig{
			CompletionRequiresElapsed: getEnvAsBool("BOOKING_COMPLETION_REQUIRES_ELAPSED", false),
			PendingExpiryCheckSeconds: getEnvAsInt("BOOKING_EXPIRY_CHECK_SECONDS", 60),
		},
		Cloudinary: CloudinaryConfig{
			URL:    getEnv("CLOUDINARY_URL", ""),
			Folder: getEnv("CLOUDINARY_FOLDER", "cureliah"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
