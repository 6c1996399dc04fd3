package config

import (
	"os"
	"strconv"
	"time"
)

const (
	// Sessions
	TokenTTL    = 72 * time.Hour
	TokenIssuer = "smartcomplaint-service"

	// Complaints
	DefaultComplaintType = "General"
	DefaultUrgency       = "Normal"
	DefaultLocation      = "Not specified"
	MinRating            = 1
	MaxRating            = 5

	// Reminders
	DefaultReminderDays = 3

	// Admin overview
	DetailsPreviewLength = 100

	// Notifications
	UnreadNotificationsLimit = 20
)

// Config holds the runtime configuration, read from the environment.
type Config struct {
	Port          string
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	UploadDir string

	LogLevel  string
	LogFormat string

	ReminderDays int

	TelegramBotToken    string
	TelegramAdminChatID int64
}

// Load reads the configuration from environment variables, applying defaults
// for anything not set. A .env file, if present, should be loaded by the
// caller before Load is called.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", "host=localhost user=user password=password dbname=complaintsdb port=5432 sslmode=disable"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", "dev-only-insecure-secret"),
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		ReminderDays: getEnvInt("REMINDER_DAYS", DefaultReminderDays),

		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChatID: getEnvInt64("TELEGRAM_ADMIN_CHAT_ID", 0),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
