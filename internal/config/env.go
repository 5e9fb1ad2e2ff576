package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Conversational agent
	AnthropicAPIKey   string
	ClaudeModel       string
	ClaudeTemperature float64
	AgentMaxTurns     int

	// Google Calendar. A service account key takes precedence over the
	// OAuth client secret and token pair.
	GoogleCredentialsFile    string
	GoogleTokenFile          string
	GoogleServiceAccountFile string
	CalendarID               string

	// Scheduling
	Timezone        string
	DisplayTimezone string
	BackendTimeout  time.Duration
	RejectPastDates bool
	ChatHistorySize int

	// Server and storage
	HTTPPort int
	DBPath   string

	// Booking confirmations
	ResendAPIKey string
	EmailFrom    string
	NotifyEmail  string
}

func LoadFromEnv() *Config {
	timezone := getEnvOrDefault("TAILORTALK_TIMEZONE", "Asia/Kolkata")

	cfg := &Config{
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		ClaudeModel:       getEnvOrDefault("TAILORTALK_CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		ClaudeTemperature: getEnvAsFloatOrDefault("TAILORTALK_CLAUDE_TEMPERATURE", 0.2),
		AgentMaxTurns:     getEnvAsIntOrDefault("TAILORTALK_AGENT_MAX_TURNS", 5),

		GoogleCredentialsFile:    getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),
		GoogleTokenFile:          getEnvOrDefault("GOOGLE_TOKEN_FILE", "./token.json"),
		GoogleServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		CalendarID:               getEnvOrDefault("TAILORTALK_CALENDAR_ID", "primary"),

		Timezone:        timezone,
		DisplayTimezone: getEnvOrDefault("TAILORTALK_DISPLAY_TIMEZONE", timezone),
		BackendTimeout:  time.Duration(getEnvAsIntOrDefault("TAILORTALK_BACKEND_TIMEOUT_SECONDS", 10)) * time.Second,
		RejectPastDates: getEnvAsBoolOrDefault("TAILORTALK_REJECT_PAST_DATES", true),
		ChatHistorySize: getEnvAsIntOrDefault("TAILORTALK_HISTORY_SIZE", 20),

		HTTPPort: getEnvAsIntOrDefault("TAILORTALK_HTTP_PORT", 8000),
		DBPath:   getEnvOrDefault("TAILORTALK_DB_PATH", "./tailortalk.db"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnvOrDefault("TAILORTALK_EMAIL_FROM", "TailorTalk <bookings@tailortalk.dev>"),
		NotifyEmail:  os.Getenv("TAILORTALK_NOTIFY_EMAIL"),
	}

	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = 10 * time.Second
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
