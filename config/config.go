package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the process needs, built once in main and
// passed explicitly to the components that use it.
type Config struct {
	Port    string
	GinMode string
	DBPath  string

	JWTSecret    string
	TokenTTL     time.Duration
	ResetCodeTTL time.Duration

	// Outbound notification credentials. Empty values switch the
	// dispatcher to log-only mode.
	ResendAPIKey string
	FromEmail    string
	AdminEmail   string

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	DefaultCountryCode string
}

// Load reads .env if present and falls back to process env and defaults.
func Load() *Config {
	// A missing .env is fine in production
	_ = godotenv.Load()

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", ""),
		DBPath:  getEnv("DB_PATH", "clubhouse_orders.db"),

		JWTSecret:    getEnv("JWT_SECRET", "clubhouse_super_secret_2025"),
		TokenTTL:     getDuration("TOKEN_TTL", 30*24*time.Hour),
		ResetCodeTTL: getDuration("RESET_CODE_TTL", 15*time.Minute),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@clubhouse.local"),
		AdminEmail:   getEnv("ADMIN_EMAIL", ""),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_NUMBER", ""),
		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "+27"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
