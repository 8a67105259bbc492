package utils

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kataras/golog"
)

const devTokenSecret = "dev-secret-key-change-in-production"

// Config is read once at startup from the environment (and .env in
// development).
type Config struct {
	Port    string
	BaseURL string // public base of this service, used for checkout return URLs

	AccessTokenSecret  string
	RefreshTokenSecret string

	// Optional backends; empty means the in-memory fallback.
	DatabaseURL string
	RedisURL    string

	// Empty StripeSecretKey disables payments.
	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	FleetFile      string
	FrontendOrigin string
	LogLevel       string
}

func LoadConfig() Config {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			golog.Debug("no .env file, using the process environment")
		}
	}

	cfg := Config{
		Port:                getenv("PORT", "4000"),
		AccessTokenSecret:   os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret:  os.Getenv("REFRESH_TOKEN_SECRET"),
		DatabaseURL:         os.Getenv("DB_CONNECTION_STRING"),
		RedisURL:            os.Getenv("REDIS_URL"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getenv("PAYMENT_CURRENCY", "brl"),
		FleetFile:           os.Getenv("FLEET_FILE"),
		FrontendOrigin:      getenv("FRONTEND_ORIGIN", "*"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
	}
	cfg.BaseURL = getenv("APP_BASE_URL", "http://localhost:"+cfg.Port)

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		golog.Warn("ACCESS_TOKEN_SECRET/REFRESH_TOKEN_SECRET not set, using a development secret")
		if cfg.AccessTokenSecret == "" {
			cfg.AccessTokenSecret = devTokenSecret
		}
		if cfg.RefreshTokenSecret == "" {
			cfg.RefreshTokenSecret = devTokenSecret + "-refresh"
		}
	}
	if cfg.StripeSecretKey == "" {
		golog.Warn("STRIPE_SECRET_KEY not set, payment functionality will be disabled")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
