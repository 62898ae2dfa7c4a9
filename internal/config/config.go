package config

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DBDSN           string
	PaystackSecret  string
	PaystackBaseURL string
	SessionSecret   string
	LogFile         string
}

// Load reads configuration from the environment, after loading a local
// .env file if one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:            os.Getenv("PORT"),
		DBDSN:           os.Getenv("DB_DSN"),
		PaystackSecret:  os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL: os.Getenv("PAYSTACK_BASE_URL"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		LogFile:         os.Getenv("LOG_FILE"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DBDSN == "" {
		cfg.DBDSN = "carastore.db" // sqlite file in project root
	}
	if cfg.PaystackBaseURL == "" {
		cfg.PaystackBaseURL = "https://api.paystack.co"
	}
	if cfg.PaystackSecret == "" {
		return Config{}, fmt.Errorf("PAYSTACK_SECRET_KEY must be set")
	}
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET must be set")
	}
	return cfg, nil
}

// CookieKey derives the cookie-encryption key from the session secret.
// The middleware wants a base64-encoded 32-byte key, so the secret is
// hashed rather than used raw.
func (c Config) CookieKey() string {
	sum := sha256.Sum256([]byte(c.SessionSecret))
	return base64.StdEncoding.EncodeToString(sum[:])
}
