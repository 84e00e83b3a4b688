// Package config reads process configuration from the environment once at
// startup. Values are immutable for the process lifetime; changing them
// requires a restart.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/gemini"
	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/tokenstore"
)

type Config struct {
	Port         string
	PublicOrigin string

	// DatabaseURL is optional: without it the deferred-publish queue and its
	// worker are disabled, everything else still runs.
	DatabaseURL string

	GeminiAPIKey string
	GeminiModel  string

	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInRedirectURI  string

	TokenFile     string
	SecureCookies bool

	SchedulerEnabled  bool
	SchedulerInterval time.Duration
	CleanupRetention  time.Duration

	LinkedInRPS   float64
	LinkedInBurst int
}

// FromEnv loads the configuration. Only the Gemini key is fatal to miss;
// that check lives in main so it can log and exit.
func FromEnv() Config {
	cfg := Config{
		Port:         envOr("PORT", "18912"),
		PublicOrigin: os.Getenv("PUBLIC_ORIGIN"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  envOr("GEMINI_MODEL", gemini.DefaultModel),

		LinkedInClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
		LinkedInClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
		LinkedInRedirectURI:  os.Getenv("LINKEDIN_REDIRECT_URI"),

		TokenFile:     envOr("LINKEDIN_TOKEN_FILE", tokenstore.DefaultFilePath),
		SecureCookies: envBool("SECURE_COOKIES", os.Getenv("APP_ENV") == "production"),

		SchedulerEnabled:  envBool("SCHEDULER_ENABLED", true),
		SchedulerInterval: envSeconds("SCHEDULER_INTERVAL_SECONDS", time.Minute),
		CleanupRetention:  envSeconds("QUEUE_RETENTION_SECONDS", 7*24*time.Hour),

		LinkedInRPS:   envFloat("LINKEDIN_RPS", 1),
		LinkedInBurst: envInt("LINKEDIN_BURST", 2),
	}
	// Legacy variable name kept working for existing deployments.
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GOOGLE_GENERATIVE_AI_API_KEY")
	}
	return cfg
}

// HasLinkedIn reports whether the auth-dependent routes can be served.
func (c Config) HasLinkedIn() bool {
	return c.LinkedInClientID != "" && c.LinkedInClientSecret != "" && c.LinkedInRedirectURI != ""
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func envSeconds(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		var secs int
		if _, err := fmt.Sscanf(v, "%d", &secs); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return def
}
