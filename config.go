package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment after an
// optional .env file is loaded.
type Config struct {
	Port     string `env:"PORT" env-default:"8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// Base URL of the upstream forum REST API, including the /api/v1 prefix.
	APIBaseURL string `env:"API_BASE_URL" env-default:"http://localhost:8000/api/v1"`

	// External authorization endpoint configuration. The OAuth code exchange
	// itself happens on the backend; this client only builds the redirect URL
	// and consumes the token the callback delivers.
	GoogleClientID   string `env:"GOOGLE_CLIENT_ID"`
	OAuthRedirectURI string `env:"OAUTH_REDIRECT_URI" env-default:"http://localhost:8000/api/v1/auth/google/callback"`

	// Cache backend: "memory" (default) or "redis".
	CacheBackend string `env:"CACHE_BACKEND" env-default:"memory"`
	RedisURL     string `env:"REDIS_URL" env-default:"redis://localhost:6379/0"`

	// Session lifetime in hours.
	SessionHours int `env:"SESSION_HOURS" env-default:"720"`
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("could not load .env file", "error", err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	return cfg, nil
}
